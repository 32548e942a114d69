package indices

import (
	"encoding/json"
	"fmt"

	"demandflow/authority"
	"demandflow/client/es"
	"demandflow/demanda"
	"demandflow/domain"
	"demandflow/event"
	"demandflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	DemandaIndexName = "demandas"

	DemandaIndexEventHandlerName = "demandaIndexer"

	indexRobot = &session.Session{
		Identity: session.Identity{ID: 10, Name: "index-robot"},
		Active:   true,
		Roles:    authority.RoleAssignments{{Role: authority.RoleAdmin}},
	}
)

type DemandaDocument struct {
	domain.Demanda
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

func IndexDemandas(demandas []domain.Demanda) error {
	docs := make([]DemandaDocument, 0, len(demandas))
	for _, d := range demandas {
		docs = append(docs, DemandaDocument{Demanda: d})
	}

	if err := saveDemandaDocuments(docs); err != nil {
		return err
	}
	return nil
}

func saveDemandaDocuments(docs []DemandaDocument) BatchActionError {
	errs := BatchActionError{}

	for _, doc := range docs {
		if err := es.IndexFunc(DemandaIndexName, doc.ID, doc, indexRobot); err != nil {
			errs[doc.ID] = err
			logrus.Warnf("index demanda %d %s %s\n", doc.ID, doc.NomeProjeto, err)
		} else {
			logrus.Infof("index demanda %d %s successfully\n", doc.ID, doc.NomeProjeto)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func IndexDemandaEventHandle(e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != event.SourceTypeDemanda {
		return nil
	}

	if e.EventCategory == event.EventCategoryDeleted {
		err := es.DeleteDocumentByIdFunc(DemandaIndexName, e.Event.SourceId, indexRobot)
		if err != nil {
			return &event.EventHandleResult{
				Message:           fmt.Sprintf("delete demanda index %d, %v", e.Event.SourceId, err),
				HandlerIdentifier: DemandaIndexEventHandlerName,
			}
		}
		return &event.EventHandleResult{Success: true, HandlerIdentifier: DemandaIndexEventHandlerName}
	}

	detail, err := demanda.DetailDemandaFunc(e.Event.SourceId, indexRobot)
	if err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("detail demanda when index demanda %d, %v", e.Event.SourceId, err),
			HandlerIdentifier: DemandaIndexEventHandlerName,
		}
	}
	if err := IndexDemandas([]domain.Demanda{detail.Demanda}); err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("index demanda %d, %v", e.Event.SourceId, err),
			HandlerIdentifier: DemandaIndexEventHandlerName,
		}
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: DemandaIndexEventHandlerName}
}

func parseDemandaDocuments(result *es.ESSearchResult) ([]DemandaDocument, error) {
	docs := make([]DemandaDocument, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		doc := DemandaDocument{}
		if err := json.Unmarshal([]byte(hit.Source), &doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
