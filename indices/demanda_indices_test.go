package indices

import (
	"errors"
	"testing"

	"demandflow/client/es"
	"demandflow/demanda"
	"demandflow/domain"
	"demandflow/event"
	"demandflow/session"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func TestIndexDemandas(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should index every demanda and collect failures", func(t *testing.T) {
		indexed := map[types.ID]bool{}
		es.IndexFunc = func(index string, id types.ID, doc interface{}, s *session.Session) error {
			Expect(index).To(Equal(DemandaIndexName))
			if id == 200 {
				return errors.New("boom")
			}
			indexed[id] = true
			return nil
		}

		err := IndexDemandas([]domain.Demanda{{ID: 100}, {ID: 200}, {ID: 300}})
		Expect(err).ToNot(BeNil())
		batchErr, ok := err.(BatchActionError)
		Expect(ok).To(BeTrue())
		Expect(len(batchErr)).To(Equal(1))
		Expect(indexed).To(Equal(map[types.ID]bool{100: true, 300: true}))
	})
}

func TestIndexDemandaEventHandle(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should ignore events of other sources", func(t *testing.T) {
		r := IndexDemandaEventHandle(&event.EventRecord{Event: event.Event{SourceType: "USER"}})
		Expect(r).To(BeNil())
	})

	t.Run("should drop document on delete events", func(t *testing.T) {
		var deleted types.ID
		es.DeleteDocumentByIdFunc = func(index string, id types.ID, s *session.Session) error {
			deleted = id
			return nil
		}

		r := IndexDemandaEventHandle(&event.EventRecord{Event: event.Event{
			SourceType: event.SourceTypeDemanda, SourceId: 100, EventCategory: event.EventCategoryDeleted}})
		Expect(r.Success).To(BeTrue())
		Expect(r.HandlerIdentifier).To(Equal(DemandaIndexEventHandlerName))
		Expect(deleted).To(Equal(types.ID(100)))
	})

	t.Run("should reindex the demanda on other events", func(t *testing.T) {
		demanda.DetailDemandaFunc = func(id types.ID, s *session.Session) (*domain.DemandaDetail, error) {
			return &domain.DemandaDetail{Demanda: domain.Demanda{ID: id, NomeProjeto: "d1"}}, nil
		}
		var indexedId types.ID
		es.IndexFunc = func(index string, id types.ID, doc interface{}, s *session.Session) error {
			indexedId = id
			return nil
		}

		r := IndexDemandaEventHandle(&event.EventRecord{Event: event.Event{
			SourceType: event.SourceTypeDemanda, SourceId: 100, EventCategory: event.EventCategoryPropertyUpdated}})
		Expect(r.Success).To(BeTrue())
		Expect(indexedId).To(Equal(types.ID(100)))
	})

	t.Run("should report detail failures", func(t *testing.T) {
		demanda.DetailDemandaFunc = func(id types.ID, s *session.Session) (*domain.DemandaDetail, error) {
			return nil, errors.New("boom")
		}

		r := IndexDemandaEventHandle(&event.EventRecord{Event: event.Event{
			SourceType: event.SourceTypeDemanda, SourceId: 100, EventCategory: event.EventCategoryPropertyUpdated}})
		Expect(r.Success).To(BeFalse())
		Expect(r.Message).To(ContainSubstring("boom"))
	})
}
