package search

import (
	"encoding/json"

	"demandflow/authority"
	"demandflow/bizerror"
	"demandflow/client/es"
	"demandflow/indices"
	"demandflow/session"
)

var SearchSimilarDemandasFunc = SearchSimilarDemandas

type SimilarDemandaQuery struct {
	Texto string `json:"texto" form:"q" binding:"required" validate:"required"`
}

type SimilarDemanda struct {
	ID          string  `json:"id"`
	NomeProjeto string  `json:"nomeProjeto"`
	Descricao   string  `json:"descricao"`
	Status      string  `json:"status"`
	Score       float64 `json:"score"`
}

// SearchSimilarDemandas matches the given text against the descriptive
// fields of indexed demandas, restricted to what the caller may see.
func SearchSimilarDemandas(q *SimilarDemandaQuery, s *session.Session) ([]SimilarDemanda, error) {
	if s == nil || !s.Active {
		return nil, bizerror.ErrForbidden
	}

	must := []es.H{
		{"multi_match": es.H{
			"query":  q.Texto,
			"fields": []string{"nomeProjeto^2", "descricao", "objetivoEsperado"},
		}},
	}
	query := es.H{"query": es.H{"bool": es.H{"must": must}}}

	if !s.Roles.Grants(authority.CapViewAll) {
		setorIds := s.VisibleSetores()
		ids := make([]interface{}, 0, len(setorIds))
		for _, id := range setorIds {
			ids = append(ids, id)
		}
		query = es.H{"query": es.H{"bool": es.H{
			"must": must,
			"filter": []es.H{
				{"bool": es.H{"should": []es.H{
					{"terms": es.H{"setorId": ids}},
					{"term": es.H{"solicitanteId": s.Identity.ID}},
				}}},
			},
		}}}
	}

	result, err := es.SearchFunc(indices.DemandaIndexName, query, s)
	if err != nil {
		return nil, err
	}

	found := make([]SimilarDemanda, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		doc := struct {
			ID          string `json:"id"`
			NomeProjeto string `json:"nomeProjeto"`
			Descricao   string `json:"descricao"`
			Status      string `json:"status"`
		}{}
		if err := json.Unmarshal([]byte(hit.Source), &doc); err != nil {
			return nil, err
		}
		found = append(found, SimilarDemanda{ID: doc.ID, NomeProjeto: doc.NomeProjeto,
			Descricao: doc.Descricao, Status: doc.Status, Score: hit.Score})
	}
	return found, nil
}
