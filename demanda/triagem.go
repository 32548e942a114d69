package demanda

import (
	"errors"
	"strings"

	"demandflow/authority"
	"demandflow/bizerror"
	"demandflow/domain"
	"demandflow/domain/flow"
	"demandflow/domain/state"
	"demandflow/event"
	"demandflow/historico"
	"demandflow/misc"
	"demandflow/persistence"
	"demandflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	ApproveStageFunc    = ApproveStage
	RejectStageFunc     = RejectStage
	MarkCompleteFunc    = MarkComplete
	AssignTechnicalFunc = AssignTechnical
)

// ApproveStage advances the demanda one pipeline step and stamps the current
// stage outcome as aprovado.
func ApproveStage(id types.ID, justificativa string, s *session.Session) (*domain.Demanda, error) {
	return transit(id, flow.ActionAprovar, justificativa, s)
}

// RejectStage ends the pipeline: the demanda becomes reprovado and the
// current stage outcome is stamped reprovado. There is no way back.
func RejectStage(id types.ID, justificativa string, s *session.Session) (*domain.Demanda, error) {
	return transit(id, flow.ActionReprovar, justificativa, s)
}

// MarkComplete closes a demanda that already went live.
func MarkComplete(id types.ID, justificativa string, s *session.Session) (*domain.Demanda, error) {
	return transit(id, flow.ActionConcluir, justificativa, s)
}

// transit runs one pipeline transition as a single unit of work: the status
// compare-and-swap, the stage outcome stamp, the audit entry and the event
// record commit together or not at all. A raced caller loses the
// RowsAffected check and gets ErrConflict.
func transit(id types.ID, action string, justificativa string, s *session.Session) (*domain.Demanda, error) {
	if strings.TrimSpace(justificativa) == "" {
		return nil, &misc.ErrBadParam{Cause: errors.New("justificativa must not be empty")}
	}
	if s == nil || !s.Active {
		return nil, bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	var updated domain.Demanda
	var ev *event.EventRecord

	err1 := db.Transaction(func(tx *gorm.DB) error {
		d := domain.Demanda{}
		if err := tx.Where(&domain.Demanda{ID: id}).First(&d).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}

		transition, found := flow.DemandaPipeline.FindTransition(string(d.Status), action)
		if !found {
			return bizerror.ErrInvalidTransition
		}
		if !s.Roles.GrantsInSetor(authority.Capability(transition.Capability), d.SetorID) {
			return bizerror.ErrForbidden
		}

		now := types.CurrentTimestamp()
		changes := map[string]interface{}{
			"status":      transition.To.Name,
			"update_time": now,
		}
		stampStage(changes, d.Status, action, justificativa, now, s)

		q := tx.Model(&domain.Demanda{}).
			Where("id = ? AND status = ?", id, d.Status).Update(changes)
		if err := q.Error; err != nil {
			return err
		}
		if q.RowsAffected != 1 {
			return bizerror.ErrConflict
		}

		if _, err := historico.RecordFunc(tx, d.ID, &s.Identity,
			historyAction(d.Status, action), d.Status,
			domain.StatusDemanda(transition.To.Name), justificativa); err != nil {
			return err
		}

		var err error
		ev, err = event.CreateEvent(event.SourceTypeDemanda, d.ID, d.NomeProjeto,
			event.EventCategoryPropertyUpdated,
			[]event.UpdatedProperty{{PropertyName: "status",
				OldValue: string(d.Status), NewValue: transition.To.Name}},
			&s.Identity, tx)
		if err != nil {
			return err
		}

		return tx.Where(&domain.Demanda{ID: id}).First(&updated).Error
	})
	if err1 != nil {
		return nil, err1
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &updated, nil
}

// AssignTechnical sets the technical owner of a demanda.
func AssignTechnical(id types.ID, responsavelID types.ID, responsavelNome string, s *session.Session) (*domain.Demanda, error) {
	if s == nil || !s.Active {
		return nil, bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	var updated domain.Demanda
	var ev *event.EventRecord

	err1 := db.Transaction(func(tx *gorm.DB) error {
		d := domain.Demanda{}
		if err := tx.Where(&domain.Demanda{ID: id}).First(&d).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}
		stateFound, found := flow.FindState(string(d.Status))
		if !found {
			return bizerror.ErrUnknownState
		}
		if stateFound.Category == state.Done || stateFound.Category == state.Rejected {
			return bizerror.ErrInvalidTransition
		}
		if !s.Roles.GrantsInSetor(authority.CapAssignTechnical, d.SetorID) {
			return bizerror.ErrForbidden
		}

		q := tx.Model(&domain.Demanda{}).Where("id = ?", id).Update(map[string]interface{}{
			"responsavel_tecnico_id":   responsavelID,
			"responsavel_tecnico_nome": responsavelNome,
			"update_time":              types.CurrentTimestamp(),
		})
		if err := q.Error; err != nil {
			return err
		}

		if _, err := historico.RecordFunc(tx, d.ID, &s.Identity,
			historico.AcaoResponsavelAtribuido, d.Status, d.Status, responsavelNome); err != nil {
			return err
		}

		var err error
		ev, err = event.CreateEvent(event.SourceTypeDemanda, d.ID, d.NomeProjeto,
			event.EventCategoryPropertyUpdated,
			[]event.UpdatedProperty{{PropertyName: "responsavelTecnico",
				OldValue: d.ResponsavelTecnicoNome, NewValue: responsavelNome}},
			&s.Identity, tx)
		if err != nil {
			return err
		}

		return tx.Where(&domain.Demanda{ID: id}).First(&updated).Error
	})
	if err1 != nil {
		return nil, err1
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &updated, nil
}

// stampStage records the per-stage verdict columns for stages that carry an
// outcome. Stages without one only move the status forward.
func stampStage(changes map[string]interface{}, from domain.StatusDemanda, action, justificativa string,
	now types.Timestamp, s *session.Session) {

	outcome := domain.OutcomeAprovado
	if action == flow.ActionReprovar {
		outcome = domain.OutcomeReprovado
	}

	switch from {
	case domain.StatusTriagem:
		changes["status_triagem"] = outcome
		changes["observacoes_triagem"] = justificativa
		changes["triado_por_id"] = s.Identity.ID
		changes["triado_por_nome"] = s.Identity.DisplayName()
		changes["triado_em"] = now
		if action == flow.ActionAprovar {
			changes["status_triagem_tecnica"] = domain.OutcomePendente
		}
	case domain.StatusTriagemTecnica:
		changes["status_triagem_tecnica"] = outcome
		changes["justificativa_tecnica"] = justificativa
		changes["triagem_tecnica_por_id"] = s.Identity.ID
		changes["triagem_tecnica_por_nome"] = s.Identity.DisplayName()
		changes["triagem_tecnica_em"] = now
	case domain.StatusDesenvolvimento:
		if action == flow.ActionAprovar {
			changes["status_homologacao"] = domain.OutcomePendente
		}
	case domain.StatusHomologacao:
		changes["status_homologacao"] = outcome
		changes["homologado_por_id"] = s.Identity.ID
		changes["homologado_por_nome"] = s.Identity.DisplayName()
		changes["homologado_em"] = now
	}
}

func historyAction(from domain.StatusDemanda, action string) historico.Acao {
	switch from {
	case domain.StatusTriagem:
		if action == flow.ActionReprovar {
			return historico.AcaoTriagemReprovada
		}
		return historico.AcaoTriagemAprovada
	case domain.StatusTriagemTecnica:
		if action == flow.ActionReprovar {
			return historico.AcaoTriagemTecnicaReprovada
		}
		return historico.AcaoTriagemTecnicaAprovada
	case domain.StatusHomologacao:
		if action == flow.ActionReprovar {
			return historico.AcaoHomologacaoReprovada
		}
		return historico.AcaoHomologacaoAprovada
	}
	return historico.AcaoStatusAlterado
}
