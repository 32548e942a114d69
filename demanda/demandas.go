package demanda

import (
	"errors"

	"demandflow/authority"
	"demandflow/bizerror"
	"demandflow/domain"
	"demandflow/domain/flow"
	"demandflow/event"
	"demandflow/historico"
	"demandflow/idgen"
	"demandflow/persistence"
	"demandflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	demandaIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateDemandaFunc = CreateDemanda
	QueryDemandasFunc = QueryDemandas
	DetailDemandaFunc = DetailDemanda
	UpdateDemandaFunc = UpdateDemanda
	DeleteDemandaFunc = DeleteDemanda
	LoadDemandasFunc  = LoadDemandas
)

func CreateDemanda(c *domain.DemandaCreation, s *session.Session) (*domain.DemandaDetail, error) {
	if s == nil || !s.Active {
		return nil, bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	var detail *domain.DemandaDetail
	var ev *event.EventRecord

	err1 := db.Transaction(func(tx *gorm.DB) error {
		now := types.CurrentTimestamp()
		d := domain.Demanda{
			ID: idgen.NextID(demandaIdWorker),

			NomeProjeto:        c.NomeProjeto,
			Descricao:          c.Descricao,
			ObjetivoEsperado:   c.ObjetivoEsperado,
			AreaSolicitante:    c.AreaSolicitante,
			Categoria:          c.Categoria,
			Tipo:               c.Tipo,
			Prioridade:         c.Prioridade,
			KpiImpactado:       c.KpiImpactado,
			EficienciaEsperada: c.EficienciaEsperada,

			Status:        domain.StatusTriagem,
			SetorID:       c.SetorID,
			StatusTriagem: domain.OutcomePendente,

			SolicitanteID:   s.Identity.ID,
			SolicitanteNome: s.Identity.DisplayName(),

			CreateTime: now,
			UpdateTime: now,
		}
		if err := tx.Create(&d).Error; err != nil {
			return err
		}

		if _, err := historico.RecordFunc(tx, d.ID, &s.Identity, historico.AcaoCriacao,
			"", d.Status, ""); err != nil {
			return err
		}

		var err error
		ev, err = event.CreateEvent(event.SourceTypeDemanda, d.ID, d.NomeProjeto,
			event.EventCategoryCreated, nil, &s.Identity, tx)
		if err != nil {
			return err
		}

		detail = &domain.DemandaDetail{Demanda: d, State: flow.StateTriagem}
		return nil
	})
	if err1 != nil {
		return nil, err1
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return detail, nil
}

func QueryDemandas(query *domain.DemandaQuery, s *session.Session) (*[]domain.Demanda, error) {
	if s == nil || !s.Active {
		return nil, bizerror.ErrForbidden
	}

	var demandas []domain.Demanda
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	q := db.Model(&domain.Demanda{})
	if query.NomeProjeto != "" {
		q = q.Where("nome_projeto like ?", "%"+query.NomeProjeto+"%")
	}
	if query.Status != "" {
		q = q.Where("status = ?", query.Status)
	}
	if query.SetorID != 0 {
		q = q.Where("setor_id = ?", query.SetorID)
	}
	if !s.Roles.Grants(authority.CapViewAll) {
		q = q.Where("setor_id in (?) OR solicitante_id = ?", s.VisibleSetores(), s.Identity.ID)
	}

	if err := q.Order("create_time DESC").Find(&demandas).Error; err != nil {
		return nil, err
	}
	return &demandas, nil
}

func DetailDemanda(id types.ID, s *session.Session) (*domain.DemandaDetail, error) {
	if s == nil || !s.Active {
		return nil, bizerror.ErrForbidden
	}

	if detail, found := cachedDetail(id); found {
		if !Visible(&detail.Demanda, s) {
			return nil, bizerror.ErrForbidden
		}
		return detail, nil
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	detail := domain.DemandaDetail{}
	if err := db.Where(&domain.Demanda{ID: id}).First(&detail.Demanda).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}

	stateFound, found := flow.FindState(string(detail.Status))
	if !found {
		return nil, bizerror.ErrUnknownState
	}
	detail.State = stateFound

	cacheDetail(&detail)

	if !Visible(&detail.Demanda, s) {
		return nil, bizerror.ErrForbidden
	}
	return &detail, nil
}

func UpdateDemanda(id types.ID, u *domain.DemandaUpdating, s *session.Session) (*domain.Demanda, error) {
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
		if err := checkOwnership(&d, s); err != nil {
			return err
		}

		changes := map[string]interface{}{"update_time": types.CurrentTimestamp()}
		if u.NomeProjeto != "" {
			changes["nome_projeto"] = u.NomeProjeto
		}
		if u.Descricao != "" {
			changes["descricao"] = u.Descricao
		}
		if u.ObjetivoEsperado != "" {
			changes["objetivo_esperado"] = u.ObjetivoEsperado
		}
		if u.Prioridade != "" {
			changes["prioridade"] = u.Prioridade
		}
		if u.KpiImpactado != "" {
			changes["kpi_impactado"] = u.KpiImpactado
		}
		if u.EficienciaEsperada != "" {
			changes["eficiencia_esperada"] = u.EficienciaEsperada
		}

		q := tx.Model(&domain.Demanda{}).Where("id = ?", id).Update(changes)
		if err := q.Error; err != nil {
			return err
		}
		if err := tx.Where(&domain.Demanda{ID: id}).First(&updated).Error; err != nil {
			return err
		}

		var err error
		ev, err = event.CreateEvent(event.SourceTypeDemanda, d.ID, updated.NomeProjeto,
			event.EventCategoryPropertyUpdated, nil, &s.Identity, tx)
		return err
	})
	if err1 != nil {
		return nil, err1
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &updated, nil
}

func DeleteDemanda(id types.ID, s *session.Session) error {
	if s == nil || !s.Active {
		return bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	var ev *event.EventRecord
	err1 := db.Transaction(func(tx *gorm.DB) error {
		d := domain.Demanda{}
		if err := tx.Where(&domain.Demanda{ID: id}).First(&d).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}
		if err := checkOwnership(&d, s); err != nil {
			return err
		}

		if err := tx.Delete(domain.Demanda{}, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(historico.HistoricoRecord{}, "demanda_id = ?", id).Error; err != nil {
			return err
		}

		var err error
		ev, err = event.CreateEvent(event.SourceTypeDemanda, d.ID, d.NomeProjeto,
			event.EventCategoryDeleted, nil, &s.Identity, tx)
		return err
	})
	if err1 != nil {
		return err1
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return nil
}

// LoadDemandas pages through all demandas, oldest first. Used by the index
// synchronizer.
func LoadDemandas(page, size int) ([]domain.Demanda, error) {
	db := persistence.ActiveDataSourceManager.GormDB(nil)
	var demandas []domain.Demanda
	if err := db.Model(&domain.Demanda{}).Order("id ASC").
		Offset((page - 1) * size).Limit(size).Find(&demandas).Error; err != nil {
		return nil, err
	}
	return demandas, nil
}

// Visible reports whether the principal may observe the demanda at all.
func Visible(d *domain.Demanda, s *session.Session) bool {
	if s == nil || !s.Active {
		return false
	}
	if s.Roles.Grants(authority.CapViewAll) {
		return true
	}
	if d.SolicitanteID == s.Identity.ID {
		return true
	}
	for _, setorID := range s.VisibleSetores() {
		if setorID == d.SetorID {
			return true
		}
	}
	return false
}

// checkOwnership gates editing and deleting: the solicitante may touch their
// own demanda, everyone else needs sector-level management rights.
func checkOwnership(d *domain.Demanda, s *session.Session) error {
	if s == nil || !s.Active {
		return bizerror.ErrForbidden
	}
	if d.SolicitanteID == s.Identity.ID {
		return nil
	}
	if s.Roles.GrantsInSetor(authority.CapEditSetor, d.SetorID) {
		return nil
	}
	return bizerror.ErrForbidden
}
