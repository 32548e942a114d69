package historico

import (
	"errors"

	"demandflow/authority"
	"demandflow/bizerror"
	"demandflow/domain"
	"demandflow/idgen"
	"demandflow/persistence"
	"demandflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

type Acao string

const (
	AcaoCriacao                 Acao = "criacao"
	AcaoTriagemAprovada         Acao = "triagem_aprovada"
	AcaoTriagemReprovada        Acao = "triagem_reprovada"
	AcaoTriagemTecnicaAprovada  Acao = "triagem_tecnica_aprovada"
	AcaoTriagemTecnicaReprovada Acao = "triagem_tecnica_reprovada"
	AcaoHomologacaoAprovada     Acao = "homologacao_aprovada"
	AcaoHomologacaoReprovada    Acao = "homologacao_reprovada"
	AcaoStatusAlterado          Acao = "status_alterado"
	AcaoResponsavelAtribuido    Acao = "responsavel_atribuido"
)

// HistoricoRecord is append-only: written once per accepted action, never
// updated or deleted afterwards.
type HistoricoRecord struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	DemandaID types.ID `json:"demandaId" gorm:"index"`

	UsuarioID   types.ID `json:"usuarioId"`
	UsuarioNome string   `json:"usuarioNome"`

	Acao           Acao   `json:"acao"`
	StatusAnterior string `json:"statusAnterior"`
	StatusNovo     string `json:"statusNovo"`
	Observacoes    string `json:"observacoes" sql:"type:TEXT"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (r *HistoricoRecord) TableName() string {
	return "demanda_historico"
}

var (
	idWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	RecordFunc         = Record
	ListForDemandaFunc = ListForDemanda
)

// Record appends one audit entry within the caller's transaction, so a
// status change and its history entry commit or roll back together.
func Record(tx *gorm.DB, demandaID types.ID, usuario *session.Identity, acao Acao,
	statusAnterior, statusNovo domain.StatusDemanda, observacoes string) (*HistoricoRecord, error) {

	record := HistoricoRecord{
		ID:        idgen.NextID(idWorker),
		DemandaID: demandaID,

		UsuarioID:   usuario.ID,
		UsuarioNome: usuario.DisplayName(),

		Acao:           acao,
		StatusAnterior: string(statusAnterior),
		StatusNovo:     string(statusNovo),
		Observacoes:    observacoes,

		CreateTime: types.CurrentTimestamp(),
	}
	if err := tx.Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// ListForDemanda returns the audit trail most-recent-first. Principals
// without visibility of the demanda observe an empty trail.
func ListForDemanda(demandaID types.ID, s *session.Session) (*[]HistoricoRecord, error) {
	if s == nil || !s.Active {
		return nil, bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	demanda := domain.Demanda{}
	if err := db.Where(&domain.Demanda{ID: demandaID}).
		Select("setor_id, solicitante_id").First(&demanda).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &[]HistoricoRecord{}, nil
		}
		return nil, err
	}
	if !visible(&demanda, s) {
		return &[]HistoricoRecord{}, nil
	}

	var records []HistoricoRecord
	if err := db.Where(&HistoricoRecord{DemandaID: demandaID}).
		Order("create_time DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return &records, nil
}

func visible(d *domain.Demanda, s *session.Session) bool {
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
