package domain

import (
	"demandflow/domain/state"

	"github.com/fundwit/go-commons/types"
)

type StatusDemanda string

const (
	StatusTriagem         StatusDemanda = "triagem"
	StatusTriagemTecnica  StatusDemanda = "triagem_tecnica"
	StatusPdd             StatusDemanda = "pdd"
	StatusDesenvolvimento StatusDemanda = "desenvolvimento"
	StatusHomologacao     StatusDemanda = "homologacao"
	StatusGolive          StatusDemanda = "golive"
	StatusConcluido       StatusDemanda = "concluido"
	StatusReprovado       StatusDemanda = "reprovado"
)

type StageOutcome string

const (
	OutcomePendente  StageOutcome = "pendente"
	OutcomeAprovado  StageOutcome = "aprovado"
	OutcomeReprovado StageOutcome = "reprovado"
)

type Categoria string

const (
	CategoriaAplicativo Categoria = "aplicativo"
	CategoriaAutomacao  Categoria = "automacao"
	CategoriaDashboard  Categoria = "dashboard"
)

type TipoDemanda string

const (
	TipoCriacao    TipoDemanda = "criacao"
	TipoAjuste     TipoDemanda = "ajuste"
	TipoManutencao TipoDemanda = "manutencao"
)

type Prioridade string

const (
	PrioridadeBaixa   Prioridade = "baixa"
	PrioridadeMedia   Prioridade = "media"
	PrioridadeAlta    Prioridade = "alta"
	PrioridadeUrgente Prioridade = "urgente"
)

type Demanda struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	NomeProjeto        string      `json:"nomeProjeto"`
	Descricao          string      `json:"descricao" sql:"type:TEXT"`
	ObjetivoEsperado   string      `json:"objetivoEsperado" sql:"type:TEXT"`
	AreaSolicitante    string      `json:"areaSolicitante"`
	Categoria          Categoria   `json:"categoria"`
	Tipo               TipoDemanda `json:"tipo"`
	Prioridade         Prioridade  `json:"prioridade"`
	KpiImpactado       string      `json:"kpiImpactado"`
	EficienciaEsperada string      `json:"eficienciaEsperada"`

	Status  StatusDemanda `json:"status"`
	SetorID types.ID      `json:"setorId"`

	SolicitanteID   types.ID `json:"solicitanteId"`
	SolicitanteNome string   `json:"solicitanteNome"`

	ResponsavelTecnicoID   types.ID `json:"responsavelTecnicoId"`
	ResponsavelTecnicoNome string   `json:"responsavelTecnicoNome"`

	StatusTriagem      StageOutcome    `json:"statusTriagem"`
	ObservacoesTriagem string          `json:"observacoesTriagem" sql:"type:TEXT"`
	TriadoPorID        types.ID        `json:"triadoPorId"`
	TriadoPorNome      string          `json:"triadoPorNome"`
	TriadoEm           types.Timestamp `json:"triadoEm" sql:"type:DATETIME(6)"`

	StatusTriagemTecnica  StageOutcome    `json:"statusTriagemTecnica"`
	JustificativaTecnica  string          `json:"justificativaTecnica" sql:"type:TEXT"`
	TriagemTecnicaPorID   types.ID        `json:"triagemTecnicaPorId"`
	TriagemTecnicaPorNome string          `json:"triagemTecnicaPorNome"`
	TriagemTecnicaEm      types.Timestamp `json:"triagemTecnicaEm" sql:"type:DATETIME(6)"`

	StatusHomologacao StageOutcome    `json:"statusHomologacao"`
	LinkGravacao      string          `json:"linkGravacao"`
	HomologadoPorID   types.ID        `json:"homologadoPorId"`
	HomologadoPorNome string          `json:"homologadoPorNome"`
	HomologadoEm      types.Timestamp `json:"homologadoEm" sql:"type:DATETIME(6)"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	UpdateTime types.Timestamp `json:"updateTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (d *Demanda) TableName() string {
	return "demandas"
}

type DemandaDetail struct {
	Demanda

	State state.State `json:"state" gorm:"-"`
}

type DemandaCreation struct {
	NomeProjeto        string      `json:"nomeProjeto" validate:"required"`
	Descricao          string      `json:"descricao" validate:"required"`
	ObjetivoEsperado   string      `json:"objetivoEsperado" validate:"required"`
	AreaSolicitante    string      `json:"areaSolicitante" validate:"required"`
	Categoria          Categoria   `json:"categoria" validate:"required,oneof=aplicativo automacao dashboard"`
	Tipo               TipoDemanda `json:"tipo" validate:"required,oneof=criacao ajuste manutencao"`
	Prioridade         Prioridade  `json:"prioridade" validate:"required,oneof=baixa media alta urgente"`
	KpiImpactado       string      `json:"kpiImpactado"`
	EficienciaEsperada string      `json:"eficienciaEsperada"`
	SetorID            types.ID    `json:"setorId" validate:"required"`
}

type DemandaUpdating struct {
	NomeProjeto        string     `json:"nomeProjeto"`
	Descricao          string     `json:"descricao"`
	ObjetivoEsperado   string     `json:"objetivoEsperado"`
	Prioridade         Prioridade `json:"prioridade"`
	KpiImpactado       string     `json:"kpiImpactado"`
	EficienciaEsperada string     `json:"eficienciaEsperada"`
}

type DemandaQuery struct {
	NomeProjeto string        `json:"nomeProjeto" form:"nomeProjeto"`
	Status      StatusDemanda `json:"status" form:"status"`
	SetorID     types.ID      `json:"setorId" form:"setorId"`
}
