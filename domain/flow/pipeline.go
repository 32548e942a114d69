package flow

import (
	"demandflow/authority"
	"demandflow/domain"
	"demandflow/domain/state"
)

const (
	ActionAprovar  = "aprovar"
	ActionReprovar = "reprovar"
	ActionConcluir = "concluir"
)

var (
	StateTriagem         = state.State{Name: string(domain.StatusTriagem), Category: state.Intake, Order: 1}
	StateTriagemTecnica  = state.State{Name: string(domain.StatusTriagemTecnica), Category: state.InProcess, Order: 2}
	StatePdd             = state.State{Name: string(domain.StatusPdd), Category: state.InProcess, Order: 3}
	StateDesenvolvimento = state.State{Name: string(domain.StatusDesenvolvimento), Category: state.InProcess, Order: 4}
	StateHomologacao     = state.State{Name: string(domain.StatusHomologacao), Category: state.InProcess, Order: 5}
	StateGolive          = state.State{Name: string(domain.StatusGolive), Category: state.InProcess, Order: 6}
	StateConcluido       = state.State{Name: string(domain.StatusConcluido), Category: state.Done, Order: 7}
	StateReprovado       = state.State{Name: string(domain.StatusReprovado), Category: state.Rejected, Order: 8}
)

// DemandaPipeline is the single fixed approval flow every demanda moves
// through. `concluido` and `reprovado` define no outgoing transitions.
var DemandaPipeline = state.NewStateMachine(
	[]state.State{
		StateTriagem, StateTriagemTecnica, StatePdd, StateDesenvolvimento,
		StateHomologacao, StateGolive, StateConcluido, StateReprovado,
	},
	[]state.Transition{
		{Action: ActionAprovar, From: StateTriagem, To: StateTriagemTecnica, Capability: string(authority.CapApproveTriagem)},
		{Action: ActionReprovar, From: StateTriagem, To: StateReprovado, Capability: string(authority.CapApproveTriagem)},

		{Action: ActionAprovar, From: StateTriagemTecnica, To: StatePdd, Capability: string(authority.CapApproveTriagem)},
		{Action: ActionReprovar, From: StateTriagemTecnica, To: StateReprovado, Capability: string(authority.CapApproveTriagem)},

		{Action: ActionAprovar, From: StatePdd, To: StateDesenvolvimento, Capability: string(authority.CapAdvanceStatus)},
		{Action: ActionAprovar, From: StateDesenvolvimento, To: StateHomologacao, Capability: string(authority.CapAdvanceStatus)},

		{Action: ActionAprovar, From: StateHomologacao, To: StateGolive, Capability: string(authority.CapApproveHomologacao)},
		{Action: ActionReprovar, From: StateHomologacao, To: StateReprovado, Capability: string(authority.CapApproveHomologacao)},

		{Action: ActionConcluir, From: StateGolive, To: StateConcluido, Capability: string(authority.CapAdvanceStatus)},
	},
)

func FindState(name string) (state.State, bool) {
	return DemandaPipeline.FindState(name)
}
