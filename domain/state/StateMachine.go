package state

type Category uint

const (
	Intake Category = iota
	InProcess
	Done
	Rejected
)

type State struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Order    int      `json:"order"`
}

// Transition carries the capability a caller must hold to trigger it.
type Transition struct {
	Action     string `json:"action"`
	From       State  `json:"from"`
	To         State  `json:"to"`
	Capability string `json:"capability"`
}

// stateless object, just used for state computing
type StateMachine struct {
	States      []State      `json:"states"`
	Transitions []Transition `json:"transitions"`
}

func NewStateMachine(states []State, transitions []Transition) *StateMachine {
	return &StateMachine{States: states, Transitions: transitions}
}

func (sm *StateMachine) FindState(name string) (State, bool) {
	for _, s := range sm.States {
		if s.Name == name {
			return s, true
		}
	}
	return State{}, false
}

func (sm *StateMachine) AvailableTransitions(fromState string) []Transition {
	r := []Transition{}
	for _, transition := range sm.Transitions {
		if fromState == transition.From.Name {
			r = append(r, transition)
		}
	}
	return r
}

// FindTransition returns the transition triggered by action from the given
// state. Terminal states define no transitions at all.
func (sm *StateMachine) FindTransition(fromState, action string) (Transition, bool) {
	for _, transition := range sm.Transitions {
		if fromState == transition.From.Name && action == transition.Action {
			return transition, true
		}
	}
	return Transition{}, false
}
