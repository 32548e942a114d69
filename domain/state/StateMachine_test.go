package state_test

import (
	"demandflow/domain/state"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("StateMachine", func() {
	var (
		stateMachine *state.StateMachine
	)

	BeforeEach(func() {
		//         PENDING         DOING          DONE
		// PENDING   -              V (begin)     V (close)
		// DOING     V (cancel)     -             V (finish)
		// DONE      X              X             -
		stateMachine = state.NewStateMachine(
			[]state.State{{Name: "PENDING"}, {Name: "DOING"}, {Name: "DONE", Category: state.Done}},
			[]state.Transition{
				{Action: "begin", From: state.State{Name: "PENDING"}, To: state.State{Name: "DOING"}, Capability: "cap.begin"},
				{Action: "close", From: state.State{Name: "PENDING"}, To: state.State{Name: "DONE", Category: state.Done}, Capability: "cap.close"},
				{Action: "cancel", From: state.State{Name: "DOING"}, To: state.State{Name: "PENDING"}, Capability: "cap.cancel"},
				{Action: "finish", From: state.State{Name: "DOING"}, To: state.State{Name: "DONE", Category: state.Done}, Capability: "cap.finish"},
			})
	})

	Describe("NewStateMachine", func() {
		Context("With given PENDING-DOING-DONE states and transitions", func() {
			It("should create new State Machine successfully", func() {
				Expect(stateMachine).NotTo(BeZero())
				Expect(len(stateMachine.States)).To(Equal(3))
				Expect(len(stateMachine.Transitions)).To(Equal(4))
			})
		})
	})

	Describe("FindState", func() {
		It("should find states by name", func() {
			s, found := stateMachine.FindState("DOING")
			Expect(found).To(BeTrue())
			Expect(s).To(Equal(state.State{Name: "DOING"}))

			_, found = stateMachine.FindState("UNKNOWN")
			Expect(found).To(BeFalse())
		})
	})

	Describe("AvailableTransitions", func() {
		Context("With given PENDING-DOING-DONE states and transitions", func() {
			It("should return availableTransitions as expected", func() {
				Ω(stateMachine.AvailableTransitions("PENDING")).Should(Equal([]state.Transition{
					{Action: "begin", From: state.State{Name: "PENDING"}, To: state.State{Name: "DOING"}, Capability: "cap.begin"},
					{Action: "close", From: state.State{Name: "PENDING"}, To: state.State{Name: "DONE", Category: state.Done}, Capability: "cap.close"},
				}))

				Ω(stateMachine.AvailableTransitions("DOING")).Should(Equal([]state.Transition{
					{Action: "cancel", From: state.State{Name: "DOING"}, To: state.State{Name: "PENDING"}, Capability: "cap.cancel"},
					{Action: "finish", From: state.State{Name: "DOING"}, To: state.State{Name: "DONE", Category: state.Done}, Capability: "cap.finish"},
				}))

				Ω(len(stateMachine.AvailableTransitions("DONE"))).Should(Equal(0))
				Ω(len(stateMachine.AvailableTransitions("UNKNOWN"))).Should(Equal(0))
			})
		})
	})

	Describe("FindTransition", func() {
		It("should find transition by from state and action", func() {
			t, found := stateMachine.FindTransition("PENDING", "begin")
			Expect(found).To(BeTrue())
			Expect(t.To.Name).To(Equal("DOING"))
			Expect(t.Capability).To(Equal("cap.begin"))
		})

		It("should not find transition from terminal state", func() {
			_, found := stateMachine.FindTransition("DONE", "begin")
			Expect(found).To(BeFalse())
		})

		It("should not find transition of undefined action", func() {
			_, found := stateMachine.FindTransition("PENDING", "finish")
			Expect(found).To(BeFalse())
		})
	})
})
