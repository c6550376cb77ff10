package machine

import "fmt"

type State string

const (
	StateIdle             State = "idle"
	StateValidating       State = "validating"
	StateResolvingProgram State = "resolving_program"
	StatePouring          State = "pouring"
	StateWashing          State = "washing"
	StateReleasing        State = "releasing"
	StateSpinning         State = "spinning"
	StateDone             State = "done"
)

var validTransitions = map[State][]State{
	StateIdle:             {StateValidating},
	StateValidating:       {StateResolvingProgram, StateDone},
	StateResolvingProgram: {StatePouring},
	StatePouring:          {StateWashing, StateDone},
	StateWashing:          {StateReleasing, StateDone},
	StateReleasing:        {StateSpinning, StateDone},
	StateSpinning:         {StateDone},
	StateDone:             {},
}

// ValidateTransition reports whether a cycle may move from one state to another.
func ValidateTransition(from, to State) error {
	allowed, exists := validTransitions[from]
	if !exists {
		return fmt.Errorf("invalid current state: %s", from)
	}

	for _, validTo := range allowed {
		if validTo == to {
			return nil
		}
	}

	return fmt.Errorf("invalid state transition: %s -> %s", from, to)
}

// Transition is one recorded state change.
type Transition struct {
	From State `json:"from"`
	To   State `json:"to"`
}
