package verifier

import "fmt"

// State is a step of a single verification run.
type State string

const (
	StateStart             State = "START"
	StateCheckingExistence State = "CHECKING_EXISTENCE"
	StateAllPresent        State = "ALL_PRESENT"
	StateMissingFiles      State = "MISSING_FILES"
	StateLoading           State = "LOADING"
	StateAllLoaded         State = "ALL_LOADED"
	StateLoadFailed        State = "LOAD_FAILED"
	StatePass              State = "PASS"
	StateFail              State = "FAIL"
)

// IsTerminal reports whether the state ends a run.
func IsTerminal(s State) bool {
	return s == StatePass || s == StateFail
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case StateStart:
		return to == StateCheckingExistence
	case StateCheckingExistence:
		return to == StateAllPresent || to == StateMissingFiles
	case StateAllPresent:
		return to == StateLoading
	case StateLoading:
		return to == StateAllLoaded || to == StateLoadFailed
	case StateAllLoaded:
		return to == StatePass
	case StateMissingFiles, StateLoadFailed:
		return to == StateFail
	default:
		return false
	}
}

// machine tracks the current state and every state visited.
type machine struct {
	trail []State
}

func newMachine() *machine {
	return &machine{trail: []State{StateStart}}
}

func (m *machine) current() State {
	return m.trail[len(m.trail)-1]
}

func (m *machine) transition(to State) error {
	from := m.current()
	if !isAllowedTransition(from, to) {
		return fmt.Errorf("disallowed state transition: %s -> %s", from, to)
	}
	m.trail = append(m.trail, to)
	return nil
}
