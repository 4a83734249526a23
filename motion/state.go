package motion

import "fmt"

// State is the phase of the controller's state machine.
type State uint8

const (
	Rest         State = iota // Stationary; Update is a no-op
	Accelerating              // Changing speed along the current heading
	Turning                   // Steering the velocity toward a target heading
	Cruising                  // Constant velocity
	Stopping                  // Decelerating to rest
)

var stateNames = [...]string{
	Rest:         "rest",
	Accelerating: "accelerating",
	Turning:      "turning",
	Cruising:     "cruising",
	Stopping:     "stopping",
}

// String returns the lower-case state name.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// ParseState converts a state name back to a State.
// The empty string parses as Rest.
func ParseState(name string) (State, error) {
	if name == "" {
		return Rest, nil
	}
	for i, n := range stateNames {
		if n == name {
			return State(i), nil
		}
	}
	return Rest, fmt.Errorf("unknown motion state %q", name)
}

// Moving reports whether position integrates in this state.
func (s State) Moving() bool {
	return s != Rest
}
