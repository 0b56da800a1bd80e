package dashboard

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("invalid state transition")

type State int

const (
	StateIdle State = iota
	StateLoadingForecasts
	StateLoadingMonths
	StateReady
	StateQuerying
	StateRendered
	StateErrored
)

var AllStates = []State{
	StateIdle,
	StateLoadingForecasts,
	StateLoadingMonths,
	StateReady,
	StateQuerying,
	StateRendered,
	StateErrored,
}

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoadingForecasts:
		return "loading_forecasts"
	case StateLoadingMonths:
		return "loading_months"
	case StateReady:
		return "ready"
	case StateQuerying:
		return "querying"
	case StateRendered:
		return "rendered"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	for _, st := range AllStates {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", string(b))
}

// transitions lists the states reachable from each state. Reloading forecasts or switching
// forecast is always possible once started so a stuck load can be abandoned.
var transitions = map[State][]State{
	StateIdle:             {StateLoadingForecasts},
	StateLoadingForecasts: {StateLoadingForecasts, StateLoadingMonths, StateReady, StateErrored},
	StateLoadingMonths:    {StateLoadingForecasts, StateLoadingMonths, StateReady, StateErrored},
	StateReady:            {StateLoadingForecasts, StateLoadingMonths, StateQuerying},
	StateQuerying:         {StateLoadingForecasts, StateLoadingMonths, StateQuerying, StateRendered, StateErrored},
	StateRendered:         {StateLoadingForecasts, StateLoadingMonths, StateQuerying},
	StateErrored:          {StateLoadingForecasts, StateLoadingMonths, StateQuerying},
}

// CanTransition reports whether to is reachable from s.
func (s State) CanTransition(to State) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func stateNames() []string {
	names := make([]string, 0, len(AllStates))
	for _, s := range AllStates {
		names = append(names, s.String())
	}
	return names
}
