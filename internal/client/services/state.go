package services

import "fmt"

// State is the position of an AuthFlow.
type State int

const (
	StateIdle State = iota
	StateOtpRequested
	StateVerifying
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOtpRequested:
		return "otp-requested"
	case StateVerifying:
		return "verifying"
	case StateAuthenticated:
		return "authenticated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type event int

const (
	evOTPSent event = iota
	evVerifyStarted
	evStepFailed
	evSessionIssued
	evReset
)

func (e event) String() string {
	return [...]string{"otp-sent", "verify-started", "step-failed", "session-issued", "reset"}[e]
}

// transitions lists every legal move. Authenticated is reachable only from
// Verifying, and Verifying only from OtpRequested.
var transitions = map[State]map[event]State{
	StateIdle: {
		evOTPSent: StateOtpRequested,
		evReset:   StateIdle,
	},
	StateOtpRequested: {
		evOTPSent:       StateOtpRequested,
		evVerifyStarted: StateVerifying,
		evReset:         StateIdle,
	},
	StateVerifying: {
		evStepFailed:    StateOtpRequested,
		evSessionIssued: StateAuthenticated,
	},
	StateAuthenticated: {
		evReset: StateIdle,
	},
}

func next(from State, ev event) (State, error) {
	to, ok := transitions[from][ev]
	if !ok {
		return from, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, from, ev)
	}
	return to, nil
}
