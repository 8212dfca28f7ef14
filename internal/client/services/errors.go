package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidEmail      = errors.New("email is empty or malformed")
	ErrInvalidOTP        = errors.New("otp must be 6 characters")
	ErrProfileRequired   = errors.New("sign-up needs a name and a date of birth")
	ErrUnknownMode       = errors.New("unknown auth mode")
	ErrEmailMismatch     = errors.New("email differs from the one the otp was sent to")
	ErrInvalidTransition = errors.New("invalid auth flow transition")
	ErrStepInProgress    = errors.New("another auth step is in progress")

	ErrNotAuthenticated = errors.New("not authenticated")
	ErrTitleRequired    = errors.New("note title is required")
)

// Step names the auth flow operation that failed.
type Step string

const (
	StepRequestOTP Step = "request otp"
	StepVerifyOTP  Step = "verify otp"
	StepSession    Step = "issue session"
)

// Kind classifies a flow failure.
type Kind int

const (
	// KindValidation failures are detected before any network call.
	KindValidation Kind = iota
	// KindBackend failures are non-2xx replies or verified:false.
	KindBackend
	// KindTransport failures never reached the backend or got an unreadable reply.
	KindTransport
	// KindStorage failures happened while persisting the session locally.
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindBackend:
		return "backend"
	case KindTransport:
		return "transport"
	case KindStorage:
		return "storage"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// FlowError is a failed auth step. Message is the text to show the user.
type FlowError struct {
	Step    Step
	Kind    Kind
	Message string
	Err     error
}

func (e *FlowError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Step, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Step, e.Message, e.Err)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// AlertText returns what the user should be told about err.
func AlertText(err error) string {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Message
	}
	switch {
	case errors.Is(err, ErrStepInProgress):
		return "Please wait, still working on the previous step"
	case errors.Is(err, ErrInvalidTransition):
		return "That action is not available right now"
	case errors.Is(err, ErrTitleRequired):
		return "Title is required"
	}
	return err.Error()
}
