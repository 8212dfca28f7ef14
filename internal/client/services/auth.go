// Package services holds the client's application logic: the OTP auth
// flow and the notes screen. Both talk to the backend through a
// client.Client and share state through a session.Store.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/otpnotes/internal/client/client"
	"github.com/dmitrijs2005/otpnotes/internal/client/models"
	"github.com/dmitrijs2005/otpnotes/internal/client/session"
	"github.com/dmitrijs2005/otpnotes/internal/logging"
)

// OTPLength is the number of characters in a one-time code.
const OTPLength = 6

// AuthFlow sequences OTP request, OTP verification and session issuance.
//
// Each step is a blocking network call. Overlapping calls are rejected with
// ErrStepInProgress rather than queued. A failed step leaves the flow in the
// state it had before that step; nothing about the failure is persisted.
type AuthFlow struct {
	client client.Client
	store  session.Store
	log    logging.Logger

	busy atomic.Bool

	mu    sync.Mutex
	state State
	email string
}

func NewAuthFlow(c client.Client, store session.Store, log logging.Logger) *AuthFlow {
	return &AuthFlow{client: c, store: store, log: log.With("component", "auth")}
}

func (f *AuthFlow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// PendingEmail is the address the current code was sent to, or "".
func (f *AuthFlow) PendingEmail() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

// fire applies ev under the lock.
func (f *AuthFlow) fire(ctx context.Context, ev event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fireLocked(ctx, ev)
}

func (f *AuthFlow) fireLocked(ctx context.Context, ev event) error {
	to, err := next(f.state, ev)
	if err != nil {
		return err
	}
	f.log.Debug(ctx, "auth transition", "from", f.state.String(), "event", ev.String(), "to", to.String())
	f.state = to
	return nil
}

func (f *AuthFlow) acquire() bool {
	return f.busy.CompareAndSwap(false, true)
}

func (f *AuthFlow) release() {
	f.busy.Store(false)
}

// RequestOTP asks the backend to email a code to email. Calling it again
// supersedes the previous code. On failure the state is unchanged.
func (f *AuthFlow) RequestOTP(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return &FlowError{Step: StepRequestOTP, Kind: KindValidation, Message: "Please enter a valid email address", Err: err}
	}

	if !f.acquire() {
		return ErrStepInProgress
	}
	defer f.release()

	if _, err := next(f.State(), evOTPSent); err != nil {
		return err
	}

	if _, err := f.client.SendOTP(ctx, email); err != nil {
		fe := classify(StepRequestOTP, err, "Failed to send OTP", "Error sending OTP")
		f.log.Warn(ctx, "otp request failed", "email", email, "kind", fe.Kind.String(), "error", err)
		return fe
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fireLocked(ctx, evOTPSent); err != nil {
		return err
	}
	f.email = email
	return nil
}

// verifiedOTP proves that the backend accepted a code for email during the
// current call. Only verify creates one.
type verifiedOTP struct {
	email string
}

// VerifyAndAuthenticate checks otp and, only if the backend accepts it,
// asks for a session in the given mode. profile is required for sign-up and
// ignored for sign-in. On success the session is saved, the client starts
// sending its token and the flow is Authenticated.
func (f *AuthFlow) VerifyAndAuthenticate(ctx context.Context, email, otp string, mode models.AuthMode, profile *models.Profile) (*models.Session, error) {
	email = strings.TrimSpace(email)
	otp = strings.TrimSpace(otp)

	if err := validateEmail(email); err != nil {
		return nil, &FlowError{Step: StepVerifyOTP, Kind: KindValidation, Message: "Please enter a valid email address", Err: err}
	}
	if len([]rune(otp)) != OTPLength {
		return nil, &FlowError{Step: StepVerifyOTP, Kind: KindValidation, Message: fmt.Sprintf("Please enter the %d-character code", OTPLength), Err: ErrInvalidOTP}
	}
	switch mode {
	case models.ModeSignIn:
	case models.ModeSignUp:
		if profile == nil {
			return nil, &FlowError{Step: StepVerifyOTP, Kind: KindValidation, Message: "Name and date of birth are required", Err: ErrProfileRequired}
		}
		if err := profile.Validate(); err != nil {
			return nil, &FlowError{Step: StepVerifyOTP, Kind: KindValidation, Message: "Name and date of birth are required", Err: fmt.Errorf("%w: %w", ErrProfileRequired, err)}
		}
	default:
		return nil, &FlowError{Step: StepVerifyOTP, Kind: KindValidation, Message: "Choose sign in or sign up", Err: fmt.Errorf("%w: %q", ErrUnknownMode, mode)}
	}

	if !f.acquire() {
		return nil, ErrStepInProgress
	}
	defer f.release()

	if err := f.startVerify(ctx, email); err != nil {
		return nil, err
	}

	proof, err := f.verify(ctx, email, otp, mode)
	if err != nil {
		return nil, f.fail(ctx, err)
	}

	sess, err := f.issueSession(ctx, proof, mode, profile)
	if err != nil {
		return nil, f.fail(ctx, err)
	}

	if err := f.store.Save(ctx, *sess); err != nil {
		return nil, f.fail(ctx, &FlowError{Step: StepSession, Kind: KindStorage, Message: "Could not save the session on this device", Err: err})
	}
	f.client.SetToken(sess.Token)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fireLocked(ctx, evSessionIssued); err != nil {
		return nil, err
	}
	f.email = ""
	f.log.Info(ctx, "authenticated", "email", sess.User.Email, "mode", string(mode))
	return sess, nil
}

func (f *AuthFlow) startVerify(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := next(f.state, evVerifyStarted); err != nil {
		return err
	}
	if email != f.email {
		return &FlowError{Step: StepVerifyOTP, Kind: KindValidation, Message: "Use the email the code was sent to", Err: ErrEmailMismatch}
	}
	return f.fireLocked(ctx, evVerifyStarted)
}

// fail returns the flow to OtpRequested and passes err through.
func (f *AuthFlow) fail(ctx context.Context, err error) error {
	var fe *FlowError
	if errors.As(err, &fe) {
		f.log.Warn(ctx, "auth step failed", "step", string(fe.Step), "kind", fe.Kind.String(), "error", fe.Err)
	}
	if ferr := f.fire(ctx, evStepFailed); ferr != nil {
		return errors.Join(err, ferr)
	}
	return err
}

func (f *AuthFlow) verify(ctx context.Context, email, otp string, mode models.AuthMode) (*verifiedOTP, error) {
	res, err := f.client.VerifyOTP(ctx, email, otp)
	if err != nil {
		return nil, classify(StepVerifyOTP, err, "Invalid OTP", transportMessage(mode))
	}
	if !res.Verified {
		msg := res.Message
		if msg == "" {
			msg = "Invalid OTP"
		}
		return nil, &FlowError{Step: StepVerifyOTP, Kind: KindBackend, Message: msg}
	}
	return &verifiedOTP{email: email}, nil
}

// issueSession calls the mode's session endpoint for the verified email.
func (f *AuthFlow) issueSession(ctx context.Context, proof *verifiedOTP, mode models.AuthMode, profile *models.Profile) (*models.Session, error) {
	if proof == nil {
		return nil, fmt.Errorf("%w: session requested without a verified otp", ErrInvalidTransition)
	}

	var (
		res      *client.SessionResult
		err      error
		fallback string
	)
	switch mode {
	case models.ModeSignUp:
		fallback = "Signup failed"
		res, err = f.client.SignUp(ctx, models.Identity{
			Name:        strings.TrimSpace(profile.Name),
			Email:       proof.email,
			DateOfBirth: profile.DateOfBirth,
		})
	default:
		fallback = "Login failed"
		res, err = f.client.SignIn(ctx, proof.email)
	}
	if err != nil {
		return nil, classify(StepSession, err, fallback, transportMessage(mode))
	}
	if res.Token == "" {
		return nil, &FlowError{Step: StepSession, Kind: KindTransport, Message: transportMessage(mode),
			Err: fmt.Errorf("%w: reply carries no token", client.ErrBadResponse)}
	}
	sess, err := models.NewSession(res.Token, res.User)
	if err != nil {
		return nil, &FlowError{Step: StepSession, Kind: KindTransport, Message: transportMessage(mode),
			Err: fmt.Errorf("%w: %w", client.ErrBadResponse, err)}
	}
	return &sess, nil
}

// Reset abandons the flow and returns to Idle. It is used both to cancel a
// pending code and on sign-out.
func (f *AuthFlow) Reset(ctx context.Context) error {
	if !f.acquire() {
		return ErrStepInProgress
	}
	defer f.release()

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fireLocked(ctx, evReset); err != nil {
		return err
	}
	f.email = ""
	return nil
}

// SignOut clears the stored session and the client token, then resets the
// flow.
func (f *AuthFlow) SignOut(ctx context.Context) error {
	if err := f.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	f.client.SetToken("")
	return f.Reset(ctx)
}

func validateEmail(email string) error {
	if email == "" {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return ErrInvalidEmail
	}
	return nil
}

// classify maps a client error to a FlowError: backend replies keep their
// message or fall back, everything else is transport.
func classify(step Step, err error, backendFallback, transportMsg string) *FlowError {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = backendFallback
		}
		return &FlowError{Step: step, Kind: KindBackend, Message: msg, Err: err}
	}
	return &FlowError{Step: step, Kind: KindTransport, Message: transportMsg, Err: err}
}

func transportMessage(mode models.AuthMode) string {
	if mode == models.ModeSignUp {
		return "Server error. Try again later."
	}
	return "Something went wrong"
}
