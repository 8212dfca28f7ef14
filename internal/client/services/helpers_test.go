package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/otpnotes/internal/client/apitest"
	"github.com/dmitrijs2005/otpnotes/internal/client/client"
	"github.com/dmitrijs2005/otpnotes/internal/client/models"
	"github.com/dmitrijs2005/otpnotes/internal/client/session"
	"github.com/dmitrijs2005/otpnotes/internal/logging"
	"github.com/stretchr/testify/require"
)

type harness struct {
	backend *apitest.Backend
	client  *client.HTTPClient
	store   *session.MemoryStore
	flow    *AuthFlow
	notes   *NotesScreen
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	b := apitest.New(t)
	c, err := client.NewHTTPClient(nil, b.URL(), 0)
	require.NoError(t, err)
	store := session.NewMemoryStore()
	return &harness{
		backend: b,
		client:  c,
		store:   store,
		flow:    NewAuthFlow(c, store, logging.Discard()),
		notes:   NewNotesScreen(c, store, logging.Discard()),
	}
}

func requireFlowError(t *testing.T, err error, kind Kind, message string) *FlowError {
	t.Helper()
	var fe *FlowError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, kind, fe.Kind, "kind")
	require.Equal(t, message, fe.Message, "message")
	return fe
}

// fakeClient is a hand-rolled client.Client. Unset funcs fail the call.
type fakeClient struct {
	SendOTPFn   func(ctx context.Context, email string) (string, error)
	VerifyOTPFn func(ctx context.Context, email, otp string) (*client.VerifyResult, error)
	SignInFn    func(ctx context.Context, email string) (*client.SessionResult, error)
	SignUpFn    func(ctx context.Context, user models.Identity) (*client.SessionResult, error)
	ListFn      func(ctx context.Context, email string) ([]models.Note, error)
	CreateFn    func(ctx context.Context, draft models.NoteDraft) (*models.Note, error)
	DeleteFn    func(ctx context.Context, id string) error

	Token string
}

var errNotScripted = errors.New("not scripted")

func userJSON(email string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"email":%q}`, email))
}

func (f *fakeClient) SendOTP(ctx context.Context, email string) (string, error) {
	if f.SendOTPFn == nil {
		return "", errNotScripted
	}
	return f.SendOTPFn(ctx, email)
}

func (f *fakeClient) VerifyOTP(ctx context.Context, email, otp string) (*client.VerifyResult, error) {
	if f.VerifyOTPFn == nil {
		return nil, errNotScripted
	}
	return f.VerifyOTPFn(ctx, email, otp)
}

func (f *fakeClient) SignIn(ctx context.Context, email string) (*client.SessionResult, error) {
	if f.SignInFn == nil {
		return nil, errNotScripted
	}
	return f.SignInFn(ctx, email)
}

func (f *fakeClient) SignUp(ctx context.Context, user models.Identity) (*client.SessionResult, error) {
	if f.SignUpFn == nil {
		return nil, errNotScripted
	}
	return f.SignUpFn(ctx, user)
}

func (f *fakeClient) ListNotes(ctx context.Context, email string) ([]models.Note, error) {
	if f.ListFn == nil {
		return nil, errNotScripted
	}
	return f.ListFn(ctx, email)
}

func (f *fakeClient) CreateNote(ctx context.Context, draft models.NoteDraft) (*models.Note, error) {
	if f.CreateFn == nil {
		return nil, errNotScripted
	}
	return f.CreateFn(ctx, draft)
}

func (f *fakeClient) DeleteNote(ctx context.Context, id string) error {
	if f.DeleteFn == nil {
		return errNotScripted
	}
	return f.DeleteFn(ctx, id)
}

func (f *fakeClient) SetToken(token string) { f.Token = token }

// failingStore fails every write.
type failingStore struct {
	session.Store
	err error
}

func (s failingStore) Save(context.Context, models.Session) error { return s.err }
func (s failingStore) Clear(context.Context) error                { return s.err }
