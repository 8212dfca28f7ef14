package client

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/otpnotes/internal/client/models"
)

// VerifyResult is the decoded /otp/verify reply.
type VerifyResult struct {
	Verified bool   `json:"verified"`
	Message  string `json:"message,omitempty"`
}

// SessionResult is the decoded /auth/signin or /auth/signup reply. User is
// left undecoded so it can be stored exactly as sent.
type SessionResult struct {
	Token   string          `json:"token"`
	User    json.RawMessage `json:"user"`
	Message string          `json:"message,omitempty"`
}

// Client is the REST contract of the notes backend.
//
// Non-2xx replies come back as *APIError carrying the backend message.
// Transport failures wrap ErrUnavailable and undecodable bodies wrap
// ErrBadResponse.
type Client interface {
	SendOTP(ctx context.Context, email string) (string, error)
	VerifyOTP(ctx context.Context, email, otp string) (*VerifyResult, error)
	SignIn(ctx context.Context, email string) (*SessionResult, error)
	SignUp(ctx context.Context, user models.Identity) (*SessionResult, error)

	ListNotes(ctx context.Context, email string) ([]models.Note, error)
	CreateNote(ctx context.Context, draft models.NoteDraft) (*models.Note, error)
	// DeleteNote reports transport failures only; the reply status is not checked.
	DeleteNote(ctx context.Context, id string) error

	// SetToken sets the bearer token sent with subsequent requests; "" clears it.
	SetToken(token string)
}
