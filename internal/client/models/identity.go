package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrNameRequired        = errors.New("name is required")
	ErrDateOfBirthRequired = errors.New("date of birth is required")
	ErrUserMissing         = errors.New("user is missing")
)

// AuthMode selects which session-issuing endpoint finishes an OTP flow.
type AuthMode string

const (
	ModeSignIn AuthMode = "signin"
	ModeSignUp AuthMode = "signup"
)

// Identity is the authenticated user as returned by the backend.
type Identity struct {
	ID          string `json:"_id,omitempty"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	DateOfBirth Date   `json:"dob,omitzero"`
}

// UnmarshalJSON reads the known fields of a user object and ignores the
// rest. A known field of an unexpected type is left zero.
func (i *Identity) UnmarshalJSON(b []byte) error {
	if isNull(b) {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return fmt.Errorf("user must be a JSON object: %w", err)
	}

	out := Identity{
		ID:    stringField(fields["_id"]),
		Name:  stringField(fields["name"]),
		Email: stringField(fields["email"]),
	}
	if raw, ok := fields["dob"]; ok {
		var d Date
		if err := d.UnmarshalJSON(raw); err == nil {
			out.DateOfBirth = d
		}
	}
	*i = out
	return nil
}

func stringField(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func isNull(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) == 0 || bytes.Equal(b, []byte("null"))
}

// Profile is the extra data collected by the sign-up form before an OTP is
// requested.
type Profile struct {
	Name        string
	DateOfBirth Date
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if p.DateOfBirth.IsZero() {
		return ErrDateOfBirthRequired
	}
	return nil
}

// Session is the token/identity pair issued after a verified OTP.
//
// RawUser is the user object exactly as the backend sent it and is what gets
// persisted. User is decoded from it for display.
type Session struct {
	Token   string          `json:"token"`
	User    Identity        `json:"-"`
	RawUser json.RawMessage `json:"user"`
}

// NewSession pairs token with the backend's user object. raw must be a JSON
// object; it is kept byte for byte.
func NewSession(token string, raw json.RawMessage) (Session, error) {
	if isNull(raw) {
		return Session{}, ErrUserMissing
	}
	var id Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: id, RawUser: slices.Clone(raw)}, nil
}
