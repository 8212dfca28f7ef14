// Package session persists the authenticated identity and token between
// runs. The presence of a loadable session is the only access gate for the
// notes screen.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/otpnotes/internal/client/models"
)

// Storage keys.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

var (
	// ErrAbsent means no usable session is stored: a key is missing, empty or
	// does not decode.
	ErrAbsent = errors.New("no session")

	ErrEmptyToken = errors.New("session token is empty")
)

// Store is durable session state with a single writer (the auth flow) and
// several readers.
type Store interface {
	Save(ctx context.Context, s models.Session) error
	Load(ctx context.Context) (*models.Session, error)
	// Clear removes both keys. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// encode returns the values for both keys. RawUser is written as received;
// a session built without it falls back to encoding User.
func encode(s models.Session) (token, user []byte, err error) {
	if s.Token == "" {
		return nil, nil, ErrEmptyToken
	}
	if len(s.RawUser) > 0 {
		if !json.Valid(s.RawUser) {
			return nil, nil, errors.New("encode user: not valid JSON")
		}
		return []byte(s.Token), slices.Clone(s.RawUser), nil
	}
	user, err = json.Marshal(s.User)
	if err != nil {
		return nil, nil, fmt.Errorf("encode user: %w", err)
	}
	return []byte(s.Token), user, nil
}

func decode(token, user []byte) (*models.Session, error) {
	if len(token) == 0 || len(user) == 0 {
		return nil, ErrAbsent
	}
	sess, err := models.NewSession(string(token), user)
	if err != nil {
		return nil, fmt.Errorf("%w: stored user: %v", ErrAbsent, err)
	}
	return &sess, nil
}
