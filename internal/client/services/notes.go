package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/otpnotes/internal/client/client"
	"github.com/dmitrijs2005/otpnotes/internal/client/models"
	"github.com/dmitrijs2005/otpnotes/internal/client/session"
	"github.com/dmitrijs2005/otpnotes/internal/logging"
)

// NotesScreen is the signed-in dashboard. It keeps a local copy of the
// user's notes that is fetched once on Mount and afterwards changed only by
// confirmed Create and Delete calls.
type NotesScreen struct {
	client client.Client
	store  session.Store
	log    logging.Logger

	mu      sync.RWMutex
	session *models.Session
	notes   []models.Note
}

func NewNotesScreen(c client.Client, store session.Store, log logging.Logger) *NotesScreen {
	return &NotesScreen{client: c, store: store, log: log.With("component", "notes")}
}

// Mount gates on a stored session and loads the notes of its user.
// ErrNotAuthenticated means the caller should switch to sign-in. A failed
// fetch is only logged; the screen still mounts with an empty list.
func (s *NotesScreen) Mount(ctx context.Context) error {
	sess, err := s.store.Load(ctx)
	if errors.Is(err, session.ErrAbsent) {
		return ErrNotAuthenticated
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	s.client.SetToken(sess.Token)
	notes, err := s.client.ListNotes(ctx, sess.User.Email)
	if err != nil {
		s.log.Error(ctx, "error fetching notes", "email", sess.User.Email, "error", err)
		notes = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = sess
	s.notes = notes
	return nil
}

// User is the signed-in identity; zero before Mount.
func (s *NotesScreen) User() models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return models.Identity{}
	}
	return s.session.User
}

func (s *NotesScreen) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.Token
}

// Notes returns a copy of the cached list in server order.
func (s *NotesScreen) Notes() []models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.notes)
}

func (s *NotesScreen) owner() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return "", ErrNotAuthenticated
	}
	return s.session.User.Email, nil
}

// Create posts a note and appends the record the server returns. A blank
// title is rejected without any network call.
func (s *NotesScreen) Create(ctx context.Context, title, content string) (*models.Note, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrTitleRequired
	}
	email, err := s.owner()
	if err != nil {
		return nil, err
	}

	note, err := s.client.CreateNote(ctx, models.NoteDraft{Title: title, Content: content, OwnerEmail: email})
	if err != nil {
		s.log.Error(ctx, "error adding note", "error", err)
		return nil, fmt.Errorf("create note: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, *note)
	return note, nil
}

// Delete asks the server to remove id and then drops it locally. The reply
// status is not checked, so only a transport failure keeps the entry.
// Failures are logged for diagnostics.
func (s *NotesScreen) Delete(ctx context.Context, id string) error {
	if _, err := s.owner(); err != nil {
		return err
	}

	if err := s.client.DeleteNote(ctx, id); err != nil {
		s.log.Error(ctx, "error deleting note", "id", id, "error", err)
		return fmt.Errorf("delete note %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = slices.DeleteFunc(s.notes, func(n models.Note) bool { return n.ID == id })
	return nil
}

// Unmount forgets the session and the cached notes.
func (s *NotesScreen) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	s.notes = nil
}
