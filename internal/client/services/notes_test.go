package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/otpnotes/internal/client/apitest"
	"github.com/dmitrijs2005/otpnotes/internal/client/client"
	"github.com/dmitrijs2005/otpnotes/internal/client/models"
	"github.com/dmitrijs2005/otpnotes/internal/client/session"
	"github.com/dmitrijs2005/otpnotes/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedIn(t *testing.T, h *harness, email string) {
	t.Helper()
	require.NoError(t, h.store.Save(context.Background(), models.Session{
		Token: "tok",
		User:  models.Identity{Name: "A", Email: email},
	}))
}

func TestMount_WithoutSessionRedirects(t *testing.T) {
	h := newHarness(t)

	err := h.notes.Mount(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Empty(t, h.backend.Calls())
	assert.Empty(t, h.notes.User().Email)
}

func TestMount_CorruptSessionRedirects(t *testing.T) {
	h := newHarness(t)
	h.store.Put(session.KeyToken, []byte("tok"))
	h.store.Put(session.KeyUser, []byte("{broken"))

	assert.ErrorIs(t, h.notes.Mount(context.Background()), ErrNotAuthenticated)
	assert.Empty(t, h.backend.Calls())
}

func TestMount_FetchesNotesOfSessionUser(t *testing.T) {
	h := newHarness(t)
	signedIn(t, h, "a@b.com")
	h.backend.Seed(
		apitest.Note{ID: "1", Title: "mine", UserEmail: "a@b.com"},
		apitest.Note{ID: "2", Title: "theirs", UserEmail: "x@y.com"},
	)

	require.NoError(t, h.notes.Mount(context.Background()))

	assert.Equal(t, []models.Note{{ID: "1", Title: "mine", OwnerEmail: "a@b.com"}}, h.notes.Notes())
	assert.Equal(t, "a@b.com", h.notes.User().Email)
	assert.Equal(t, "tok", h.notes.Token())

	call, ok := h.backend.Last(apitest.RouteListNotes)
	require.True(t, ok)
	assert.Equal(t, "a@b.com", call.Query.Get("email"))
	assert.Equal(t, "Bearer tok", call.Header.Get("Authorization"))
}

func TestNotes_FetchThenCreateScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	signedIn(t, h, "a@b.com")
	h.backend.Script(apitest.RouteListNotes, apitest.Reply{Status: http.StatusOK, Body: []map[string]any{
		{"_id": "1", "title": "T", "content": "C"},
	}})
	h.backend.Script(apitest.RouteCreateNote, apitest.Reply{Status: http.StatusCreated, Body: map[string]any{
		"_id": "2", "title": "N", "content": "",
	}})

	require.NoError(t, h.notes.Mount(ctx))
	require.Len(t, h.notes.Notes(), 1)

	created, err := h.notes.Create(ctx, "N", "")
	require.NoError(t, err)
	assert.Equal(t, &models.Note{ID: "2", Title: "N"}, created)

	notes := h.notes.Notes()
	require.Len(t, notes, 2)
	assert.Equal(t, "1", notes[0].ID)
	assert.Equal(t, "2", notes[1].ID)

	call, _ := h.backend.Last(apitest.RouteCreateNote)
	assert.Equal(t, map[string]any{"title": "N", "content": "", "userEmail": "a@b.com"}, call.Body)
}

func TestMount_FetchFailureLeavesEmptyList(t *testing.T) {
	for name, reply := range map[string]apitest.Reply{
		"server error": {Status: http.StatusInternalServerError, Body: map[string]any{"message": "db down"}},
		"not json":     {Status: http.StatusOK, Raw: "<html>"},
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			signedIn(t, h, "a@b.com")
			h.backend.Script(apitest.RouteListNotes, reply)

			require.NoError(t, h.notes.Mount(context.Background()))
			assert.Empty(t, h.notes.Notes())
			assert.Equal(t, "a@b.com", h.notes.User().Email, "screen still mounts")
			assert.Equal(t, 1, h.backend.Count(apitest.RouteListNotes), "no retry")
		})
	}
}

func TestCreate_BlankTitleMakesNoCall(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	signedIn(t, h, "a@b.com")
	h.backend.Seed(apitest.Note{ID: "1", Title: "T", UserEmail: "a@b.com"})
	require.NoError(t, h.notes.Mount(ctx))
	before := h.notes.Notes()
	calls := len(h.backend.Calls())

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := h.notes.Create(ctx, title, "content")
		assert.ErrorIs(t, err, ErrTitleRequired)
	}

	assert.Len(t, h.backend.Calls(), calls)
	assert.Equal(t, before, h.notes.Notes())
}

func TestCreate_FailureDoesNotAppend(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	signedIn(t, h, "a@b.com")
	require.NoError(t, h.notes.Mount(ctx))

	h.backend.Script(apitest.RouteCreateNote, apitest.Reply{Status: http.StatusBadRequest, Body: map[string]any{"message": "Title too long"}})
	_, err := h.notes.Create(ctx, "N", "")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Title too long", apiErr.Message)
	assert.Empty(t, h.notes.Notes())

	h.backend.Close()
	_, err = h.notes.Create(ctx, "N", "")
	assert.ErrorIs(t, err, client.ErrUnavailable)
	assert.Empty(t, h.notes.Notes())
}

func TestCreateAndDelete_BeforeMount(t *testing.T) {
	h := newHarness(t)

	_, err := h.notes.Create(context.Background(), "N", "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.ErrorIs(t, h.notes.Delete(context.Background(), "1"), ErrNotAuthenticated)
	assert.Empty(t, h.backend.Calls())
}

func TestDelete_RemovesExactlyThatEntry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	signedIn(t, h, "a@b.com")
	h.backend.Seed(
		apitest.Note{ID: "1", Title: "one", UserEmail: "a@b.com"},
		apitest.Note{ID: "2", Title: "two", UserEmail: "a@b.com"},
		apitest.Note{ID: "3", Title: "three", UserEmail: "a@b.com"},
	)
	require.NoError(t, h.notes.Mount(ctx))

	require.NoError(t, h.notes.Delete(ctx, "2"))

	var ids []string
	for _, n := range h.notes.Notes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"1", "3"}, ids)

	call, _ := h.backend.Last(apitest.RouteDeleteNote)
	assert.Equal(t, "/api/notes/2", call.Path)
}

func TestDelete_IgnoresReplyStatus(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	signedIn(t, h, "a@b.com")
	h.backend.Seed(apitest.Note{ID: "1", Title: "one", UserEmail: "a@b.com"})
	require.NoError(t, h.notes.Mount(ctx))

	h.backend.Script(apitest.RouteDeleteNote, apitest.Reply{Status: http.StatusInternalServerError, Raw: "boom"})
	require.NoError(t, h.notes.Delete(ctx, "1"))
	assert.Empty(t, h.notes.Notes())
}

func TestDelete_UnknownIDIsHarmless(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	signedIn(t, h, "a@b.com")
	h.backend.Seed(apitest.Note{ID: "1", Title: "one", UserEmail: "a@b.com"})
	require.NoError(t, h.notes.Mount(ctx))

	require.NoError(t, h.notes.Delete(ctx, "nope"))
	assert.Len(t, h.notes.Notes(), 1)
}

func TestDelete_TransportFailureKeepsEntry(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), models.Session{Token: "tok", User: models.Identity{Email: "a@b.com"}}))
	var deleted []string
	fc := &fakeClient{
		ListFn: func(context.Context, string) ([]models.Note, error) {
			return []models.Note{{ID: "1"}, {ID: "2"}}, nil
		},
		DeleteFn: func(_ context.Context, id string) error {
			deleted = append(deleted, id)
			return client.ErrUnavailable
		},
	}
	screen := NewNotesScreen(fc, store, logging.Discard())
	ctx := context.Background()
	require.NoError(t, screen.Mount(ctx))

	err := screen.Delete(ctx, "1")
	assert.ErrorIs(t, err, client.ErrUnavailable)
	assert.Equal(t, []string{"1"}, deleted)
	assert.Len(t, screen.Notes(), 2)
	assert.Equal(t, "tok", fc.Token)
}

func TestNotes_ReturnsCopy(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	signedIn(t, h, "a@b.com")
	h.backend.Seed(apitest.Note{ID: "1", Title: "one", UserEmail: "a@b.com"})
	require.NoError(t, h.notes.Mount(ctx))

	got := h.notes.Notes()
	got[0].Title = "changed"
	assert.Equal(t, "one", h.notes.Notes()[0].Title)
}

func TestUnmount(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	signedIn(t, h, "a@b.com")
	h.backend.Seed(apitest.Note{ID: "1", Title: "one", UserEmail: "a@b.com"})
	require.NoError(t, h.notes.Mount(ctx))

	h.notes.Unmount()
	assert.Empty(t, h.notes.Notes())
	assert.Empty(t, h.notes.Token())
	_, err := h.notes.Create(ctx, "N", "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
