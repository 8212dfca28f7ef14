// Package apitest provides an in-process fake of the notes backend for tests.
//
// Every endpoint has a default behavior good enough for a happy path, and
// any endpoint can be scripted to return a fixed reply. All requests are
// recorded so tests can assert call counts and ordering.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Route names accepted by Script and Count.
const (
	RouteSendOTP    = "otp/send"
	RouteVerifyOTP  = "otp/verify"
	RouteSignIn     = "auth/signin"
	RouteSignUp     = "auth/signup"
	RouteListNotes  = "notes/list"
	RouteCreateNote = "notes/create"
	RouteDeleteNote = "notes/delete"
)

// Reply is a scripted response. Raw, when set, is written verbatim instead
// of the JSON encoding of Body.
type Reply struct {
	Status int
	Body   any
	Raw    string
}

// Call is one recorded request.
type Call struct {
	Route  string
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   map[string]any
}

// Note is the backend's stored note shape.
type Note struct {
	ID        string `json:"_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	UserEmail string `json:"userEmail"`
}

type Backend struct {
	server *httptest.Server

	mu       sync.Mutex
	calls    []Call
	scripted map[string]Reply
	notes    []Note
}

// New starts a backend serving under /api and stops it when the test ends.
func New(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{scripted: make(map[string]Reply)}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/otp/send", b.handle(RouteSendOTP, b.sendOTP)).Methods(http.MethodPost)
	api.HandleFunc("/otp/verify", b.handle(RouteVerifyOTP, b.verifyOTP)).Methods(http.MethodPost)
	api.HandleFunc("/auth/signin", b.handle(RouteSignIn, b.signIn)).Methods(http.MethodPost)
	api.HandleFunc("/auth/signup", b.handle(RouteSignUp, b.signUp)).Methods(http.MethodPost)
	api.HandleFunc("/notes", b.handle(RouteListNotes, b.listNotes)).Methods(http.MethodGet)
	api.HandleFunc("/notes", b.handle(RouteCreateNote, b.createNote)).Methods(http.MethodPost)
	api.HandleFunc("/notes/{id}", b.handle(RouteDeleteNote, b.deleteNote)).Methods(http.MethodDelete)

	b.server = httptest.NewServer(r)
	t.Cleanup(b.server.Close)
	return b
}

// URL is the API base URL to hand to the client.
func (b *Backend) URL() string {
	return b.server.URL + "/api"
}

// Close stops the server early, e.g. to simulate an unreachable backend.
func (b *Backend) Close() {
	b.server.Close()
}

// Script makes route answer with reply until Unscript is called.
func (b *Backend) Script(route string, reply Reply) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scripted[route] = reply
}

func (b *Backend) Unscript(route string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.scripted, route)
}

// Seed stores notes as if they had been created earlier.
func (b *Backend) Seed(notes ...Note) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notes = append(b.notes, notes...)
}

// Notes returns a copy of the stored notes.
func (b *Backend) Notes() []Note {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Note(nil), b.notes...)
}

// Calls returns the recorded requests in arrival order.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// Routes returns the route names of the recorded requests in arrival order.
func (b *Backend) Routes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	routes := make([]string, len(b.calls))
	for i, c := range b.calls {
		routes[i] = c.Route
	}
	return routes
}

// Count returns how many requests hit route.
func (b *Backend) Count(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c.Route == route {
			n++
		}
	}
	return n
}

// Last returns the latest call to route and whether there was one.
func (b *Backend) Last(route string) (Call, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.calls) - 1; i >= 0; i-- {
		if b.calls[i].Route == route {
			return b.calls[i], true
		}
	}
	return Call{}, false
}

type handlerFunc func(w http.ResponseWriter, r *http.Request, body map[string]any)

func (b *Backend) handle(route string, next handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}

		b.mu.Lock()
		b.calls = append(b.calls, Call{
			Route:  route,
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		reply, scripted := b.scripted[route]
		b.mu.Unlock()

		if scripted {
			writeReply(w, reply)
			return
		}
		next(w, r, body)
	}
}

func writeReply(w http.ResponseWriter, reply Reply) {
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	if reply.Raw != "" {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply.Raw))
		return
	}
	writeJSON(w, status, reply.Body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func str(body map[string]any, key string) string {
	s, _ := body[key].(string)
	return s
}

func (b *Backend) sendOTP(w http.ResponseWriter, _ *http.Request, body map[string]any) {
	if str(body, "email") == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Email is required"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "OTP sent"})
}

func (b *Backend) verifyOTP(w http.ResponseWriter, _ *http.Request, body map[string]any) {
	if str(body, "otp") == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"verified": false, "message": "OTP is required"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"verified": true})
}

func (b *Backend) signIn(w http.ResponseWriter, _ *http.Request, body map[string]any) {
	email := str(body, "email")
	token, err := IssueToken(email, TokenTTL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  map[string]any{"name": "User", "email": email},
	})
}

func (b *Backend) signUp(w http.ResponseWriter, _ *http.Request, body map[string]any) {
	email := str(body, "email")
	token, err := IssueToken(email, TokenTTL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"token": token,
		"user":  map[string]any{"name": str(body, "name"), "email": email, "dob": str(body, "dob")},
	})
}

func (b *Backend) listNotes(w http.ResponseWriter, r *http.Request, _ map[string]any) {
	email := r.URL.Query().Get("email")

	b.mu.Lock()
	out := make([]Note, 0, len(b.notes))
	for _, n := range b.notes {
		if n.UserEmail == email {
			out = append(out, n)
		}
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) createNote(w http.ResponseWriter, _ *http.Request, body map[string]any) {
	n := Note{
		ID:        uuid.NewString(),
		Title:     str(body, "title"),
		Content:   str(body, "content"),
		UserEmail: str(body, "userEmail"),
	}
	if n.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Title is required"})
		return
	}

	b.mu.Lock()
	b.notes = append(b.notes, n)
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, n)
}

func (b *Backend) deleteNote(w http.ResponseWriter, r *http.Request, _ map[string]any) {
	id := mux.Vars(r)["id"]

	b.mu.Lock()
	found := false
	for i, n := range b.notes {
		if n.ID == id {
			b.notes = append(b.notes[:i], b.notes[i+1:]...)
			found = true
			break
		}
	}
	b.mu.Unlock()

	if !found {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Note not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Note deleted"})
}
