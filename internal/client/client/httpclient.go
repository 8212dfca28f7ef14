package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/otpnotes/internal/client/models"
	"github.com/dmitrijs2005/otpnotes/internal/common"
	"github.com/google/uuid"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClient talks JSON over HTTP to the notes backend.
type HTTPClient struct {
	doer    httpDoer
	baseURL *url.URL
	timeout time.Duration

	mu    sync.RWMutex
	token string
}

// NewHTTPClient binds the client to baseURL. A zero timeout leaves requests
// unbounded.
func NewHTTPClient(doer httpDoer, baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if doer == nil {
		doer = http.DefaultClient
	}
	return &HTTPClient{doer: doer, baseURL: u, timeout: timeout}, nil
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *HTTPClient) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type messageReply struct {
	Message string `json:"message,omitempty"`
}

func (c *HTTPClient) SendOTP(ctx context.Context, email string) (string, error) {
	var reply messageReply
	if err := c.do(ctx, http.MethodPost, "otp/send", nil, map[string]string{"email": email}, &reply); err != nil {
		return "", err
	}
	return reply.Message, nil
}

func (c *HTTPClient) VerifyOTP(ctx context.Context, email, otp string) (*VerifyResult, error) {
	var reply VerifyResult
	body := map[string]string{"email": email, "otp": otp}
	if err := c.do(ctx, http.MethodPost, "otp/verify", nil, body, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *HTTPClient) SignIn(ctx context.Context, email string) (*SessionResult, error) {
	var reply SessionResult
	if err := c.do(ctx, http.MethodPost, "auth/signin", nil, map[string]string{"email": email}, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

type signUpRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Dob   string `json:"dob"`
}

func (c *HTTPClient) SignUp(ctx context.Context, user models.Identity) (*SessionResult, error) {
	var reply SessionResult
	body := signUpRequest{Name: user.Name, Email: user.Email, Dob: user.DateOfBirth.String()}
	if err := c.do(ctx, http.MethodPost, "auth/signup", nil, body, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *HTTPClient) ListNotes(ctx context.Context, email string) ([]models.Note, error) {
	notes := make([]models.Note, 0)
	q := url.Values{"email": []string{email}}
	if err := c.do(ctx, http.MethodGet, "notes", q, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *HTTPClient) CreateNote(ctx context.Context, draft models.NoteDraft) (*models.Note, error) {
	var note models.Note
	if err := c.do(ctx, http.MethodPost, "notes", nil, draft, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *HTTPClient) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "notes/"+url.PathEscape(id), nil, nil, nil)
}

// do sends one request. With out == nil the reply is drained and its status
// ignored. Otherwise the body must be JSON: a non-2xx reply becomes
// *APIError, a 2xx reply is decoded into out.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u := c.baseURL.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	if token := c.bearer(); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s %s: %v", ErrUnavailable, method, path, err)
	}

	if out == nil {
		return nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var reply messageReply
		if err := json.Unmarshal(raw, &reply); err != nil {
			return fmt.Errorf("%w: %s %s: status %d", ErrBadResponse, method, path, resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: reply.Message}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrBadResponse, method, path, err)
	}
	return nil
}
