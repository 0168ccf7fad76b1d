package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// User is the account as the API returns it.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// StatusError is a non-2xx API response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned %d", e.Code)
	}
	return fmt.Sprintf("api returned %d: %s", e.Code, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusUnauthorized
}

// API is an HTTP client for the storefront API. All requests go through
// Transport, so the session header and 401 handling apply to every call.
type API struct {
	BaseURL    string
	HTTPClient *http.Client
	Store      Store
	Logger     *slog.Logger
}

// NewAPI builds a client that sends every request through t and keeps the
// session in t.Store.
func NewAPI(baseURL string, t *Transport, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	if t.Logger == nil {
		t.Logger = logger
	}
	return &API{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: t,
		},
		Store:  t.Store,
		Logger: logger,
	}
}

type sessionResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// Register creates an account and caches the returned session.
func (a *API) Register(ctx context.Context, req RegisterRequest) (Session, error) {
	var out sessionResponse
	if err := a.do(ctx, http.MethodPost, "/v1/users/register", req, &out); err != nil {
		return Session{}, err
	}
	return a.saveSession(out)
}

// Login exchanges credentials for a token and caches the session.
func (a *API) Login(ctx context.Context, email, password string) (Session, error) {
	var out sessionResponse
	body := map[string]string{"email": email, "password": password}
	if err := a.do(ctx, http.MethodPost, "/v1/users/login", body, &out); err != nil {
		return Session{}, err
	}
	return a.saveSession(out)
}

// Logout forgets the cached session. Tokens are stateless, so there is no
// server call; the token stays valid until it expires.
func (a *API) Logout() error {
	return a.Store.Clear()
}

func (a *API) Profile(ctx context.Context) (User, error) {
	var out User
	err := a.do(ctx, http.MethodGet, "/v1/users/profile", nil, &out)
	return out, err
}

func (a *API) AdminListUsers(ctx context.Context) ([]User, error) {
	var out struct {
		Users []User `json:"users"`
	}
	if err := a.do(ctx, http.MethodGet, "/v1/admin/users", nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (a *API) AdminSetAdmin(ctx context.Context, userID string, isAdmin bool) (User, error) {
	if userID == "" {
		return User{}, errors.New("user id is required")
	}
	var out User
	body := map[string]bool{"is_admin": isAdmin}
	err := a.do(ctx, http.MethodPut, "/v1/admin/users/"+userID+"/admin", body, &out)
	return out, err
}

func (a *API) saveSession(out sessionResponse) (Session, error) {
	if out.Token == "" {
		return Session{}, errors.New("api returned no token")
	}
	s := Session{Token: out.Token, User: out.User}
	if err := a.Store.Save(s); err != nil {
		return Session{}, err
	}
	return s, nil
}

// do performs an HTTP request and decodes a JSON response into out.
func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	url := a.BaseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	a.Logger.Debug("HTTP request", "method", method, "url", url)

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	a.Logger.Debug("HTTP response", "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(respBody, &e)
		return &StatusError{Code: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response (status %d): %w", resp.StatusCode, err)
	}
	return nil
}
