package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/audit"
	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/user"

	"github.com/gin-gonic/gin"
)

type fakeLimiter struct {
	allow  bool
	err    error
	resets int
}

func (f *fakeLimiter) Allow(ctx context.Context, key string) (bool, error) { return f.allow, f.err }
func (f *fakeLimiter) Reset(ctx context.Context, key string) error {
	f.resets++
	return nil
}

type testServer struct {
	r     *gin.Engine
	h     Handlers
	users *user.Service
	audit *audit.MemoryRepo
}

func newTestServer(t *testing.T, lim AttemptLimiter) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m, err := auth.NewManager(config.AuthConfig{JWTSecret: "test-secret"})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	users := user.NewService(user.NewMemoryRepo(), user.NewHasher(4))
	auditRepo := audit.NewMemoryRepo()

	h := Handlers{Auth: m, Users: users, Audit: audit.NewService(auditRepo), Limiter: lim}
	r := gin.New()
	h.Routes(r)
	return testServer{r: r, h: h, users: users, audit: auditRepo}
}

func (s testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

type sessionBody struct {
	User  user.User `json:"user"`
	Token string    `json:"token"`
}

func decodeSession(t *testing.T, w *httptest.ResponseRecorder) sessionBody {
	t.Helper()
	var out sessionBody
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v (%s)", err, w.Body.String())
	}
	if out.Token == "" || out.User.ID == "" {
		t.Fatalf("expected user and token, got %s", w.Body.String())
	}
	return out
}

func registerAna(t *testing.T, s testServer) sessionBody {
	t.Helper()
	w := s.do(t, http.MethodPost, "/v1/users/register", "", map[string]string{
		"name": "Ana", "email": "Ana@Example.com", "phone": "3000000000", "password": "secret1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	return decodeSession(t, w)
}

func countEvents(events []audit.Event, typ audit.EventType) int {
	n := 0
	for _, e := range events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func TestRegisterLoginProfile(t *testing.T) {
	s := newTestServer(t, nil)
	reg := registerAna(t, s)
	if reg.User.Email != "ana@example.com" {
		t.Fatalf("expected normalized email, got %q", reg.User.Email)
	}
	if bytes.Contains(s.do(t, http.MethodGet, "/v1/users/profile", reg.Token, nil).Body.Bytes(), []byte("password")) {
		t.Fatalf("profile must not expose password material")
	}

	w := s.do(t, http.MethodPost, "/v1/users/login", "", map[string]string{"email": "ana@example.com", "password": "secret1"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	login := decodeSession(t, w)

	w = s.do(t, http.MethodGet, "/v1/users/profile", login.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d", w.Code)
	}
	var id auth.Identity
	if err := json.Unmarshal(w.Body.Bytes(), &id); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if id.ID != reg.User.ID || id.Name != "Ana" || id.Phone != "3000000000" || id.IsAdmin {
		t.Fatalf("unexpected profile %+v", id)
	}

	events := s.audit.Events()
	if countEvents(events, audit.EventTypeRegister) != 1 || countEvents(events, audit.EventTypeLogin) != 1 {
		t.Fatalf("expected register and login audit events, got %+v", events)
	}
}

func TestProfile_RequiresToken(t *testing.T) {
	s := newTestServer(t, nil)
	if w := s.do(t, http.MethodGet, "/v1/users/profile", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/v1/users/profile", "not-a-jwt", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", w.Code)
	}
}

func TestRegister_RejectsInvalidAndDuplicate(t *testing.T) {
	s := newTestServer(t, nil)
	registerAna(t, s)

	w := s.do(t, http.MethodPost, "/v1/users/register", "", map[string]string{
		"name": "Ana 2", "email": "ana@example.com", "password": "secret1",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", w.Code)
	}

	w = s.do(t, http.MethodPost, "/v1/users/register", "", map[string]string{
		"name": "Bo", "email": "bo@example.com", "password": "123",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short password, got %d", w.Code)
	}

	w = s.do(t, http.MethodPost, "/v1/users/register", "", map[string]string{
		"name": "Bo", "email": "bo@example.com", "password": strings.Repeat("p", 80),
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for password over 72 bytes, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestLogin_WrongPasswordIsAudited(t *testing.T) {
	s := newTestServer(t, nil)
	registerAna(t, s)

	w := s.do(t, http.MethodPost, "/v1/users/login", "", map[string]string{"email": "ana@example.com", "password": "wrong-pw"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	w = s.do(t, http.MethodPost, "/v1/users/login", "", map[string]string{"email": "nobody@example.com", "password": "secret1"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown email, got %d", w.Code)
	}
	if n := countEvents(s.audit.Events(), audit.EventTypeLoginFailed); n != 2 {
		t.Fatalf("expected 2 login_failed events, got %d", n)
	}
}

func TestLogin_LimiterRejectsAndFailsOpen(t *testing.T) {
	lim := &fakeLimiter{allow: false}
	s := newTestServer(t, lim)
	registerAna(t, s)

	creds := map[string]string{"email": "ana@example.com", "password": "secret1"}
	if w := s.do(t, http.MethodPost, "/v1/users/login", "", creds); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}

	lim.err = errors.New("redis down")
	if w := s.do(t, http.MethodPost, "/v1/users/login", "", creds); w.Code != http.StatusOK {
		t.Fatalf("expected limiter failure to fail open, got %d", w.Code)
	}

	lim.allow, lim.err = true, nil
	if w := s.do(t, http.MethodPost, "/v1/users/login", "", creds); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if lim.resets != 2 {
		t.Fatalf("expected counter reset after each success, got %d", lim.resets)
	}
}

func TestAdminRoutes_PrivilegeIsTokenSnapshot(t *testing.T) {
	s := newTestServer(t, nil)
	ana := registerAna(t, s)

	if w := s.do(t, http.MethodGet, "/v1/admin/users", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/v1/admin/users", ana.Token, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for customer token, got %d", w.Code)
	}
	if n := countEvents(s.audit.Events(), audit.EventTypeAccessDenied); n != 1 {
		t.Fatalf("expected one access_denied event, got %d", n)
	}

	if _, err := s.users.SetAdmin(context.Background(), ana.User.ID, true); err != nil {
		t.Fatalf("set admin: %v", err)
	}

	// The old token still carries is_admin=false.
	if w := s.do(t, http.MethodGet, "/v1/admin/users", ana.Token, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected pre-grant token to stay non-admin, got %d", w.Code)
	}

	w := s.do(t, http.MethodPost, "/v1/users/login", "", map[string]string{"email": "ana@example.com", "password": "secret1"})
	fresh := decodeSession(t, w)
	if !fresh.User.IsAdmin {
		t.Fatalf("expected login to reflect the new flag")
	}

	w = s.do(t, http.MethodGet, "/v1/admin/users", fresh.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin token, got %d", w.Code)
	}
	var list struct {
		Users []user.User `json:"users"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil || len(list.Users) != 1 {
		t.Fatalf("unexpected list %s (%v)", w.Body.String(), err)
	}
}

func TestAdminSetAdmin(t *testing.T) {
	s := newTestServer(t, nil)
	ana := registerAna(t, s)
	if _, err := s.users.SetAdmin(context.Background(), ana.User.ID, true); err != nil {
		t.Fatalf("set admin: %v", err)
	}
	admin := decodeSession(t, s.do(t, http.MethodPost, "/v1/users/login", "", map[string]string{"email": "ana@example.com", "password": "secret1"}))

	bo := decodeSession(t, s.do(t, http.MethodPost, "/v1/users/register", "", map[string]string{
		"name": "Bo", "email": "bo@example.com", "password": "secret2",
	}))

	w := s.do(t, http.MethodPut, "/v1/admin/users/"+bo.User.ID+"/admin", admin.Token, map[string]bool{"is_admin": true})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var got user.User
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil || !got.IsAdmin {
		t.Fatalf("expected bo to be admin, got %s", w.Body.String())
	}

	if w := s.do(t, http.MethodPut, "/v1/admin/users/missing/admin", admin.Token, map[string]bool{"is_admin": true}); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if w := s.do(t, http.MethodPut, "/v1/admin/users/"+bo.User.ID+"/admin", admin.Token, map[string]string{}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without is_admin, got %d", w.Code)
	}
	if w := s.do(t, http.MethodPut, "/v1/admin/users/"+bo.User.ID+"/admin", bo.Token, map[string]bool{"is_admin": false}); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected bo's pre-grant token to be rejected, got %d", w.Code)
	}

	var change *audit.Event
	for _, e := range s.audit.Events() {
		if e.Type == audit.EventTypePrivilegeChange {
			e := e
			change = &e
		}
	}
	if change == nil || change.ActorUserID != ana.User.ID || change.TargetUserID != bo.User.ID {
		t.Fatalf("expected privilege_change event by ana for bo, got %+v", change)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)
	if w := s.do(t, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
