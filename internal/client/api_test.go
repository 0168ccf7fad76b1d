package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAPI_LoginCachesSessionAndProfileUsesIt(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/users/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("login must be sent without a token")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user":  map[string]any{"id": "u1", "name": "Ana", "email": "ana@example.com"},
			"token": "abc123",
		})
	})
	mux.HandleFunc("/v1/users/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer abc123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid token"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "u1", "name": "Ana"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := NewMemoryStore()
	api := NewAPI(srv.URL+"/", &Transport{Store: store}, nil)

	s, err := api.Login(context.Background(), "ana@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if s.Token != "abc123" || s.User.ID != "u1" {
		t.Fatalf("unexpected session %+v", s)
	}

	u, err := api.Profile(context.Background())
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if u.Name != "Ana" {
		t.Fatalf("unexpected profile %+v", u)
	}

	if err := api.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	_, err = api.Profile(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("expected 401 after logout, got %v", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Message != "invalid token" {
		t.Fatalf("expected error message from body, got %v", err)
	}
}

func TestAPI_AdminSetAdminRequiresID(t *testing.T) {
	api := NewAPI("http://127.0.0.1:0", &Transport{Store: NewMemoryStore()}, nil)
	if _, err := api.AdminSetAdmin(context.Background(), "", true); err == nil {
		t.Fatalf("expected error for empty id")
	}
}
