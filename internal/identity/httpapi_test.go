package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newProviderServer(t *testing.T) (*httptest.Server, *HTTPProvider) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/tokens:verify", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		var body struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Token != "good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "token invalid"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"uid": "u1", "email": "a@x.com"})
	})
	mux.HandleFunc("GET /v1/accounts/u1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"uid": "u1", "email": "a@x.com"})
	})
	mux.HandleFunc("GET /v1/accounts/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("POST /v1/accounts", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if body.Email == "taken@x.com" {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"message": "email exists"})
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"uid": "u2", "email": body.Email})
	})
	mux.HandleFunc("POST /v1/accounts/u1:revokeTokens", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv, NewHTTPProvider(srv.URL, "test-key")
}

func TestHTTPProvider_Verify(t *testing.T) {
	_, p := newProviderServer(t)
	ctx := context.Background()

	profile, err := p.Verify(ctx, "good-token")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if profile.UID != "u1" || profile.Email != "a@x.com" {
		t.Errorf("unexpected profile: %+v", profile)
	}
}

func TestHTTPProvider_Verify_InvalidToken(t *testing.T) {
	_, p := newProviderServer(t)

	if _, err := p.Verify(context.Background(), "bad-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestHTTPProvider_Verify_EmptyToken(t *testing.T) {
	// Must fail closed before any network call.
	p := NewHTTPProvider("http://127.0.0.1:1", "k")

	if _, err := p.Verify(context.Background(), ""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestHTTPProvider_Profile(t *testing.T) {
	_, p := newProviderServer(t)
	ctx := context.Background()

	profile, err := p.Profile(ctx, "u1")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile.Email != "a@x.com" {
		t.Errorf("unexpected email: %s", profile.Email)
	}

	if _, err := p.Profile(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestHTTPProvider_CreateUser(t *testing.T) {
	_, p := newProviderServer(t)
	ctx := context.Background()

	profile, err := p.CreateUser(ctx, "b@x.com", "pw123456")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if profile.UID != "u2" || profile.Email != "b@x.com" {
		t.Errorf("unexpected profile: %+v", profile)
	}

	if _, err := p.CreateUser(ctx, "taken@x.com", "pw123456"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestHTTPProvider_RevokeTokens(t *testing.T) {
	_, p := newProviderServer(t)

	if err := p.RevokeTokens(context.Background(), "u1"); err != nil {
		t.Fatalf("RevokeTokens: %v", err)
	}
}
