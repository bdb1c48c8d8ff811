package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/msomdec/postboard/internal/domain"
	"github.com/msomdec/postboard/internal/service"
)

// fakeGoogle serves the token and userinfo endpoints the OAuth flow talks to.
func fakeGoogle(t *testing.T, profile map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"access_token": "access-123", "token_type": "Bearer", "expires_in": 3600})
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-123" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(profile)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestGoogleService(t *testing.T, profile map[string]string) (*service.GoogleService, *service.AuthService) {
	t.Helper()
	srv := fakeGoogle(t, profile)
	db := newTestDB(t)
	auth := service.NewAuthService(db.Users(), testJWTSecret, 4, time.Hour)
	google := service.NewGoogleService(db.Users(), auth, service.GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		CallbackURL:  "http://localhost/auth/google/profile",
		Endpoint: oauth2.Endpoint{
			AuthURL:   srv.URL + "/auth",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		UserInfoURL: srv.URL + "/userinfo",
	})
	return google, auth
}

func TestGoogleService_AuthURL_RequestsProfileScopeOnly(t *testing.T) {
	google, _ := newTestGoogleService(t, nil)

	u, err := url.Parse(google.AuthURL("state-xyz"))
	if err != nil {
		t.Fatalf("parse auth url: %v", err)
	}
	q := u.Query()
	if q.Get("scope") != "profile" {
		t.Fatalf("expected scope profile, got %q", q.Get("scope"))
	}
	if q.Get("state") != "state-xyz" {
		t.Fatalf("expected state to round-trip, got %q", q.Get("state"))
	}
	if !google.Enabled() {
		t.Fatal("expected service to be enabled with client credentials")
	}
}

func TestGoogleService_Callback_FindOrCreate(t *testing.T) {
	google, auth := newTestGoogleService(t, map[string]string{"id": "g-42", "name": "Grace"})
	ctx := context.Background()

	user, token, err := google.Callback(ctx, "good-code")
	if err != nil {
		t.Fatalf("Callback: %v", err)
	}
	if user.GoogleID != "g-42" || user.DisplayName != "Grace" || user.Name != "" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if got := domain.ResolveAuthorName(user); got != "g-42" {
		t.Fatalf("expected author key g-42, got %q", got)
	}
	if user.Email != "" || user.PasswordHash != "" {
		t.Fatal("provider users must not carry local credentials")
	}

	sub, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if sub != user.ID {
		t.Fatalf("expected session for %s, got %s", user.ID, sub)
	}

	again, _, err := google.Callback(ctx, "good-code")
	if err != nil {
		t.Fatalf("second Callback: %v", err)
	}
	if again.ID != user.ID {
		t.Fatalf("expected the same user on repeat sign-in, got %s and %s", user.ID, again.ID)
	}
}

func TestGoogleService_Callback_BadCode(t *testing.T) {
	google, _ := newTestGoogleService(t, map[string]string{"id": "g-42", "name": "Grace"})

	if _, _, err := google.Callback(context.Background(), "bad-code"); err == nil {
		t.Fatal("expected exchange failure")
	}
	if _, _, err := google.Callback(context.Background(), ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing code, got %v", err)
	}
}

func TestGoogleService_Callback_ProfileWithoutID(t *testing.T) {
	google, _ := newTestGoogleService(t, map[string]string{"name": "Nobody"})

	if _, _, err := google.Callback(context.Background(), "good-code"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
