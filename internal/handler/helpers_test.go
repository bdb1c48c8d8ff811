package handler_test

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/postboard/internal/handler"
	"github.com/msomdec/postboard/internal/repository/sqlite"
	"github.com/msomdec/postboard/internal/service"
)

const testJWTSecret = "test-secret-for-handler-tests-0123456789"

type testEnv struct {
	db    *sqlite.DB
	auth  *service.AuthService
	posts *service.PostService
	srv   *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	auth := service.NewAuthService(db.Users(), testJWTSecret, 4, time.Hour)
	google := service.NewGoogleService(db.Users(), auth, service.GoogleConfig{})
	posts := service.NewPostService(db.Posts())
	limiter := service.NewTokenBucket(10, 100)
	t.Cleanup(limiter.Stop)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, auth, google, posts, db, limiter, false)

	srv := httptest.NewServer(handler.LogRequests(handler.SecurityHeaders(mux)))
	t.Cleanup(srv.Close)

	return &testEnv{db: db, auth: auth, posts: posts, srv: srv}
}

// client returns an HTTP client with its own cookie jar that does not follow redirects.
func (e *testEnv) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postForm(t *testing.T, c *http.Client, rawURL string, form url.Values) *http.Response {
	t.Helper()
	resp, err := c.PostForm(rawURL, form)
	if err != nil {
		t.Fatalf("POST %s: %v", rawURL, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, c *http.Client, rawURL string) *http.Response {
	t.Helper()
	resp, err := c.Get(rawURL)
	if err != nil {
		t.Fatalf("GET %s: %v", rawURL, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func expectRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("expected redirect to %s, got %s", location, got)
	}
}

// signUpAndIn registers email and signs the client in.
func (e *testEnv) signUpAndIn(t *testing.T, c *http.Client, email string) {
	t.Helper()
	resp := postForm(t, c, e.srv.URL+"/register", url.Values{
		"usrEmail":           {email},
		"usrPassword":        {"password123"},
		"usrConfirmPassword": {"password123"},
	})
	expectRedirect(t, resp, "/success")

	resp = postForm(t, c, e.srv.URL+"/login", url.Values{
		"loginUsername": {email},
		"loginPassword": {"password123"},
	})
	expectRedirect(t, resp, "/profile")
}

// onlyPostID returns the id of the single post in the store.
func (e *testEnv) onlyPostID(t *testing.T) string {
	t.Helper()
	all, err := e.posts.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected exactly one post, got %d", len(all))
	}
	return all[0].ID
}

func hasCookie(c *http.Client, rawURL, name string) bool {
	u, _ := url.Parse(rawURL)
	for _, ck := range c.Jar.Cookies(u) {
		if ck.Name == name && ck.Value != "" {
			return true
		}
	}
	return false
}
