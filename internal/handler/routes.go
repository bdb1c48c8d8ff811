package handler

import (
	"net/http"

	"github.com/msomdec/postboard/internal/service"
	"github.com/msomdec/postboard/internal/view"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(
	mux *http.ServeMux,
	auth *service.AuthService,
	google *service.GoogleService,
	posts *service.PostService,
	store Pinger,
	limiter *service.TokenBucket,
	cookieSecure bool,
) {
	authHandler := NewAuthHandler(auth, cookieSecure)
	oauthHandler := NewOAuthHandler(google, auth, cookieSecure)
	postHandler := NewPostHandler(posts)

	optional := func(h http.HandlerFunc) http.Handler { return OptionalAuth(auth, h) }
	required := func(h http.HandlerFunc) http.Handler { return RequireAuth(auth, h) }
	limited := func(h http.HandlerFunc) http.Handler { return RateLimit(limiter, h) }

	mux.HandleFunc("GET /healthz", HandleHealthz)
	mux.HandleFunc("GET /readyz", HandleReadyz(store))
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(view.StaticFS())))

	// Public pages.
	mux.Handle("GET /{$}", optional(HandleHome))
	mux.Handle("GET /register", optional(authHandler.HandleRegisterPage))
	mux.Handle("GET /contact", optional(HandleContact))
	mux.Handle("GET /success", optional(HandleSuccess))
	mux.Handle("GET /error", optional(HandleErrorPage))
	mux.Handle("GET /servErr", optional(HandleServerError))
	mux.Handle("GET /read/{id}", optional(postHandler.HandleRead))

	// Credentials.
	mux.Handle("POST /register", limited(authHandler.HandleRegister))
	mux.Handle("POST /login", limited(authHandler.HandleLogin))
	mux.HandleFunc("POST /logout", authHandler.HandleLogout)
	mux.HandleFunc("GET /auth/google", oauthHandler.HandleGoogleLogin)
	mux.HandleFunc("GET /auth/google/profile", oauthHandler.HandleGoogleCallback)
	mux.Handle("GET /changePassword/{id}", required(authHandler.HandleChangePasswordPage))
	mux.Handle("POST /changePassword/{id}", required(authHandler.HandleChangePassword))

	// Posts.
	mux.Handle("GET /profile", required(postHandler.HandleProfile))
	mux.Handle("GET /feed", required(postHandler.HandleFeed))
	mux.Handle("POST /submit-post", required(postHandler.HandleSubmit))
	mux.Handle("POST /delete/{id}", required(postHandler.HandleDelete))
	mux.Handle("DELETE /delete/{id}", required(postHandler.HandleDelete))
	mux.Handle("POST /comment/{id}", required(postHandler.HandleComment))

	mux.Handle("/", optional(HandleNotFound))
}
