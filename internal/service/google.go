package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	googleOAuth "golang.org/x/oauth2/google"

	"github.com/msomdec/postboard/internal/domain"
)

const defaultGoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleConfig holds the OAuth client registration. Endpoint and UserInfoURL
// default to Google's when left empty.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	Endpoint     oauth2.Endpoint
	UserInfoURL  string
}

// SessionIssuer signs session tokens for a user.
type SessionIssuer interface {
	IssueSession(user *domain.User) (string, error)
}

// GoogleService signs users in with their Google account. Only the profile
// scope is requested, so accounts are keyed by Google id, never by email.
type GoogleService struct {
	users       domain.UserRepository
	sessions    SessionIssuer
	oauth       *oauth2.Config
	userInfoURL string
}

// NewGoogleService creates a new GoogleService.
func NewGoogleService(users domain.UserRepository, sessions SessionIssuer, cfg GoogleConfig) *GoogleService {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" && endpoint.TokenURL == "" {
		endpoint = googleOAuth.Endpoint
	}
	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = defaultGoogleUserInfoURL
	}

	return &GoogleService{
		users:    users,
		sessions: sessions,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			Scopes:       []string{"profile"},
			RedirectURL:  cfg.CallbackURL,
		},
		userInfoURL: userInfoURL,
	}
}

// Enabled reports whether a client registration is configured.
func (s *GoogleService) Enabled() bool {
	return s.oauth.ClientID != "" && s.oauth.ClientSecret != ""
}

// AuthURL returns the consent page URL carrying state.
func (s *GoogleService) AuthURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

type googleProfile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Callback exchanges the authorization code, loads the profile, finds or
// creates the matching user and issues a session token for it.
func (s *GoogleService) Callback(ctx context.Context, code string) (*domain.User, string, error) {
	if code == "" {
		return nil, "", fmt.Errorf("%w: missing authorization code", domain.ErrInvalidInput)
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("google token exchange: %w", err)
	}

	profile, err := s.fetchProfile(ctx, token)
	if err != nil {
		return nil, "", fmt.Errorf("fetch google profile: %w", err)
	}

	user, err := s.users.FindOrCreateByGoogleID(ctx, profile.ID, profile.Name)
	if err != nil {
		return nil, "", fmt.Errorf("find or create google user: %w", err)
	}

	session, err := s.sessions.IssueSession(user)
	if err != nil {
		return nil, "", err
	}
	return user, session, nil
}

func (s *GoogleService) fetchProfile(ctx context.Context, token *oauth2.Token) (*googleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google user info returned status %d", resp.StatusCode)
	}

	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("%w: profile has no id", domain.ErrInvalidInput)
	}
	return &profile, nil
}
