package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/msomdec/postboard/internal/domain"
)

// DefaultSessionTTL is how long a session token stays valid when no TTL is configured.
const DefaultSessionTTL = 24 * time.Hour

// AuthService handles local registration, login, password changes and
// session token operations.
type AuthService struct {
	users      domain.UserRepository
	validator  *Validator
	jwtSecret  []byte
	bcryptCost int
	sessionTTL time.Duration
	now        func() time.Time
}

// NewAuthService creates a new AuthService. A non-positive sessionTTL
// falls back to DefaultSessionTTL.
func NewAuthService(users domain.UserRepository, jwtSecret string, bcryptCost int, sessionTTL time.Duration) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &AuthService{
		users:      users,
		validator:  NewValidator(),
		jwtSecret:  []byte(jwtSecret),
		bcryptCost: bcryptCost,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// Register creates a local account. The user's name is generated from the
// current time; the email is the login key.
func (s *AuthService) Register(ctx context.Context, email, password, confirmPassword string) (*domain.User, error) {
	if err := s.validator.Struct(registerInput{Email: email, Password: password}); err != nil {
		return nil, err
	}
	if password != confirmPassword {
		return nil, domain.ErrPasswordMismatch
	}

	// The unique index still decides races; this lookup gives the common
	// case a clean answer before paying for a hash.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         generateName(s.now()),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and returns the user with a signed session token.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("get user: %w", err)
	}

	if !user.HasLocalCredentials() {
		return nil, "", domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.IssueSession(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ChangePassword replaces the password of a local account after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, newPassword, confirmPassword string) error {
	if err := s.validator.Struct(passwordInput{Current: current, Password: newPassword}); err != nil {
		return err
	}
	if newPassword != confirmPassword {
		return domain.ErrPasswordMismatch
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if !user.HasLocalCredentials() {
		return fmt.Errorf("%w: this account signs in with Google and has no password", domain.ErrInvalidInput)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// IssueSession signs a session token for user.
func (s *AuthService) IssueSession(user *domain.User) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// SessionTTL reports how long issued tokens remain valid.
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// ValidateToken parses and validates a session token string.
// Returns the user ID from the sub claim.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return "", domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		return "", domain.ErrUnauthorized
	}
	return claims.Subject, nil
}

// GetUserByID retrieves a user by their ID.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AuthService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", &domain.ValidationError{Field: "password", Message: "must be at most 72 bytes"}
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// generateName derives a local display name from the clock plus a random
// digit. Names are not guaranteed unique.
func generateName(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli()+rand.Int64N(10), 10)
}
