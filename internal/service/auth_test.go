package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/msomdec/postboard/internal/domain"
	"github.com/msomdec/postboard/internal/repository/sqlite"
	"github.com/msomdec/postboard/internal/service"
)

const testJWTSecret = "test-secret-key-for-unit-tests-0123456789"

func newTestDB(t *testing.T) *sqlite.DB {
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
	return db
}

func newTestAuthService(t *testing.T) (*service.AuthService, *sqlite.DB) {
	t.Helper()
	db := newTestDB(t)
	// Use cost 4 for fast tests.
	auth := service.NewAuthService(db.Users(), testJWTSecret, 4, time.Hour)
	return auth, db
}

func TestAuthService_Register_Success(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "new@example.com", "password123", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if user.ID == "" {
		t.Fatal("expected user ID to be set")
	}
	if user.Email != "new@example.com" {
		t.Fatalf("expected email new@example.com, got %s", user.Email)
	}
	if user.PasswordHash == "" || user.PasswordHash == "password123" {
		t.Fatal("expected password to be stored hashed")
	}
	if _, err := strconv.ParseInt(user.Name, 10, 64); err != nil {
		t.Fatalf("expected numeric generated name, got %q", user.Name)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "dup@example.com", "password123", "password123"); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := auth.Register(ctx, "dup@example.com", "password456", "password456")
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthService_Register_ConcurrentDuplicates(t *testing.T) {
	auth, db := newTestAuthService(t)
	ctx := context.Background()

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Go(func() {
			_, errs[i] = auth.Register(ctx, "race@example.com", "password123", "password123")
		})
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrDuplicateEmail):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one registration to succeed, got %d", succeeded)
	}
	if _, err := db.Users().GetByEmail(ctx, "race@example.com"); err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	auth, _ := newTestAuthService(t)

	_, err := auth.Register(context.Background(), "weak@example.com", "short", "short")
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != "usrPassword" {
		t.Fatalf("expected field usrPassword, got %q", ve.Field)
	}
}

func TestAuthService_Register_PasswordMismatch(t *testing.T) {
	auth, db := newTestAuthService(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "mismatch@example.com", "password123", "different456")
	if !errors.Is(err, domain.ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	if _, err := db.Users().GetByEmail(ctx, "mismatch@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected no user to be stored, got %v", err)
	}
}

func TestAuthService_Register_InvalidFields(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "password123"},
		{"malformed email", "not-an-email", "password123"},
		{"empty password", "a@b.com", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auth.Register(ctx, tc.email, tc.password, tc.password)
			if !errors.Is(err, domain.ErrValidationFailed) {
				t.Fatalf("expected ErrValidationFailed, got %v", err)
			}
		})
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	registered, err := auth.Register(ctx, "login@example.com", "password123", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, token, err := auth.Login(ctx, "login@example.com", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if user.ID != registered.ID {
		t.Fatalf("expected user %s, got %s", registered.ID, user.ID)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "wrongpw@example.com", "password123", "password123"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, _, err := auth.Login(ctx, "wrongpw@example.com", "wrongpassword")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	auth, _ := newTestAuthService(t)

	_, _, err := auth.Login(context.Background(), "nobody@example.com", "password123")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_ProviderOnlyUser(t *testing.T) {
	auth, db := newTestAuthService(t)
	ctx := context.Background()

	if _, err := db.Users().FindOrCreateByGoogleID(ctx, "g-123", "Gina"); err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	_, _, err := auth.Login(ctx, "", "")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Token_RoundTrip(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "jwt@example.com", "password123", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, token, err := auth.Login(ctx, "jwt@example.com", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	userID, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if userID != user.ID {
		t.Fatalf("expected user ID %s, got %s", user.ID, userID)
	}
}

func TestAuthService_Token_Invalid(t *testing.T) {
	auth, _ := newTestAuthService(t)

	if _, err := auth.ValidateToken("not-a-valid-jwt"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_Token_Tampered(t *testing.T) {
	auth, _ := newTestAuthService(t)

	token, err := auth.IssueSession(&domain.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	tampered := token[:len(token)-5] + "XXXXX"
	if _, err := auth.ValidateToken(tampered); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for tampered token, got %v", err)
	}
}

func TestAuthService_Token_WrongSecret(t *testing.T) {
	auth1, db := newTestAuthService(t)

	token, err := auth1.IssueSession(&domain.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	auth2 := service.NewAuthService(db.Users(), "a-completely-different-secret-value!", 4, time.Hour)
	if _, err := auth2.ValidateToken(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for wrong secret, got %v", err)
	}
}

func TestAuthService_Token_Expired(t *testing.T) {
	auth, _ := newTestAuthService(t)

	past := time.Now().Add(-2 * time.Hour)
	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		IssuedAt:  jwt.NewNumericDate(past),
		ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := auth.ValidateToken(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for expired token, got %v", err)
	}
}

func TestAuthService_Token_MissingExpiry(t *testing.T) {
	auth, _ := newTestAuthService(t)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user-1"}).
		SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := auth.ValidateToken(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized without exp, got %v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "change@example.com", "password123", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := auth.ChangePassword(ctx, user.ID, "wrong-password", "newpassword1", "newpassword1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := auth.ChangePassword(ctx, user.ID, "password123", "newpassword1", "newpassword2"); !errors.Is(err, domain.ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	if err := auth.ChangePassword(ctx, user.ID, "password123", "newpassword1", "newpassword1"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	if _, _, err := auth.Login(ctx, "change@example.com", "password123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password should no longer work, got %v", err)
	}
	if _, _, err := auth.Login(ctx, "change@example.com", "newpassword1"); err != nil {
		t.Fatalf("Login with new password: %v", err)
	}
}

func TestAuthService_ChangePassword_ProviderOnlyUser(t *testing.T) {
	auth, db := newTestAuthService(t)
	ctx := context.Background()

	user, err := db.Users().FindOrCreateByGoogleID(ctx, "g-456", "Gus")
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	err = auth.ChangePassword(ctx, user.ID, "anything", "newpassword1", "newpassword1")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatal("provider-only accounts must not be told their password is wrong")
	}
	if !strings.Contains(err.Error(), "signs in with Google") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
