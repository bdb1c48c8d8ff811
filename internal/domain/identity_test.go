package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/msomdec/postboard/internal/domain"
)

func TestResolveAuthorName(t *testing.T) {
	tests := []struct {
		name string
		user *domain.User
		want string
	}{
		{"local name", &domain.User{Name: "1760400000123", GoogleID: ""}, "1760400000123"},
		{"name wins over provider id", &domain.User{Name: "Ada", GoogleID: "g-1"}, "Ada"},
		{"falls back to provider id", &domain.User{GoogleID: "1098765"}, "1098765"},
		{"display name is not an author key", &domain.User{DisplayName: "Ada Smith", GoogleID: "g-111"}, "g-111"},
		{"nil user", nil, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := domain.ResolveAuthorName(tc.user); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestUserIdentity_Variant(t *testing.T) {
	local := (&domain.User{Name: "Ada"}).Identity()
	if _, ok := local.(domain.LocalIdentity); !ok {
		t.Fatalf("expected LocalIdentity, got %T", local)
	}

	external := (&domain.User{GoogleID: "g-42"}).Identity()
	ext, ok := external.(domain.ExternalIdentity)
	if !ok {
		t.Fatalf("expected ExternalIdentity, got %T", external)
	}
	if ext.ProviderID != "g-42" {
		t.Fatalf("expected provider id g-42, got %q", ext.ProviderID)
	}
}

func TestHasLocalCredentials(t *testing.T) {
	if (&domain.User{GoogleID: "g"}).HasLocalCredentials() {
		t.Fatal("provider-only user should not have local credentials")
	}
	if !(&domain.User{Email: "a@x.com", PasswordHash: "h"}).HasLocalCredentials() {
		t.Fatal("expected local credentials")
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2026, time.October, 14, 9, 30, 0, 0, time.UTC)
	if got := domain.FormatDate(ts); got != "October 14, 2026" {
		t.Fatalf("expected October 14, 2026, got %q", got)
	}
	if got := domain.FormatDate(time.Time{}); got != "" {
		t.Fatalf("expected empty string for zero time, got %q", got)
	}
}

func TestValidationError_IsValidationFailed(t *testing.T) {
	var err error = &domain.ValidationError{Field: "title", Message: "too short"}
	if !errors.Is(err, domain.ErrValidationFailed) {
		t.Fatal("expected ValidationError to match ErrValidationFailed")
	}
	if err.Error() != "title: too short" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
