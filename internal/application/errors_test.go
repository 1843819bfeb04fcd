package application

import (
	"errors"
	"fmt"
	"testing"

	"github.com/example/hr-portal/internal/persistence"
)

func TestValidationError(t *testing.T) {
	t.Run("reports recorded field errors", func(t *testing.T) {
		vErr := &ValidationError{}
		if vErr.HasErrors() {
			t.Fatal("expected no errors on a fresh value")
		}

		vErr.add("email", "email is required")
		if !vErr.HasErrors() {
			t.Fatal("expected HasErrors after add")
		}
		if vErr.FieldErrors["email"] != "email is required" {
			t.Fatalf("unexpected field errors %v", vErr.FieldErrors)
		}
	})

	t.Run("is matchable through errors.As", func(t *testing.T) {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		wrapped := fmt.Errorf("create department: %w", vErr)

		var target *ValidationError
		if !errors.As(wrapped, &target) {
			t.Fatal("expected errors.As to unwrap ValidationError")
		}
	})
}

func TestErrorKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrUnauthorized, "unauthorized"},
		{ErrNotFound, "not_found"},
		{ErrAlreadyExists, "already_exists"},
		{ErrInvalidCredentials, "invalid_credentials"},
		{ErrAccountNotVerified, "account_not_verified"},
		{ErrSessionExpired, "session_expired"},
		{ErrSessionRevoked, "session_revoked"},
		{ErrSelfDeletion, "self_deletion"},
		{ErrNoPendingVerification, "no_pending_verification"},
		{&ValidationError{FieldErrors: map[string]string{"email": "x"}}, "validation"},
		{errors.New("boom"), "unexpected"},
	}

	for _, tc := range cases {
		if got := ErrorKind(tc.err); got != tc.want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestMapRepoError(t *testing.T) {
	if got := mapRepoError(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	if got := mapRepoError(persistence.ErrNotFound); !errors.Is(got, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", got)
	}
	if got := mapRepoError(persistence.ErrDuplicate); !errors.Is(got, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", got)
	}
	opaque := errors.New("disk on fire")
	if got := mapRepoError(opaque); !errors.Is(got, opaque) {
		t.Fatalf("expected passthrough, got %v", got)
	}
}
