package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/hr-portal/internal/persistence"
)

type accountRepoStub struct {
	byID map[string]Account

	created     Account
	createdHash string
	createErr   error

	updated   Account
	updateErr error

	passwordID   string
	passwordHash string

	deletedID string
	deleteErr error

	listErr error
}

func newAccountRepoStub(accounts ...Account) *accountRepoStub {
	stub := &accountRepoStub{byID: map[string]Account{}}
	for _, account := range accounts {
		stub.byID[account.ID] = account
	}
	return stub
}

func (s *accountRepoStub) CreateAccount(ctx context.Context, account Account, passwordHash string) (Account, error) {
	if s.createErr != nil {
		return Account{}, s.createErr
	}
	s.created = account
	s.createdHash = passwordHash
	s.byID[account.ID] = account
	return account, nil
}

func (s *accountRepoStub) GetAccount(ctx context.Context, id string) (Account, error) {
	account, ok := s.byID[id]
	if !ok {
		return Account{}, persistence.ErrNotFound
	}
	return account, nil
}

func (s *accountRepoStub) GetAccountCredentialsByEmail(ctx context.Context, email string) (AccountCredentials, error) {
	for _, account := range s.byID {
		if account.Email == email {
			return AccountCredentials{Account: account}, nil
		}
	}
	return AccountCredentials{}, persistence.ErrNotFound
}

func (s *accountRepoStub) UpdateAccount(ctx context.Context, account Account) (Account, error) {
	if s.updateErr != nil {
		return Account{}, s.updateErr
	}
	if _, ok := s.byID[account.ID]; !ok {
		return Account{}, persistence.ErrNotFound
	}
	s.updated = account
	s.byID[account.ID] = account
	return account, nil
}

func (s *accountRepoStub) SetAccountPassword(ctx context.Context, id, passwordHash string) error {
	if _, ok := s.byID[id]; !ok {
		return persistence.ErrNotFound
	}
	s.passwordID = id
	s.passwordHash = passwordHash
	return nil
}

func (s *accountRepoStub) DeleteAccount(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.byID[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.byID, id)
	s.deletedID = id
	return nil
}

func (s *accountRepoStub) ListAccounts(ctx context.Context) ([]Account, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]Account, 0, len(s.byID))
	for _, account := range s.byID {
		out = append(out, account)
	}
	return out, nil
}

func testAccountService(repo *accountRepoStub, now time.Time) *AccountService {
	return NewAccountService(
		repo,
		func(password string) (string, error) { return "hashed:" + password, nil },
		sequentialIDs("acc"),
		func() time.Time { return now },
		6,
		nil,
	)
}

var adminPrincipal = Principal{AccountID: "acc-admin", Email: "admin@example.com", Role: RoleAdmin}

func TestAccountService_CreateAccount(t *testing.T) {
	now := time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)

	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := testAccountService(newAccountRepoStub(), now)

		_, err := svc.CreateAccount(context.Background(), CreateAccountParams{
			Principal: Principal{AccountID: "acc-2", Role: RoleUser},
			Input:     AccountInput{FirstName: "Jane", LastName: "Doe", Email: "jane@x.com", Role: RoleUser},
			Password:  "secret1",
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates fields and password length", func(t *testing.T) {
		svc := testAccountService(newAccountRepoStub(), now)

		_, err := svc.CreateAccount(context.Background(), CreateAccountParams{
			Principal: adminPrincipal,
			Input:     AccountInput{FirstName: " ", LastName: "", Email: "bad", Role: Role("manager")},
			Password:  "abc",
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"first_name", "last_name", "email", "role", "password"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("rejects duplicate emails", func(t *testing.T) {
		repo := newAccountRepoStub(Account{ID: "acc-1", Email: "jane@x.com"})
		svc := testAccountService(repo, now)

		_, err := svc.CreateAccount(context.Background(), CreateAccountParams{
			Principal: adminPrincipal,
			Input:     AccountInput{FirstName: "Jane", LastName: "Doe", Email: "jane@x.com", Role: RoleUser},
			Password:  "secret1",
		})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("persists role and verified from input", func(t *testing.T) {
		repo := newAccountRepoStub()
		svc := testAccountService(repo, now)

		account, err := svc.CreateAccount(context.Background(), CreateAccountParams{
			Principal: adminPrincipal,
			Input:     AccountInput{FirstName: "Jane", LastName: "Doe", Email: "Jane@X.com", Role: RoleAdmin, Verified: true},
			Password:  "secret1",
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if account.Email != "jane@x.com" {
			t.Fatalf("expected normalized email, got %q", account.Email)
		}
		if account.Role != RoleAdmin || !account.Verified {
			t.Fatalf("expected admin+verified from input, got %+v", account)
		}
		if repo.createdHash != "hashed:secret1" {
			t.Fatalf("expected hashed password, got %q", repo.createdHash)
		}
	})
}

func TestAccountService_UpdateAccount(t *testing.T) {
	now := time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)

	t.Run("propagates ErrNotFound for missing accounts", func(t *testing.T) {
		svc := testAccountService(newAccountRepoStub(), now)

		_, err := svc.UpdateAccount(context.Background(), UpdateAccountParams{
			Principal: adminPrincipal,
			AccountID: "missing",
			Input:     AccountInput{FirstName: "Jane", LastName: "Doe", Email: "jane@x.com", Role: RoleUser},
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("overwrites identity, role, and verified", func(t *testing.T) {
		repo := newAccountRepoStub(Account{
			ID: "acc-1", FirstName: "Jane", LastName: "Doe",
			Email: "jane@x.com", Role: RoleUser, Verified: false,
			CreatedAt: now.Add(-time.Hour),
		})
		svc := testAccountService(repo, now)

		account, err := svc.UpdateAccount(context.Background(), UpdateAccountParams{
			Principal: adminPrincipal,
			AccountID: "acc-1",
			Input:     AccountInput{FirstName: "Janet", LastName: "Doe", Email: "janet@x.com", Role: RoleAdmin, Verified: true},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if account.FirstName != "Janet" || account.Email != "janet@x.com" {
			t.Fatalf("unexpected account %+v", account)
		}
		if account.Role != RoleAdmin || !account.Verified {
			t.Fatalf("expected role and verified to change, got %+v", account)
		}
		if !account.UpdatedAt.Equal(now) {
			t.Fatalf("expected UpdatedAt %v, got %v", now, account.UpdatedAt)
		}
	})

	t.Run("surfaces store uniqueness conflicts", func(t *testing.T) {
		repo := newAccountRepoStub(Account{ID: "acc-1", Email: "jane@x.com"})
		repo.updateErr = persistence.ErrDuplicate
		svc := testAccountService(repo, now)

		_, err := svc.UpdateAccount(context.Background(), UpdateAccountParams{
			Principal: adminPrincipal,
			AccountID: "acc-1",
			Input:     AccountInput{FirstName: "Jane", LastName: "Doe", Email: "taken@x.com", Role: RoleUser},
		})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestAccountService_ResetPassword(t *testing.T) {
	now := time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)

	t.Run("enforces the minimum password length", func(t *testing.T) {
		repo := newAccountRepoStub(Account{ID: "acc-1"})
		svc := testAccountService(repo, now)

		err := svc.ResetPassword(context.Background(), ResetPasswordParams{
			Principal: adminPrincipal, AccountID: "acc-1", Password: "abcde",
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("stores the new hash", func(t *testing.T) {
		repo := newAccountRepoStub(Account{ID: "acc-1"})
		svc := testAccountService(repo, now)

		if err := svc.ResetPassword(context.Background(), ResetPasswordParams{
			Principal: adminPrincipal, AccountID: "acc-1", Password: "abcdef",
		}); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if repo.passwordID != "acc-1" || repo.passwordHash != "hashed:abcdef" {
			t.Fatalf("unexpected password write %q/%q", repo.passwordID, repo.passwordHash)
		}
	})
}

func TestAccountService_DeleteAccount(t *testing.T) {
	now := time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)

	t.Run("refuses self deletion", func(t *testing.T) {
		repo := newAccountRepoStub(Account{ID: adminPrincipal.AccountID})
		svc := testAccountService(repo, now)

		err := svc.DeleteAccount(context.Background(), adminPrincipal, adminPrincipal.AccountID)
		if !errors.Is(err, ErrSelfDeletion) {
			t.Fatalf("expected ErrSelfDeletion, got %v", err)
		}
		if repo.deletedID != "" {
			t.Fatalf("expected no deletion, got %q", repo.deletedID)
		}
	})

	t.Run("deletes other accounts", func(t *testing.T) {
		repo := newAccountRepoStub(Account{ID: "acc-1"})
		svc := testAccountService(repo, now)

		if err := svc.DeleteAccount(context.Background(), adminPrincipal, "acc-1"); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if repo.deletedID != "acc-1" {
			t.Fatalf("expected acc-1 deleted, got %q", repo.deletedID)
		}
	})
}

func TestAccountService_ListAccounts(t *testing.T) {
	now := time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)

	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := testAccountService(newAccountRepoStub(), now)

		_, err := svc.ListAccounts(context.Background(), Principal{AccountID: "acc-1", Role: RoleUser})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("orders accounts by email", func(t *testing.T) {
		repo := newAccountRepoStub(
			Account{ID: "acc-2", Email: "zoe@x.com"},
			Account{ID: "acc-1", Email: "amy@x.com"},
			Account{ID: "acc-3", Email: "Mia@x.com"},
		)
		svc := testAccountService(repo, now)

		accounts, err := svc.ListAccounts(context.Background(), adminPrincipal)
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		got := make([]string, len(accounts))
		for i, account := range accounts {
			got[i] = account.Email
		}
		want := []string{"amy@x.com", "Mia@x.com", "zoe@x.com"}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("expected order %v, got %v", want, got)
			}
		}
	})
}
