package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/example/hr-portal/internal/persistence"
)

// AccountRepository captures the persistence operations needed by the account service.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account Account, passwordHash string) (Account, error)
	GetAccount(ctx context.Context, id string) (Account, error)
	GetAccountCredentialsByEmail(ctx context.Context, email string) (AccountCredentials, error)
	UpdateAccount(ctx context.Context, account Account) (Account, error)
	SetAccountPassword(ctx context.Context, id, passwordHash string) error
	DeleteAccount(ctx context.Context, id string) error
	ListAccounts(ctx context.Context) ([]Account, error)
}

// AccountService orchestrates the administrator-facing account operations.
type AccountService struct {
	accounts       AccountRepository
	hashPassword   PasswordHasher
	idGenerator    func() string
	now            func() time.Time
	minPasswordLen int
	logger         *slog.Logger
}

// NewAccountService wires dependencies for the account service.
func NewAccountService(accounts AccountRepository, hash PasswordHasher, idGenerator func() string, now func() time.Time, minPasswordLen int, logger *slog.Logger) *AccountService {
	if hash == nil {
		hash = func(password string) (string, error) {
			return HashPassword(password, DefaultArgon2idParams)
		}
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if minPasswordLen <= 0 {
		minPasswordLen = 6
	}
	return &AccountService{
		accounts:       accounts,
		hashPassword:   hash,
		idGenerator:    idGenerator,
		now:            now,
		minPasswordLen: minPasswordLen,
		logger:         defaultLogger(logger),
	}
}

func (s *AccountService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AccountService", operation, attrs...)
}

// ListAccounts returns all accounts for administrators, ordered by email.
func (s *AccountService) ListAccounts(ctx context.Context, principal Principal) ([]Account, error) {
	if s == nil {
		return nil, fmt.Errorf("AccountService is nil")
	}
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if s.accounts == nil {
		return nil, nil
	}

	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}

	out := make([]Account, len(accounts))
	copy(out, accounts)

	sort.Slice(out, func(i, j int) bool {
		if strings.EqualFold(out[i].Email, out[j].Email) {
			return out[i].ID < out[j].ID
		}
		return strings.ToLower(out[i].Email) < strings.ToLower(out[j].Email)
	})

	return out, nil
}

// CreateAccount validates input and persists a new account for administrators.
// The same password and email uniqueness rules as self-service registration
// apply; role and verified are taken from the input.
func (s *AccountService) CreateAccount(ctx context.Context, params CreateAccountParams) (account Account, err error) {
	if s == nil {
		err = fmt.Errorf("AccountService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateAccount", "principal_id", params.Principal.AccountID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create account", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("account_id", account.ID).InfoContext(ctx, "account created")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}
	if s.accounts == nil {
		err = fmt.Errorf("account repository not configured")
		return
	}

	normalized := normalizeAccountInput(params.Input)
	vErr := validateAccountInput(normalized)
	if len(params.Password) < s.minPasswordLen {
		vErr.add("password", fmt.Sprintf("password must be at least %d characters", s.minPasswordLen))
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if _, lookupErr := s.accounts.GetAccountCredentialsByEmail(ctx, normalized.Email); lookupErr == nil {
		err = ErrAlreadyExists
		return
	} else if !errors.Is(mapRepoError(lookupErr), ErrNotFound) {
		err = mapRepoError(lookupErr)
		return
	}

	hash, err := s.hashPassword(params.Password)
	if err != nil {
		return
	}

	now := s.now()
	account = Account{
		ID:        s.idGenerator(),
		FirstName: normalized.FirstName,
		LastName:  normalized.LastName,
		Email:     normalized.Email,
		Role:      normalized.Role,
		Verified:  normalized.Verified,
		CreatedAt: now,
		UpdatedAt: now,
	}

	account, err = s.accounts.CreateAccount(ctx, account, hash)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	return
}

// UpdateAccount overwrites name, email, role, and verified on an existing
// account. The password is not editable here. Email uniqueness is still
// enforced by the store and surfaces as ErrAlreadyExists.
func (s *AccountService) UpdateAccount(ctx context.Context, params UpdateAccountParams) (account Account, err error) {
	if s == nil {
		err = fmt.Errorf("AccountService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateAccount",
		"principal_id", params.Principal.AccountID,
		"account_id", params.AccountID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update account", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "account updated")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}
	if s.accounts == nil {
		err = fmt.Errorf("account repository not configured")
		return
	}

	existing, err := s.accounts.GetAccount(ctx, params.AccountID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	normalized := normalizeAccountInput(params.Input)
	vErr := validateAccountInput(normalized)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.FirstName = normalized.FirstName
	updated.LastName = normalized.LastName
	updated.Email = normalized.Email
	updated.Role = normalized.Role
	updated.Verified = normalized.Verified
	updated.UpdatedAt = s.now()

	account, err = s.accounts.UpdateAccount(ctx, updated)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	return
}

// ResetPassword replaces an account password for administrators.
func (s *AccountService) ResetPassword(ctx context.Context, params ResetPasswordParams) error {
	if s == nil {
		return fmt.Errorf("AccountService is nil")
	}
	if !params.Principal.IsAdmin() {
		return ErrUnauthorized
	}
	if s.accounts == nil {
		return fmt.Errorf("account repository not configured")
	}

	logger := s.loggerWith(ctx, "ResetPassword",
		"principal_id", params.Principal.AccountID,
		"account_id", params.AccountID,
	)

	if len(params.Password) < s.minPasswordLen {
		vErr := &ValidationError{}
		vErr.add("password", fmt.Sprintf("password must be at least %d characters", s.minPasswordLen))
		logger.ErrorContext(ctx, "failed to reset password", "error", vErr, "error_kind", ErrorKind(vErr))
		return vErr
	}

	if _, err := s.accounts.GetAccount(ctx, params.AccountID); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to reset password", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	hash, err := s.hashPassword(params.Password)
	if err != nil {
		return err
	}

	if err := s.accounts.SetAccountPassword(ctx, params.AccountID, hash); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to reset password", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "password reset")
	return nil
}

// DeleteAccount removes an account for administrators. The currently
// authenticated account cannot delete itself. Dependent employee and request
// records are left untouched.
func (s *AccountService) DeleteAccount(ctx context.Context, principal Principal, accountID string) error {
	if s == nil {
		return fmt.Errorf("AccountService is nil")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	if s.accounts == nil {
		return fmt.Errorf("account repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteAccount",
		"principal_id", principal.AccountID,
		"account_id", accountID,
	)

	if accountID != "" && accountID == principal.AccountID {
		logger.ErrorContext(ctx, "refused self deletion", "error_kind", ErrorKind(ErrSelfDeletion))
		return ErrSelfDeletion
	}

	if err := s.accounts.DeleteAccount(ctx, accountID); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete account", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "account deleted")
	return nil
}

func normalizeAccountInput(input AccountInput) AccountInput {
	return AccountInput{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Role:      input.Role,
		Verified:  input.Verified,
	}
}

func validateAccountInput(input AccountInput) *ValidationError {
	vErr := &ValidationError{}

	if input.FirstName == "" {
		vErr.add("first_name", "first name is required")
	}
	if input.LastName == "" {
		vErr.add("last_name", "last name is required")
	}
	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is invalid")
	}
	if !input.Role.Valid() {
		vErr.add("role", "role must be user or admin")
	}

	return vErr
}

// mapRepoError translates persistence sentinels into application sentinels.
func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	}
	return err
}
