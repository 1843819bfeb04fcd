package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
)

// CredentialStore exposes the account operations required by the auth service.
type CredentialStore interface {
	GetAccountCredentialsByEmail(ctx context.Context, email string) (AccountCredentials, error)
	GetAccount(ctx context.Context, id string) (Account, error)
	CreateAccount(ctx context.Context, account Account, passwordHash string) (Account, error)
	SetAccountVerified(ctx context.Context, id string, verified bool) (Account, error)
}

// SessionRepository captures the persistence interactions for issued sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// VerificationStore tracks the email awaiting simulated verification.
type VerificationStore interface {
	SetPending(ctx context.Context, email string) error
	Pending(ctx context.Context) (string, error)
	ClearPending(ctx context.Context) error
}

// PasswordHasher derives a storable hash from a plaintext password.
type PasswordHasher func(password string) (string, error)

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// AuthService coordinates registration, verification, login, and session
// restoration.
type AuthService struct {
	credentials    CredentialStore
	sessions       SessionRepository
	verifications  VerificationStore
	hashPassword   PasswordHasher
	verifyPassword PasswordVerifier
	idGenerator    func() string
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	minPasswordLen int
	logger         *slog.Logger
}

// AuthServiceConfig wires the dependencies of an AuthService. Zero-valued
// optional fields fall back to production defaults.
type AuthServiceConfig struct {
	Credentials    CredentialStore
	Sessions       SessionRepository
	Verifications  VerificationStore
	HashPassword   PasswordHasher
	VerifyPassword PasswordVerifier
	IDGenerator    func() string
	TokenGenerator func() string
	Now            func() time.Time
	SessionTTL     time.Duration
	MinPasswordLen int
	Logger         *slog.Logger
}

// NewAuthService constructs an AuthService from the provided configuration.
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	if cfg.HashPassword == nil {
		cfg.HashPassword = func(password string) (string, error) {
			return HashPassword(password, DefaultArgon2idParams)
		}
	}
	if cfg.VerifyPassword == nil {
		cfg.VerifyPassword = VerifyPassword
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = func() string { return "" }
	}
	if cfg.TokenGenerator == nil {
		cfg.TokenGenerator = func() string { return "" }
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.MinPasswordLen <= 0 {
		cfg.MinPasswordLen = 6
	}
	return &AuthService{
		credentials:    cfg.Credentials,
		sessions:       cfg.Sessions,
		verifications:  cfg.Verifications,
		hashPassword:   cfg.HashPassword,
		verifyPassword: cfg.VerifyPassword,
		idGenerator:    cfg.IDGenerator,
		tokenGenerator: cfg.TokenGenerator,
		now:            cfg.Now,
		sessionTTL:     cfg.SessionTTL,
		minPasswordLen: cfg.MinPasswordLen,
		logger:         defaultLogger(cfg.Logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Register creates an unverified user-role account and records its email as
// pending verification.
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (account Account, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.credentials == nil {
		err = fmt.Errorf("credential store not configured")
		return
	}

	firstName := strings.TrimSpace(params.FirstName)
	lastName := strings.TrimSpace(params.LastName)
	email := strings.TrimSpace(strings.ToLower(params.Email))

	logger := s.loggerWith(ctx, "Register", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "registration failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("account_id", account.ID).InfoContext(ctx, "account registered")
	}()

	vErr := &ValidationError{}
	if firstName == "" {
		vErr.add("first_name", "first name is required")
	}
	if lastName == "" {
		vErr.add("last_name", "last name is required")
	}
	if email == "" {
		vErr.add("email", "email is required")
	} else if _, mailErr := mail.ParseAddress(email); mailErr != nil {
		vErr.add("email", "email is invalid")
	}
	if len(params.Password) < s.minPasswordLen {
		vErr.add("password", fmt.Sprintf("password must be at least %d characters", s.minPasswordLen))
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if _, lookupErr := s.credentials.GetAccountCredentialsByEmail(ctx, email); lookupErr == nil {
		err = ErrAlreadyExists
		return
	} else if !errors.Is(lookupErr, ErrNotFound) {
		err = lookupErr
		return
	}

	hash, err := s.hashPassword(params.Password)
	if err != nil {
		return
	}

	now := s.now()
	account = Account{
		ID:        s.idGenerator(),
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Role:      RoleUser,
		Verified:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	account, err = s.credentials.CreateAccount(ctx, account, hash)
	if err != nil {
		return
	}

	if s.verifications != nil {
		if err = s.verifications.SetPending(ctx, email); err != nil {
			return
		}
	}

	return
}

// PendingVerification returns the email currently awaiting verification.
func (s *AuthService) PendingVerification(ctx context.Context) (string, error) {
	if s == nil {
		return "", fmt.Errorf("AuthService is nil")
	}
	if s.verifications == nil {
		return "", fmt.Errorf("verification store not configured")
	}

	email, err := s.verifications.Pending(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrNoPendingVerification
		}
		return "", err
	}
	return email, nil
}

// ConfirmVerification marks the pending account as verified and clears the
// pending marker. It stands in for the confirmation link of a real email flow.
func (s *AuthService) ConfirmVerification(ctx context.Context) (account Account, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.credentials == nil {
		err = fmt.Errorf("credential store not configured")
		return
	}
	if s.verifications == nil {
		err = fmt.Errorf("verification store not configured")
		return
	}

	logger := s.loggerWith(ctx, "ConfirmVerification")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "verification failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("account_id", account.ID).InfoContext(ctx, "email verified")
	}()

	email, err := s.verifications.Pending(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrNoPendingVerification
		}
		return
	}

	creds, err := s.credentials.GetAccountCredentialsByEmail(ctx, email)
	if err != nil {
		return
	}

	account, err = s.credentials.SetAccountVerified(ctx, creds.Account.ID, true)
	if err != nil {
		return
	}

	err = s.verifications.ClearPending(ctx)
	return
}

// Authenticate validates credentials for a verified account and issues a new
// session token.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (result AuthenticateResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.credentials == nil {
		err = fmt.Errorf("credential store not configured")
		return
	}

	email := strings.TrimSpace(strings.ToLower(params.Email))
	password := params.Password

	logger := s.loggerWith(ctx, "Authenticate", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"account_id", result.Account.ID,
			"session_id", result.Session.ID,
		).InfoContext(ctx, "authentication succeeded")
	}()

	if email == "" || password == "" {
		err = ErrInvalidCredentials
		return
	}

	creds, err := s.credentials.GetAccountCredentialsByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}

	if err = s.verifyPassword(creds.PasswordHash, password); err != nil {
		err = ErrInvalidCredentials
		return
	}

	if !creds.Account.Verified {
		err = ErrAccountNotVerified
		return
	}

	now := s.now()
	session := Session{
		ID:        s.idGenerator(),
		AccountID: creds.Account.ID,
		Token:     s.tokenGenerator(),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if session.Token == "" {
		session.Token = session.ID
	}

	if s.sessions != nil {
		if err = s.sessions.DeleteExpiredSessions(ctx, now); err != nil {
			return
		}

		var persisted Session
		persisted, err = s.sessions.CreateSession(ctx, session)
		if err != nil {
			return
		}
		session = persisted
	}

	result = AuthenticateResult{Account: creds.Account, Session: session}
	return
}

// RevokeSession invalidates an existing session token. Logout is
// unconditional: an empty or unknown token is not an error.
func (s *AuthService) RevokeSession(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("session repository not configured")
	}

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil
	}

	logger := s.loggerWith(ctx, "RevokeSession", "token_provided", true)

	if _, err := s.sessions.RevokeSession(ctx, trimmed, s.now()); err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.InfoContext(ctx, "logout with unknown token ignored")
			return nil
		}
		logger.ErrorContext(ctx, "failed to revoke session", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "session revoked")
	return nil
}

// ValidateSession verifies that the provided token corresponds to an active
// session for a still-verified account and returns its principal. Tokens for
// missing or unverified accounts are treated as stale and rejected.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("session repository not configured")
		return
	}
	if s.credentials == nil {
		err = fmt.Errorf("credential store not configured")
		return
	}

	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "ValidateSession", "token_provided", trimmed != "")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "session validation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("principal_id", principal.AccountID).InfoContext(ctx, "session validated")
	}()

	if trimmed == "" {
		err = ErrUnauthorized
		return
	}

	session, err := s.sessions.GetSession(ctx, trimmed)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrUnauthorized
		}
		return
	}

	now := s.now()
	if session.RevokedAt != nil && !session.RevokedAt.IsZero() {
		err = ErrSessionRevoked
		return
	}
	if !session.ExpiresAt.IsZero() && !session.ExpiresAt.After(now) {
		err = ErrSessionExpired
		return
	}

	account, err := s.credentials.GetAccount(ctx, session.AccountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrUnauthorized
		}
		return
	}
	if !account.Verified {
		err = ErrUnauthorized
		return
	}

	principal = Principal{AccountID: account.ID, Email: account.Email, Role: account.Role}
	return
}
