package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/example/hr-portal/internal/persistence"
)

const accountColumns = "id, first_name, last_name, email, password_hash, role, verified, created_at, updated_at"

// CreateAccount inserts a new account. Emails are stored lowercased so the
// UNIQUE index enforces case-insensitive uniqueness.
func (s *Store) CreateAccount(ctx context.Context, account persistence.Account) error {
	if account.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		account.ID,
		account.FirstName,
		account.LastName,
		normalizeEmail(account.Email),
		account.PasswordHash,
		account.Role,
		account.Verified,
		formatTime(account.CreatedAt),
		formatTime(account.UpdatedAt),
	)
	if err != nil {
		return mapError(err)
	}

	return nil
}

// UpdateAccount overwrites an existing account record.
func (s *Store) UpdateAccount(ctx context.Context, account persistence.Account) error {
	query := `
		UPDATE accounts
		SET first_name = ?, last_name = ?, email = ?, password_hash = ?, role = ?, verified = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		account.FirstName,
		account.LastName,
		normalizeEmail(account.Email),
		account.PasswordHash,
		account.Role,
		account.Verified,
		formatTime(account.UpdatedAt),
		account.ID,
	)
	if err != nil {
		return mapError(err)
	}

	affected, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

// GetAccount retrieves an account by ID.
func (s *Store) GetAccount(ctx context.Context, id string) (persistence.Account, error) {
	if id == "" {
		return persistence.Account{}, persistence.ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

// GetAccountByEmail retrieves an account by its lowercased email.
func (s *Store) GetAccountByEmail(ctx context.Context, email string) (persistence.Account, error) {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return persistence.Account{}, persistence.ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, normalized)
	return scanAccount(row)
}

// ListAccounts returns all accounts ordered by creation time then ID.
func (s *Store) ListAccounts(ctx context.Context) ([]persistence.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var accounts []persistence.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return accounts, nil
}

// DeleteAccount removes an account by ID. Dependent employee and request
// records are left in place.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}

	affected, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (persistence.Account, error) {
	var account persistence.Account
	var createdAt, updatedAt string

	err := row.Scan(
		&account.ID,
		&account.FirstName,
		&account.LastName,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.Verified,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Account{}, persistence.ErrNotFound
		}
		return persistence.Account{}, mapError(err)
	}

	if account.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return persistence.Account{}, err
	}
	if account.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return persistence.Account{}, err
	}

	return account, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
