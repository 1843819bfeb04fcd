package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/hr-portal/internal/persistence"
)

// SetPendingVerification records the email awaiting simulated verification,
// replacing any previous marker.
func (s *Store) SetPendingVerification(ctx context.Context, email string) error {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO pending_verification (slot, email) VALUES (1, ?)
		ON CONFLICT (slot) DO UPDATE SET email = excluded.email
	`
	if _, err := s.db.ExecContext(ctx, query, normalized); err != nil {
		return mapError(err)
	}
	return nil
}

// PendingVerification returns the email currently awaiting verification.
func (s *Store) PendingVerification(ctx context.Context) (string, error) {
	var email string
	err := s.db.QueryRowContext(ctx, `SELECT email FROM pending_verification WHERE slot = 1`).Scan(&email)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", persistence.ErrNotFound
		}
		return "", mapError(err)
	}
	return email, nil
}

// ClearPendingVerification removes the marker. Clearing an absent marker is
// not an error.
func (s *Store) ClearPendingVerification(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pending_verification WHERE slot = 1`); err != nil {
		return mapError(err)
	}
	return nil
}
