package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/example/hr-portal/internal/persistence"
)

const requestColumns = "id, type, items, status, account_email, submitted_at, updated_at"

// CreateRequest inserts a new purchase request. Line items are stored as a
// JSON array so their submitted order survives round trips.
func (s *Store) CreateRequest(ctx context.Context, request persistence.Request) error {
	if request.ID == "" {
		return persistence.ErrConstraintViolation
	}

	items, err := encodeItems(request.Items)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO requests (` + requestColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		request.ID,
		request.Type,
		items,
		request.Status,
		normalizeEmail(request.AccountEmail),
		formatTime(request.SubmittedAt),
		formatTime(request.UpdatedAt),
	)
	if err != nil {
		return mapError(err)
	}

	return nil
}

// UpdateRequest overwrites an existing request record.
func (s *Store) UpdateRequest(ctx context.Context, request persistence.Request) error {
	items, err := encodeItems(request.Items)
	if err != nil {
		return err
	}

	query := `
		UPDATE requests
		SET type = ?, items = ?, status = ?, account_email = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		request.Type,
		items,
		request.Status,
		normalizeEmail(request.AccountEmail),
		formatTime(request.UpdatedAt),
		request.ID,
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

// GetRequest retrieves a request by ID.
func (s *Store) GetRequest(ctx context.Context, id string) (persistence.Request, error) {
	if id == "" {
		return persistence.Request{}, persistence.ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = ?`, id)
	return scanRequest(row)
}

// ListRequests returns requests ordered by submission time then ID,
// optionally restricted to a single owning account email.
func (s *Store) ListRequests(ctx context.Context, filter persistence.RequestFilter) ([]persistence.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests`
	args := make([]any, 0, 1)
	if filter.AccountEmail != "" {
		query += ` WHERE account_email = ?`
		args = append(args, normalizeEmail(filter.AccountEmail))
	}
	query += ` ORDER BY submitted_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var requests []persistence.Request
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return requests, nil
}

func scanRequest(row rowScanner) (persistence.Request, error) {
	var request persistence.Request
	var items string
	var submittedAt, updatedAt string

	err := row.Scan(
		&request.ID,
		&request.Type,
		&items,
		&request.Status,
		&request.AccountEmail,
		&submittedAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Request{}, persistence.ErrNotFound
		}
		return persistence.Request{}, mapError(err)
	}

	if err := json.Unmarshal([]byte(items), &request.Items); err != nil {
		return persistence.Request{}, fmt.Errorf("sqlite: failed to decode request items: %w", err)
	}
	if request.SubmittedAt, err = parseTime(submittedAt, "submitted_at"); err != nil {
		return persistence.Request{}, err
	}
	if request.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return persistence.Request{}, err
	}

	return request, nil
}

func encodeItems(items []persistence.RequestItem) (string, error) {
	if items == nil {
		items = []persistence.RequestItem{}
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("sqlite: failed to encode request items: %w", err)
	}
	return string(encoded), nil
}
