package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/hr-portal/internal/persistence"
)

const departmentColumns = "id, name, description, created_at, updated_at"

// CreateDepartment inserts a new department. Name collisions are allowed.
func (s *Store) CreateDepartment(ctx context.Context, department persistence.Department) error {
	if department.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO departments (` + departmentColumns + `)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		department.ID,
		department.Name,
		department.Description,
		formatTime(department.CreatedAt),
		formatTime(department.UpdatedAt),
	)
	if err != nil {
		return mapError(err)
	}

	return nil
}

// UpdateDepartment overwrites an existing department record.
func (s *Store) UpdateDepartment(ctx context.Context, department persistence.Department) error {
	query := `
		UPDATE departments
		SET name = ?, description = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		department.Name,
		department.Description,
		formatTime(department.UpdatedAt),
		department.ID,
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

// GetDepartment retrieves a department by ID.
func (s *Store) GetDepartment(ctx context.Context, id string) (persistence.Department, error) {
	if id == "" {
		return persistence.Department{}, persistence.ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+departmentColumns+` FROM departments WHERE id = ?`, id)
	return scanDepartment(row)
}

// ListDepartments returns all departments ordered by creation time then ID.
func (s *Store) ListDepartments(ctx context.Context) ([]persistence.Department, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+departmentColumns+` FROM departments ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var departments []persistence.Department
	for rows.Next() {
		department, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		departments = append(departments, department)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return departments, nil
}

// DeleteDepartment removes a department by ID. Employee records referencing
// the department keep their now-dangling department_id.
func (s *Store) DeleteDepartment(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM departments WHERE id = ?`, id)
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

func scanDepartment(row rowScanner) (persistence.Department, error) {
	var department persistence.Department
	var createdAt, updatedAt string

	err := row.Scan(
		&department.ID,
		&department.Name,
		&department.Description,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Department{}, persistence.ErrNotFound
		}
		return persistence.Department{}, mapError(err)
	}

	if department.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return persistence.Department{}, err
	}
	if department.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return persistence.Department{}, err
	}

	return department, nil
}
