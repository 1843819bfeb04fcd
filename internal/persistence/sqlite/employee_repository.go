package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/hr-portal/internal/persistence"
)

const employeeColumns = "id, employee_id, email, position, department_id, hire_date, created_at, updated_at"

// CreateEmployee inserts a new employee record. Multiple records may share
// the same account email.
func (s *Store) CreateEmployee(ctx context.Context, employee persistence.Employee) error {
	if employee.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO employees (` + employeeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		employee.ID,
		employee.EmployeeID,
		normalizeEmail(employee.Email),
		employee.Position,
		employee.DepartmentID,
		formatNullableTime(employee.HireDate),
		formatTime(employee.CreatedAt),
		formatTime(employee.UpdatedAt),
	)
	if err != nil {
		return mapError(err)
	}

	return nil
}

// UpdateEmployee overwrites an existing employee record.
func (s *Store) UpdateEmployee(ctx context.Context, employee persistence.Employee) error {
	query := `
		UPDATE employees
		SET employee_id = ?, email = ?, position = ?, department_id = ?, hire_date = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		employee.EmployeeID,
		normalizeEmail(employee.Email),
		employee.Position,
		employee.DepartmentID,
		formatNullableTime(employee.HireDate),
		formatTime(employee.UpdatedAt),
		employee.ID,
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

// GetEmployee retrieves an employee record by ID.
func (s *Store) GetEmployee(ctx context.Context, id string) (persistence.Employee, error) {
	if id == "" {
		return persistence.Employee{}, persistence.ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
	return scanEmployee(row)
}

// GetEmployeeByEmail retrieves the first employee record linked to the email,
// oldest first.
func (s *Store) GetEmployeeByEmail(ctx context.Context, email string) (persistence.Employee, error) {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return persistence.Employee{}, persistence.ErrNotFound
	}

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE email = ? ORDER BY created_at ASC, id ASC LIMIT 1`
	row := s.db.QueryRowContext(ctx, query, normalized)
	return scanEmployee(row)
}

// ListEmployees returns all employee records ordered by creation time then ID.
func (s *Store) ListEmployees(ctx context.Context) ([]persistence.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var employees []persistence.Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return employees, nil
}

// DeleteEmployee removes an employee record by ID.
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
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

func scanEmployee(row rowScanner) (persistence.Employee, error) {
	var employee persistence.Employee
	var hireDate sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&employee.ID,
		&employee.EmployeeID,
		&employee.Email,
		&employee.Position,
		&employee.DepartmentID,
		&hireDate,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Employee{}, persistence.ErrNotFound
		}
		return persistence.Employee{}, mapError(err)
	}

	if employee.HireDate, err = parseNullableTime(hireDate, "hire_date"); err != nil {
		return persistence.Employee{}, err
	}
	if employee.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return persistence.Employee{}, err
	}
	if employee.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return persistence.Employee{}, err
	}

	return employee, nil
}
