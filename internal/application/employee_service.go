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
)

// EmployeeRepository captures the persistence operations needed by the employee service.
type EmployeeRepository interface {
	CreateEmployee(ctx context.Context, employee Employee) (Employee, error)
	GetEmployee(ctx context.Context, id string) (Employee, error)
	UpdateEmployee(ctx context.Context, employee Employee) (Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
	ListEmployees(ctx context.Context) ([]Employee, error)
}

// AccountDirectory resolves accounts by email for reference checks.
type AccountDirectory interface {
	GetAccountByEmail(ctx context.Context, email string) (Account, error)
}

// DepartmentDirectory resolves departments for reference checks and display.
type DepartmentDirectory interface {
	GetDepartment(ctx context.Context, id string) (Department, error)
	ListDepartments(ctx context.Context) ([]Department, error)
}

// EmployeeService orchestrates validation, authorization, and persistence for
// employee records. Writes verify that the referenced account and department
// exist at write time; references are not enforced afterwards, so a later
// account or department deletion leaves the employee record dangling.
type EmployeeService struct {
	employees   EmployeeRepository
	accounts    AccountDirectory
	departments DepartmentDirectory
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewEmployeeService wires dependencies for the employee service.
func NewEmployeeService(
	employees EmployeeRepository,
	accounts AccountDirectory,
	departments DepartmentDirectory,
	idGenerator func() string,
	now func() time.Time,
	logger *slog.Logger,
) *EmployeeService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EmployeeService{
		employees:   employees,
		accounts:    accounts,
		departments: departments,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreateEmployee validates input and persists a new employee record for administrators.
func (s *EmployeeService) CreateEmployee(ctx context.Context, params CreateEmployeeParams) (_ Employee, err error) {
	if s == nil {
		return Employee{}, fmt.Errorf("EmployeeService is nil")
	}

	logger := serviceLogger(ctx, s.logger, "EmployeeService", "CreateEmployee")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "create employee failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if !params.Principal.IsAdmin() {
		return Employee{}, ErrUnauthorized
	}
	if s.employees == nil {
		return Employee{}, fmt.Errorf("employee repository not configured")
	}

	normalized := normalizeEmployeeInput(params.Input)
	if vErr := s.validateEmployeeInput(ctx, normalized); vErr.HasErrors() {
		return Employee{}, vErr
	}

	now := s.now()
	employee := Employee{
		ID:           s.idGenerator(),
		EmployeeID:   normalized.EmployeeID,
		Email:        normalized.Email,
		Position:     normalized.Position,
		DepartmentID: normalized.DepartmentID,
		HireDate:     normalized.HireDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	persisted, err := s.employees.CreateEmployee(ctx, employee)
	if err != nil {
		return Employee{}, mapRepoError(err)
	}

	logger.InfoContext(ctx, "employee created", "employee_id", persisted.ID, "employee_email", persisted.Email)
	return persisted, nil
}

// UpdateEmployee validates input and updates an existing employee record for administrators.
func (s *EmployeeService) UpdateEmployee(ctx context.Context, params UpdateEmployeeParams) (_ Employee, err error) {
	if s == nil {
		return Employee{}, fmt.Errorf("EmployeeService is nil")
	}

	logger := serviceLogger(ctx, s.logger, "EmployeeService", "UpdateEmployee")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "update employee failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if !params.Principal.IsAdmin() {
		return Employee{}, ErrUnauthorized
	}
	if s.employees == nil {
		return Employee{}, fmt.Errorf("employee repository not configured")
	}

	existing, err := s.employees.GetEmployee(ctx, params.EmployeeID)
	if err != nil {
		return Employee{}, mapRepoError(err)
	}

	normalized := normalizeEmployeeInput(params.Input)
	if vErr := s.validateEmployeeInput(ctx, normalized); vErr.HasErrors() {
		return Employee{}, vErr
	}

	updated := existing
	updated.EmployeeID = normalized.EmployeeID
	updated.Email = normalized.Email
	updated.Position = normalized.Position
	updated.DepartmentID = normalized.DepartmentID
	updated.HireDate = normalized.HireDate
	updated.UpdatedAt = s.now()

	persisted, err := s.employees.UpdateEmployee(ctx, updated)
	if err != nil {
		return Employee{}, mapRepoError(err)
	}

	logger.InfoContext(ctx, "employee updated", "employee_id", persisted.ID)
	return persisted, nil
}

// DeleteEmployee removes an employee record when requested by an administrator.
func (s *EmployeeService) DeleteEmployee(ctx context.Context, principal Principal, employeeID string) error {
	if s == nil {
		return fmt.Errorf("EmployeeService is nil")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	if s.employees == nil {
		return fmt.Errorf("employee repository not configured")
	}

	if err := s.employees.DeleteEmployee(ctx, employeeID); err != nil {
		return mapRepoError(err)
	}

	return nil
}

// ListEmployees returns all employee records for administrators.
func (s *EmployeeService) ListEmployees(ctx context.Context, principal Principal) ([]Employee, error) {
	if s == nil {
		return nil, fmt.Errorf("EmployeeService is nil")
	}
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if s.employees == nil {
		return nil, nil
	}

	employees, err := s.employees.ListEmployees(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}

	out := make([]Employee, len(employees))
	copy(out, employees)

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func normalizeEmployeeInput(input EmployeeInput) EmployeeInput {
	return EmployeeInput{
		EmployeeID:   strings.TrimSpace(input.EmployeeID),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Position:     strings.TrimSpace(input.Position),
		DepartmentID: strings.TrimSpace(input.DepartmentID),
		HireDate:     input.HireDate,
	}
}

// validateEmployeeInput checks field presence and that the referenced account
// and department exist right now.
func (s *EmployeeService) validateEmployeeInput(ctx context.Context, input EmployeeInput) *ValidationError {
	vErr := &ValidationError{}

	if input.EmployeeID == "" {
		vErr.add("employee_id", "employee ID is required")
	}

	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is invalid")
	} else if s.accounts != nil {
		if _, err := s.accounts.GetAccountByEmail(ctx, input.Email); err != nil {
			if errors.Is(mapRepoError(err), ErrNotFound) {
				vErr.add("email", "no account exists for this email")
			}
		}
	}

	if input.DepartmentID == "" {
		vErr.add("department_id", "department is required")
	} else if s.departments != nil {
		if _, err := s.departments.GetDepartment(ctx, input.DepartmentID); err != nil {
			if errors.Is(mapRepoError(err), ErrNotFound) {
				vErr.add("department_id", "department does not exist")
			}
		}
	}

	return vErr
}
