package application

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DepartmentRepository captures the persistence operations needed by the department service.
type DepartmentRepository interface {
	CreateDepartment(ctx context.Context, department Department) (Department, error)
	GetDepartment(ctx context.Context, id string) (Department, error)
	UpdateDepartment(ctx context.Context, department Department) (Department, error)
	DeleteDepartment(ctx context.Context, id string) error
	ListDepartments(ctx context.Context) ([]Department, error)
}

// DepartmentService orchestrates validation, authorization, and persistence
// for departments. Listing is open to any authenticated principal because
// profile editing offers a department selector; create, update, and delete
// are admin-only.
type DepartmentService struct {
	departments DepartmentRepository
	idGenerator func() string
	now         func() time.Time
}

// NewDepartmentService wires dependencies for the department service.
func NewDepartmentService(departments DepartmentRepository, idGenerator func() string, now func() time.Time) *DepartmentService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &DepartmentService{departments: departments, idGenerator: idGenerator, now: now}
}

// CreateDepartment validates input and persists a new department for administrators.
func (s *DepartmentService) CreateDepartment(ctx context.Context, params CreateDepartmentParams) (Department, error) {
	if s == nil {
		return Department{}, fmt.Errorf("DepartmentService is nil")
	}
	if !params.Principal.IsAdmin() {
		return Department{}, ErrUnauthorized
	}
	if s.departments == nil {
		return Department{}, fmt.Errorf("department repository not configured")
	}

	normalized := normalizeDepartmentInput(params.Input)
	vErr := validateDepartmentInput(normalized)
	if vErr.HasErrors() {
		return Department{}, vErr
	}

	now := s.now()
	department := Department{
		ID:          s.idGenerator(),
		Name:        normalized.Name,
		Description: normalized.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	persisted, err := s.departments.CreateDepartment(ctx, department)
	if err != nil {
		return Department{}, mapRepoError(err)
	}

	return persisted, nil
}

// UpdateDepartment validates input and updates an existing department for administrators.
func (s *DepartmentService) UpdateDepartment(ctx context.Context, params UpdateDepartmentParams) (Department, error) {
	if s == nil {
		return Department{}, fmt.Errorf("DepartmentService is nil")
	}
	if !params.Principal.IsAdmin() {
		return Department{}, ErrUnauthorized
	}
	if s.departments == nil {
		return Department{}, fmt.Errorf("department repository not configured")
	}

	existing, err := s.departments.GetDepartment(ctx, params.DepartmentID)
	if err != nil {
		return Department{}, mapRepoError(err)
	}

	normalized := normalizeDepartmentInput(params.Input)
	vErr := validateDepartmentInput(normalized)
	if vErr.HasErrors() {
		return Department{}, vErr
	}

	updated := existing
	updated.Name = normalized.Name
	updated.Description = normalized.Description
	updated.UpdatedAt = s.now()

	persisted, err := s.departments.UpdateDepartment(ctx, updated)
	if err != nil {
		return Department{}, mapRepoError(err)
	}

	return persisted, nil
}

// DeleteDepartment removes a department when requested by an administrator.
// Employee records referencing the department are not touched; their
// department reference dangles and renders as a placeholder.
func (s *DepartmentService) DeleteDepartment(ctx context.Context, principal Principal, departmentID string) error {
	if s == nil {
		return fmt.Errorf("DepartmentService is nil")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	if s.departments == nil {
		return fmt.Errorf("department repository not configured")
	}

	if err := s.departments.DeleteDepartment(ctx, departmentID); err != nil {
		return mapRepoError(err)
	}

	return nil
}

// ListDepartments returns all departments for any authenticated principal.
func (s *DepartmentService) ListDepartments(ctx context.Context, principal Principal) ([]Department, error) {
	if s == nil {
		return nil, fmt.Errorf("DepartmentService is nil")
	}
	if s.departments == nil {
		return nil, nil
	}

	departments, err := s.departments.ListDepartments(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}

	out := make([]Department, len(departments))
	copy(out, departments)

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func normalizeDepartmentInput(input DepartmentInput) DepartmentInput {
	return DepartmentInput{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
	}
}

func validateDepartmentInput(input DepartmentInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Name == "" {
		vErr.add("name", "department name is required")
	}

	return vErr
}
