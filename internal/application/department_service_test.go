package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/hr-portal/internal/persistence"
)

type departmentRepoStub struct {
	byID map[string]Department

	created   Department
	createErr error

	updated   Department
	updateErr error

	deletedID string
	deleteErr error

	listErr error
}

func newDepartmentRepoStub(departments ...Department) *departmentRepoStub {
	stub := &departmentRepoStub{byID: map[string]Department{}}
	for _, department := range departments {
		stub.byID[department.ID] = department
	}
	return stub
}

func (s *departmentRepoStub) CreateDepartment(ctx context.Context, department Department) (Department, error) {
	if s.createErr != nil {
		return Department{}, s.createErr
	}
	s.created = department
	s.byID[department.ID] = department
	return department, nil
}

func (s *departmentRepoStub) GetDepartment(ctx context.Context, id string) (Department, error) {
	department, ok := s.byID[id]
	if !ok {
		return Department{}, persistence.ErrNotFound
	}
	return department, nil
}

func (s *departmentRepoStub) UpdateDepartment(ctx context.Context, department Department) (Department, error) {
	if s.updateErr != nil {
		return Department{}, s.updateErr
	}
	if _, ok := s.byID[department.ID]; !ok {
		return Department{}, persistence.ErrNotFound
	}
	s.updated = department
	s.byID[department.ID] = department
	return department, nil
}

func (s *departmentRepoStub) DeleteDepartment(ctx context.Context, id string) error {
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

func (s *departmentRepoStub) ListDepartments(ctx context.Context) ([]Department, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]Department, 0, len(s.byID))
	for _, department := range s.byID {
		out = append(out, department)
	}
	return out, nil
}

func TestDepartmentService_CreateDepartment(t *testing.T) {
	now := time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)

	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewDepartmentService(newDepartmentRepoStub(), nil, nil)

		_, err := svc.CreateDepartment(context.Background(), CreateDepartmentParams{
			Principal: Principal{AccountID: "acc-1", Role: RoleUser},
			Input:     DepartmentInput{Name: "Sales"},
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("requires a name", func(t *testing.T) {
		svc := NewDepartmentService(newDepartmentRepoStub(), nil, nil)

		_, err := svc.CreateDepartment(context.Background(), CreateDepartmentParams{
			Principal: adminPrincipal,
			Input:     DepartmentInput{Name: "   ", Description: "orphan"},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["name"]; !ok {
			t.Fatalf("expected name validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("persists trimmed input for administrators", func(t *testing.T) {
		repo := newDepartmentRepoStub()
		svc := NewDepartmentService(repo, func() string { return "dept-1" }, func() time.Time { return now })

		department, err := svc.CreateDepartment(context.Background(), CreateDepartmentParams{
			Principal: adminPrincipal,
			Input:     DepartmentInput{Name: "  Sales  ", Description: "  Field sales  "},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if department.ID != "dept-1" || department.Name != "Sales" || department.Description != "Field sales" {
			t.Fatalf("unexpected department %+v", department)
		}
		if !repo.created.CreatedAt.Equal(now) {
			t.Fatalf("expected CreatedAt %v, got %v", now, repo.created.CreatedAt)
		}
	})
}

func TestDepartmentService_UpdateDepartment(t *testing.T) {
	now := time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)

	t.Run("propagates ErrNotFound for missing departments", func(t *testing.T) {
		svc := NewDepartmentService(newDepartmentRepoStub(), nil, func() time.Time { return now })

		_, err := svc.UpdateDepartment(context.Background(), UpdateDepartmentParams{
			Principal:    adminPrincipal,
			DepartmentID: "missing",
			Input:        DepartmentInput{Name: "Sales"},
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("overwrites name and description", func(t *testing.T) {
		repo := newDepartmentRepoStub(Department{ID: "dept-1", Name: "Sales", CreatedAt: now.Add(-time.Hour)})
		svc := NewDepartmentService(repo, nil, func() time.Time { return now })

		department, err := svc.UpdateDepartment(context.Background(), UpdateDepartmentParams{
			Principal:    adminPrincipal,
			DepartmentID: "dept-1",
			Input:        DepartmentInput{Name: "Field Sales", Description: "EMEA"},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if department.Name != "Field Sales" || department.Description != "EMEA" {
			t.Fatalf("unexpected department %+v", department)
		}
		if !department.UpdatedAt.Equal(now) {
			t.Fatalf("expected UpdatedAt %v, got %v", now, department.UpdatedAt)
		}
	})
}

func TestDepartmentService_DeleteDepartment(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewDepartmentService(newDepartmentRepoStub(), nil, nil)

		err := svc.DeleteDepartment(context.Background(), Principal{AccountID: "acc-1", Role: RoleUser}, "dept-1")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("deletes without touching employee references", func(t *testing.T) {
		repo := newDepartmentRepoStub(Department{ID: "dept-1", Name: "Sales"})
		svc := NewDepartmentService(repo, nil, nil)

		if err := svc.DeleteDepartment(context.Background(), adminPrincipal, "dept-1"); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if repo.deletedID != "dept-1" {
			t.Fatalf("expected dept-1 deleted, got %q", repo.deletedID)
		}
	})
}

func TestDepartmentService_ListDepartments(t *testing.T) {
	now := time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)

	t.Run("is available to non-admin principals", func(t *testing.T) {
		repo := newDepartmentRepoStub(Department{ID: "dept-1", Name: "Sales", CreatedAt: now})
		svc := NewDepartmentService(repo, nil, nil)

		departments, err := svc.ListDepartments(context.Background(), Principal{AccountID: "acc-1", Role: RoleUser})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(departments) != 1 {
			t.Fatalf("expected one department, got %d", len(departments))
		}
	})

	t.Run("orders departments by creation time", func(t *testing.T) {
		repo := newDepartmentRepoStub(
			Department{ID: "dept-2", Name: "HR", CreatedAt: now.Add(time.Minute)},
			Department{ID: "dept-1", Name: "Engineering", CreatedAt: now},
		)
		svc := NewDepartmentService(repo, nil, nil)

		departments, err := svc.ListDepartments(context.Background(), adminPrincipal)
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if departments[0].ID != "dept-1" || departments[1].ID != "dept-2" {
			t.Fatalf("unexpected order %+v", departments)
		}
	})
}
