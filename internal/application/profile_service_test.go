package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/hr-portal/internal/persistence"
)

type profileAccountStoreStub struct {
	byID map[string]Account

	updated      Account
	updateErr    error
	passwordID   string
	passwordHash string
}

func newProfileAccountStoreStub(accounts ...Account) *profileAccountStoreStub {
	stub := &profileAccountStoreStub{byID: map[string]Account{}}
	for _, account := range accounts {
		stub.byID[account.ID] = account
	}
	return stub
}

func (s *profileAccountStoreStub) GetAccount(ctx context.Context, id string) (Account, error) {
	account, ok := s.byID[id]
	if !ok {
		return Account{}, persistence.ErrNotFound
	}
	return account, nil
}

func (s *profileAccountStoreStub) GetAccountByEmail(ctx context.Context, email string) (Account, error) {
	for _, account := range s.byID {
		if account.Email == email {
			return account, nil
		}
	}
	return Account{}, persistence.ErrNotFound
}

func (s *profileAccountStoreStub) UpdateAccount(ctx context.Context, account Account) (Account, error) {
	if s.updateErr != nil {
		return Account{}, s.updateErr
	}
	s.updated = account
	s.byID[account.ID] = account
	return account, nil
}

func (s *profileAccountStoreStub) SetAccountPassword(ctx context.Context, id, passwordHash string) error {
	s.passwordID = id
	s.passwordHash = passwordHash
	return nil
}

type employeeDirectoryStub struct {
	byEmail map[string]Employee

	updated   Employee
	updateErr error
}

func (s *employeeDirectoryStub) GetEmployeeByEmail(ctx context.Context, email string) (Employee, error) {
	employee, ok := s.byEmail[email]
	if !ok {
		return Employee{}, persistence.ErrNotFound
	}
	return employee, nil
}

func (s *employeeDirectoryStub) UpdateEmployee(ctx context.Context, employee Employee) (Employee, error) {
	if s.updateErr != nil {
		return Employee{}, s.updateErr
	}
	delete(s.byEmail, s.updated.Email)
	s.updated = employee
	s.byEmail[employee.Email] = employee
	return employee, nil
}

func testProfileService(accounts *profileAccountStoreStub, employees *employeeDirectoryStub, departments *departmentRepoStub, now time.Time) *ProfileService {
	return NewProfileService(
		accounts,
		employees,
		departments,
		func(password string) (string, error) { return "hashed:" + password, nil },
		func() time.Time { return now },
		6,
		nil,
	)
}

func TestProfileService_GetProfile(t *testing.T) {
	now := time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)
	account := Account{ID: "acc-1", FirstName: "Jane", LastName: "Doe", Email: "jane@x.com", Role: RoleUser, Verified: true}

	t.Run("joins the employee record and department name", func(t *testing.T) {
		accounts := newProfileAccountStoreStub(account)
		employees := &employeeDirectoryStub{byEmail: map[string]Employee{
			"jane@x.com": {ID: "emp-1", Email: "jane@x.com", Position: "Engineer", DepartmentID: "dept-1"},
		}}
		departments := newDepartmentRepoStub(Department{ID: "dept-1", Name: "Engineering"})
		svc := testProfileService(accounts, employees, departments, now)

		profile, err := svc.GetProfile(context.Background(), userPrincipal)
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if profile.Position != "Engineer" || profile.DepartmentName != "Engineering" {
			t.Fatalf("unexpected profile %+v", profile)
		}
	})

	t.Run("leaves employment blank when no record or department matches", func(t *testing.T) {
		accounts := newProfileAccountStoreStub(account)
		employees := &employeeDirectoryStub{byEmail: map[string]Employee{
			"jane@x.com": {ID: "emp-1", Email: "jane@x.com", Position: "Engineer", DepartmentID: "dept-gone"},
		}}
		svc := testProfileService(accounts, employees, newDepartmentRepoStub(), now)

		profile, err := svc.GetProfile(context.Background(), userPrincipal)
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if profile.Position != "Engineer" {
			t.Fatalf("expected position to survive, got %q", profile.Position)
		}
		if profile.DepartmentName != "" {
			t.Fatalf("expected blank department name for dangling reference, got %q", profile.DepartmentName)
		}

		svc = testProfileService(newProfileAccountStoreStub(account), &employeeDirectoryStub{byEmail: map[string]Employee{}}, newDepartmentRepoStub(), now)
		profile, err = svc.GetProfile(context.Background(), userPrincipal)
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if profile.Position != "" || profile.DepartmentID != "" {
			t.Fatalf("expected blank employment, got %+v", profile)
		}
	})
}

func TestProfileService_UpdateProfile(t *testing.T) {
	now := time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)
	account := Account{ID: "acc-1", FirstName: "Jane", LastName: "Doe", Email: "jane@x.com", Role: RoleUser, Verified: true}

	t.Run("rejects an email held by another account", func(t *testing.T) {
		accounts := newProfileAccountStoreStub(account, Account{ID: "acc-2", Email: "taken@x.com"})
		svc := testProfileService(accounts, &employeeDirectoryStub{byEmail: map[string]Employee{}}, newDepartmentRepoStub(), now)

		_, err := svc.UpdateProfile(context.Background(), UpdateProfileParams{
			Principal: userPrincipal,
			Input:     ProfileInput{FirstName: "Jane", LastName: "Doe", Email: "taken@x.com"},
		})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("applies identity changes and keeps the session account", func(t *testing.T) {
		accounts := newProfileAccountStoreStub(account)
		svc := testProfileService(accounts, &employeeDirectoryStub{byEmail: map[string]Employee{}}, newDepartmentRepoStub(), now)

		profile, err := svc.UpdateProfile(context.Background(), UpdateProfileParams{
			Principal: userPrincipal,
			Input:     ProfileInput{FirstName: "Janet", LastName: "Doe", Email: "janet@x.com"},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if profile.Account.FirstName != "Janet" || profile.Account.Email != "janet@x.com" {
			t.Fatalf("unexpected account %+v", profile.Account)
		}
		if !accounts.updated.UpdatedAt.Equal(now) {
			t.Fatalf("expected UpdatedAt %v, got %v", now, accounts.updated.UpdatedAt)
		}
	})

	t.Run("enforces the minimum length on an optional new password", func(t *testing.T) {
		accounts := newProfileAccountStoreStub(account)
		svc := testProfileService(accounts, &employeeDirectoryStub{byEmail: map[string]Employee{}}, newDepartmentRepoStub(), now)

		_, err := svc.UpdateProfile(context.Background(), UpdateProfileParams{
			Principal: userPrincipal,
			Input:     ProfileInput{FirstName: "Jane", LastName: "Doe", Email: "jane@x.com", NewPassword: "abcde"},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}

		if _, err := svc.UpdateProfile(context.Background(), UpdateProfileParams{
			Principal: userPrincipal,
			Input:     ProfileInput{FirstName: "Jane", LastName: "Doe", Email: "jane@x.com", NewPassword: "abcdef"},
		}); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if accounts.passwordID != "acc-1" || accounts.passwordHash != "hashed:abcdef" {
			t.Fatalf("unexpected password write %q/%q", accounts.passwordID, accounts.passwordHash)
		}
	})

	t.Run("renames the linked employee record with the account", func(t *testing.T) {
		accounts := newProfileAccountStoreStub(account)
		employees := &employeeDirectoryStub{byEmail: map[string]Employee{
			"jane@x.com": {ID: "emp-1", Email: "jane@x.com", Position: "Engineer", DepartmentID: "dept-1"},
		}}
		departments := newDepartmentRepoStub(
			Department{ID: "dept-1", Name: "Engineering"},
			Department{ID: "dept-2", Name: "HR"},
		)
		svc := testProfileService(accounts, employees, departments, now)

		profile, err := svc.UpdateProfile(context.Background(), UpdateProfileParams{
			Principal: userPrincipal,
			Input:     ProfileInput{FirstName: "Jane", LastName: "Doe", Email: "janet@x.com", DepartmentID: "dept-2"},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if employees.updated.Email != "janet@x.com" || employees.updated.DepartmentID != "dept-2" {
			t.Fatalf("unexpected employee sync %+v", employees.updated)
		}
		if profile.DepartmentName != "HR" {
			t.Fatalf("expected HR after re-selection, got %q", profile.DepartmentName)
		}
	})

	t.Run("rejects a department selection that does not exist", func(t *testing.T) {
		accounts := newProfileAccountStoreStub(account)
		employees := &employeeDirectoryStub{byEmail: map[string]Employee{
			"jane@x.com": {ID: "emp-1", Email: "jane@x.com", DepartmentID: "dept-1"},
		}}
		svc := testProfileService(accounts, employees, newDepartmentRepoStub(Department{ID: "dept-1"}), now)

		_, err := svc.UpdateProfile(context.Background(), UpdateProfileParams{
			Principal: userPrincipal,
			Input:     ProfileInput{FirstName: "Jane", LastName: "Doe", Email: "jane@x.com", DepartmentID: "dept-gone"},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}
