package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/hr-portal/internal/persistence"
	"github.com/example/hr-portal/internal/persistence/sqlite"
	"github.com/example/hr-portal/internal/testfixtures"
)

func TestOpenRejectsEmptyDSN(t *testing.T) {
	if _, err := sqlite.Open(" "); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}

func TestAccountRepository_CreateAndGet(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	account := testfixtures.NewAccountFixture(
		testfixtures.WithAccountEmail("Jane@Example.com"),
	).Persistence()

	if err := harness.Accounts.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	retrieved, err := harness.Accounts.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if retrieved.Email != "jane@example.com" {
		t.Errorf("expected normalized email, got %q", retrieved.Email)
	}
	if retrieved.FirstName != account.FirstName || retrieved.Role != account.Role {
		t.Errorf("unexpected account: %+v", retrieved)
	}

	byEmail, err := harness.Accounts.GetAccountByEmail(ctx, "JANE@example.com")
	if err != nil {
		t.Fatalf("GetAccountByEmail failed: %v", err)
	}
	if byEmail.ID != account.ID {
		t.Errorf("expected account %q, got %q", account.ID, byEmail.ID)
	}
}

func TestAccountRepository_DuplicateEmail(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	first := testfixtures.NewAccountFixture(testfixtures.WithAccountEmail("dup@example.com"))
	second := testfixtures.NewAccountFixture(testfixtures.WithAccountEmail("dup@example.com"))

	if err := harness.Accounts.CreateAccount(ctx, first.Persistence()); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	err := harness.Accounts.CreateAccount(ctx, second.Persistence())
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestAccountRepository_UpdateAndDelete(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	account := testfixtures.NewAccountFixture().Persistence()
	if err := harness.Accounts.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	account.FirstName = "Renamed"
	account.Verified = false
	if err := harness.Accounts.UpdateAccount(ctx, account); err != nil {
		t.Fatalf("UpdateAccount failed: %v", err)
	}

	retrieved, err := harness.Accounts.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if retrieved.FirstName != "Renamed" || retrieved.Verified {
		t.Errorf("unexpected account after update: %+v", retrieved)
	}

	if err := harness.Accounts.DeleteAccount(ctx, account.ID); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}
	if _, err := harness.Accounts.GetAccount(ctx, account.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := harness.Accounts.DeleteAccount(ctx, account.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for second delete, got %v", err)
	}
}

func TestAccountRepository_UpdateMissingAccount(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)

	account := testfixtures.NewAccountFixture().Persistence()
	err := harness.Accounts.UpdateAccount(context.Background(), account)
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDepartmentRepository_CRUD(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	department := testfixtures.NewDepartmentFixture(
		testfixtures.WithDepartmentName("Engineering"),
		testfixtures.WithDepartmentDescription("Software & hardware engineering team"),
	).Persistence()

	if err := harness.Departments.CreateDepartment(ctx, department); err != nil {
		t.Fatalf("CreateDepartment failed: %v", err)
	}

	retrieved, err := harness.Departments.GetDepartment(ctx, department.ID)
	if err != nil {
		t.Fatalf("GetDepartment failed: %v", err)
	}
	if retrieved.Name != "Engineering" {
		t.Errorf("expected name Engineering, got %q", retrieved.Name)
	}

	department.Name = "Platform Engineering"
	if err := harness.Departments.UpdateDepartment(ctx, department); err != nil {
		t.Fatalf("UpdateDepartment failed: %v", err)
	}

	listed, err := harness.Departments.ListDepartments(ctx)
	if err != nil {
		t.Fatalf("ListDepartments failed: %v", err)
	}
	if len(listed) != 1 || listed[0].Name != "Platform Engineering" {
		t.Errorf("unexpected departments: %+v", listed)
	}

	if err := harness.Departments.DeleteDepartment(ctx, department.ID); err != nil {
		t.Fatalf("DeleteDepartment failed: %v", err)
	}
	if _, err := harness.Departments.GetDepartment(ctx, department.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestEmployeeRepository_CRUD(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	hire := time.Date(2023, time.September, 18, 0, 0, 0, 0, time.UTC)
	employee := testfixtures.NewEmployeeFixture(
		testfixtures.WithEmployeeEmail("jane@example.com"),
		testfixtures.WithEmployeeHireDate(hire),
	).Persistence()

	if err := harness.Employees.CreateEmployee(ctx, employee); err != nil {
		t.Fatalf("CreateEmployee failed: %v", err)
	}

	retrieved, err := harness.Employees.GetEmployee(ctx, employee.ID)
	if err != nil {
		t.Fatalf("GetEmployee failed: %v", err)
	}
	if retrieved.HireDate == nil || !retrieved.HireDate.Equal(hire) {
		t.Errorf("hire date = %v, want %v", retrieved.HireDate, hire)
	}

	byEmail, err := harness.Employees.GetEmployeeByEmail(ctx, "JANE@example.com")
	if err != nil {
		t.Fatalf("GetEmployeeByEmail failed: %v", err)
	}
	if byEmail.ID != employee.ID {
		t.Errorf("expected employee %q, got %q", employee.ID, byEmail.ID)
	}

	employee.Position = "Staff Engineer"
	employee.HireDate = nil
	if err := harness.Employees.UpdateEmployee(ctx, employee); err != nil {
		t.Fatalf("UpdateEmployee failed: %v", err)
	}
	retrieved, err = harness.Employees.GetEmployee(ctx, employee.ID)
	if err != nil {
		t.Fatalf("GetEmployee failed: %v", err)
	}
	if retrieved.Position != "Staff Engineer" || retrieved.HireDate != nil {
		t.Errorf("unexpected employee after update: %+v", retrieved)
	}

	if err := harness.Employees.DeleteEmployee(ctx, employee.ID); err != nil {
		t.Fatalf("DeleteEmployee failed: %v", err)
	}
	listed, err := harness.Employees.ListEmployees(ctx)
	if err != nil {
		t.Fatalf("ListEmployees failed: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("expected no employees, got %+v", listed)
	}
}

func TestRequestRepository_RoundTripAndFilter(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	base := testfixtures.ReferenceTime()
	mine := testfixtures.NewRequestFixture(
		testfixtures.WithRequestAccountEmail("jane@example.com"),
		testfixtures.WithRequestTimestamps(base, base),
	).Persistence()
	theirs := testfixtures.NewRequestFixture(
		testfixtures.WithRequestAccountEmail("other@example.com"),
		testfixtures.WithRequestTimestamps(base.Add(time.Minute), base.Add(time.Minute)),
	).Persistence()

	for _, request := range []persistence.Request{mine, theirs} {
		if err := harness.Requests.CreateRequest(ctx, request); err != nil {
			t.Fatalf("CreateRequest failed: %v", err)
		}
	}

	all, err := harness.Requests.ListRequests(ctx, persistence.RequestFilter{})
	if err != nil {
		t.Fatalf("ListRequests failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(all))
	}
	if all[0].ID != mine.ID {
		t.Errorf("expected submission order, got %+v", all)
	}
	if len(all[0].Items) != 1 || all[0].Items[0].Quantity != 1 {
		t.Errorf("unexpected items: %+v", all[0].Items)
	}

	filtered, err := harness.Requests.ListRequests(ctx, persistence.RequestFilter{AccountEmail: "jane@example.com"})
	if err != nil {
		t.Fatalf("ListRequests with filter failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != mine.ID {
		t.Errorf("unexpected filtered requests: %+v", filtered)
	}

	mine.Status = "Approved"
	mine.UpdatedAt = base.Add(time.Hour)
	if err := harness.Requests.UpdateRequest(ctx, mine); err != nil {
		t.Fatalf("UpdateRequest failed: %v", err)
	}
	retrieved, err := harness.Requests.GetRequest(ctx, mine.ID)
	if err != nil {
		t.Fatalf("GetRequest failed: %v", err)
	}
	if retrieved.Status != "Approved" {
		t.Errorf("status = %q, want Approved", retrieved.Status)
	}
}

func TestRequestRepository_GetMissing(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)

	if _, err := harness.Requests.GetRequest(context.Background(), "req-missing"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_Lifecycle(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	session := testfixtures.NewSessionFixture().Persistence()
	if _, err := harness.Sessions.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	retrieved, err := harness.Sessions.GetSession(ctx, session.Token)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if retrieved.AccountID != session.AccountID || retrieved.RevokedAt != nil {
		t.Errorf("unexpected session: %+v", retrieved)
	}

	revokedAt := session.CreatedAt.Add(time.Hour)
	revoked, err := harness.Sessions.RevokeSession(ctx, session.Token, revokedAt)
	if err != nil {
		t.Fatalf("RevokeSession failed: %v", err)
	}
	if revoked.RevokedAt == nil || !revoked.RevokedAt.Equal(revokedAt) {
		t.Errorf("revoked_at = %v, want %v", revoked.RevokedAt, revokedAt)
	}

	if _, err := harness.Sessions.RevokeSession(ctx, "no-such-token", revokedAt); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown token, got %v", err)
	}
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	base := testfixtures.ReferenceTime()
	expired := testfixtures.NewSessionFixture(testfixtures.WithSessionExpiresAt(base.Add(-time.Hour))).Persistence()
	active := testfixtures.NewSessionFixture(testfixtures.WithSessionExpiresAt(base.Add(time.Hour))).Persistence()

	for _, session := range []persistence.Session{expired, active} {
		if _, err := harness.Sessions.CreateSession(ctx, session); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
	}

	if err := harness.Sessions.DeleteExpiredSessions(ctx, base); err != nil {
		t.Fatalf("DeleteExpiredSessions failed: %v", err)
	}

	if _, err := harness.Sessions.GetSession(ctx, expired.Token); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected expired session to be removed, got %v", err)
	}
	if _, err := harness.Sessions.GetSession(ctx, active.Token); err != nil {
		t.Fatalf("expected active session to remain: %v", err)
	}
}

func TestVerificationRepository_SingleSlot(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	if _, err := harness.Verifications.PendingVerification(ctx); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound with no marker, got %v", err)
	}

	if err := harness.Verifications.SetPendingVerification(ctx, "First@Example.com"); err != nil {
		t.Fatalf("SetPendingVerification failed: %v", err)
	}
	if err := harness.Verifications.SetPendingVerification(ctx, "second@example.com"); err != nil {
		t.Fatalf("SetPendingVerification replacement failed: %v", err)
	}

	email, err := harness.Verifications.PendingVerification(ctx)
	if err != nil {
		t.Fatalf("PendingVerification failed: %v", err)
	}
	if email != "second@example.com" {
		t.Errorf("pending email = %q, want second@example.com", email)
	}

	if err := harness.Verifications.ClearPendingVerification(ctx); err != nil {
		t.Fatalf("ClearPendingVerification failed: %v", err)
	}
	if err := harness.Verifications.ClearPendingVerification(ctx); err != nil {
		t.Fatalf("clearing an absent marker should succeed, got %v", err)
	}
	if _, err := harness.Verifications.PendingVerification(ctx); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}
}
