package persistence

import (
	"context"
	"time"
)

// AccountRepository exposes CRUD operations for accounts.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account Account) error
	UpdateAccount(ctx context.Context, account Account) error
	GetAccount(ctx context.Context, id string) (Account, error)
	GetAccountByEmail(ctx context.Context, email string) (Account, error)
	ListAccounts(ctx context.Context) ([]Account, error)
	DeleteAccount(ctx context.Context, id string) error
}

// DepartmentRepository exposes CRUD operations for departments.
type DepartmentRepository interface {
	CreateDepartment(ctx context.Context, department Department) error
	UpdateDepartment(ctx context.Context, department Department) error
	GetDepartment(ctx context.Context, id string) (Department, error)
	ListDepartments(ctx context.Context) ([]Department, error)
	DeleteDepartment(ctx context.Context, id string) error
}

// EmployeeRepository exposes CRUD operations for employee records.
type EmployeeRepository interface {
	CreateEmployee(ctx context.Context, employee Employee) error
	UpdateEmployee(ctx context.Context, employee Employee) error
	GetEmployee(ctx context.Context, id string) (Employee, error)
	GetEmployeeByEmail(ctx context.Context, email string) (Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
}

// RequestFilter narrows request queries.
type RequestFilter struct {
	AccountEmail string
}

// RequestRepository stores purchase requests and their line items.
type RequestRepository interface {
	CreateRequest(ctx context.Context, request Request) error
	UpdateRequest(ctx context.Context, request Request) error
	GetRequest(ctx context.Context, id string) (Request, error)
	ListRequests(ctx context.Context, filter RequestFilter) ([]Request, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// VerificationRepository tracks the single pending email verification marker.
type VerificationRepository interface {
	SetPendingVerification(ctx context.Context, email string) error
	PendingVerification(ctx context.Context) (string, error)
	ClearPendingVerification(ctx context.Context) error
}
