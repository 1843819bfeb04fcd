package application

import "time"

// Role labels the authorization level of an account.
type Role string

const (
	// RoleUser is the default role assigned at registration.
	RoleUser Role = "user"
	// RoleAdmin grants access to the administration surfaces.
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Principal represents the authenticated account invoking a service method.
type Principal struct {
	AccountID string
	Email     string
	Role      Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Account represents an identity record exposed by the application services.
// Credential material is kept separately in AccountCredentials.
type Account struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Role      Role
	Verified  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AccountCredentials pairs an account with its stored password hash.
type AccountCredentials struct {
	Account      Account
	PasswordHash string
}

// RegisterParams captures self-service registration input.
type RegisterParams struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// AccountInput captures admin-editable account attributes.
type AccountInput struct {
	FirstName string
	LastName  string
	Email     string
	Role      Role
	Verified  bool
}

// CreateAccountParams wraps the data required for an administrator to create an account.
type CreateAccountParams struct {
	Principal Principal
	Input     AccountInput
	Password  string
}

// UpdateAccountParams wraps the data required for an administrator to update an account.
type UpdateAccountParams struct {
	Principal Principal
	AccountID string
	Input     AccountInput
}

// ResetPasswordParams wraps the data required to reset an account password.
type ResetPasswordParams struct {
	Principal Principal
	AccountID string
	Password  string
}

// AuthenticateParams captures the data required to authenticate an account.
type AuthenticateParams struct {
	Email    string
	Password string
}

// Session represents an authenticated session issued to an account.
type Session struct {
	ID        string
	AccountID string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateResult captures the outcome of a successful login.
type AuthenticateResult struct {
	Account Account
	Session Session
}

// Department represents an organizational unit.
type Department struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DepartmentInput captures caller provided department fields.
type DepartmentInput struct {
	Name        string
	Description string
}

// CreateDepartmentParams wraps the data required to create a department.
type CreateDepartmentParams struct {
	Principal Principal
	Input     DepartmentInput
}

// UpdateDepartmentParams wraps the data required to update a department.
type UpdateDepartmentParams struct {
	Principal    Principal
	DepartmentID string
	Input        DepartmentInput
}

// Employee links an account email to organizational attributes.
type Employee struct {
	ID           string
	EmployeeID   string
	Email        string
	Position     string
	DepartmentID string
	HireDate     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EmployeeInput captures caller provided employee fields.
type EmployeeInput struct {
	EmployeeID   string
	Email        string
	Position     string
	DepartmentID string
	HireDate     *time.Time
}

// CreateEmployeeParams wraps the data required to create an employee record.
type CreateEmployeeParams struct {
	Principal Principal
	Input     EmployeeInput
}

// UpdateEmployeeParams wraps the data required to update an employee record.
type UpdateEmployeeParams struct {
	Principal  Principal
	EmployeeID string
	Input      EmployeeInput
}

// RequestStatus labels the review state of a purchase request.
type RequestStatus string

const (
	// StatusPending marks a freshly submitted request.
	StatusPending RequestStatus = "Pending"
	// StatusApproved marks a request accepted by an administrator.
	StatusApproved RequestStatus = "Approved"
	// StatusRejected marks a request declined by an administrator.
	StatusRejected RequestStatus = "Rejected"
)

// RequestItem is a single line item on a purchase request.
type RequestItem struct {
	Name     string
	Quantity int
}

// Request represents a purchase/equipment request.
type Request struct {
	ID           string
	Type         string
	Items        []RequestItem
	Status       RequestStatus
	AccountEmail string
	SubmittedAt  time.Time
	UpdatedAt    time.Time
}

// SubmitRequestParams wraps the data required to submit a request.
type SubmitRequestParams struct {
	Principal Principal
	Type      string
	Items     []RequestItem
}

// SetRequestStatusParams wraps the data required to approve or reject a request.
type SetRequestStatusParams struct {
	Principal Principal
	RequestID string
	Status    RequestStatus
}

// Profile combines an account with its linked organizational attributes.
// Position and DepartmentName are empty when no employee record matches the
// account email or when the referenced department no longer exists.
type Profile struct {
	Account        Account
	Position       string
	DepartmentID   string
	DepartmentName string
}

// ProfileInput captures self-service profile edits. NewPassword is optional;
// DepartmentID applies only when an employee record is linked to the account.
type ProfileInput struct {
	FirstName    string
	LastName     string
	Email        string
	NewPassword  string
	DepartmentID string
}

// UpdateProfileParams wraps the data required to update the caller's profile.
type UpdateProfileParams struct {
	Principal Principal
	Input     ProfileInput
}
