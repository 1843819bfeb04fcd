package persistence

import "time"

// Account represents an identity and credential record in the portal.
type Account struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         string
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Department represents an organizational unit.
type Department struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
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

// RequestItem is a single line item on a purchase request.
type RequestItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Request represents a purchase/equipment request awaiting review.
type Request struct {
	ID           string
	Type         string
	Items        []RequestItem
	Status       string
	AccountEmail string
	SubmittedAt  time.Time
	UpdatedAt    time.Time
}

// Session represents an authentication session persisted for an account.
type Session struct {
	ID        string
	AccountID string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
