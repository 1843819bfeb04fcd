package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/hr-portal/internal/application"
	"github.com/example/hr-portal/internal/persistence"
)

var (
	accountCounter    uint64
	departmentCounter uint64
	employeeCounter   uint64
	requestCounter    uint64
	sessionCounter    uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ---------------------------- Account fixtures ----------------------------

// AccountFixture represents a deterministic account record that can be
// materialised for application or persistence tests.
type AccountFixture struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         application.Role
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountOption configures the generated account fixture.
type AccountOption func(*AccountFixture)

// NewAccountFixture returns a deterministic account fixture with optional overrides.
func NewAccountFixture(opts ...AccountOption) AccountFixture {
	idx := atomic.AddUint64(&accountCounter, 1)
	id := fmt.Sprintf("acc-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := AccountFixture{
		ID:           id,
		FirstName:    fmt.Sprintf("First%03d", idx),
		LastName:     fmt.Sprintf("Last%03d", idx),
		Email:        fmt.Sprintf("%s@example.com", id),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		Role:         application.RoleUser,
		Verified:     true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAccountID overrides the generated account ID.
func WithAccountID(id string) AccountOption {
	return func(f *AccountFixture) {
		f.ID = id
	}
}

// WithAccountName overrides the generated first and last name.
func WithAccountName(first, last string) AccountOption {
	return func(f *AccountFixture) {
		f.FirstName = first
		f.LastName = last
	}
}

// WithAccountEmail overrides the generated email address.
func WithAccountEmail(email string) AccountOption {
	return func(f *AccountFixture) {
		f.Email = email
	}
}

// WithAccountPasswordHash overrides the generated password hash.
func WithAccountPasswordHash(hash string) AccountOption {
	return func(f *AccountFixture) {
		f.PasswordHash = hash
	}
}

// WithAccountRole sets the role on the generated fixture.
func WithAccountRole(role application.Role) AccountOption {
	return func(f *AccountFixture) {
		f.Role = role
	}
}

// WithAccountVerified sets the verified flag on the generated fixture.
func WithAccountVerified(verified bool) AccountOption {
	return func(f *AccountFixture) {
		f.Verified = verified
	}
}

// WithAccountTimestamps sets both created and updated timestamps on the fixture.
func WithAccountTimestamps(created, updated time.Time) AccountOption {
	return func(f *AccountFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Account value.
func (f AccountFixture) Application() application.Account {
	return application.Account{
		ID:        f.ID,
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		Role:      f.Role,
		Verified:  f.Verified,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Credentials returns the fixture as application.AccountCredentials.
func (f AccountFixture) Credentials() application.AccountCredentials {
	return application.AccountCredentials{
		Account:      f.Application(),
		PasswordHash: f.PasswordHash,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f AccountFixture) Principal() application.Principal {
	return application.Principal{AccountID: f.ID, Email: f.Email, Role: f.Role}
}

// Persistence returns the fixture as a persistence.Account value.
func (f AccountFixture) Persistence() persistence.Account {
	return persistence.Account{
		ID:           f.ID,
		FirstName:    f.FirstName,
		LastName:     f.LastName,
		Email:        f.Email,
		PasswordHash: f.PasswordHash,
		Role:         string(f.Role),
		Verified:     f.Verified,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// -------------------------- Department fixtures --------------------------

// DepartmentFixture represents a deterministic department record.
type DepartmentFixture struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DepartmentOption configures the generated department fixture.
type DepartmentOption func(*DepartmentFixture)

// NewDepartmentFixture returns a deterministic department fixture with optional overrides.
func NewDepartmentFixture(opts ...DepartmentOption) DepartmentFixture {
	idx := atomic.AddUint64(&departmentCounter, 1)
	id := fmt.Sprintf("dept-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := DepartmentFixture{
		ID:          id,
		Name:        fmt.Sprintf("Department %03d", idx),
		Description: "General operations",
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithDepartmentID overrides the generated department ID.
func WithDepartmentID(id string) DepartmentOption {
	return func(f *DepartmentFixture) {
		f.ID = id
	}
}

// WithDepartmentName overrides the generated department name.
func WithDepartmentName(name string) DepartmentOption {
	return func(f *DepartmentFixture) {
		f.Name = name
	}
}

// WithDepartmentDescription sets the description on the fixture.
func WithDepartmentDescription(description string) DepartmentOption {
	return func(f *DepartmentFixture) {
		f.Description = description
	}
}

// WithDepartmentTimestamps sets both created and updated timestamps.
func WithDepartmentTimestamps(created, updated time.Time) DepartmentOption {
	return func(f *DepartmentFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Department value.
func (f DepartmentFixture) Application() application.Department {
	return application.Department{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Department value.
func (f DepartmentFixture) Persistence() persistence.Department {
	return persistence.Department{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Input returns the fixture as an application.DepartmentInput.
func (f DepartmentFixture) Input() application.DepartmentInput {
	return application.DepartmentInput{
		Name:        f.Name,
		Description: f.Description,
	}
}

// --------------------------- Employee fixtures ---------------------------

// EmployeeFixture represents a deterministic employee record.
type EmployeeFixture struct {
	ID           string
	EmployeeID   string
	Email        string
	Position     string
	DepartmentID string
	HireDate     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EmployeeOption configures the generated employee fixture.
type EmployeeOption func(*EmployeeFixture)

// NewEmployeeFixture returns a deterministic employee fixture with optional overrides.
func NewEmployeeFixture(opts ...EmployeeOption) EmployeeFixture {
	idx := atomic.AddUint64(&employeeCounter, 1)
	id := fmt.Sprintf("emp-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	hire := referenceTime.AddDate(0, 0, -int(idx))
	fixture := EmployeeFixture{
		ID:           id,
		EmployeeID:   fmt.Sprintf("E-%03d", idx),
		Email:        fmt.Sprintf("acc-%03d@example.com", idx),
		Position:     "Specialist",
		DepartmentID: fmt.Sprintf("dept-%03d", idx),
		HireDate:     &hire,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEmployeeRecordID overrides the generated record ID.
func WithEmployeeRecordID(id string) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.ID = id
	}
}

// WithEmployeeNumber overrides the human assigned employee number.
func WithEmployeeNumber(number string) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.EmployeeID = number
	}
}

// WithEmployeeEmail overrides the linked account email.
func WithEmployeeEmail(email string) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.Email = email
	}
}

// WithEmployeePosition sets the position title.
func WithEmployeePosition(position string) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.Position = position
	}
}

// WithEmployeeDepartment sets the department reference.
func WithEmployeeDepartment(departmentID string) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.DepartmentID = departmentID
	}
}

// WithEmployeeHireDate sets the hire date.
func WithEmployeeHireDate(t time.Time) EmployeeOption {
	return func(f *EmployeeFixture) {
		hire := t
		f.HireDate = &hire
	}
}

// WithoutEmployeeHireDate clears the hire date.
func WithoutEmployeeHireDate() EmployeeOption {
	return func(f *EmployeeFixture) {
		f.HireDate = nil
	}
}

// WithEmployeeTimestamps sets both created and updated timestamps.
func WithEmployeeTimestamps(created, updated time.Time) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Employee value.
func (f EmployeeFixture) Application() application.Employee {
	return application.Employee{
		ID:           f.ID,
		EmployeeID:   f.EmployeeID,
		Email:        f.Email,
		Position:     f.Position,
		DepartmentID: f.DepartmentID,
		HireDate:     copyTimePtr(f.HireDate),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Employee value.
func (f EmployeeFixture) Persistence() persistence.Employee {
	return persistence.Employee{
		ID:           f.ID,
		EmployeeID:   f.EmployeeID,
		Email:        f.Email,
		Position:     f.Position,
		DepartmentID: f.DepartmentID,
		HireDate:     copyTimePtr(f.HireDate),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Input returns the fixture as an application.EmployeeInput.
func (f EmployeeFixture) Input() application.EmployeeInput {
	return application.EmployeeInput{
		EmployeeID:   f.EmployeeID,
		Email:        f.Email,
		Position:     f.Position,
		DepartmentID: f.DepartmentID,
		HireDate:     copyTimePtr(f.HireDate),
	}
}

// ---------------------------- Request fixtures ---------------------------

// RequestFixture represents a deterministic purchase request record.
type RequestFixture struct {
	ID           string
	Type         string
	Items        []application.RequestItem
	Status       application.RequestStatus
	AccountEmail string
	SubmittedAt  time.Time
	UpdatedAt    time.Time
}

// RequestOption configures the generated request fixture.
type RequestOption func(*RequestFixture)

// NewRequestFixture returns a deterministic request fixture with optional overrides.
func NewRequestFixture(opts ...RequestOption) RequestFixture {
	idx := atomic.AddUint64(&requestCounter, 1)
	id := fmt.Sprintf("req-%03d", idx)
	submitted := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := RequestFixture{
		ID:           id,
		Type:         "Equipment",
		Items:        []application.RequestItem{{Name: fmt.Sprintf("Item %03d", idx), Quantity: 1}},
		Status:       application.StatusPending,
		AccountEmail: fmt.Sprintf("acc-%03d@example.com", idx),
		SubmittedAt:  submitted,
		UpdatedAt:    submitted,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRequestID overrides the generated request ID.
func WithRequestID(id string) RequestOption {
	return func(f *RequestFixture) {
		f.ID = id
	}
}

// WithRequestType sets the request type.
func WithRequestType(requestType string) RequestOption {
	return func(f *RequestFixture) {
		f.Type = requestType
	}
}

// WithRequestItems sets the line items.
func WithRequestItems(items ...application.RequestItem) RequestOption {
	return func(f *RequestFixture) {
		f.Items = append([]application.RequestItem(nil), items...)
	}
}

// WithRequestStatus sets the review status.
func WithRequestStatus(status application.RequestStatus) RequestOption {
	return func(f *RequestFixture) {
		f.Status = status
	}
}

// WithRequestAccountEmail sets the submitting account email.
func WithRequestAccountEmail(email string) RequestOption {
	return func(f *RequestFixture) {
		f.AccountEmail = email
	}
}

// WithRequestTimestamps sets both submitted and updated timestamps.
func WithRequestTimestamps(submitted, updated time.Time) RequestOption {
	return func(f *RequestFixture) {
		f.SubmittedAt = submitted
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Request value.
func (f RequestFixture) Application() application.Request {
	return application.Request{
		ID:           f.ID,
		Type:         f.Type,
		Items:        append([]application.RequestItem(nil), f.Items...),
		Status:       f.Status,
		AccountEmail: f.AccountEmail,
		SubmittedAt:  f.SubmittedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Request value.
func (f RequestFixture) Persistence() persistence.Request {
	items := make([]persistence.RequestItem, 0, len(f.Items))
	for _, item := range f.Items {
		items = append(items, persistence.RequestItem{Name: item.Name, Quantity: item.Quantity})
	}
	return persistence.Request{
		ID:           f.ID,
		Type:         f.Type,
		Items:        items,
		Status:       string(f.Status),
		AccountEmail: f.AccountEmail,
		SubmittedAt:  f.SubmittedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// ---------------------------- Session fixtures ---------------------------

// SessionFixture represents a deterministic session record.
type SessionFixture struct {
	ID        string
	AccountID string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a deterministic session fixture with optional overrides.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	created := referenceTime
	fixture := SessionFixture{
		ID:        fmt.Sprintf("sess-%03d", idx),
		AccountID: fmt.Sprintf("acc-%03d", idx),
		Token:     fmt.Sprintf("token-%03d", idx),
		ExpiresAt: created.Add(24 * time.Hour),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionID overrides the session ID.
func WithSessionID(id string) SessionOption {
	return func(f *SessionFixture) {
		f.ID = id
	}
}

// WithSessionAccountID sets the owning account ID.
func WithSessionAccountID(id string) SessionOption {
	return func(f *SessionFixture) {
		f.AccountID = id
	}
}

// WithSessionToken overrides the token value.
func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) {
		f.Token = token
	}
}

// WithSessionExpiresAt sets the expiration timestamp.
func WithSessionExpiresAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.ExpiresAt = t
	}
}

// WithSessionRevokedAt sets the optional revoked timestamp.
func WithSessionRevokedAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		revoked := t
		f.RevokedAt = &revoked
	}
}

// Application returns the fixture as an application.Session value.
func (f SessionFixture) Application() application.Session {
	return application.Session{
		ID:        f.ID,
		AccountID: f.AccountID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: copyTimePtr(f.RevokedAt),
	}
}

// Persistence returns the fixture as a persistence.Session value.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:        f.ID,
		AccountID: f.AccountID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: copyTimePtr(f.RevokedAt),
	}
}

func copyTimePtr(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}
