package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
)

// ProfileAccountStore captures the account operations needed by the profile service.
type ProfileAccountStore interface {
	GetAccount(ctx context.Context, id string) (Account, error)
	GetAccountByEmail(ctx context.Context, email string) (Account, error)
	UpdateAccount(ctx context.Context, account Account) (Account, error)
	SetAccountPassword(ctx context.Context, id, passwordHash string) error
}

// EmployeeDirectory resolves and updates the employee record linked to an
// account email.
type EmployeeDirectory interface {
	GetEmployeeByEmail(ctx context.Context, email string) (Employee, error)
	UpdateEmployee(ctx context.Context, employee Employee) (Employee, error)
}

// ProfileService serves the caller's own combined account and employee view.
// The account is the source of truth for identity; the employee record linked
// by email contributes position and department, both blank when no record or
// department matches.
type ProfileService struct {
	accounts       ProfileAccountStore
	employees      EmployeeDirectory
	departments    DepartmentDirectory
	hash           PasswordHasher
	now            func() time.Time
	minPasswordLen int
	logger         *slog.Logger
}

// NewProfileService wires dependencies for the profile service.
func NewProfileService(
	accounts ProfileAccountStore,
	employees EmployeeDirectory,
	departments DepartmentDirectory,
	hash PasswordHasher,
	now func() time.Time,
	minPasswordLen int,
	logger *slog.Logger,
) *ProfileService {
	if hash == nil {
		hash = func(password string) (string, error) {
			return HashPassword(password, DefaultArgon2idParams)
		}
	}
	if now == nil {
		now = time.Now
	}
	if minPasswordLen <= 0 {
		minPasswordLen = 6
	}
	return &ProfileService{
		accounts:       accounts,
		employees:      employees,
		departments:    departments,
		hash:           hash,
		now:            now,
		minPasswordLen: minPasswordLen,
		logger:         defaultLogger(logger),
	}
}

// GetProfile returns the caller's account joined with its employee record.
func (s *ProfileService) GetProfile(ctx context.Context, principal Principal) (Profile, error) {
	if s == nil {
		return Profile{}, fmt.Errorf("ProfileService is nil")
	}
	if principal.AccountID == "" {
		return Profile{}, ErrUnauthorized
	}
	if s.accounts == nil {
		return Profile{}, fmt.Errorf("account store not configured")
	}

	account, err := s.accounts.GetAccount(ctx, principal.AccountID)
	if err != nil {
		return Profile{}, mapRepoError(err)
	}

	profile := Profile{Account: account}
	s.attachEmployment(ctx, &profile)
	return profile, nil
}

// UpdateProfile applies self-service edits to the caller's account and, when
// an employee record is linked by email, keeps that record in step. Changing
// the email to one held by another account is a conflict.
func (s *ProfileService) UpdateProfile(ctx context.Context, params UpdateProfileParams) (_ Profile, err error) {
	if s == nil {
		return Profile{}, fmt.Errorf("ProfileService is nil")
	}

	logger := serviceLogger(ctx, s.logger, "ProfileService", "UpdateProfile")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "update profile failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if params.Principal.AccountID == "" {
		return Profile{}, ErrUnauthorized
	}
	if s.accounts == nil {
		return Profile{}, fmt.Errorf("account store not configured")
	}

	account, err := s.accounts.GetAccount(ctx, params.Principal.AccountID)
	if err != nil {
		return Profile{}, mapRepoError(err)
	}

	input := ProfileInput{
		FirstName:    strings.TrimSpace(params.Input.FirstName),
		LastName:     strings.TrimSpace(params.Input.LastName),
		Email:        strings.ToLower(strings.TrimSpace(params.Input.Email)),
		NewPassword:  params.Input.NewPassword,
		DepartmentID: strings.TrimSpace(params.Input.DepartmentID),
	}

	if vErr := s.validateProfileInput(input); vErr.HasErrors() {
		return Profile{}, vErr
	}

	if input.Email != account.Email {
		if other, lookupErr := s.accounts.GetAccountByEmail(ctx, input.Email); lookupErr == nil && other.ID != account.ID {
			return Profile{}, ErrAlreadyExists
		} else if lookupErr != nil && !errors.Is(mapRepoError(lookupErr), ErrNotFound) {
			return Profile{}, mapRepoError(lookupErr)
		}
	}

	previousEmail := account.Email
	account.FirstName = input.FirstName
	account.LastName = input.LastName
	account.Email = input.Email
	account.UpdatedAt = s.now()

	account, err = s.accounts.UpdateAccount(ctx, account)
	if err != nil {
		return Profile{}, mapRepoError(err)
	}

	if input.NewPassword != "" {
		hash, hashErr := s.hash(input.NewPassword)
		if hashErr != nil {
			return Profile{}, fmt.Errorf("hash password: %w", hashErr)
		}
		if err = s.accounts.SetAccountPassword(ctx, account.ID, hash); err != nil {
			return Profile{}, mapRepoError(err)
		}
	}

	if err = s.syncEmployment(ctx, previousEmail, account.Email, input.DepartmentID); err != nil {
		return Profile{}, err
	}

	profile := Profile{Account: account}
	s.attachEmployment(ctx, &profile)

	logger.InfoContext(ctx, "profile updated", "account_id", account.ID)
	return profile, nil
}

// attachEmployment fills position and department from the employee record
// matching the account email, tolerating dangling department references.
func (s *ProfileService) attachEmployment(ctx context.Context, profile *Profile) {
	if s.employees == nil {
		return
	}

	employee, err := s.employees.GetEmployeeByEmail(ctx, profile.Account.Email)
	if err != nil {
		return
	}

	profile.Position = employee.Position
	profile.DepartmentID = employee.DepartmentID

	if s.departments == nil || employee.DepartmentID == "" {
		return
	}
	department, err := s.departments.GetDepartment(ctx, employee.DepartmentID)
	if err != nil {
		return
	}
	profile.DepartmentName = department.Name
}

// syncEmployment carries an email change over to the linked employee record
// and applies a department selection. The record is looked up under the
// pre-change email first so that the link survives the rename.
func (s *ProfileService) syncEmployment(ctx context.Context, previousEmail, newEmail, departmentID string) error {
	if s.employees == nil {
		return nil
	}

	employee, err := s.employees.GetEmployeeByEmail(ctx, previousEmail)
	if err != nil {
		if !errors.Is(mapRepoError(err), ErrNotFound) {
			return mapRepoError(err)
		}
		employee, err = s.employees.GetEmployeeByEmail(ctx, newEmail)
		if err != nil {
			if errors.Is(mapRepoError(err), ErrNotFound) {
				return nil
			}
			return mapRepoError(err)
		}
	}

	changed := false
	if employee.Email != newEmail {
		employee.Email = newEmail
		changed = true
	}
	if departmentID != "" && departmentID != employee.DepartmentID {
		if s.departments != nil {
			if _, lookupErr := s.departments.GetDepartment(ctx, departmentID); lookupErr != nil {
				vErr := &ValidationError{}
				vErr.add("department_id", "department does not exist")
				return vErr
			}
		}
		employee.DepartmentID = departmentID
		changed = true
	}

	if !changed {
		return nil
	}

	employee.UpdatedAt = s.now()
	if _, err := s.employees.UpdateEmployee(ctx, employee); err != nil {
		return mapRepoError(err)
	}
	return nil
}

func (s *ProfileService) validateProfileInput(input ProfileInput) *ValidationError {
	vErr := &ValidationError{}

	if input.FirstName == "" {
		vErr.add("first_name", "first name is required")
	}
	if input.LastName == "" {
		vErr.add("last_name", "last name is required")
	}
	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is invalid")
	}
	if input.NewPassword != "" && len(input.NewPassword) < s.minPasswordLen {
		vErr.add("new_password", fmt.Sprintf("password must be at least %d characters", s.minPasswordLen))
	}

	return vErr
}
