package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Default records installed when the store holds no accounts at startup.
const (
	SeedAdminEmail    = "admin@example.com"
	SeedAdminPassword = "Password123!"
)

// EnsureSeedData installs the default admin account and departments when the
// account store is empty. A store that already holds at least one account is
// left untouched, so the seed runs once per database lifetime.
func EnsureSeedData(
	ctx context.Context,
	accounts AccountRepository,
	departments DepartmentRepository,
	hash PasswordHasher,
	idGenerator func() string,
	now func() time.Time,
	logger *slog.Logger,
) error {
	if accounts == nil || departments == nil {
		return fmt.Errorf("seed requires account and department repositories")
	}
	if hash == nil {
		hash = func(password string) (string, error) {
			return HashPassword(password, DefaultArgon2idParams)
		}
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	logger = defaultLogger(logger)

	existing, err := accounts.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	passwordHash, err := hash(SeedAdminPassword)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	ts := now()
	admin := Account{
		ID:        idGenerator(),
		FirstName: "Admin",
		LastName:  "User",
		Email:     SeedAdminEmail,
		Role:      RoleAdmin,
		Verified:  true,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if _, err := accounts.CreateAccount(ctx, admin, passwordHash); err != nil {
		return fmt.Errorf("create seed admin: %w", err)
	}

	seedDepartments := []Department{
		{Name: "Engineering", Description: "Software & hardware engineering team"},
		{Name: "HR", Description: "Human resources & people ops"},
	}
	for _, department := range seedDepartments {
		department.ID = idGenerator()
		department.CreatedAt = ts
		department.UpdatedAt = ts
		if _, err := departments.CreateDepartment(ctx, department); err != nil {
			return fmt.Errorf("create seed department %q: %w", department.Name, err)
		}
	}

	logger.InfoContext(ctx, "seed data installed",
		"admin_email", SeedAdminEmail,
		"department_count", len(seedDepartments))
	return nil
}
