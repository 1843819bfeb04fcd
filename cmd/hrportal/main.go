package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/hr-portal/internal/application"
	"github.com/example/hr-portal/internal/config"
	httptransport "github.com/example/hr-portal/internal/http"
	"github.com/example/hr-portal/internal/persistence"
	"github.com/example/hr-portal/internal/persistence/sqlite"
)

// guardedPrefixes lists the route groups that require a valid session. The
// register, verification, session, and home routes stay reachable without one.
var guardedPrefixes = []string{"/profile", "/accounts", "/departments", "/employees", "/requests"}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	accounts := newAccountStoreAdapter(storage)
	departments := newDepartmentStoreAdapter(storage)
	employees := newEmployeeStoreAdapter(storage)
	requests := newRequestStoreAdapter(storage)
	sessions := newSessionStoreAdapter(storage)
	verifications := newVerificationStoreAdapter(storage)

	if err := application.EnsureSeedData(ctx, accounts, departments, nil, idGenerator, now, logger); err != nil {
		logger.Error("failed to seed initial data", "error", err)
		os.Exit(1)
	}

	authService := application.NewAuthService(application.AuthServiceConfig{
		Credentials:    accounts,
		Sessions:       sessions,
		Verifications:  verifications,
		IDGenerator:    idGenerator,
		TokenGenerator: tokenGenerator,
		Now:            now,
		SessionTTL:     cfg.SessionTTL,
		MinPasswordLen: cfg.MinPasswordLength,
		Logger:         logger,
	})
	accountService := application.NewAccountService(accounts, nil, idGenerator, now, cfg.MinPasswordLength, logger)
	departmentService := application.NewDepartmentService(departments, idGenerator, now)
	employeeService := application.NewEmployeeService(employees, accounts, departments, idGenerator, now, logger)
	requestService := application.NewRequestService(requests, idGenerator, now, logger)
	profileService := application.NewProfileService(accounts, employees, departments, nil, now, cfg.MinPasswordLength, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:        httptransport.NewAuthHandler(authService, logger),
		Accounts:    httptransport.NewAccountHandler(accountService, logger),
		Departments: httptransport.NewDepartmentHandler(departmentService, logger),
		Employees:   httptransport.NewEmployeeHandler(employeeService, logger),
		Requests:    httptransport.NewRequestHandler(requestService, logger),
		Profile:     httptransport.NewProfileHandler(profileService, departmentService, logger),
		Admin:       httptransport.RequireAdmin(logger),
	})

	protected := httptransport.RequireSession(authService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if guardedPath(r.URL.Path) {
			protected.ServeHTTP(w, r)
			return
		}
		router.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("hr portal API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func guardedPath(path string) bool {
	for _, prefix := range guardedPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// mapStoreErr translates persistence sentinels into the application sentinels
// the services branch on.
func mapStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return application.ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return application.ErrAlreadyExists
	default:
		return err
	}
}

type accountStoreAdapter struct {
	repo persistence.AccountRepository
}

func newAccountStoreAdapter(repo persistence.AccountRepository) *accountStoreAdapter {
	return &accountStoreAdapter{repo: repo}
}

func (a *accountStoreAdapter) CreateAccount(ctx context.Context, account application.Account, passwordHash string) (application.Account, error) {
	if err := a.repo.CreateAccount(ctx, toPersistenceAccount(account, passwordHash)); err != nil {
		return application.Account{}, mapStoreErr(err)
	}
	stored, err := a.repo.GetAccount(ctx, account.ID)
	if err != nil {
		return application.Account{}, mapStoreErr(err)
	}
	return toApplicationAccount(stored), nil
}

func (a *accountStoreAdapter) GetAccount(ctx context.Context, id string) (application.Account, error) {
	stored, err := a.repo.GetAccount(ctx, id)
	if err != nil {
		return application.Account{}, mapStoreErr(err)
	}
	return toApplicationAccount(stored), nil
}

func (a *accountStoreAdapter) GetAccountByEmail(ctx context.Context, email string) (application.Account, error) {
	stored, err := a.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		return application.Account{}, mapStoreErr(err)
	}
	return toApplicationAccount(stored), nil
}

func (a *accountStoreAdapter) GetAccountCredentialsByEmail(ctx context.Context, email string) (application.AccountCredentials, error) {
	stored, err := a.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		return application.AccountCredentials{}, mapStoreErr(err)
	}
	return application.AccountCredentials{
		Account:      toApplicationAccount(stored),
		PasswordHash: stored.PasswordHash,
	}, nil
}

func (a *accountStoreAdapter) UpdateAccount(ctx context.Context, account application.Account) (application.Account, error) {
	current, err := a.repo.GetAccount(ctx, account.ID)
	if err != nil {
		return application.Account{}, mapStoreErr(err)
	}
	if err := a.repo.UpdateAccount(ctx, toPersistenceAccount(account, current.PasswordHash)); err != nil {
		return application.Account{}, mapStoreErr(err)
	}
	stored, err := a.repo.GetAccount(ctx, account.ID)
	if err != nil {
		return application.Account{}, mapStoreErr(err)
	}
	return toApplicationAccount(stored), nil
}

func (a *accountStoreAdapter) SetAccountPassword(ctx context.Context, id, passwordHash string) error {
	current, err := a.repo.GetAccount(ctx, id)
	if err != nil {
		return mapStoreErr(err)
	}
	current.PasswordHash = passwordHash
	return mapStoreErr(a.repo.UpdateAccount(ctx, current))
}

func (a *accountStoreAdapter) SetAccountVerified(ctx context.Context, id string, verified bool) (application.Account, error) {
	current, err := a.repo.GetAccount(ctx, id)
	if err != nil {
		return application.Account{}, mapStoreErr(err)
	}
	current.Verified = verified
	if err := a.repo.UpdateAccount(ctx, current); err != nil {
		return application.Account{}, mapStoreErr(err)
	}
	stored, err := a.repo.GetAccount(ctx, id)
	if err != nil {
		return application.Account{}, mapStoreErr(err)
	}
	return toApplicationAccount(stored), nil
}

func (a *accountStoreAdapter) DeleteAccount(ctx context.Context, id string) error {
	return mapStoreErr(a.repo.DeleteAccount(ctx, id))
}

func (a *accountStoreAdapter) ListAccounts(ctx context.Context) ([]application.Account, error) {
	models, err := a.repo.ListAccounts(ctx)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	accounts := make([]application.Account, 0, len(models))
	for _, model := range models {
		accounts = append(accounts, toApplicationAccount(model))
	}
	return accounts, nil
}

type departmentStoreAdapter struct {
	repo persistence.DepartmentRepository
}

func newDepartmentStoreAdapter(repo persistence.DepartmentRepository) *departmentStoreAdapter {
	return &departmentStoreAdapter{repo: repo}
}

func (a *departmentStoreAdapter) CreateDepartment(ctx context.Context, department application.Department) (application.Department, error) {
	if err := a.repo.CreateDepartment(ctx, toPersistenceDepartment(department)); err != nil {
		return application.Department{}, mapStoreErr(err)
	}
	stored, err := a.repo.GetDepartment(ctx, department.ID)
	if err != nil {
		return application.Department{}, mapStoreErr(err)
	}
	return toApplicationDepartment(stored), nil
}

func (a *departmentStoreAdapter) GetDepartment(ctx context.Context, id string) (application.Department, error) {
	stored, err := a.repo.GetDepartment(ctx, id)
	if err != nil {
		return application.Department{}, mapStoreErr(err)
	}
	return toApplicationDepartment(stored), nil
}

func (a *departmentStoreAdapter) UpdateDepartment(ctx context.Context, department application.Department) (application.Department, error) {
	if err := a.repo.UpdateDepartment(ctx, toPersistenceDepartment(department)); err != nil {
		return application.Department{}, mapStoreErr(err)
	}
	stored, err := a.repo.GetDepartment(ctx, department.ID)
	if err != nil {
		return application.Department{}, mapStoreErr(err)
	}
	return toApplicationDepartment(stored), nil
}

func (a *departmentStoreAdapter) DeleteDepartment(ctx context.Context, id string) error {
	return mapStoreErr(a.repo.DeleteDepartment(ctx, id))
}

func (a *departmentStoreAdapter) ListDepartments(ctx context.Context) ([]application.Department, error) {
	models, err := a.repo.ListDepartments(ctx)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	departments := make([]application.Department, 0, len(models))
	for _, model := range models {
		departments = append(departments, toApplicationDepartment(model))
	}
	return departments, nil
}

type employeeStoreAdapter struct {
	repo persistence.EmployeeRepository
}

func newEmployeeStoreAdapter(repo persistence.EmployeeRepository) *employeeStoreAdapter {
	return &employeeStoreAdapter{repo: repo}
}

func (a *employeeStoreAdapter) CreateEmployee(ctx context.Context, employee application.Employee) (application.Employee, error) {
	if err := a.repo.CreateEmployee(ctx, toPersistenceEmployee(employee)); err != nil {
		return application.Employee{}, mapStoreErr(err)
	}
	stored, err := a.repo.GetEmployee(ctx, employee.ID)
	if err != nil {
		return application.Employee{}, mapStoreErr(err)
	}
	return toApplicationEmployee(stored), nil
}

func (a *employeeStoreAdapter) GetEmployee(ctx context.Context, id string) (application.Employee, error) {
	stored, err := a.repo.GetEmployee(ctx, id)
	if err != nil {
		return application.Employee{}, mapStoreErr(err)
	}
	return toApplicationEmployee(stored), nil
}

func (a *employeeStoreAdapter) GetEmployeeByEmail(ctx context.Context, email string) (application.Employee, error) {
	stored, err := a.repo.GetEmployeeByEmail(ctx, email)
	if err != nil {
		return application.Employee{}, mapStoreErr(err)
	}
	return toApplicationEmployee(stored), nil
}

func (a *employeeStoreAdapter) UpdateEmployee(ctx context.Context, employee application.Employee) (application.Employee, error) {
	if err := a.repo.UpdateEmployee(ctx, toPersistenceEmployee(employee)); err != nil {
		return application.Employee{}, mapStoreErr(err)
	}
	stored, err := a.repo.GetEmployee(ctx, employee.ID)
	if err != nil {
		return application.Employee{}, mapStoreErr(err)
	}
	return toApplicationEmployee(stored), nil
}

func (a *employeeStoreAdapter) DeleteEmployee(ctx context.Context, id string) error {
	return mapStoreErr(a.repo.DeleteEmployee(ctx, id))
}

func (a *employeeStoreAdapter) ListEmployees(ctx context.Context) ([]application.Employee, error) {
	models, err := a.repo.ListEmployees(ctx)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	employees := make([]application.Employee, 0, len(models))
	for _, model := range models {
		employees = append(employees, toApplicationEmployee(model))
	}
	return employees, nil
}

type requestStoreAdapter struct {
	repo persistence.RequestRepository
}

func newRequestStoreAdapter(repo persistence.RequestRepository) *requestStoreAdapter {
	return &requestStoreAdapter{repo: repo}
}

func (a *requestStoreAdapter) CreateRequest(ctx context.Context, request application.Request) (application.Request, error) {
	if err := a.repo.CreateRequest(ctx, toPersistenceRequest(request)); err != nil {
		return application.Request{}, mapStoreErr(err)
	}
	stored, err := a.repo.GetRequest(ctx, request.ID)
	if err != nil {
		return application.Request{}, mapStoreErr(err)
	}
	return toApplicationRequest(stored), nil
}

func (a *requestStoreAdapter) GetRequest(ctx context.Context, id string) (application.Request, error) {
	stored, err := a.repo.GetRequest(ctx, id)
	if err != nil {
		return application.Request{}, mapStoreErr(err)
	}
	return toApplicationRequest(stored), nil
}

func (a *requestStoreAdapter) UpdateRequest(ctx context.Context, request application.Request) (application.Request, error) {
	if err := a.repo.UpdateRequest(ctx, toPersistenceRequest(request)); err != nil {
		return application.Request{}, mapStoreErr(err)
	}
	stored, err := a.repo.GetRequest(ctx, request.ID)
	if err != nil {
		return application.Request{}, mapStoreErr(err)
	}
	return toApplicationRequest(stored), nil
}

func (a *requestStoreAdapter) ListRequests(ctx context.Context, filter application.RequestFilter) ([]application.Request, error) {
	models, err := a.repo.ListRequests(ctx, persistence.RequestFilter{AccountEmail: filter.AccountEmail})
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	requests := make([]application.Request, 0, len(models))
	for _, model := range models {
		requests = append(requests, toApplicationRequest(model))
	}
	return requests, nil
}

type sessionStoreAdapter struct {
	repo persistence.SessionRepository
}

func newSessionStoreAdapter(repo persistence.SessionRepository) *sessionStoreAdapter {
	return &sessionStoreAdapter{repo: repo}
}

func (a *sessionStoreAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, mapStoreErr(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionStoreAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, mapStoreErr(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionStoreAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, mapStoreErr(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionStoreAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return mapStoreErr(a.repo.DeleteExpiredSessions(ctx, reference))
}

type verificationStoreAdapter struct {
	repo persistence.VerificationRepository
}

func newVerificationStoreAdapter(repo persistence.VerificationRepository) *verificationStoreAdapter {
	return &verificationStoreAdapter{repo: repo}
}

func (a *verificationStoreAdapter) SetPending(ctx context.Context, email string) error {
	return mapStoreErr(a.repo.SetPendingVerification(ctx, email))
}

func (a *verificationStoreAdapter) Pending(ctx context.Context) (string, error) {
	email, err := a.repo.PendingVerification(ctx)
	if err != nil {
		return "", mapStoreErr(err)
	}
	return email, nil
}

func (a *verificationStoreAdapter) ClearPending(ctx context.Context) error {
	return mapStoreErr(a.repo.ClearPendingVerification(ctx))
}

func toApplicationAccount(model persistence.Account) application.Account {
	return application.Account{
		ID:        model.ID,
		FirstName: model.FirstName,
		LastName:  model.LastName,
		Email:     model.Email,
		Role:      application.Role(model.Role),
		Verified:  model.Verified,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceAccount(account application.Account, passwordHash string) persistence.Account {
	return persistence.Account{
		ID:           account.ID,
		FirstName:    account.FirstName,
		LastName:     account.LastName,
		Email:        account.Email,
		PasswordHash: passwordHash,
		Role:         string(account.Role),
		Verified:     account.Verified,
		CreatedAt:    account.CreatedAt,
		UpdatedAt:    account.UpdatedAt,
	}
}

func toApplicationDepartment(model persistence.Department) application.Department {
	return application.Department{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceDepartment(department application.Department) persistence.Department {
	return persistence.Department{
		ID:          department.ID,
		Name:        department.Name,
		Description: department.Description,
		CreatedAt:   department.CreatedAt,
		UpdatedAt:   department.UpdatedAt,
	}
}

func toApplicationEmployee(model persistence.Employee) application.Employee {
	return application.Employee{
		ID:           model.ID,
		EmployeeID:   model.EmployeeID,
		Email:        model.Email,
		Position:     model.Position,
		DepartmentID: model.DepartmentID,
		HireDate:     cloneTime(model.HireDate),
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func toPersistenceEmployee(employee application.Employee) persistence.Employee {
	return persistence.Employee{
		ID:           employee.ID,
		EmployeeID:   employee.EmployeeID,
		Email:        employee.Email,
		Position:     employee.Position,
		DepartmentID: employee.DepartmentID,
		HireDate:     cloneTime(employee.HireDate),
		CreatedAt:    employee.CreatedAt,
		UpdatedAt:    employee.UpdatedAt,
	}
}

func toApplicationRequest(model persistence.Request) application.Request {
	items := make([]application.RequestItem, 0, len(model.Items))
	for _, item := range model.Items {
		items = append(items, application.RequestItem{Name: item.Name, Quantity: item.Quantity})
	}
	return application.Request{
		ID:           model.ID,
		Type:         model.Type,
		Items:        items,
		Status:       application.RequestStatus(model.Status),
		AccountEmail: model.AccountEmail,
		SubmittedAt:  model.SubmittedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func toPersistenceRequest(request application.Request) persistence.Request {
	items := make([]persistence.RequestItem, 0, len(request.Items))
	for _, item := range request.Items {
		items = append(items, persistence.RequestItem{Name: item.Name, Quantity: item.Quantity})
	}
	return persistence.Request{
		ID:           request.ID,
		Type:         request.Type,
		Items:        items,
		Status:       string(request.Status),
		AccountEmail: request.AccountEmail,
		SubmittedAt:  request.SubmittedAt,
		UpdatedAt:    request.UpdatedAt,
	}
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:        model.ID,
		AccountID: model.AccountID,
		Token:     model.Token,
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		RevokedAt: cloneTime(model.RevokedAt),
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		AccountID: session.AccountID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		RevokedAt: cloneTime(session.RevokedAt),
	}
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
