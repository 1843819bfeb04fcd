package http

import (
	"context"

	"github.com/example/hr-portal/internal/application"
)

type contextKey string

const (
	principalContextKey    contextKey = "principal"
	accountIDContextKey    contextKey = "account_id"
	departmentIDContextKey contextKey = "department_id"
	employeeIDContextKey   contextKey = "employee_id"
	requestIDContextKey    contextKey = "request_id"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithAccountID injects the account identifier resolved from the request path.
func ContextWithAccountID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, accountIDContextKey, id)
}

// AccountIDFromContext extracts an account identifier previously associated with the context.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(accountIDContextKey).(string)
	return id, ok
}

// ContextWithDepartmentID injects the department identifier resolved from the request path.
func ContextWithDepartmentID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, departmentIDContextKey, id)
}

// DepartmentIDFromContext extracts a department identifier previously associated with the context.
func DepartmentIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(departmentIDContextKey).(string)
	return id, ok
}

// ContextWithEmployeeID injects the employee record identifier resolved from the request path.
func ContextWithEmployeeID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, employeeIDContextKey, id)
}

// EmployeeIDFromContext extracts an employee record identifier previously associated with the context.
func EmployeeIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(employeeIDContextKey).(string)
	return id, ok
}

// ContextWithRequestID injects the request identifier resolved from the request path.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

// RequestIDFromContext extracts a request identifier previously associated with the context.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDContextKey).(string)
	return id, ok
}
