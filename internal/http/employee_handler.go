package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/hr-portal/internal/application"
)

type employeeService interface {
	ListEmployees(ctx context.Context, principal application.Principal) ([]application.Employee, error)
	CreateEmployee(ctx context.Context, params application.CreateEmployeeParams) (application.Employee, error)
	UpdateEmployee(ctx context.Context, params application.UpdateEmployeeParams) (application.Employee, error)
	DeleteEmployee(ctx context.Context, principal application.Principal, employeeID string) error
}

type EmployeeHandler struct {
	service   employeeService
	responder responder
	logger    *slog.Logger
}

func NewEmployeeHandler(service employeeService, logger *slog.Logger) *EmployeeHandler {
	base := defaultLogger(logger)
	return &EmployeeHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *EmployeeHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EmployeeHandler", operation, attrs...)
}

func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.AccountID)

	employees, err := h.service.ListEmployees(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "employee list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(employees)).InfoContext(r.Context(), "employees listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listEmployeesResponse{Employees: toEmployeeDTOs(employees)})
}

func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.AccountID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode employee request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.AccountID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid hire date", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.AccountID)

	employee, err := h.service.CreateEmployee(r.Context(), application.CreateEmployeeParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "employee creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("employee_id", employee.ID).InfoContext(r.Context(), "employee created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, employeeResponse{
		Employee:     toEmployeeDTO(employee),
		Notification: successNote("Employee added."),
	})
}

func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	employeeID, ok := EmployeeIDFromContext(r.Context())
	if !ok || strings.TrimSpace(employeeID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing employee id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEmployeeID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.AccountID, "employee_id", employeeID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode employee update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.AccountID, "employee_id", employeeID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid hire date", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.AccountID, "employee_id", employeeID)

	employee, err := h.service.UpdateEmployee(r.Context(), application.UpdateEmployeeParams{
		Principal:  principal,
		EmployeeID: employeeID,
		Input:      input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "employee update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "employee updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, employeeResponse{
		Employee:     toEmployeeDTO(employee),
		Notification: successNote("Employee updated."),
	})
}

func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	employeeID, ok := EmployeeIDFromContext(r.Context())
	if !ok || strings.TrimSpace(employeeID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing employee id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEmployeeID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.AccountID, "employee_id", employeeID)

	if err := h.service.DeleteEmployee(r.Context(), principal, employeeID); err != nil {
		logger.ErrorContext(r.Context(), "employee delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "employee deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, notificationResponse{
		Notification: infoNote("Employee deleted."),
	})
}

type employeeRequest struct {
	EmployeeID   string `json:"employee_id"`
	Email        string `json:"email"`
	Position     string `json:"position"`
	DepartmentID string `json:"department_id"`
	HireDate     string `json:"hire_date,omitempty"`
}

func (r employeeRequest) toInput() (application.EmployeeInput, error) {
	input := application.EmployeeInput{
		EmployeeID:   strings.TrimSpace(r.EmployeeID),
		Email:        strings.TrimSpace(r.Email),
		Position:     strings.TrimSpace(r.Position),
		DepartmentID: strings.TrimSpace(r.DepartmentID),
	}

	if hireDate := strings.TrimSpace(r.HireDate); hireDate != "" {
		parsed, err := time.Parse("2006-01-02", hireDate)
		if err != nil {
			return application.EmployeeInput{}, err
		}
		input.HireDate = &parsed
	}

	return input, nil
}

type employeeResponse struct {
	Employee     employeeDTO   `json:"employee"`
	Notification *notification `json:"notification,omitempty"`
}

type listEmployeesResponse struct {
	Employees []employeeDTO `json:"employees"`
}

type employeeDTO struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employee_id"`
	Email        string `json:"email"`
	Position     string `json:"position"`
	DepartmentID string `json:"department_id"`
	HireDate     string `json:"hire_date,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func toEmployeeDTO(employee application.Employee) employeeDTO {
	dto := employeeDTO{
		ID:           employee.ID,
		EmployeeID:   employee.EmployeeID,
		Email:        employee.Email,
		Position:     employee.Position,
		DepartmentID: employee.DepartmentID,
		CreatedAt:    employee.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    employee.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if employee.HireDate != nil {
		dto.HireDate = employee.HireDate.UTC().Format("2006-01-02")
	}
	return dto
}

func toEmployeeDTOs(employees []application.Employee) []employeeDTO {
	if len(employees) == 0 {
		return nil
	}
	out := make([]employeeDTO, 0, len(employees))
	for _, employee := range employees {
		out = append(out, toEmployeeDTO(employee))
	}
	return out
}
