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

type departmentService interface {
	ListDepartments(ctx context.Context, principal application.Principal) ([]application.Department, error)
	CreateDepartment(ctx context.Context, params application.CreateDepartmentParams) (application.Department, error)
	UpdateDepartment(ctx context.Context, params application.UpdateDepartmentParams) (application.Department, error)
	DeleteDepartment(ctx context.Context, principal application.Principal, departmentID string) error
}

type DepartmentHandler struct {
	service   departmentService
	responder responder
	logger    *slog.Logger
}

func NewDepartmentHandler(service departmentService, logger *slog.Logger) *DepartmentHandler {
	base := defaultLogger(logger)
	return &DepartmentHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *DepartmentHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "DepartmentHandler", operation, attrs...)
}

func (h *DepartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.AccountID)

	departments, err := h.service.ListDepartments(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "department list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(departments)).InfoContext(r.Context(), "departments listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listDepartmentsResponse{Departments: toDepartmentDTOs(departments)})
}

func (h *DepartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req departmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.AccountID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode department request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.AccountID)

	department, err := h.service.CreateDepartment(r.Context(), application.CreateDepartmentParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "department creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("department_id", department.ID).InfoContext(r.Context(), "department created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, departmentResponse{
		Department:   toDepartmentDTO(department),
		Notification: successNote("Department added."),
	})
}

func (h *DepartmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	departmentID, ok := DepartmentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(departmentID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing department id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDepartmentID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req departmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.AccountID, "department_id", departmentID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode department update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.AccountID, "department_id", departmentID)

	department, err := h.service.UpdateDepartment(r.Context(), application.UpdateDepartmentParams{
		Principal:    principal,
		DepartmentID: departmentID,
		Input:        req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "department update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "department updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, departmentResponse{
		Department:   toDepartmentDTO(department),
		Notification: successNote("Department updated."),
	})
}

func (h *DepartmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	departmentID, ok := DepartmentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(departmentID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing department id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDepartmentID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.AccountID, "department_id", departmentID)

	if err := h.service.DeleteDepartment(r.Context(), principal, departmentID); err != nil {
		logger.ErrorContext(r.Context(), "department delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "department deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, notificationResponse{
		Notification: infoNote("Department deleted."),
	})
}

type departmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r departmentRequest) toInput() application.DepartmentInput {
	return application.DepartmentInput{
		Name:        strings.TrimSpace(r.Name),
		Description: strings.TrimSpace(r.Description),
	}
}

type departmentResponse struct {
	Department   departmentDTO `json:"department"`
	Notification *notification `json:"notification,omitempty"`
}

type listDepartmentsResponse struct {
	Departments []departmentDTO `json:"departments"`
}

type departmentDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toDepartmentDTO(department application.Department) departmentDTO {
	return departmentDTO{
		ID:          department.ID,
		Name:        department.Name,
		Description: department.Description,
		CreatedAt:   department.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   department.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toDepartmentDTOs(departments []application.Department) []departmentDTO {
	if len(departments) == 0 {
		return nil
	}
	out := make([]departmentDTO, 0, len(departments))
	for _, department := range departments {
		out = append(out, toDepartmentDTO(department))
	}
	return out
}
