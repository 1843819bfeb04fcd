package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/hr-portal/internal/application"
)

type profileService interface {
	GetProfile(ctx context.Context, principal application.Principal) (application.Profile, error)
	UpdateProfile(ctx context.Context, params application.UpdateProfileParams) (application.Profile, error)
}

// ProfileHandler serves the caller's own profile page. It lists departments
// alongside the profile so the client can render the department selector.
type ProfileHandler struct {
	service     profileService
	departments departmentService
	responder   responder
	logger      *slog.Logger
}

func NewProfileHandler(service profileService, departments departmentService, logger *slog.Logger) *ProfileHandler {
	base := defaultLogger(logger)
	return &ProfileHandler{service: service, departments: departments, responder: newResponder(base), logger: base}
}

func (h *ProfileHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ProfileHandler", operation, attrs...)
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Get", "principal_id", principal.AccountID)

	profile, err := h.service.GetProfile(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "profile fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "profile fetched")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, profileResponse{
		Profile:     toProfileDTO(profile),
		Departments: h.availableDepartments(r.Context(), principal),
	})
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.AccountID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode profile update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.AccountID)

	profile, err := h.service.UpdateProfile(r.Context(), application.UpdateProfileParams{
		Principal: principal,
		Input: application.ProfileInput{
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Email:        req.Email,
			NewPassword:  req.NewPassword,
			DepartmentID: req.DepartmentID,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "profile update failed", "error", err, "error_kind", application.ErrorKind(err))
		if errors.Is(err, application.ErrAlreadyExists) {
			h.responder.writeJSON(r.Context(), w, http.StatusConflict,
				newErrorResponse("", "That email is already used by another account.", nil))
			return
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "profile updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, profileResponse{
		Profile:      toProfileDTO(profile),
		Departments:  h.availableDepartments(r.Context(), principal),
		Notification: successNote("Profile updated successfully!"),
	})
}

// availableDepartments tolerates a failed lookup: the selector is then empty
// but the profile itself still renders.
func (h *ProfileHandler) availableDepartments(ctx context.Context, principal application.Principal) []departmentDTO {
	if h.departments == nil {
		return nil
	}
	departments, err := h.departments.ListDepartments(ctx, principal)
	if err != nil {
		h.log(ctx, "availableDepartments").ErrorContext(ctx, "department list for selector failed", "error", err)
		return nil
	}
	return toDepartmentDTOs(departments)
}

type profileRequest struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	NewPassword  string `json:"new_password,omitempty"`
	DepartmentID string `json:"department_id,omitempty"`
}

type profileResponse struct {
	Profile      profileDTO      `json:"profile"`
	Departments  []departmentDTO `json:"departments,omitempty"`
	Notification *notification   `json:"notification,omitempty"`
}

// profileDTO renders missing employment data as em-dash placeholders, the
// same way the profile page did.
type profileDTO struct {
	Account        accountDTO `json:"account"`
	Position       string     `json:"position"`
	DepartmentID   string     `json:"department_id,omitempty"`
	DepartmentName string     `json:"department_name"`
}

func toProfileDTO(profile application.Profile) profileDTO {
	dto := profileDTO{
		Account:        toAccountDTO(profile.Account),
		Position:       profile.Position,
		DepartmentID:   profile.DepartmentID,
		DepartmentName: profile.DepartmentName,
	}
	if strings.TrimSpace(dto.Position) == "" {
		dto.Position = "—"
	}
	if strings.TrimSpace(dto.DepartmentName) == "" {
		dto.DepartmentName = "—"
	}
	return dto
}
