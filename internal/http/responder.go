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

var (
	errBadRequestBody      = errors.New("Invalid request format.")
	errInvalidAccountID    = errors.New("Invalid account ID.")
	errInvalidDepartmentID = errors.New("Invalid department ID.")
	errInvalidEmployeeID   = errors.New("Invalid employee ID.")
	errInvalidRequestID    = errors.New("Invalid request ID.")
	errMissingSessionToken = errors.New("Please log in to access that page.")
)

// Notification severities mirrored verbatim into client toasts.
const (
	noteSuccess = "success"
	noteError   = "error"
	noteInfo    = "info"
	noteWarning = "warning"
)

type notification struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

func successNote(message string) *notification {
	return &notification{Severity: noteSuccess, Message: message}
}

func errorNote(message string) *notification {
	return &notification{Severity: noteError, Message: message}
}

func infoNote(message string) *notification {
	return &notification{Severity: noteInfo, Message: message}
}

func warningNote(message string) *notification {
	return &notification{Severity: noteWarning, Message: message}
}

type errorResponse struct {
	ErrorCode    string            `json:"error_code,omitempty"`
	Message      string            `json:"message"`
	Errors       map[string]string `json:"errors,omitempty"`
	Notification *notification     `json:"notification"`
}

func newErrorResponse(code, message string, note *notification) errorResponse {
	if note == nil {
		note = errorNote(message)
	}
	return errorResponse{ErrorCode: code, Message: message, Notification: note}
}

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := statusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	note := errorNote(message)
	if status == http.StatusUnauthorized {
		note = warningNote(message)
	}
	r.writeJSON(ctx, w, status, newErrorResponse("", message, note))
}

// handleServiceError translates application sentinels into HTTP responses
// with the toast the client should show.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden,
			newErrorResponse("AUTH_FORBIDDEN", "Admin access required.", nil))
	case errors.Is(err, application.ErrSessionExpired), errors.Is(err, application.ErrSessionRevoked):
		r.writeJSON(ctx, w, http.StatusUnauthorized,
			newErrorResponse("AUTH_SESSION_EXPIRED", errMissingSessionToken.Error(),
				warningNote(errMissingSessionToken.Error())))
	case errors.Is(err, application.ErrInvalidCredentials), errors.Is(err, application.ErrAccountNotVerified):
		// Unverified accounts fail login indistinguishably from bad credentials.
		r.writeJSON(ctx, w, http.StatusUnauthorized,
			newErrorResponse("AUTH_INVALID_CREDENTIALS", "Invalid email or password.", nil))
	case errors.Is(err, application.ErrNoPendingVerification):
		r.writeJSON(ctx, w, http.StatusNotFound,
			newErrorResponse("", "No pending verification.", warningNote("No pending verification.")))
	case errors.Is(err, application.ErrSelfDeletion):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity,
			newErrorResponse("", "Cannot delete yourself.", nil))
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict,
			newErrorResponse("", "An account with that email already exists.", nil))
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound,
			newErrorResponse("", "The requested record was not found.", nil))
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			message := validationSummary(vErr)
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message:      message,
				Errors:       vErr.FieldErrors,
				Notification: errorNote(message),
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError,
			newErrorResponse("", "Something went wrong. Please try again.", nil))
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Invalid request format."
	case http.StatusUnauthorized:
		return "Please log in to access that page."
	case http.StatusForbidden:
		return "Admin access required."
	case http.StatusNotFound:
		return "The requested record was not found."
	case http.StatusConflict:
		return "An account with that email already exists."
	case http.StatusUnprocessableEntity:
		return "Please correct the highlighted fields."
	default:
		return "Something went wrong. Please try again."
	}
}

// validationSummary picks a single toast-worthy line from field errors,
// preferring the messages the client historically showed.
func validationSummary(vErr *application.ValidationError) string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return "Please correct the highlighted fields."
	}
	for _, field := range []string{"password", "new_password", "items", "name", "email", "department_id"} {
		if msg, ok := vErr.FieldErrors[field]; ok {
			return toastForValidation(field, msg)
		}
	}
	for field, msg := range vErr.FieldErrors {
		return toastForValidation(field, msg)
	}
	return "Please correct the highlighted fields."
}

func toastForValidation(field, message string) string {
	switch field {
	case "password":
		return "Password must be at least 6 characters."
	case "new_password":
		return "New password must be at least 6 characters."
	case "items":
		return "Add at least one item."
	case "name":
		return "Department name is required."
	case "department_id":
		return "Please select a department."
	case "email":
		if message == "no account exists for this email" {
			return "No account found with that email."
		}
		return "Email is required."
	case "first_name", "last_name":
		return "First and last name are required."
	default:
		return message
	}
}
