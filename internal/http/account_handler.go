package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/hr-portal/internal/application"
)

type accountService interface {
	ListAccounts(ctx context.Context, principal application.Principal) ([]application.Account, error)
	CreateAccount(ctx context.Context, params application.CreateAccountParams) (application.Account, error)
	UpdateAccount(ctx context.Context, params application.UpdateAccountParams) (application.Account, error)
	ResetPassword(ctx context.Context, params application.ResetPasswordParams) error
	DeleteAccount(ctx context.Context, principal application.Principal, accountID string) error
}

type AccountHandler struct {
	service   accountService
	responder responder
	logger    *slog.Logger
}

func NewAccountHandler(service accountService, logger *slog.Logger) *AccountHandler {
	base := defaultLogger(logger)
	return &AccountHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AccountHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AccountHandler", operation, attrs...)
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.AccountID)

	accounts, err := h.service.ListAccounts(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "account list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(accounts)).InfoContext(r.Context(), "accounts listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listAccountsResponse{Accounts: toAccountDTOs(accounts)})
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.AccountID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode account request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.AccountID)

	account, err := h.service.CreateAccount(r.Context(), application.CreateAccountParams{
		Principal: principal,
		Input:     req.toInput(),
		Password:  req.Password,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "account creation failed", "error", err, "error_kind", application.ErrorKind(err))
		if errors.Is(err, application.ErrAlreadyExists) {
			h.responder.writeJSON(r.Context(), w, http.StatusConflict,
				newErrorResponse("", "Email already in use.", nil))
			return
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("account_id", account.ID).InfoContext(r.Context(), "account created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, accountResponse{
		Account:      toAccountDTO(account),
		Notification: successNote("Account created."),
	})
}

func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	accountID, ok := AccountIDFromContext(r.Context())
	if !ok || strings.TrimSpace(accountID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing account id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAccountID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.AccountID, "account_id", accountID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode account update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.AccountID, "account_id", accountID)

	account, err := h.service.UpdateAccount(r.Context(), application.UpdateAccountParams{
		Principal: principal,
		AccountID: accountID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "account update failed", "error", err, "error_kind", application.ErrorKind(err))
		if errors.Is(err, application.ErrAlreadyExists) {
			h.responder.writeJSON(r.Context(), w, http.StatusConflict,
				newErrorResponse("", "Email already in use.", nil))
			return
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "account updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, accountResponse{
		Account:      toAccountDTO(account),
		Notification: successNote("Account updated."),
	})
}

// ResetPassword handles POST /accounts/{id}/password.
func (h *AccountHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	accountID, ok := AccountIDFromContext(r.Context())
	if !ok || strings.TrimSpace(accountID) == "" {
		h.log(r.Context(), "ResetPassword", "error_kind", "bad_request").ErrorContext(r.Context(), "missing account id for password reset")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAccountID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "ResetPassword", "principal_id", principal.AccountID, "account_id", accountID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode password reset", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "ResetPassword", "principal_id", principal.AccountID, "account_id", accountID)

	err := h.service.ResetPassword(r.Context(), application.ResetPasswordParams{
		Principal: principal,
		AccountID: accountID,
		Password:  req.Password,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "password reset failed", "error", err, "error_kind", application.ErrorKind(err))
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			h.responder.writeJSON(r.Context(), w, http.StatusUnprocessableEntity, errorResponse{
				Message:      "Password too short or cancelled.",
				Errors:       vErr.FieldErrors,
				Notification: errorNote("Password too short or cancelled."),
			})
			return
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "password reset")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, notificationResponse{
		Notification: successNote("Password reset."),
	})
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	accountID, ok := AccountIDFromContext(r.Context())
	if !ok || strings.TrimSpace(accountID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing account id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAccountID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.AccountID, "account_id", accountID)

	if err := h.service.DeleteAccount(r.Context(), principal, accountID); err != nil {
		logger.ErrorContext(r.Context(), "account delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "account deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, notificationResponse{
		Notification: infoNote("Account deleted."),
	})
}

type accountRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Verified  bool   `json:"verified"`
	Password  string `json:"password,omitempty"`
}

func (r accountRequest) toInput() application.AccountInput {
	return application.AccountInput{
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
		Email:     strings.TrimSpace(r.Email),
		Role:      application.Role(strings.TrimSpace(r.Role)),
		Verified:  r.Verified,
	}
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

type accountResponse struct {
	Account      accountDTO    `json:"account"`
	Notification *notification `json:"notification,omitempty"`
}

type listAccountsResponse struct {
	Accounts []accountDTO `json:"accounts"`
}

// notificationResponse carries only the toast for operations with no body.
type notificationResponse struct {
	Notification *notification `json:"notification"`
}

type accountDTO struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Verified  bool   `json:"verified"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toAccountDTO(account application.Account) accountDTO {
	return accountDTO{
		ID:        account.ID,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		Email:     account.Email,
		Role:      string(account.Role),
		Verified:  account.Verified,
		CreatedAt: account.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: account.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toAccountDTOs(accounts []application.Account) []accountDTO {
	if len(accounts) == 0 {
		return nil
	}
	out := make([]accountDTO, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, toAccountDTO(account))
	}
	return out
}
