package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/hr-portal/internal/application"
)

type authService interface {
	Register(ctx context.Context, params application.RegisterParams) (application.Account, error)
	PendingVerification(ctx context.Context) (string, error)
	ConfirmVerification(ctx context.Context) (application.Account, error)
	Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error)
	RevokeSession(ctx context.Context, token string) error
	ValidateSession(ctx context.Context, token string) (application.Principal, error)
}

type AuthHandler struct {
	service   authService
	responder responder
	logger    *slog.Logger
}

func NewAuthHandler(service authService, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Register", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode registration request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	logger := h.log(r.Context(), "Register", "email", email)

	account, err := h.service.Register(r.Context(), application.RegisterParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     email,
		Password:  req.Password,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "registration failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("account_id", account.ID).InfoContext(r.Context(), "account registered")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, accountResponse{
		Account:      toAccountDTO(account),
		Notification: successNote("Account created! Please verify your email."),
	})
}

// PendingVerification handles GET /verifications/pending.
func (h *AuthHandler) PendingVerification(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	email, err := h.service.PendingVerification(r.Context())
	if err != nil {
		h.log(r.Context(), "PendingVerification").ErrorContext(r.Context(), "pending verification lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, pendingVerificationResponse{Email: email})
}

// ConfirmVerification handles POST /verifications/confirm, the stand-in for
// clicking a verification link.
func (h *AuthHandler) ConfirmVerification(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "ConfirmVerification")

	account, err := h.service.ConfirmVerification(r.Context())
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			logger.ErrorContext(r.Context(), "pending account missing", "error", err, "error_kind", application.ErrorKind(err))
			h.responder.writeJSON(r.Context(), w, http.StatusNotFound,
				newErrorResponse("", "Account not found.", nil))
			return
		}
		logger.ErrorContext(r.Context(), "verification failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("account_id", account.ID).InfoContext(r.Context(), "email verified")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, accountResponse{
		Account:      toAccountDTO(account),
		Notification: successNote("Email verified! You can now log in."),
	})
}

// CreateSession handles POST /sessions.
func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "CreateSession", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode session request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	logger := h.log(r.Context(), "CreateSession", "email", email)

	result, err := h.service.Authenticate(r.Context(), application.AuthenticateParams{
		Email:    email,
		Password: req.Password,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "authentication failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	setSessionCookie(w, result.Session.Token, result.Session.ExpiresAt)
	w.Header().Set("X-Session-Token", result.Session.Token)

	logger.With("account_id", result.Account.ID).InfoContext(r.Context(), "account authenticated")

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, loginResponse{
		Token:        result.Session.Token,
		ExpiresAt:    result.Session.ExpiresAt.UTC().Format(time.RFC3339Nano),
		Account:      toAccountDTO(result.Account),
		Notification: successNote(fmt.Sprintf("Welcome back, %s!", result.Account.FirstName)),
	})
}

// CurrentSession handles GET /sessions/current: it restores the principal
// behind a stored token. A stale token yields 401 so the client can discard
// it silently.
func (h *AuthHandler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	token := extractTokenFromRequest(r)
	if token == "" {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	logger := h.log(r.Context(), "CurrentSession", "token_present", true)

	principal, err := h.service.ValidateSession(r.Context(), token)
	if err != nil {
		logger.ErrorContext(r.Context(), "session restoration rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("account_id", principal.AccountID).InfoContext(r.Context(), "session restored")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, currentSessionResponse{
		AccountID: principal.AccountID,
		Email:     principal.Email,
		Role:      string(principal.Role),
	})
}

// DeleteCurrentSession handles DELETE /sessions/current. Logout always
// succeeds, even with a missing or stale token.
func (h *AuthHandler) DeleteCurrentSession(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	token := extractTokenFromRequest(r)
	logger := h.log(r.Context(), "DeleteCurrentSession", "token_present", token != "")

	if err := h.service.RevokeSession(r.Context(), token); err != nil {
		logger.ErrorContext(r.Context(), "failed to revoke session", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	clearSessionCookie(w)
	logger.InfoContext(r.Context(), "session revoked")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, logoutResponse{
		Notification: infoNote("Logged out."),
	})
}

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type pendingVerificationResponse struct {
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token        string        `json:"token"`
	ExpiresAt    string        `json:"expires_at"`
	Account      accountDTO    `json:"account"`
	Notification *notification `json:"notification"`
}

type currentSessionResponse struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

type logoutResponse struct {
	Notification *notification `json:"notification"`
}

func setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     "session_token",
		Value:    token,
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
	}
	if !expires.IsZero() {
		cookie.Expires = expires.UTC()
	}
	http.SetCookie(w, cookie)
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
	})
}

func extractTokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		const prefix = "Bearer "
		if strings.HasPrefix(header, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(header, prefix))
		}
	}
	if cookie, err := r.Cookie("session_token"); err == nil {
		return cookie.Value
	}
	return ""
}
