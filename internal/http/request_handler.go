package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/hr-portal/internal/application"
)

type requestService interface {
	ListRequests(ctx context.Context, principal application.Principal) ([]application.Request, error)
	SubmitRequest(ctx context.Context, params application.SubmitRequestParams) (application.Request, error)
	SetRequestStatus(ctx context.Context, params application.SetRequestStatusParams) (application.Request, error)
}

type RequestHandler struct {
	service   requestService
	responder responder
	logger    *slog.Logger
}

func NewRequestHandler(service requestService, logger *slog.Logger) *RequestHandler {
	base := defaultLogger(logger)
	return &RequestHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RequestHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RequestHandler", operation, attrs...)
}

func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.AccountID)

	requests, err := h.service.ListRequests(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "request list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(requests)).InfoContext(r.Context(), "requests listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listRequestsResponse{Requests: toRequestDTOs(requests)})
}

// Submit handles POST /requests. Any authenticated principal may submit.
func (h *RequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req submitRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Submit", "principal_id", principal.AccountID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode request submission", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Submit", "principal_id", principal.AccountID)

	request, err := h.service.SubmitRequest(r.Context(), application.SubmitRequestParams{
		Principal: principal,
		Type:      req.Type,
		Items:     req.toItems(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "request submission failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("request_id", request.ID).InfoContext(r.Context(), "request submitted")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, requestResponse{
		Request:      toRequestDTO(request),
		Notification: successNote("Request submitted!"),
	})
}

// SetStatus handles PUT /requests/{id}/status.
func (h *RequestHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	requestID, ok := RequestIDFromContext(r.Context())
	if !ok || strings.TrimSpace(requestID) == "" {
		h.log(r.Context(), "SetStatus", "error_kind", "bad_request").ErrorContext(r.Context(), "missing request id for status change")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRequestID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "SetStatus", "principal_id", principal.AccountID, "request_id", requestID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode status change", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "SetStatus", "principal_id", principal.AccountID, "request_id", requestID)

	request, err := h.service.SetRequestStatus(r.Context(), application.SetRequestStatusParams{
		Principal: principal,
		RequestID: requestID,
		Status:    application.RequestStatus(strings.TrimSpace(req.Status)),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "status change failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("status", string(request.Status)).InfoContext(r.Context(), "request status updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, requestResponse{
		Request:      toRequestDTO(request),
		Notification: successNote(fmt.Sprintf("Request %s.", strings.ToLower(string(request.Status)))),
	})
}

type requestItemPayload struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type submitRequestRequest struct {
	Type  string               `json:"type"`
	Items []requestItemPayload `json:"items"`
}

func (r submitRequestRequest) toItems() []application.RequestItem {
	if len(r.Items) == 0 {
		return nil
	}
	out := make([]application.RequestItem, 0, len(r.Items))
	for _, item := range r.Items {
		out = append(out, application.RequestItem{Name: item.Name, Quantity: item.Quantity})
	}
	return out
}

type setStatusRequest struct {
	Status string `json:"status"`
}

type requestResponse struct {
	Request      requestDTO    `json:"request"`
	Notification *notification `json:"notification,omitempty"`
}

type listRequestsResponse struct {
	Requests []requestDTO `json:"requests"`
}

type requestDTO struct {
	ID           string               `json:"id"`
	Type         string               `json:"type"`
	Items        []requestItemPayload `json:"items"`
	Status       string               `json:"status"`
	AccountEmail string               `json:"account_email"`
	SubmittedAt  string               `json:"submitted_at"`
	UpdatedAt    string               `json:"updated_at"`
}

func toRequestDTO(request application.Request) requestDTO {
	items := make([]requestItemPayload, 0, len(request.Items))
	for _, item := range request.Items {
		items = append(items, requestItemPayload{Name: item.Name, Quantity: item.Quantity})
	}
	return requestDTO{
		ID:           request.ID,
		Type:         request.Type,
		Items:        items,
		Status:       string(request.Status),
		AccountEmail: request.AccountEmail,
		SubmittedAt:  request.SubmittedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    request.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toRequestDTOs(requests []application.Request) []requestDTO {
	if len(requests) == 0 {
		return nil
	}
	out := make([]requestDTO, 0, len(requests))
	for _, request := range requests {
		out = append(out, toRequestDTO(request))
	}
	return out
}
