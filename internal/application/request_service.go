package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// RequestFilter narrows a request listing.
type RequestFilter struct {
	AccountEmail string
}

// RequestRepository captures the persistence operations needed by the request service.
type RequestRepository interface {
	CreateRequest(ctx context.Context, request Request) (Request, error)
	GetRequest(ctx context.Context, id string) (Request, error)
	UpdateRequest(ctx context.Context, request Request) (Request, error)
	ListRequests(ctx context.Context, filter RequestFilter) ([]Request, error)
}

// RequestService orchestrates the purchase request workflow. Any authenticated
// principal may submit requests and list their own; administrators list all
// requests and decide their status.
type RequestService struct {
	requests    RequestRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRequestService wires dependencies for the request service.
func NewRequestService(requests RequestRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RequestService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RequestService{requests: requests, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

// SubmitRequest records a new pending request attributed to the caller.
// Line items with a blank name or a non-positive quantity are dropped; at
// least one valid item must remain.
func (s *RequestService) SubmitRequest(ctx context.Context, params SubmitRequestParams) (_ Request, err error) {
	if s == nil {
		return Request{}, fmt.Errorf("RequestService is nil")
	}

	logger := serviceLogger(ctx, s.logger, "RequestService", "SubmitRequest")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "submit request failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if params.Principal.AccountID == "" {
		return Request{}, ErrUnauthorized
	}
	if s.requests == nil {
		return Request{}, fmt.Errorf("request repository not configured")
	}

	requestType := strings.TrimSpace(params.Type)
	items := filterRequestItems(params.Items)

	vErr := &ValidationError{}
	if requestType == "" {
		vErr.add("type", "request type is required")
	}
	if len(items) == 0 {
		vErr.add("items", "at least one item with a name and a positive quantity is required")
	}
	if vErr.HasErrors() {
		return Request{}, vErr
	}

	now := s.now()
	request := Request{
		ID:           s.idGenerator(),
		Type:         requestType,
		Items:        items,
		Status:       StatusPending,
		AccountEmail: params.Principal.Email,
		SubmittedAt:  now,
		UpdatedAt:    now,
	}

	persisted, err := s.requests.CreateRequest(ctx, request)
	if err != nil {
		return Request{}, mapRepoError(err)
	}

	logger.InfoContext(ctx, "request submitted", "request_id", persisted.ID, "request_type", persisted.Type, "item_count", len(persisted.Items))
	return persisted, nil
}

// ListRequests returns the caller's own requests, or every request when the
// caller is an administrator. Results are ordered oldest first.
func (s *RequestService) ListRequests(ctx context.Context, principal Principal) ([]Request, error) {
	if s == nil {
		return nil, fmt.Errorf("RequestService is nil")
	}
	if principal.AccountID == "" {
		return nil, ErrUnauthorized
	}
	if s.requests == nil {
		return nil, nil
	}

	filter := RequestFilter{}
	if !principal.IsAdmin() {
		filter.AccountEmail = principal.Email
	}

	requests, err := s.requests.ListRequests(ctx, filter)
	if err != nil {
		return nil, mapRepoError(err)
	}

	out := make([]Request, len(requests))
	copy(out, requests)

	sort.Slice(out, func(i, j int) bool {
		if out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})

	return out, nil
}

// SetRequestStatus moves a request to Approved or Rejected. Only
// administrators may decide requests, and a decided request may be flipped to
// the other decision but never returned to Pending.
func (s *RequestService) SetRequestStatus(ctx context.Context, params SetRequestStatusParams) (_ Request, err error) {
	if s == nil {
		return Request{}, fmt.Errorf("RequestService is nil")
	}

	logger := serviceLogger(ctx, s.logger, "RequestService", "SetRequestStatus")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "set request status failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if !params.Principal.IsAdmin() {
		return Request{}, ErrUnauthorized
	}
	if s.requests == nil {
		return Request{}, fmt.Errorf("request repository not configured")
	}

	if params.Status != StatusApproved && params.Status != StatusRejected {
		vErr := &ValidationError{}
		vErr.add("status", "status must be Approved or Rejected")
		return Request{}, vErr
	}

	existing, err := s.requests.GetRequest(ctx, params.RequestID)
	if err != nil {
		return Request{}, mapRepoError(err)
	}

	updated := existing
	updated.Status = params.Status
	updated.UpdatedAt = s.now()

	persisted, err := s.requests.UpdateRequest(ctx, updated)
	if err != nil {
		return Request{}, mapRepoError(err)
	}

	logger.InfoContext(ctx, "request status updated", "request_id", persisted.ID, "status", string(persisted.Status))
	return persisted, nil
}

func filterRequestItems(items []RequestItem) []RequestItem {
	out := make([]RequestItem, 0, len(items))
	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" || item.Quantity <= 0 {
			continue
		}
		out = append(out, RequestItem{Name: name, Quantity: item.Quantity})
	}
	return out
}
