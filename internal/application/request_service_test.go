package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/hr-portal/internal/persistence"
)

type requestRepoStub struct {
	byID map[string]Request

	created   Request
	createErr error

	updated   Request
	updateErr error

	lastFilter RequestFilter
	listErr    error
}

func newRequestRepoStub(requests ...Request) *requestRepoStub {
	stub := &requestRepoStub{byID: map[string]Request{}}
	for _, request := range requests {
		stub.byID[request.ID] = request
	}
	return stub
}

func (s *requestRepoStub) CreateRequest(ctx context.Context, request Request) (Request, error) {
	if s.createErr != nil {
		return Request{}, s.createErr
	}
	s.created = request
	s.byID[request.ID] = request
	return request, nil
}

func (s *requestRepoStub) GetRequest(ctx context.Context, id string) (Request, error) {
	request, ok := s.byID[id]
	if !ok {
		return Request{}, persistence.ErrNotFound
	}
	return request, nil
}

func (s *requestRepoStub) UpdateRequest(ctx context.Context, request Request) (Request, error) {
	if s.updateErr != nil {
		return Request{}, s.updateErr
	}
	if _, ok := s.byID[request.ID]; !ok {
		return Request{}, persistence.ErrNotFound
	}
	s.updated = request
	s.byID[request.ID] = request
	return request, nil
}

func (s *requestRepoStub) ListRequests(ctx context.Context, filter RequestFilter) ([]Request, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	s.lastFilter = filter
	out := make([]Request, 0, len(s.byID))
	for _, request := range s.byID {
		if filter.AccountEmail != "" && request.AccountEmail != filter.AccountEmail {
			continue
		}
		out = append(out, request)
	}
	return out, nil
}

func testRequestService(repo *requestRepoStub, now time.Time) *RequestService {
	return NewRequestService(repo, func() string { return "req-1" }, func() time.Time { return now }, nil)
}

var userPrincipal = Principal{AccountID: "acc-1", Email: "jane@x.com", Role: RoleUser}

func TestRequestService_SubmitRequest(t *testing.T) {
	now := time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)

	t.Run("drops blank and non-positive items and keeps the rest", func(t *testing.T) {
		repo := newRequestRepoStub()
		svc := testRequestService(repo, now)

		request, err := svc.SubmitRequest(context.Background(), SubmitRequestParams{
			Principal: userPrincipal,
			Type:      "Equipment",
			Items: []RequestItem{
				{Name: "   ", Quantity: 3},
				{Name: "Laptop", Quantity: 0},
				{Name: "  Monitor  ", Quantity: 2},
			},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(request.Items) != 1 || request.Items[0].Name != "Monitor" || request.Items[0].Quantity != 2 {
			t.Fatalf("unexpected items %+v", request.Items)
		}
		if request.Status != StatusPending {
			t.Fatalf("expected Pending, got %q", request.Status)
		}
		if request.AccountEmail != "jane@x.com" {
			t.Fatalf("expected attribution to jane@x.com, got %q", request.AccountEmail)
		}
	})

	t.Run("rejects a submission with no valid items", func(t *testing.T) {
		svc := testRequestService(newRequestRepoStub(), now)

		_, err := svc.SubmitRequest(context.Background(), SubmitRequestParams{
			Principal: userPrincipal,
			Type:      "Equipment",
			Items: []RequestItem{
				{Name: "", Quantity: 1},
				{Name: "Chair", Quantity: -2},
			},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["items"]; !ok {
			t.Fatalf("expected items validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("requires a request type", func(t *testing.T) {
		svc := testRequestService(newRequestRepoStub(), now)

		_, err := svc.SubmitRequest(context.Background(), SubmitRequestParams{
			Principal: userPrincipal,
			Type:      "  ",
			Items:     []RequestItem{{Name: "Laptop", Quantity: 1}},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("admins may submit requests too", func(t *testing.T) {
		repo := newRequestRepoStub()
		svc := testRequestService(repo, now)

		request, err := svc.SubmitRequest(context.Background(), SubmitRequestParams{
			Principal: adminPrincipal,
			Type:      "Purchase",
			Items:     []RequestItem{{Name: "Desk", Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if request.AccountEmail != adminPrincipal.Email {
			t.Fatalf("expected attribution to %q, got %q", adminPrincipal.Email, request.AccountEmail)
		}
	})
}

func TestRequestService_ListRequests(t *testing.T) {
	now := time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)
	seeded := func() *requestRepoStub {
		return newRequestRepoStub(
			Request{ID: "req-1", AccountEmail: "jane@x.com", SubmittedAt: now},
			Request{ID: "req-2", AccountEmail: "joe@x.com", SubmittedAt: now.Add(time.Minute)},
		)
	}

	t.Run("non-admins see only their own requests", func(t *testing.T) {
		repo := seeded()
		svc := testRequestService(repo, now)

		requests, err := svc.ListRequests(context.Background(), userPrincipal)
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(requests) != 1 || requests[0].ID != "req-1" {
			t.Fatalf("unexpected requests %+v", requests)
		}
		if repo.lastFilter.AccountEmail != "jane@x.com" {
			t.Fatalf("expected owner filter, got %q", repo.lastFilter.AccountEmail)
		}
	})

	t.Run("admins see every request oldest first", func(t *testing.T) {
		svc := testRequestService(seeded(), now)

		requests, err := svc.ListRequests(context.Background(), adminPrincipal)
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(requests) != 2 || requests[0].ID != "req-1" || requests[1].ID != "req-2" {
			t.Fatalf("unexpected requests %+v", requests)
		}
	})
}

func TestRequestService_SetRequestStatus(t *testing.T) {
	now := time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)

	t.Run("only administrators may decide requests", func(t *testing.T) {
		svc := testRequestService(newRequestRepoStub(Request{ID: "req-1", Status: StatusPending}), now)

		_, err := svc.SetRequestStatus(context.Background(), SetRequestStatusParams{
			Principal: userPrincipal,
			RequestID: "req-1",
			Status:    StatusApproved,
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rejects a move back to Pending", func(t *testing.T) {
		svc := testRequestService(newRequestRepoStub(Request{ID: "req-1", Status: StatusApproved}), now)

		_, err := svc.SetRequestStatus(context.Background(), SetRequestStatusParams{
			Principal: adminPrincipal,
			RequestID: "req-1",
			Status:    StatusPending,
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("approval is visible through the owner's filtered list", func(t *testing.T) {
		repo := newRequestRepoStub(Request{
			ID: "req-1", AccountEmail: "jane@x.com",
			Status: StatusPending, SubmittedAt: now.Add(-time.Hour),
		})
		svc := testRequestService(repo, now)

		updated, err := svc.SetRequestStatus(context.Background(), SetRequestStatusParams{
			Principal: adminPrincipal,
			RequestID: "req-1",
			Status:    StatusApproved,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if updated.Status != StatusApproved {
			t.Fatalf("expected Approved, got %q", updated.Status)
		}

		requests, err := svc.ListRequests(context.Background(), userPrincipal)
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(requests) != 1 || requests[0].Status != StatusApproved {
			t.Fatalf("expected owner to see the approval, got %+v", requests)
		}
	})

	t.Run("a decided request may flip to the other decision", func(t *testing.T) {
		repo := newRequestRepoStub(Request{ID: "req-1", Status: StatusApproved})
		svc := testRequestService(repo, now)

		updated, err := svc.SetRequestStatus(context.Background(), SetRequestStatusParams{
			Principal: adminPrincipal,
			RequestID: "req-1",
			Status:    StatusRejected,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if updated.Status != StatusRejected {
			t.Fatalf("expected Rejected, got %q", updated.Status)
		}
	})

	t.Run("propagates ErrNotFound for missing requests", func(t *testing.T) {
		svc := testRequestService(newRequestRepoStub(), now)

		_, err := svc.SetRequestStatus(context.Background(), SetRequestStatusParams{
			Principal: adminPrincipal,
			RequestID: "missing",
			Status:    StatusApproved,
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
