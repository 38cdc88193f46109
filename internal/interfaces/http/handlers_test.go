package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traveldesk/traveldesk/internal/apperrors"
	"github.com/traveldesk/traveldesk/internal/application/service"
	"github.com/traveldesk/traveldesk/internal/domain/entity"
)

// payload is a free-form JSON request body
type payload = map[string]interface{}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// stubRequestService scripts the request service per test
type stubRequestService struct {
	create      func(ctx context.Context, domain entity.Domain, req service.CreateRequest) (*entity.Request, error)
	edit        func(ctx context.Context, id string, req service.CreateRequest) (*entity.Request, error)
	get         func(ctx context.Context, id string) (*entity.Request, error)
	getSteps    func(ctx context.Context, id string) ([]*entity.ApprovalStep, error)
	list        func(ctx context.Context, domain entity.Domain, limit, offset int) ([]*entity.Request, error)
	listForRole func(ctx context.Context, domain entity.Domain, role string, limit, offset int) ([]*entity.Request, error)
}

func (s *stubRequestService) Create(ctx context.Context, domain entity.Domain, req service.CreateRequest) (*entity.Request, error) {
	return s.create(ctx, domain, req)
}

func (s *stubRequestService) Edit(ctx context.Context, id string, req service.CreateRequest) (*entity.Request, error) {
	return s.edit(ctx, id, req)
}

func (s *stubRequestService) Get(ctx context.Context, id string) (*entity.Request, error) {
	return s.get(ctx, id)
}

func (s *stubRequestService) GetSteps(ctx context.Context, id string) ([]*entity.ApprovalStep, error) {
	return s.getSteps(ctx, id)
}

func (s *stubRequestService) List(ctx context.Context, domain entity.Domain, limit, offset int) ([]*entity.Request, error) {
	return s.list(ctx, domain, limit, offset)
}

func (s *stubRequestService) ListForRole(ctx context.Context, domain entity.Domain, role string, limit, offset int) ([]*entity.Request, error) {
	return s.listForRole(ctx, domain, role, limit, offset)
}

// stubActionService scripts the action service per test
type stubActionService struct {
	submit func(ctx context.Context, requestID string, req service.ActionRequest) (*service.ActionResult, error)
}

func (s *stubActionService) SubmitAction(ctx context.Context, requestID string, req service.ActionRequest) (*service.ActionResult, error) {
	return s.submit(ctx, requestID, req)
}

func newTestServer(requests *stubRequestService, actions *stubActionService) *Server {
	if requests == nil {
		requests = &stubRequestService{}
	}
	if actions == nil {
		actions = &stubActionService{}
	}
	return NewServer(DefaultServerConfig(), requests, actions, nopLogger{})
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func sampleRequest() *entity.Request {
	return &entity.Request{
		ID:            "TSR-2026-0001",
		Domain:        entity.DomainTSR,
		Status:        "Pending Department Focal",
		RequestorName: "Alice Wong",
		StaffID:       "E1042",
		Department:    "Engineering",
		Purpose:       "Site survey",
		SubmittedAt:   time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(nil, nil)

	w := doJSON(t, srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decodeBody(t, w)["status"])
}

func TestCreateRequest(t *testing.T) {
	var gotDomain entity.Domain
	requests := &stubRequestService{
		create: func(_ context.Context, domain entity.Domain, req service.CreateRequest) (*entity.Request, error) {
			gotDomain = domain
			assert.Equal(t, "Alice Wong", req.RequestorName)
			return sampleRequest(), nil
		},
	}
	srv := newTestServer(requests, nil)

	w := doJSON(t, srv, http.MethodPost, "/api/travel-requests", payload{
		"requestorName": "Alice Wong",
		"staffId":       "E1042",
		"department":    "Engineering",
		"purpose":       "Site survey",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, entity.DomainTSR, gotDomain)

	body := decodeBody(t, w)
	assert.Equal(t, "Request submitted.", body["message"])
	trf := body["trf"].(map[string]interface{})
	assert.Equal(t, "TSR-2026-0001", trf["id"])
}

func TestCreateRequestMissingFields(t *testing.T) {
	srv := newTestServer(nil, nil)

	w := doJSON(t, srv, http.MethodPost, "/api/claims", payload{"purpose": "Taxi refund"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decodeBody(t, w)["error"])
}

func TestCreateRequestDomainFromRoute(t *testing.T) {
	routes := map[string]entity.Domain{
		"/api/travel-requests": entity.DomainTSR,
		"/api/claims":          entity.DomainClaim,
		"/api/visas":           entity.DomainVisa,
		"/api/accommodation":   entity.DomainAccommodation,
		"/api/transport":       entity.DomainTransport,
	}

	for path, want := range routes {
		t.Run(path, func(t *testing.T) {
			var got entity.Domain
			requests := &stubRequestService{
				create: func(_ context.Context, domain entity.Domain, _ service.CreateRequest) (*entity.Request, error) {
					got = domain
					return sampleRequest(), nil
				},
			}
			srv := newTestServer(requests, nil)

			w := doJSON(t, srv, http.MethodPost, path, payload{
				"requestorName": "Alice Wong",
				"staffId":       "E1042",
				"department":    "Engineering",
				"purpose":       "Site survey",
			})
			require.Equal(t, http.StatusCreated, w.Code)
			assert.Equal(t, want, got)
		})
	}
}

func TestGetRequestNotFound(t *testing.T) {
	requests := &stubRequestService{
		get: func(_ context.Context, id string) (*entity.Request, error) {
			return nil, apperrors.NewNotFound(id)
		},
	}
	srv := newTestServer(requests, nil)

	w := doJSON(t, srv, http.MethodGet, "/api/travel-requests/TSR-2026-9999", nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeBody(t, w)["error"])
}

func TestListRequestsRoleFilter(t *testing.T) {
	approved := sampleRequest()
	approved.ID = "TSR-2026-0002"
	approved.Status = "Approved"

	requests := &stubRequestService{
		listForRole: func(_ context.Context, _ entity.Domain, role string, limit, offset int) ([]*entity.Request, error) {
			assert.Equal(t, "Flight Admin", role)
			assert.Equal(t, 20, limit, "limit defaults to 20")
			assert.Equal(t, 0, offset)
			return []*entity.Request{approved}, nil
		},
	}
	srv := newTestServer(requests, nil)

	w := doJSON(t, srv, http.MethodGet, "/api/travel-requests?role=Flight+Admin", nil)
	require.Equal(t, http.StatusOK, w.Code)

	list := decodeBody(t, w)["requests"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "TSR-2026-0002", list[0].(map[string]interface{})["id"])
}

func TestListRequestsUnknownRoleSeesEmptyQueue(t *testing.T) {
	requests := &stubRequestService{
		listForRole: func(_ context.Context, _ entity.Domain, role string, _, _ int) ([]*entity.Request, error) {
			return nil, nil
		},
	}
	srv := newTestServer(requests, nil)

	w := doJSON(t, srv, http.MethodGet, "/api/travel-requests?role=Requestor", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["requests"], 0)
}

func TestListRequestsNoRoleReturnsAll(t *testing.T) {
	requests := &stubRequestService{
		list: func(_ context.Context, _ entity.Domain, _, _ int) ([]*entity.Request, error) {
			return []*entity.Request{sampleRequest()}, nil
		},
	}
	srv := newTestServer(requests, nil)

	w := doJSON(t, srv, http.MethodGet, "/api/travel-requests", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["requests"], 1)
}

func TestSubmitAction(t *testing.T) {
	approved := sampleRequest()
	approved.Status = "Pending Line Manager"

	actions := &stubActionService{
		submit: func(_ context.Context, requestID string, req service.ActionRequest) (*service.ActionResult, error) {
			assert.Equal(t, "TSR-2026-0001", requestID)
			assert.Equal(t, "approve", req.Action)
			assert.Equal(t, "Department Focal", req.ApproverRole)
			return &service.ActionResult{
				Request: approved,
				Message: "Request approved. Next approver: Line Manager.",
			}, nil
		},
	}
	srv := newTestServer(nil, actions)

	w := doJSON(t, srv, http.MethodPost, "/api/travel-requests/TSR-2026-0001/action", payload{
		"action":       "approve",
		"approverRole": "Department Focal",
		"approverName": "Ben Ooi",
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Contains(t, body["message"], "approved")
	assert.Equal(t, "Pending Line Manager", body["trf"].(map[string]interface{})["status"])
}

func TestSubmitActionUnknownAction(t *testing.T) {
	called := false
	actions := &stubActionService{
		submit: func(_ context.Context, _ string, _ service.ActionRequest) (*service.ActionResult, error) {
			called = true
			return nil, nil
		},
	}
	srv := newTestServer(nil, actions)

	w := doJSON(t, srv, http.MethodPost, "/api/travel-requests/TSR-2026-0001/action", payload{
		"action":       "escalate",
		"approverRole": "HOD",
		"approverName": "Dr. Rahman",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "validation_error", body["error"])
	assert.Equal(t, "action", body["details"].(map[string]interface{})["field"])
	assert.False(t, called)
}

func TestSubmitActionDuplicate(t *testing.T) {
	actions := &stubActionService{
		submit: func(_ context.Context, _ string, _ service.ActionRequest) (*service.ActionResult, error) {
			return nil, apperrors.NewDuplicateAction(9 * time.Second)
		},
	}
	srv := newTestServer(nil, actions)

	w := doJSON(t, srv, http.MethodPost, "/api/travel-requests/TSR-2026-0001/action", payload{
		"action":       "approve",
		"approverRole": "HOD",
		"approverName": "Dr. Rahman",
	})

	require.Equal(t, http.StatusTooManyRequests, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "duplicate_action", body["error"])
	assert.Equal(t, float64(9), body["details"].(map[string]interface{})["retry_after_seconds"])
}

func TestSubmitActionInvalidTransition(t *testing.T) {
	actions := &stubActionService{
		submit: func(_ context.Context, _ string, _ service.ActionRequest) (*service.ActionResult, error) {
			return nil, apperrors.NewInvalidTransition("TSR-2026-0001", "Rejected", "approve")
		},
	}
	srv := newTestServer(nil, actions)

	w := doJSON(t, srv, http.MethodPost, "/api/travel-requests/TSR-2026-0001/action", payload{
		"action":       "approve",
		"approverRole": "HOD",
		"approverName": "Dr. Rahman",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "invalid_transition", body["error"])
	assert.Equal(t, "Rejected", body["details"].(map[string]interface{})["current_status"])
}

func TestAdvanceProcessing(t *testing.T) {
	processed := sampleRequest()
	processed.Status = "Processing Flights"

	actions := &stubActionService{
		submit: func(_ context.Context, requestID string, req service.ActionRequest) (*service.ActionResult, error) {
			assert.Equal(t, "advance", req.Action)
			assert.Equal(t, "Flight Admin", req.ApproverRole)
			return &service.ActionResult{Request: processed, Message: "Request moved to Processing Flights."}, nil
		},
	}
	srv := newTestServer(nil, actions)

	w := doJSON(t, srv, http.MethodPost, "/api/travel-requests/TSR-2026-0001/advance", payload{
		"approverRole": "Flight Admin",
		"approverName": "Ops Desk",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decodeBody(t, w)["message"], "Processing Flights")
}

func TestEditRequest(t *testing.T) {
	edited := sampleRequest()
	requests := &stubRequestService{
		edit: func(_ context.Context, id string, req service.CreateRequest) (*entity.Request, error) {
			assert.Equal(t, "TSR-2026-0001", id)
			return edited, nil
		},
	}
	srv := newTestServer(requests, nil)

	w := doJSON(t, srv, http.MethodPut, "/api/travel-requests/TSR-2026-0001", payload{
		"requestorName": "Alice Wong",
		"staffId":       "E1042",
		"department":    "Engineering",
		"purpose":       "Site survey, revised dates",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Request updated and resubmitted.", decodeBody(t, w)["message"])
}

func TestGetSteps(t *testing.T) {
	requests := &stubRequestService{
		getSteps: func(_ context.Context, id string) ([]*entity.ApprovalStep, error) {
			return []*entity.ApprovalStep{
				{RequestID: id, Role: "Requestor", Name: "Alice Wong", Status: "Submitted"},
				{RequestID: id, Role: "Department Focal", Name: "Ben Ooi", Status: "Approved"},
			}, nil
		},
	}
	srv := newTestServer(requests, nil)

	w := doJSON(t, srv, http.MethodGet, "/api/travel-requests/TSR-2026-0001/steps", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["steps"], 2)
}

func TestInternalErrorIsOpaque(t *testing.T) {
	requests := &stubRequestService{
		get: func(_ context.Context, _ string) (*entity.Request, error) {
			return nil, assert.AnError
		},
	}
	srv := newTestServer(requests, nil)

	w := doJSON(t, srv, http.MethodGet, "/api/travel-requests/TSR-2026-0001", nil)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "internal_error", body["error"])
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}
