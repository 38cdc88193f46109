package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traveldesk/traveldesk/internal/domain/entity"
	domainwf "github.com/traveldesk/traveldesk/internal/domain/workflow"
)

func parentTSR(details string) *entity.Request {
	return &entity.Request{
		ID:            "TSR-2026-0001",
		Domain:        entity.DomainTSR,
		Status:        domainwf.StatePendingDepartmentFocal.String(),
		RequestorName: "Alice Wong",
		StaffID:       "E1042",
		Department:    "Engineering",
		Email:         "alice@example.com",
		Details:       details,
		SubmittedAt:   time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
	}
}

const twoLegDetails = `{
	"itinerary": [
		{"from": "Kuala Lumpur", "to": "Miri", "departure_date": "2026-09-14", "transport_mode": "flight"},
		{"from": "Miri", "to": "Kuala Lumpur", "departure_date": "2026-09-18", "transport_mode": "flight"}
	],
	"accommodation": [
		{"location": "Miri", "check_in_date": "2026-09-14", "check_out_date": "2026-09-18", "nights": 4}
	],
	"flight_required": true
}`

func TestReconcileCreatesChildren(t *testing.T) {
	requestRepo := newFakeRequestRepo()
	stepRepo := &fakeStepRepo{}
	svc := NewAutoGenService(requestRepo, stepRepo, fakeTx{}, nopLogger{})

	parent := parentTSR(twoLegDetails)
	require.NoError(t, requestRepo.Create(context.Background(), parent))

	result, err := svc.ReconcileChildRequests(context.Background(), parent)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Created)
	assert.Equal(t, 0, result.Updated)
	require.Len(t, result.TransportRequests, 2)
	require.Len(t, result.AccommodationRequests, 1)

	transport := result.TransportRequests[0]
	assert.Equal(t, entity.DomainTransport, transport.Domain)
	assert.Equal(t, parent.ID, transport.ParentID)
	assert.Equal(t, domainwf.StatePendingDepartmentFocal.String(), transport.Status)
	assert.Equal(t, parent.RequestorName, transport.RequestorName)
	assert.Contains(t, transport.Purpose, "Kuala Lumpur to Miri")

	accommodation := result.AccommodationRequests[0]
	assert.Equal(t, entity.DomainAccommodation, accommodation.Domain)
	assert.Contains(t, accommodation.Purpose, "Miri")

	// Every child gets its own Submitted audit step
	for _, child := range append(result.TransportRequests, result.AccommodationRequests...) {
		steps := stepRepo.forRequest(child.ID)
		require.Len(t, steps, 1, child.ID)
		assert.Equal(t, entity.StepStatusSubmitted, steps[0].Status)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	requestRepo := newFakeRequestRepo()
	svc := NewAutoGenService(requestRepo, &fakeStepRepo{}, fakeTx{}, nopLogger{})

	parent := parentTSR(twoLegDetails)
	require.NoError(t, requestRepo.Create(context.Background(), parent))

	first, err := svc.ReconcileChildRequests(context.Background(), parent)
	require.NoError(t, err)
	require.Equal(t, 3, first.Created)

	second, err := svc.ReconcileChildRequests(context.Background(), parent)
	require.NoError(t, err)

	assert.Equal(t, 0, second.Created, "rerunning with the same payload creates nothing new")
	assert.Equal(t, 3, second.Updated)

	children, err := requestRepo.ListChildren(context.Background(), parent.ID)
	require.NoError(t, err)
	assert.Len(t, children, 3)
}

func TestReconcilePreservesChildStatus(t *testing.T) {
	requestRepo := newFakeRequestRepo()
	svc := NewAutoGenService(requestRepo, &fakeStepRepo{}, fakeTx{}, nopLogger{})

	parent := parentTSR(twoLegDetails)
	require.NoError(t, requestRepo.Create(context.Background(), parent))

	first, err := svc.ReconcileChildRequests(context.Background(), parent)
	require.NoError(t, err)

	// A child progresses independently
	progressed := first.TransportRequests[0]
	require.NoError(t, requestRepo.UpdateStatus(context.Background(), progressed.ID, domainwf.StateApproved.String()))

	// The parent is edited: purpose changes, legs stay the same
	parent.Purpose = "Revised survey"
	second, err := svc.ReconcileChildRequests(context.Background(), parent)
	require.NoError(t, err)
	require.Equal(t, 3, second.Updated)

	reloaded, err := requestRepo.GetByID(context.Background(), progressed.ID)
	require.NoError(t, err)
	assert.Equal(t, domainwf.StateApproved.String(), reloaded.Status,
		"reconciliation must never touch a child's workflow status")
}

func TestReconcileNewLegAddsChild(t *testing.T) {
	requestRepo := newFakeRequestRepo()
	svc := NewAutoGenService(requestRepo, &fakeStepRepo{}, fakeTx{}, nopLogger{})

	parent := parentTSR(`{"itinerary":[{"from":"A","to":"B","departure_date":"2026-09-14"}]}`)
	require.NoError(t, requestRepo.Create(context.Background(), parent))

	first, err := svc.ReconcileChildRequests(context.Background(), parent)
	require.NoError(t, err)
	require.Equal(t, 1, first.Created)

	parent.Details = `{"itinerary":[` +
		`{"from":"A","to":"B","departure_date":"2026-09-14"},` +
		`{"from":"B","to":"C","departure_date":"2026-09-15"}]}`

	second, err := svc.ReconcileChildRequests(context.Background(), parent)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Created)
	assert.Equal(t, 1, second.Updated)
}

func TestReconcileReplacedLegGetsFreshID(t *testing.T) {
	requestRepo := newFakeRequestRepo()
	svc := NewAutoGenService(requestRepo, &fakeStepRepo{}, fakeTx{}, nopLogger{})

	parent := parentTSR(`{"itinerary":[{"from":"A","to":"B","departure_date":"2026-09-14"}]}`)
	require.NoError(t, requestRepo.Create(context.Background(), parent))

	first, err := svc.ReconcileChildRequests(context.Background(), parent)
	require.NoError(t, err)
	require.Equal(t, 1, first.Created)
	original := first.TransportRequests[0]

	// The edit replaces the leg entirely; the old child is preserved and the
	// new leg must not reuse its ID
	parent.Details = `{"itinerary":[{"from":"C","to":"D","departure_date":"2026-09-20"}]}`

	second, err := svc.ReconcileChildRequests(context.Background(), parent)
	require.NoError(t, err)
	require.Equal(t, 1, second.Created)
	require.Len(t, second.TransportRequests, 1)

	replacement := second.TransportRequests[0]
	assert.NotEqual(t, original.ID, replacement.ID)
	assert.Contains(t, replacement.Purpose, "C to D")

	children, err := requestRepo.ListChildren(context.Background(), parent.ID)
	require.NoError(t, err)
	assert.Len(t, children, 2, "the replaced child stays, the new leg adds a row")
}

func TestReconcileEdgeCases(t *testing.T) {
	requestRepo := newFakeRequestRepo()
	svc := NewAutoGenService(requestRepo, &fakeStepRepo{}, fakeTx{}, nopLogger{})

	t.Run("empty details is a no-op", func(t *testing.T) {
		result, err := svc.ReconcileChildRequests(context.Background(), parentTSR(""))
		require.NoError(t, err)
		assert.Zero(t, result.Created)
	})

	t.Run("malformed details fail", func(t *testing.T) {
		_, err := svc.ReconcileChildRequests(context.Background(), parentTSR("{not json"))
		assert.Error(t, err)
	})

	t.Run("non-TSR parent is refused", func(t *testing.T) {
		claim := parentTSR(twoLegDetails)
		claim.Domain = entity.DomainClaim
		_, err := svc.ReconcileChildRequests(context.Background(), claim)
		assert.Error(t, err)
	})
}
