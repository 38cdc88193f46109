package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/traveldesk/traveldesk/internal/application/port"
	appwf "github.com/traveldesk/traveldesk/internal/application/workflow"
	"github.com/traveldesk/traveldesk/internal/domain/entity"
	domainwf "github.com/traveldesk/traveldesk/internal/domain/workflow"
)

// nopLogger satisfies Logger without output
type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// fakeRequestRepo is an in-memory request store
type fakeRequestRepo struct {
	requests map[string]*entity.Request

	getErr    error
	createErr error
	updateErr error
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[string]*entity.Request)}
}

func (r *fakeRequestRepo) Create(_ context.Context, req *entity.Request) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, exists := r.requests[req.ID]; exists {
		return fmt.Errorf("duplicate id %s", req.ID)
	}
	clone := *req
	r.requests[req.ID] = &clone
	return nil
}

func (r *fakeRequestRepo) GetByID(_ context.Context, id string) (*entity.Request, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	req, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	clone := *req
	return &clone, nil
}

func (r *fakeRequestRepo) UpdateStatus(_ context.Context, id string, status string) error {
	if req, ok := r.requests[id]; ok {
		req.Status = status
	}
	return nil
}

func (r *fakeRequestRepo) Update(_ context.Context, req *entity.Request) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	clone := *req
	r.requests[req.ID] = &clone
	return nil
}

func (r *fakeRequestRepo) SetApprovedAt(_ context.Context, id string, at time.Time) error {
	if req, ok := r.requests[id]; ok {
		req.ApprovedAt = &at
	}
	return nil
}

func (r *fakeRequestRepo) List(_ context.Context, domain entity.Domain, limit, offset int) ([]*entity.Request, error) {
	var out []*entity.Request
	for _, req := range r.requests {
		if req.Domain == domain {
			clone := *req
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRequestRepo) ListByStatuses(ctx context.Context, domain entity.Domain, statuses []string, limit, offset int) ([]*entity.Request, error) {
	all, err := r.List(ctx, domain, len(r.requests), 0)
	if err != nil {
		return nil, err
	}
	// Filter before paging, like the SQL WHERE ... LIMIT/OFFSET does
	var matched []*entity.Request
	for _, req := range all {
		for _, s := range statuses {
			if req.Status == s {
				matched = append(matched, req)
				break
			}
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *fakeRequestRepo) ListChildren(_ context.Context, parentID string) ([]*entity.Request, error) {
	var out []*entity.Request
	for _, req := range r.requests {
		if req.ParentID == parentID {
			clone := *req
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRequestRepo) CountForYear(_ context.Context, domain entity.Domain, year int) (int64, error) {
	prefix := fmt.Sprintf("%s-%d-", domain, year)
	var count int64
	for id, req := range r.requests {
		if req.Domain == domain && strings.HasPrefix(id, prefix) {
			count++
		}
	}
	return count, nil
}

// fakeStepRepo is an in-memory approval step store. onCreate, when set, runs
// before each insert so tests can hold a write in flight.
type fakeStepRepo struct {
	steps    []*entity.ApprovalStep
	onCreate func()
}

func (r *fakeStepRepo) Create(_ context.Context, step *entity.ApprovalStep) error {
	if r.onCreate != nil {
		r.onCreate()
	}
	clone := *step
	clone.ID = int64(len(r.steps) + 1)
	r.steps = append(r.steps, &clone)
	return nil
}

func (r *fakeStepRepo) GetByRequestID(_ context.Context, requestID string) ([]*entity.ApprovalStep, error) {
	var out []*entity.ApprovalStep
	for _, s := range r.steps {
		if s.RequestID == requestID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeStepRepo) DeleteByRequestID(_ context.Context, requestID string) error {
	kept := r.steps[:0]
	for _, s := range r.steps {
		if s.RequestID != requestID {
			kept = append(kept, s)
		}
	}
	r.steps = kept
	return nil
}

func (r *fakeStepRepo) forRequest(requestID string) []*entity.ApprovalStep {
	steps, _ := r.GetByRequestID(context.Background(), requestID)
	return steps
}

// fakeNotificationRepo records notification rows in memory
type fakeNotificationRepo struct {
	records   []*entity.NotificationRecord
	createErr error
}

func (r *fakeNotificationRepo) Create(_ context.Context, rec *entity.NotificationRecord) error {
	if r.createErr != nil {
		return r.createErr
	}
	rec.ID = int64(len(r.records) + 1)
	r.records = append(r.records, rec)
	return nil
}

func (r *fakeNotificationRepo) MarkSent(_ context.Context, id int64) error {
	for _, rec := range r.records {
		if rec.ID == id {
			rec.Status = entity.NotificationStatusSent
		}
	}
	return nil
}

func (r *fakeNotificationRepo) UpdateStatus(_ context.Context, id int64, status, errorMsg string) error {
	for _, rec := range r.records {
		if rec.ID == id {
			rec.Status = status
			rec.ErrorMsg = errorMsg
		}
	}
	return nil
}

// fakeTx runs the function directly
type fakeTx struct{}

func (fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeMailer records sent messages and optionally fails
type fakeMailer struct {
	sent    []port.MailMessage
	sendErr error
}

func (m *fakeMailer) Send(_ context.Context, msg port.MailMessage) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

// fakeEngine lets action service tests script the engine outcome
type fakeEngine struct {
	execute func(ctx context.Context, input appwf.ActionInput) (*appwf.TransitionResult, error)
	inputs  []appwf.ActionInput
}

func (e *fakeEngine) ComputeTransition(context.Context, *entity.Request, domainwf.Action, string) (*appwf.Transition, error) {
	return nil, fmt.Errorf("not scripted")
}

func (e *fakeEngine) Execute(ctx context.Context, input appwf.ActionInput) (*appwf.TransitionResult, error) {
	e.inputs = append(e.inputs, input)
	return e.execute(ctx, input)
}

// fakeDedupStore scripts the duplicate check and records clearances
type fakeDedupStore struct {
	check     port.DedupCheck
	marked    []string
	completed []string
}

func (s *fakeDedupStore) CheckAndMark(_ context.Context, fingerprint string, _ time.Duration) port.DedupCheck {
	s.marked = append(s.marked, fingerprint)
	return s.check
}

func (s *fakeDedupStore) MarkCompleted(_ context.Context, fingerprint string) {
	s.completed = append(s.completed, fingerprint)
}
