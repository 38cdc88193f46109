package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/traveldesk/traveldesk/internal/apperrors"
	"github.com/traveldesk/traveldesk/internal/application/dispatcher"
	"github.com/traveldesk/traveldesk/internal/application/port"
	"github.com/traveldesk/traveldesk/internal/domain/entity"
	"github.com/traveldesk/traveldesk/internal/domain/event"
	domainwf "github.com/traveldesk/traveldesk/internal/domain/workflow"
)

// engineImpl is the concrete implementation of Engine
type engineImpl struct {
	requestRepo port.RequestRepository
	stepRepo    port.StepRepository
	txManager   port.TransactionManager
	dispatcher  dispatcher.Dispatcher
	hodRule     HODRule
	now         func() time.Time
}

// EngineOption configures the workflow engine
type EngineOption func(*engineImpl)

// WithDispatcher sets the event dispatcher for post-commit events
func WithDispatcher(d dispatcher.Dispatcher) EngineOption {
	return func(e *engineImpl) {
		e.dispatcher = d
	}
}

// WithHODRule overrides the HOD-requirement rule
func WithHODRule(rule HODRule) EngineOption {
	return func(e *engineImpl) {
		e.hodRule = rule
	}
}

// NewEngine creates a new workflow engine
func NewEngine(
	requestRepo port.RequestRepository,
	stepRepo port.StepRepository,
	txManager port.TransactionManager,
	opts ...EngineOption,
) Engine {
	e := &engineImpl{
		requestRepo: requestRepo,
		stepRepo:    stepRepo,
		txManager:   txManager,
		hodRule:     DefaultHODRule(0),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// ComputeTransition resolves the outcome of an action without applying it
func (e *engineImpl) ComputeTransition(ctx context.Context, req *entity.Request, action domainwf.Action, approverRole string) (*Transition, error) {
	if !action.IsValid() {
		return nil, apperrors.NewValidation("action", fmt.Sprintf("unknown action %q", action))
	}

	current := domainwf.State(req.Status)
	if !current.IsValid() {
		return nil, fmt.Errorf("%w: request %s has status %q", domainwf.ErrInvalidState, req.ID, req.Status)
	}

	machine := BuildStateMachine(req.Domain, current)
	guardCtx := WithActionContext(ctx, ActionContext{
		Role:        approverRole,
		HODRequired: e.hodRule(req),
	})

	if err := machine.Fire(guardCtx, action); err != nil {
		if errors.Is(err, domainwf.ErrInvalidTransition) || errors.Is(err, domainwf.ErrGuardFailed) {
			return nil, apperrors.NewInvalidTransition(req.ID, req.Status, action.String())
		}
		return nil, err
	}

	next := machine.State()
	return &Transition{
		NextStatus:       next,
		NextApproverRole: next.NextApproverLabel(),
		RequiresComments: action == domainwf.ActionReject,
	}, nil
}

// Execute applies an action inside one transaction: the status update and
// the audit step commit together or not at all. The request status is
// re-read inside the transaction boundary so a concurrent action that
// already moved the request out of an actionable state loses cleanly.
func (e *engineImpl) Execute(ctx context.Context, input ActionInput) (*TransitionResult, error) {
	if input.Action == domainwf.ActionReject && input.Comments == "" {
		return nil, apperrors.NewValidation("comments", "comments are required when rejecting a request")
	}
	if input.ApproverRole == "" {
		return nil, apperrors.NewValidation("approverRole", "approver role is required")
	}
	if input.ApproverName == "" {
		return nil, apperrors.NewValidation("approverName", "approver name is required")
	}

	var result *TransitionResult

	err := e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, err := e.requestRepo.GetByID(txCtx, input.RequestID)
		if err != nil {
			return apperrors.NewPersistence(err)
		}
		if req == nil {
			return apperrors.NewNotFound(input.RequestID)
		}

		transition, err := e.ComputeTransition(txCtx, req, input.Action, input.ApproverRole)
		if err != nil {
			return err
		}

		previous := domainwf.State(req.Status)
		next := transition.NextStatus

		if err := e.requestRepo.UpdateStatus(txCtx, req.ID, next.String()); err != nil {
			return apperrors.NewPersistence(err)
		}

		step := &entity.ApprovalStep{
			RequestID: req.ID,
			Role:      input.ApproverRole,
			Name:      input.ApproverName,
			Status:    stepStatusFor(input.Action),
			Comments:  input.Comments,
			Date:      e.now(),
		}
		if err := e.stepRepo.Create(txCtx, step); err != nil {
			return apperrors.NewPersistence(err)
		}

		if next == domainwf.StateApproved {
			if err := e.requestRepo.SetApprovedAt(txCtx, req.ID, e.now()); err != nil {
				return apperrors.NewPersistence(err)
			}
		}

		req.Status = next.String()
		result = &TransitionResult{
			Request:          req,
			PreviousStatus:   previous,
			NextStatus:       next,
			NextApproverRole: transition.NextApproverRole,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	if e.dispatcher != nil {
		evt := event.NewEvent(
			eventTypeFor(input.Action),
			result.Request.ID,
			result.Request.Domain,
			map[string]interface{}{
				"previous_status": result.PreviousStatus.String(),
				"new_status":      result.NextStatus.String(),
				"approver_role":   input.ApproverRole,
				"approver_name":   input.ApproverName,
				"comments":        input.Comments,
				"next_approver":   result.NextApproverRole,
			},
		)
		// Fired after commit; never blocks the response. The context is
		// detached because the HTTP request context dies when the handler
		// returns, while the handlers still need to read and write.
		e.dispatcher.DispatchAsync(context.WithoutCancel(ctx), evt)
	}

	return result, nil
}

func stepStatusFor(action domainwf.Action) string {
	switch action {
	case domainwf.ActionApprove:
		return entity.StepStatusApproved
	case domainwf.ActionReject:
		return entity.StepStatusRejected
	case domainwf.ActionCancel:
		return entity.StepStatusCancelled
	case domainwf.ActionAdvance:
		return entity.StepStatusAdvanced
	default:
		return entity.StepStatusSubmitted
	}
}

func eventTypeFor(action domainwf.Action) event.Type {
	switch action {
	case domainwf.ActionApprove:
		return event.TypeRequestApproved
	case domainwf.ActionReject:
		return event.TypeRequestRejected
	case domainwf.ActionCancel:
		return event.TypeRequestCancelled
	default:
		return event.TypeStatusChanged
	}
}
