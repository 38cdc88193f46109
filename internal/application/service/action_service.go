package service

import (
	"context"
	"fmt"
	"time"

	"github.com/traveldesk/traveldesk/internal/apperrors"
	"github.com/traveldesk/traveldesk/internal/application/port"
	appwf "github.com/traveldesk/traveldesk/internal/application/workflow"
	"github.com/traveldesk/traveldesk/internal/dedup"
	"github.com/traveldesk/traveldesk/internal/domain/entity"
	domainwf "github.com/traveldesk/traveldesk/internal/domain/workflow"
	"github.com/traveldesk/traveldesk/pkg/utils"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ActionRequest is the caller's action submission for a request
type ActionRequest struct {
	Action       string `json:"action" binding:"required"`
	Comments     string `json:"comments"`
	ApproverRole string `json:"approverRole" binding:"required"`
	ApproverName string `json:"approverName" binding:"required"`
}

// ActionResult carries the committed outcome back to the API boundary
type ActionResult struct {
	Request *entity.Request
	Message string
}

// ActionService guards and executes workflow actions: dedup check, engine
// transition, response. Notification dispatch happens inside the engine,
// after commit, without being awaited.
type ActionService interface {
	SubmitAction(ctx context.Context, requestID string, req ActionRequest) (*ActionResult, error)
}

type actionServiceImpl struct {
	engine     appwf.Engine
	dedupStore port.DedupStore
	dedupTTL   time.Duration
	logger     Logger
	now        func() time.Time
}

// NewActionService creates a new ActionService
func NewActionService(engine appwf.Engine, dedupStore port.DedupStore, dedupTTL time.Duration, logger Logger) ActionService {
	if dedupTTL <= 0 {
		dedupTTL = 15 * time.Second
	}
	return &actionServiceImpl{
		engine:     engine,
		dedupStore: dedupStore,
		dedupTTL:   dedupTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// SubmitAction processes one action submission end to end
func (s *actionServiceImpl) SubmitAction(ctx context.Context, requestID string, req ActionRequest) (*ActionResult, error) {
	action := domainwf.Action(req.Action)
	if !action.IsValid() {
		return nil, apperrors.NewValidation("action", fmt.Sprintf("unknown action %q", req.Action))
	}

	fingerprint := dedup.Fingerprint(requestID, req.Action, req.ApproverRole, req.ApproverName, s.now(), s.dedupTTL)
	check := s.dedupStore.CheckAndMark(ctx, fingerprint, s.dedupTTL)
	if check.IsDuplicate {
		s.logger.Info("Duplicate action suppressed",
			"request_id", requestID,
			"action", req.Action,
			"approver", req.ApproverName,
			"retry_after", check.TimeRemaining.String(),
		)
		return nil, apperrors.NewDuplicateAction(check.TimeRemaining)
	}
	// The entry is cleared on every outcome; the TTL only covers a crash
	// between mark and clear.
	defer s.dedupStore.MarkCompleted(ctx, fingerprint)

	result, err := s.engine.Execute(ctx, appwf.ActionInput{
		RequestID:    requestID,
		Action:       action,
		ApproverRole: req.ApproverRole,
		ApproverName: req.ApproverName,
		Comments:     utils.SanitizeString(req.Comments),
	})
	if err != nil {
		s.logger.Error("Action failed",
			"request_id", requestID,
			"action", req.Action,
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("Action applied",
		"request_id", requestID,
		"action", req.Action,
		"previous_status", result.PreviousStatus.String(),
		"new_status", result.NextStatus.String(),
		"approver", req.ApproverName,
	)

	return &ActionResult{
		Request: result.Request,
		Message: buildActionMessage(action, result),
	}, nil
}

func buildActionMessage(action domainwf.Action, result *appwf.TransitionResult) string {
	switch action {
	case domainwf.ActionApprove:
		return fmt.Sprintf("Request %s approved. Now %s, with %s.", result.Request.ID, result.NextStatus, result.NextApproverRole)
	case domainwf.ActionReject:
		return fmt.Sprintf("Request %s rejected.", result.Request.ID)
	case domainwf.ActionCancel:
		return fmt.Sprintf("Request %s cancelled.", result.Request.ID)
	default:
		return fmt.Sprintf("Request %s moved to %s.", result.Request.ID, result.NextStatus)
	}
}
