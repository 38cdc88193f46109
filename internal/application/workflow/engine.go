package workflow

import (
	"context"

	"github.com/traveldesk/traveldesk/internal/domain/entity"
	domainwf "github.com/traveldesk/traveldesk/internal/domain/workflow"
)

// Transition is the computed outcome of an action before it is applied
type Transition struct {
	NextStatus       domainwf.State
	NextApproverRole string
	RequiresComments bool
}

// ActionInput describes one action submission against a request
type ActionInput struct {
	RequestID    string
	Action       domainwf.Action
	ApproverRole string
	ApproverName string
	Comments     string
}

// TransitionResult is the committed outcome of an executed action
type TransitionResult struct {
	Request          *entity.Request
	PreviousStatus   domainwf.State
	NextStatus       domainwf.State
	NextApproverRole string
}

// HODRule decides whether a request needs HOD approval. All TSRs currently
// require it; claims below the configured threshold skip straight to
// Approved.
type HODRule func(req *entity.Request) bool

// DefaultHODRule builds the standard cost/type-based rule
func DefaultHODRule(claimThreshold float64) HODRule {
	return func(req *entity.Request) bool {
		if req.Domain == entity.DomainClaim && claimThreshold > 0 && req.TotalAmount <= claimThreshold {
			return false
		}
		return true
	}
}

// Engine validates and executes workflow transitions. Execute runs the
// status update and the audit-step insert in one transaction; no
// intermediate state is observable.
type Engine interface {
	// ComputeTransition resolves the next status, next approver label, and
	// comment requirement for an action without applying it
	ComputeTransition(ctx context.Context, req *entity.Request, action domainwf.Action, approverRole string) (*Transition, error)

	// Execute applies the action: validates, transitions, appends exactly one
	// approval step, and updates the request status atomically
	Execute(ctx context.Context, input ActionInput) (*TransitionResult, error)
}
