package workflow

import (
	"context"

	"github.com/traveldesk/traveldesk/internal/domain/entity"
	domainwf "github.com/traveldesk/traveldesk/internal/domain/workflow"
)

// approvalSequences is the static workflow sequence table: the ordered
// pre-approval path per domain. Defined at deploy time, read-only at runtime.
var approvalSequences = map[entity.Domain][]domainwf.State{
	entity.DomainTSR: {
		domainwf.StatePendingDepartmentFocal,
		domainwf.StatePendingLineManager,
		domainwf.StatePendingHOD,
	},
	entity.DomainClaim: {
		domainwf.StatePendingVerification,
		domainwf.StatePendingDepartmentFocal,
		domainwf.StatePendingHOD,
	},
	entity.DomainVisa: {
		domainwf.StatePendingDepartmentFocal,
		domainwf.StatePendingLineManager,
		domainwf.StatePendingHOD,
	},
	entity.DomainAccommodation: {
		domainwf.StatePendingDepartmentFocal,
		domainwf.StatePendingLineManager,
		domainwf.StatePendingHOD,
	},
	entity.DomainTransport: {
		domainwf.StatePendingDepartmentFocal,
		domainwf.StatePendingLineManager,
		domainwf.StatePendingHOD,
	},
}

// processingSequences is the post-approval path per domain, driven by the
// domain admin teams rather than the approval chain.
var processingSequences = map[entity.Domain][]domainwf.State{
	entity.DomainTSR: {
		domainwf.StateApproved,
		domainwf.StateProcessingFlights,
		domainwf.StateTRFProcessed,
	},
	entity.DomainClaim: {
		domainwf.StateApproved,
		domainwf.StateProcessed,
	},
	entity.DomainVisa: {
		domainwf.StateApproved,
		domainwf.StateProcessingVisa,
		domainwf.StateVisaIssued,
	},
	entity.DomainAccommodation: {
		domainwf.StateApproved,
		domainwf.StateProcessingAccommodation,
		domainwf.StateAccommodationBooked,
	},
	entity.DomainTransport: {
		domainwf.StateApproved,
		domainwf.StateProcessingTransport,
		domainwf.StateTransportBooked,
	},
}

// InitialState returns the status a freshly submitted request enters
func InitialState(domain entity.Domain) domainwf.State {
	return approvalSequences[domain][0]
}

// NextApprovalState looks up the sequence table entry after current. The
// second return is false at the final pre-approval stage.
func NextApprovalState(domain entity.Domain, current domainwf.State) (domainwf.State, bool) {
	seq := approvalSequences[domain]
	for i, s := range seq {
		if s == current && i+1 < len(seq) {
			return seq[i+1], true
		}
	}
	return "", false
}

// BuildStateMachine creates a state machine configured for the domain's
// workflow, positioned at the given state. Guards read the ActionContext the
// engine places on the context before firing.
func BuildStateMachine(domain entity.Domain, initialState domainwf.State) domainwf.StateMachine {
	builder := domainwf.NewBuilder()

	// Draft is part of the status taxonomy but requests are submitted
	// straight into their first pending status, so the machine does not
	// configure it.
	seq := approvalSequences[domain]
	for i, state := range seq {
		cfg := builder.Configure(state)

		next := domainwf.StateApproved
		if i+1 < len(seq) {
			next = seq[i+1]
		}

		if next == domainwf.StatePendingHOD {
			// The cost/type rule may say HOD approval is not needed, in which
			// case approval skips straight to Approved.
			cfg.PermitIf(domainwf.ActionApprove, domainwf.StatePendingHOD, hodRequiredGuard)
			cfg.PermitIf(domainwf.ActionApprove, domainwf.StateApproved, hodNotRequiredGuard)
		} else {
			cfg.Permit(domainwf.ActionApprove, next)
		}

		cfg.Permit(domainwf.ActionReject, domainwf.StateRejected)
		cfg.Permit(domainwf.ActionCancel, domainwf.StateCancelled)
	}

	proc := processingSequences[domain]
	for i := 0; i+1 < len(proc); i++ {
		builder.Configure(proc[i]).
			Permit(domainwf.ActionAdvance, proc[i+1])
	}

	// The single documented terminal-state override: a Flight Admin may
	// reject an Approved TSR when no flights are available.
	if domain == entity.DomainTSR {
		builder.Configure(domainwf.StateApproved).
			PermitIf(domainwf.ActionReject, domainwf.StateRejected, flightAdminGuard)
	}

	return builder.Build(initialState)
}

// ActionContext carries the acting role and the HOD-requirement decision to
// the machine guards.
type ActionContext struct {
	Role        string
	HODRequired bool
}

type actionContextKey struct{}

// WithActionContext attaches the action context for guard evaluation
func WithActionContext(ctx context.Context, ac ActionContext) context.Context {
	return context.WithValue(ctx, actionContextKey{}, ac)
}

// ActionContextFrom extracts the action context; the zero value means no
// role and HOD required.
func ActionContextFrom(ctx context.Context) ActionContext {
	if ac, ok := ctx.Value(actionContextKey{}).(ActionContext); ok {
		return ac
	}
	return ActionContext{HODRequired: true}
}

func hodRequiredGuard(ctx context.Context) bool {
	return ActionContextFrom(ctx).HODRequired
}

func hodNotRequiredGuard(ctx context.Context) bool {
	return !ActionContextFrom(ctx).HODRequired
}

func flightAdminGuard(ctx context.Context) bool {
	return ActionContextFrom(ctx).Role == entity.RoleFlightAdmin
}
