package service

import (
	"github.com/traveldesk/traveldesk/internal/domain/entity"
	domainwf "github.com/traveldesk/traveldesk/internal/domain/workflow"
)

// approvalQueueFilters maps a role to the statuses it acts on. Used by list
// endpoints to build each approver's queue.
var approvalQueueFilters = map[string][]domainwf.State{
	entity.RoleVerifier: {
		domainwf.StatePendingVerification,
	},
	entity.RoleDepartmentFocal: {
		domainwf.StatePendingDepartmentFocal,
	},
	entity.RoleLineManager: {
		domainwf.StatePendingLineManager,
	},
	entity.RoleHOD: {
		domainwf.StatePendingHOD,
	},
	entity.RoleFlightAdmin: {
		domainwf.StateApproved,
		domainwf.StateProcessingFlights,
	},
	entity.RoleVisaAdmin: {
		domainwf.StateApproved,
		domainwf.StateProcessingVisa,
	},
	entity.RoleAccommodationAdmin: {
		domainwf.StateApproved,
		domainwf.StateProcessingAccommodation,
	},
	entity.RoleTransportAdmin: {
		domainwf.StateApproved,
		domainwf.StateProcessingTransport,
	},
}

// GetApprovalQueueFilters returns the statuses a role acts on; nil means the
// role has no approval queue. List endpoints push the filter into the query
// so pagination applies to the filtered set.
func GetApprovalQueueFilters(role string) []domainwf.State {
	filters := approvalQueueFilters[role]
	if filters == nil {
		return nil
	}
	out := make([]domainwf.State, len(filters))
	copy(out, filters)
	return out
}
