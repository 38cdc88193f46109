package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traveldesk/traveldesk/internal/domain/entity"
	domainwf "github.com/traveldesk/traveldesk/internal/domain/workflow"
)

func TestGetApprovalQueueFilters(t *testing.T) {
	tests := []struct {
		role string
		want []domainwf.State
	}{
		{entity.RoleVerifier, []domainwf.State{domainwf.StatePendingVerification}},
		{entity.RoleDepartmentFocal, []domainwf.State{domainwf.StatePendingDepartmentFocal}},
		{entity.RoleLineManager, []domainwf.State{domainwf.StatePendingLineManager}},
		{entity.RoleHOD, []domainwf.State{domainwf.StatePendingHOD}},
		{entity.RoleFlightAdmin, []domainwf.State{domainwf.StateApproved, domainwf.StateProcessingFlights}},
		{entity.RoleVisaAdmin, []domainwf.State{domainwf.StateApproved, domainwf.StateProcessingVisa}},
		{entity.RoleAccommodationAdmin, []domainwf.State{domainwf.StateApproved, domainwf.StateProcessingAccommodation}},
		{entity.RoleTransportAdmin, []domainwf.State{domainwf.StateApproved, domainwf.StateProcessingTransport}},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			assert.Equal(t, tt.want, GetApprovalQueueFilters(tt.role))
		})
	}
}

func TestGetApprovalQueueFiltersUnknownRole(t *testing.T) {
	assert.Nil(t, GetApprovalQueueFilters("Requestor"))
	assert.Nil(t, GetApprovalQueueFilters(""))
}

func TestGetApprovalQueueFiltersReturnsCopy(t *testing.T) {
	filters := GetApprovalQueueFilters(entity.RoleFlightAdmin)
	require.Len(t, filters, 2)
	filters[0] = domainwf.StateRejected

	again := GetApprovalQueueFilters(entity.RoleFlightAdmin)
	assert.Equal(t, domainwf.StateApproved, again[0],
		"mutating the returned slice must not leak into the shared table")
}
