package entity

import "time"

// ApprovalStep is one append-only audit row for a request action. Steps are
// immutable once written; the only deletion path is a full request edit,
// which clears prior steps and logs a single Edited marker.
type ApprovalStep struct {
	ID        int64     `json:"id"`
	RequestID string    `json:"request_id"`
	Role      string    `json:"role"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Comments  string    `json:"comments"`
	Date      time.Time `json:"date"`
}

// Step status constants
const (
	StepStatusSubmitted = "Submitted"
	StepStatusApproved  = "Approved"
	StepStatusRejected  = "Rejected"
	StepStatusCancelled = "Cancelled"
	StepStatusEdited    = "Edited"
	StepStatusAdvanced  = "Advanced"
)
