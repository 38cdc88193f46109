package entity

import "time"

// NotificationRecord tracks an outbound approval/rejection email. Delivery is
// best effort; the record exists so failed sends are visible afterwards.
type NotificationRecord struct {
	ID         int64     `json:"id"`
	RequestID  string    `json:"request_id"`
	Kind       string    `json:"kind"` // approval | rejection | cancellation
	Recipients string    `json:"recipients"`
	Subject    string    `json:"subject"`
	Status     string    `json:"status"`
	ErrorMsg   string    `json:"error_msg,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Notification kind constants
const (
	NotificationKindApproval     = "approval"
	NotificationKindRejection    = "rejection"
	NotificationKindCancellation = "cancellation"
)
