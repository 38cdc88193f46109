package entity

// Approver role constants
const (
	RoleRequestor          = "Requestor"
	RoleVerifier           = "Verifier"
	RoleDepartmentFocal    = "Department Focal"
	RoleLineManager        = "Line Manager"
	RoleHOD                = "HOD"
	RoleFlightAdmin        = "Flight Admin"
	RoleVisaAdmin          = "Visa Admin"
	RoleAccommodationAdmin = "Accommodation Admin"
	RoleTransportAdmin     = "Transport Admin"
)

// Notification status constants
const (
	NotificationStatusPending = "PENDING"
	NotificationStatusSent    = "SENT"
	NotificationStatusFailed  = "FAILED"
)
