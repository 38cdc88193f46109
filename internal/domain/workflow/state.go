package workflow

// State represents a request status in the approval lifecycle
type State string

const (
	StateDraft                  State = "Draft"
	StatePendingVerification    State = "Pending Verification"
	StatePendingDepartmentFocal State = "Pending Department Focal"
	StatePendingLineManager     State = "Pending Line Manager"
	StatePendingHOD             State = "Pending HOD"
	StateApproved               State = "Approved"
	StateRejected               State = "Rejected"
	StateCancelled              State = "Cancelled"

	// Post-approval processing stages, per domain
	StateProcessingFlights       State = "Processing Flights"
	StateTRFProcessed            State = "TRF Processed"
	StateProcessed               State = "Processed"
	StateProcessingVisa          State = "Processing Visa"
	StateVisaIssued              State = "Visa Issued"
	StateProcessingAccommodation State = "Processing Accommodation"
	StateAccommodationBooked     State = "Accommodation Booked"
	StateProcessingTransport     State = "Processing Transport"
	StateTransportBooked         State = "Transport Booked"
)

var validStates = map[State]bool{
	StateDraft:                   true,
	StatePendingVerification:     true,
	StatePendingDepartmentFocal:  true,
	StatePendingLineManager:      true,
	StatePendingHOD:              true,
	StateApproved:                true,
	StateRejected:                true,
	StateCancelled:               true,
	StateProcessingFlights:       true,
	StateTRFProcessed:            true,
	StateProcessed:               true,
	StateProcessingVisa:          true,
	StateVisaIssued:              true,
	StateProcessingAccommodation: true,
	StateAccommodationBooked:     true,
	StateProcessingTransport:     true,
	StateTransportBooked:         true,
}

// terminalStates admit no further transitions of any kind.
var terminalStates = map[State]bool{
	StateRejected:            true,
	StateCancelled:           true,
	StateTRFProcessed:        true,
	StateProcessed:           true,
	StateVisaIssued:          true,
	StateAccommodationBooked: true,
	StateTransportBooked:     true,
}

// processingStates are past the approval chain: Approved awaiting processing,
// or already inside a processing stage. Together with terminalStates they
// form the terminal-or-processing partition that blocks approval actions.
var processingStates = map[State]bool{
	StateApproved:                true,
	StateProcessingFlights:       true,
	StateProcessingVisa:          true,
	StateProcessingAccommodation: true,
	StateProcessingTransport:     true,
}

// cancellableStates are the early pre-approval statuses a requestor may
// withdraw from.
var cancellableStates = map[State]bool{
	StateDraft:                  true,
	StatePendingVerification:    true,
	StatePendingDepartmentFocal: true,
	StatePendingLineManager:     true,
	StatePendingHOD:             true,
}

// IsTerminal returns true if the state admits no further transitions
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsProcessing returns true if the state is Approved or a processing stage
func (s State) IsProcessing() bool {
	return processingStates[s]
}

// IsTerminalOrProcessing returns true if no further approval action is legal
// from this state. The Flight Admin override on an Approved TSR is the single
// exception, handled by the machine configuration rather than here.
func (s State) IsTerminalOrProcessing() bool {
	return terminalStates[s] || processingStates[s]
}

// IsCancellable returns true if the requestor may cancel from this state
func (s State) IsCancellable() bool {
	return cancellableStates[s]
}

// IsValid returns true if the state is a declared workflow state
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// NextApproverLabel derives the notification routing label from a resolved
// state. Pending statuses name the role embedded in the status string;
// Approved routes to the processing admin teams plus the requestor.
func (s State) NextApproverLabel() string {
	switch s {
	case StatePendingVerification:
		return "Verifier"
	case StatePendingDepartmentFocal:
		return "Department Focal"
	case StatePendingLineManager:
		return "Line Manager"
	case StatePendingHOD:
		return "HOD"
	case StateApproved:
		return "Admin Teams & Requestor"
	default:
		return "Requestor"
	}
}
