package entity

import "time"

// Domain identifies which request type a Request belongs to
type Domain string

const (
	DomainTSR           Domain = "TSR"
	DomainClaim         Domain = "CLM"
	DomainVisa          Domain = "VSA"
	DomainAccommodation Domain = "ACM"
	DomainTransport     Domain = "TPT"
)

var validDomains = map[Domain]bool{
	DomainTSR:           true,
	DomainClaim:         true,
	DomainVisa:          true,
	DomainAccommodation: true,
	DomainTransport:     true,
}

// IsValid returns true if the domain is one of the declared request domains
func (d Domain) IsValid() bool {
	return validDomains[d]
}

// String returns the string representation of the domain
func (d Domain) String() string {
	return string(d)
}

// Request is a travel/expense request in one of the five domains. The ID is
// domain-prefixed (TSR-2024-0001). Child transport/accommodation requests
// carry the parent TSR id and the leg/stay key they were derived from.
type Request struct {
	ID            string     `json:"id"`
	Domain        Domain     `json:"domain"`
	Status        string     `json:"status"`
	RequestorName string     `json:"requestor_name"`
	StaffID       string     `json:"staff_id"`
	Department    string     `json:"department"`
	Email         string     `json:"email"`
	Purpose       string     `json:"purpose"`
	TotalAmount   float64    `json:"total_amount"`
	Details       string     `json:"details"` // domain detail payload, JSON
	ParentID      string     `json:"parent_id,omitempty"`
	ChildKey      string     `json:"child_key,omitempty"`
	SubmittedAt   time.Time  `json:"submitted_at"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
