package entity

import "encoding/json"

// TSRDetails is the detail payload of a travel request. Itinerary segments
// imply transport legs; accommodation blocks imply stays. Both drive child
// request auto-generation.
type TSRDetails struct {
	Itinerary      []ItinerarySegment   `json:"itinerary"`
	Accommodation  []AccommodationBlock `json:"accommodation"`
	FlightRequired bool                 `json:"flight_required"`
}

// ItinerarySegment is one travel leg of a TSR
type ItinerarySegment struct {
	From          string `json:"from"`
	To            string `json:"to"`
	DepartureDate string `json:"departure_date"`
	TransportMode string `json:"transport_mode"`
}

// AccommodationBlock is one stay implied by a TSR
type AccommodationBlock struct {
	Location     string `json:"location"`
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date"`
	Nights       int    `json:"nights"`
}

// ClaimDetails is the detail payload of an expense claim
type ClaimDetails struct {
	LineItems []ClaimLineItem `json:"line_items"`
}

// ClaimLineItem is a single expense line on a claim
type ClaimLineItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	ExpenseDate string  `json:"expense_date"`
	Receipt     string  `json:"receipt,omitempty"`
}

// ParseTSRDetails decodes a TSR detail payload
func ParseTSRDetails(raw string) (*TSRDetails, error) {
	var d TSRDetails
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// MarshalDetails encodes a detail payload for storage
func MarshalDetails(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
