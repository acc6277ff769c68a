package model

// SeatLookupRow is one result of the attendee seat search: a payment joined
// to its event and attendee, with every assigned seat flattened into a
// display string (one seat per line).
//
// EventStartDate and EventStartTime carry the corrected start timestamp
// split into display fields; see report.EventStartDisplay for the
// correction itself.
type SeatLookupRow struct {
	EventName      string  `json:"eventName"`
	EventStartDate string  `json:"eventStartDate"`
	EventStartTime string  `json:"eventStartTime"`
	PaymentID      int64   `json:"paymentId"`
	Amount         float64 `json:"amount"`
	PayerName      *string `json:"payerName"`
	PayerEmail     *string `json:"payerEmail"`
	SeatInfo       *string `json:"seatInfo"`
	TransactionID  *string `json:"transactionId"`
}

// SeatAssignment mirrors one element of the json_agg over attendee_guests:
// a structured seat object plus the raw fallback identifier.
type SeatAssignment struct {
	SeatObj *SeatObj `json:"seat_obj"`
	SeatID  *string  `json:"seat_id"`
}

// SeatObj is the structured seat representation stored by the upstream
// system: an ordered list of labeled components (e.g. Section/Row/Seat).
type SeatObj struct {
	Components []SeatComponent `json:"components"`
}

type SeatComponent struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}
