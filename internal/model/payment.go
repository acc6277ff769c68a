package model

import "encoding/json"

// Payment mirrors the columns the service reads from payments_fdw. The
// warehouse tables are owned by the upstream ticketing system; this service
// only reads them. Nullable columns use pointers so absent values survive
// the trip into JSON untouched.
//
// A payment counts toward a host payout only when its status is outside
// {void, refund, cancel, transfer}, no payment plan is in progress, and a
// check/wire payment has been marked paid.
type Payment struct {
	ID                int64           `json:"id"`                  // payments.id
	TransactionID     *string         `json:"transaction_id"`      // payments.transaction_id
	Status            string          `json:"status"`              // payments.status
	NameOnCard        *string         `json:"name_on_card"`        // payments.name_on_card
	CardType          *string         `json:"card_type"`           // payments.card_type
	LastFour          *string         `json:"last_four"`           // payments.last_four
	Amount            *float64        `json:"amount"`              // payments.amount
	CreatedAt         string          `json:"created_at"`          // payments.created_at
	UserID            *int64          `json:"user_id"`             // payments.user_id
	EventID           *int64          `json:"event_id"`            // payments.event_id
	EventAttendeeID   *int64          `json:"event_attendee_id"`   // payments.event_attendee_id
	ShippingAddressID *int64          `json:"shipping_address_id"` // payments.shipping_address_id
	Metadata          json.RawMessage `json:"metadata"`            // payments.metadata (JSON)
	HostUserID        *int64          `json:"host_user_id"`        // events.user_id of the joined event
}

// PaymentMetadata is the subset of the metadata JSON blob the service
// surfaces. Everything else is passed through untouched.
type PaymentMetadata struct {
	IPAddress string `json:"ip_address"`
}

// IPAddress extracts metadata.ip_address, empty when metadata is missing
// or malformed.
func (p Payment) IPAddress() string {
	if len(p.Metadata) == 0 {
		return ""
	}
	var m PaymentMetadata
	if err := json.Unmarshal(p.Metadata, &m); err != nil {
		return ""
	}
	return m.IPAddress
}
