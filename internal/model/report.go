package model

// EventReportRow is one line of the event list report: per-event payout and
// tickets sold for a single host.
//
// Payout is the sum over qualifying payments of amount minus refunds and
// all fee components, rounded to two decimals in SQL. TicketsSold is the
// sum over price tiers of package_quantity * (quantity_sold -
// quantity_exchanged_sent).
type EventReportRow struct {
	EventID      int64            `json:"eventId"`
	EventName    string           `json:"eventName"`
	PayoutAmount float64          `json:"payoutAmount"`
	TicketsSold  int64            `json:"ticketsSold"`
	Tiers        []PriceTierPayout `json:"priceTiers,omitempty"`
}

// PriceTierPayout is one row of the per-price-tier breakdown. PayoutAmount
// is the payment payouts prorated onto this tier by item-quantity share;
// TicketsSold is the tier's own counter, package_quantity * (quantity_sold
// - quantity_exchanged_sent).
type PriceTierPayout struct {
	TierID       int64   `json:"tierId"`
	TierName     string  `json:"tierName"`
	PayoutAmount float64 `json:"payoutAmount"`
	TicketsSold  int64   `json:"ticketsSold"`
}

// TierPaymentItem is the raw proration input: one payment item linking a
// payment to a price tier. Quantity is the item's own quantity,
// PaymentQuantity the payment's total item quantity, NetPayout the
// payment's net payout after refunds and fees. Nullable counters arrive as
// pointers so zero and absent stay distinguishable.
type TierPaymentItem struct {
	EventID         int64
	TierID          int64
	TierName        string
	TierTickets     int64
	PaymentID       int64
	Quantity        *int64
	PaymentQuantity *int64
	NetPayout       float64
}
