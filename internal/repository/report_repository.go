package repository

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/squadup/event-reporting/internal/model"
)

// netPayoutExpr is the per-payment net payout: gross amount minus refunds
// and every fee component. Kept as one expression so the rollup and the
// tier breakdown cannot drift apart.
const netPayoutExpr = `p.amount - p.refund_amount - p.guest_processing_fees - p.host_processing_fees -
			p.guest_squadup_fees - p.host_squadup_fees - p.insurance_premium - p.shipping_fees`

// qualifyingPaymentExpr filters payments that count toward a payout:
// settled statuses only, no payment plan still in progress, and check/wire
// payments only once marked paid.
const qualifyingPaymentExpr = `p.status NOT IN ('void', 'refund', 'cancel', 'transfer')
			AND (p.payment_plan_in_progress IS NULL OR p.payment_plan_in_progress = false)
			AND (p.payment_instrument != 'check_wire' OR (p.payment_instrument = 'check_wire' AND p.check_wire_paid_at IS NOT NULL))`

// ReportRepo computes the per-event payout and ticket rollups on the
// warehouse cluster.
type ReportRepo struct {
	db *sql.DB
}

// NewReportRepo returns a ReportRepo bound to the warehouse pool.
func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// EventList returns one row per event owned by the host: event name,
// summed payout rounded to two decimals, and summed tickets sold. Events
// without qualifying payments or tier sales still appear with zero totals.
// dateFrom/dateTo optionally bound the payment creation date (inclusive,
// yyyy-mm-dd); ticket counters are lifetime numbers and are not windowed.
func (r *ReportRepo) EventList(ctx context.Context, hostUserID int64, dateFrom, dateTo string) ([]model.EventReportRow, error) {
	args := []any{hostUserID}
	n := 1
	next := func() string { n++; return "$" + strconv.Itoa(n) }

	dateCond := ""
	if dateFrom != "" {
		dateCond += " AND p.created_at::date >= " + next() + "::date"
		args = append(args, dateFrom)
	}
	if dateTo != "" {
		dateCond += " AND p.created_at::date <= " + next() + "::date"
		args = append(args, dateTo)
	}

	query := `
		SELECT
			e.id AS event_id,
			e.name AS event_name,
			COALESCE(payout_sum.total_payout, 0) AS payout_amount,
			COALESCE(tickets_sum.total_tickets, 0) AS tickets_sold
		FROM events e
		LEFT JOIN (
			SELECT
				p.event_id,
				ROUND(SUM(` + netPayoutExpr + `), 2) AS total_payout
			FROM payments p
			WHERE ` + qualifyingPaymentExpr + dateCond + `
			GROUP BY p.event_id
		) payout_sum ON payout_sum.event_id = e.id
		LEFT JOIN (
			SELECT
				pt.event_id,
				SUM(COALESCE(pt.package_quantity, 1) * (pt.quantity_sold - pt.quantity_exchanged_sent)) AS total_tickets
			FROM price_tiers pt
			GROUP BY pt.event_id
		) tickets_sum ON tickets_sum.event_id = e.id
		WHERE e.user_id = $1
		ORDER BY e.name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []model.EventReportRow{}
	for rows.Next() {
		var (
			row  model.EventReportRow
			name sql.NullString
		)
		if err := rows.Scan(&row.EventID, &name, &row.PayoutAmount, &row.TicketsSold); err != nil {
			return nil, classify(err)
		}
		row.EventName = name.String
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// TierItems returns the raw proration inputs for the per-price-tier payout
// breakdown: one row per payment item on a qualifying payment, carrying the
// item quantity, the payment's total item quantity, and the payment's net
// payout. Proration itself happens in the report package so the NULL-safe
// division rule stays unit-testable.
func (r *ReportRepo) TierItems(ctx context.Context, hostUserID int64, dateFrom, dateTo string) ([]model.TierPaymentItem, error) {
	args := []any{hostUserID}
	n := 1
	next := func() string { n++; return "$" + strconv.Itoa(n) }

	dateCond := ""
	if dateFrom != "" {
		dateCond += " AND p.created_at::date >= " + next() + "::date"
		args = append(args, dateFrom)
	}
	if dateTo != "" {
		dateCond += " AND p.created_at::date <= " + next() + "::date"
		args = append(args, dateTo)
	}

	query := `
		SELECT
			e.id AS event_id,
			pt.id AS tier_id,
			pt.name AS tier_name,
			COALESCE(pt.package_quantity, 1) * (pt.quantity_sold - pt.quantity_exchanged_sent) AS tier_tickets,
			p.id AS payment_id,
			pi.quantity,
			totals.total_quantity,
			` + netPayoutExpr + ` AS net_payout
		FROM events e
		JOIN payments p ON p.event_id = e.id
			AND ` + qualifyingPaymentExpr + dateCond + `
		JOIN payment_items pi ON pi.payment_id = p.id
		JOIN price_tiers pt ON pt.id = pi.price_tier_id
		LEFT JOIN (
			SELECT payment_id, SUM(quantity) AS total_quantity
			FROM payment_items
			GROUP BY payment_id
		) totals ON totals.payment_id = p.id
		WHERE e.user_id = $1
		ORDER BY e.id, pt.id, p.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []model.TierPaymentItem{}
	for rows.Next() {
		var (
			item model.TierPaymentItem
			name sql.NullString
			qty  sql.NullInt64
			tot  sql.NullInt64
		)
		if err := rows.Scan(&item.EventID, &item.TierID, &name, &item.TierTickets, &item.PaymentID, &qty, &tot, &item.NetPayout); err != nil {
			return nil, classify(err)
		}
		item.TierName = name.String
		item.Quantity = nullI64(qty)
		item.PaymentQuantity = nullI64(tot)
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}
