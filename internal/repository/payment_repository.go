package repository

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/lib/pq"

	"github.com/squadup/event-reporting/internal/model"
)

// PaymentSearch defines filters for searching warehouse payments.
// Zero values mean "no filter"; dates are inclusive yyyy-mm-dd bounds
// compared on the payment's creation date.
type PaymentSearch struct {
	TransactionIDs []string
	DateFrom       string
	DateTo         string
	HostUserID     int64
	Limit          int
	Offset         int
}

// PaymentRepo reads payment rows from the warehouse FDW tables.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a PaymentRepo bound to the warehouse pool.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// Search returns payments matching the filters, newest first. Columns are
// listed explicitly: the FDW declares columns that no longer exist on the
// remote table, so SELECT * fails against it.
func (r *PaymentRepo) Search(ctx context.Context, q PaymentSearch) ([]model.Payment, error) {
	query := `
		SELECT
			p.id,
			p.transaction_id,
			p.status,
			p.name_on_card,
			p.card_type,
			p.last_four,
			p.amount,
			p.created_at,
			p.user_id,
			p.event_id,
			p.event_attendee_id,
			p.shipping_address_id,
			p.metadata,
			e.user_id AS host_user_id
		FROM payments_fdw p
		LEFT JOIN events_fdw e ON p.event_id = e.id
		WHERE 1=1`

	args := []any{}
	n := 0
	next := func() string { n++; return "$" + strconv.Itoa(n) }

	if len(q.TransactionIDs) > 0 {
		query += " AND p.transaction_id = ANY(" + next() + ")"
		args = append(args, pq.Array(q.TransactionIDs))
	}
	if q.DateFrom != "" {
		query += " AND p.created_at::date >= " + next() + "::date"
		args = append(args, q.DateFrom)
	}
	if q.DateTo != "" {
		query += " AND p.created_at::date <= " + next() + "::date"
		args = append(args, q.DateTo)
	}
	if q.HostUserID != 0 {
		query += " AND e.user_id = " + next()
		args = append(args, q.HostUserID)
	}

	query += " ORDER BY p.created_at DESC"

	if q.Limit > 0 {
		query += " LIMIT " + next()
		args = append(args, q.Limit)
	}
	if q.Offset > 0 {
		query += " OFFSET " + next()
		args = append(args, q.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []model.Payment{}
	for rows.Next() {
		var (
			p         model.Payment
			txn       sql.NullString
			name      sql.NullString
			cardType  sql.NullString
			lastFour  sql.NullString
			amount    sql.NullFloat64
			createdAt time.Time
			userID    sql.NullInt64
			eventID   sql.NullInt64
			attendee  sql.NullInt64
			shipping  sql.NullInt64
			metadata  []byte
			host      sql.NullInt64
		)
		if err := rows.Scan(
			&p.ID, &txn, &p.Status, &name, &cardType, &lastFour,
			&amount, &createdAt, &userID, &eventID, &attendee, &shipping,
			&metadata, &host,
		); err != nil {
			return nil, classify(err)
		}
		p.TransactionID = nullStr(txn)
		p.NameOnCard = nullStr(name)
		p.CardType = nullStr(cardType)
		p.LastFour = nullStr(lastFour)
		p.Amount = nullF64(amount)
		p.CreatedAt = createdAt.Format(time.RFC3339)
		p.UserID = nullI64(userID)
		p.EventID = nullI64(eventID)
		p.EventAttendeeID = nullI64(attendee)
		p.ShippingAddressID = nullI64(shipping)
		p.Metadata = metadata
		p.HostUserID = nullI64(host)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullI64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func nullF64(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
