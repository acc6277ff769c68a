package repository

import (
	"context"
	"database/sql"
	"time"
)

// SeatSearchRecord is one raw row of the attendee seat search before
// display formatting: the payment, its event, the attendee name parts and
// the aggregated seat JSON. The report package turns these into
// display-ready rows.
type SeatSearchRecord struct {
	PaymentID int64
	Amount    float64
	CreatedAt time.Time
	EventID   int64
	EventName *string
	StartAt   time.Time
	FirstName *string
	LastName  *string
	SeatsJSON []byte // json_agg of {seat_obj, seat_id}, nil when no guests
}

// SeatRepo searches warehouse payments by attendee name for seat lookups.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo returns a SeatRepo bound to the warehouse pool.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// SearchByAttendee returns one record per payment whose attendee first
// name, last name or concatenated full name contains the term
// (case-insensitive), scoped to events owned by the host, newest payment
// first.
//
// The query starts from events filtered by user_id so the events user
// index drives the plan; filtering attendees inside the JOIN condition
// avoids sequential scans of event_attendees.
func (r *SeatRepo) SearchByAttendee(ctx context.Context, hostUserID int64, term string) ([]SeatSearchRecord, error) {
	const query = `
		SELECT
			p.id AS payment_id,
			p.amount,
			p.created_at,
			p.event_id,
			(e.start_at AT TIME ZONE 'America/New_York') AS start_at,
			e.name AS event_name,
			ea.first_name,
			ea.last_name,
			json_agg(
				json_build_object(
					'seat_obj', ag.seat_obj,
					'seat_id', ag.seat_id
				) ORDER BY ag.id
			) FILTER (WHERE ag.id IS NOT NULL) AS seats
		FROM events e
		INNER JOIN payments p ON p.event_id = e.id AND p.event_attendee_id IS NOT NULL
		INNER JOIN event_attendees ea ON ea.id = p.event_attendee_id
			AND (
				LOWER(ea.first_name) LIKE LOWER($2)
				OR LOWER(ea.last_name) LIKE LOWER($2)
				OR LOWER(CONCAT(ea.first_name, ' ', ea.last_name)) LIKE LOWER($2)
			)
		LEFT JOIN attendee_guests ag ON ag.payment_id = p.id AND ag.event_attendee_id = ea.id
		WHERE e.user_id = $1
		GROUP BY p.id, p.amount, p.created_at, p.event_id, e.start_at, e.name, ea.first_name, ea.last_name
		ORDER BY p.created_at DESC`

	pattern := "%" + term + "%"
	rows, err := r.db.QueryContext(ctx, query, hostUserID, pattern)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []SeatSearchRecord{}
	for rows.Next() {
		var (
			rec   SeatSearchRecord
			name  sql.NullString
			first sql.NullString
			last  sql.NullString
			seats []byte
		)
		if err := rows.Scan(
			&rec.PaymentID, &rec.Amount, &rec.CreatedAt, &rec.EventID,
			&rec.StartAt, &name, &first, &last, &seats,
		); err != nil {
			return nil, classify(err)
		}
		rec.EventName = nullStr(name)
		rec.FirstName = nullStr(first)
		rec.LastName = nullStr(last)
		rec.SeatsJSON = seats
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}
