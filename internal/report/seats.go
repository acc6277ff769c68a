package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/squadup/event-reporting/internal/model"
	"github.com/squadup/event-reporting/internal/repository"
)

// BuildSeatLookupRows turns raw seat-search records into display rows:
// attendee name assembly, seat flattening and the corrected start
// date/time strings.
func BuildSeatLookupRows(records []repository.SeatSearchRecord) []model.SeatLookupRow {
	out := make([]model.SeatLookupRow, 0, len(records))
	for _, rec := range records {
		date, clock := EventStartDisplay(rec.StartAt)

		row := model.SeatLookupRow{
			EventName:      eventDisplayName(rec.EventName, rec.EventID),
			EventStartDate: date,
			EventStartTime: clock,
			PaymentID:      rec.PaymentID,
			Amount:         rec.Amount,
			PayerName:      attendeeName(rec.FirstName, rec.LastName),
			PayerEmail:     nil, // event_attendees carries no email column
			SeatInfo:       seatInfo(rec.SeatsJSON),
			TransactionID:  nil,
		}
		out = append(out, row)
	}
	return out
}

func eventDisplayName(name *string, eventID int64) string {
	if name != nil && *name != "" {
		return *name
	}
	return fmt.Sprintf("Event #%d", eventID)
}

func attendeeName(first, last *string) *string {
	switch {
	case first != nil && *first != "" && last != nil && *last != "":
		full := *first + " " + *last
		return &full
	case first != nil && *first != "":
		return first
	case last != nil && *last != "":
		return last
	}
	return nil
}

// seatInfo flattens the json_agg seat payload into one string, one seat
// per line. Each seat prefers its structured components ("Label: Value"
// pairs joined by commas) and falls back to the raw seat identifier.
// Returns nil when nothing renders.
func seatInfo(seatsJSON []byte) *string {
	if len(seatsJSON) == 0 {
		return nil
	}
	var seats []model.SeatAssignment
	if err := json.Unmarshal(seatsJSON, &seats); err != nil {
		return nil
	}

	lines := make([]string, 0, len(seats))
	for _, seat := range seats {
		if seat.SeatObj != nil && len(seat.SeatObj.Components) > 0 {
			parts := make([]string, 0, len(seat.SeatObj.Components))
			for _, comp := range seat.SeatObj.Components {
				parts = append(parts, comp.Label+": "+comp.Value)
			}
			lines = append(lines, strings.Join(parts, ", "))
			continue
		}
		if seat.SeatID != nil && *seat.SeatID != "" {
			lines = append(lines, *seat.SeatID)
		}
	}
	if len(lines) == 0 {
		return nil
	}
	joined := strings.Join(lines, "\n")
	return &joined
}
