package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squadup/event-reporting/internal/repository"
)

func strp(s string) *string { return &s }

func TestBuildSeatLookupRowsComponents(t *testing.T) {
	seats := []byte(`[
		{"seat_obj": {"components": [
			{"key": "section", "label": "Section", "value": "A"},
			{"key": "row", "label": "Row", "value": "3"},
			{"key": "seat", "label": "Seat", "value": "12"}
		]}, "seat_id": "A-3-12"},
		{"seat_obj": null, "seat_id": "GA-7"}
	]`)

	rows := BuildSeatLookupRows([]repository.SeatSearchRecord{{
		PaymentID: 42,
		Amount:    150,
		EventID:   9,
		EventName: strp("Summer Fest"),
		StartAt:   time.Date(2026, 7, 4, 23, 30, 0, 0, time.UTC),
		FirstName: strp("Ada"),
		LastName:  strp("Lovelace"),
		SeatsJSON: seats,
	}})

	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "Summer Fest", row.EventName)
	assert.Equal(t, "07/04/2026", row.EventStartDate)
	assert.Equal(t, "7:30 PM", row.EventStartTime)
	require.NotNil(t, row.PayerName)
	assert.Equal(t, "Ada Lovelace", *row.PayerName)
	require.NotNil(t, row.SeatInfo)
	assert.Equal(t, "Section: A, Row: 3, Seat: 12\nGA-7", *row.SeatInfo)
}

func TestBuildSeatLookupRowsFallbacks(t *testing.T) {
	rows := BuildSeatLookupRows([]repository.SeatSearchRecord{{
		PaymentID: 1,
		EventID:   77,
		StartAt:   time.Date(2026, 3, 15, 13, 0, 0, 0, time.UTC),
		FirstName: strp("Grace"),
	}})

	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "Event #77", row.EventName)
	require.NotNil(t, row.PayerName)
	assert.Equal(t, "Grace", *row.PayerName)
	assert.Nil(t, row.SeatInfo)
}

func TestBuildSeatLookupRowsNoName(t *testing.T) {
	rows := BuildSeatLookupRows([]repository.SeatSearchRecord{{
		PaymentID: 1,
		EventID:   1,
		StartAt:   time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}})

	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].PayerName)
}

func TestBuildSeatLookupRowsMalformedSeatsJSON(t *testing.T) {
	rows := BuildSeatLookupRows([]repository.SeatSearchRecord{{
		PaymentID: 1,
		EventID:   1,
		StartAt:   time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		SeatsJSON: []byte(`{not json`),
	}})

	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].SeatInfo)
}
