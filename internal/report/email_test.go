package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/squadup/event-reporting/internal/model"
)

func TestGroupedMoney(t *testing.T) {
	assert.Equal(t, "0.00", groupedMoney(0))
	assert.Equal(t, "999.99", groupedMoney(999.99))
	assert.Equal(t, "1,000.00", groupedMoney(1000))
	assert.Equal(t, "1,234,567.80", groupedMoney(1234567.8))
	assert.Equal(t, "-12,345.67", groupedMoney(-12345.67))
}

func TestComposeManual(t *testing.T) {
	rows := []model.EventReportRow{
		{EventID: 1, EventName: "Summer Fest", PayoutAmount: 1000, TicketsSold: 50},
	}
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	content := ComposeManual(rows, 10111198, now)
	assert.Equal(t, "Event List Report - 2026-08-29", content.Subject)
	assert.Equal(t, "event-report-10111198-2026-08-29.csv", content.Filename)
	assert.Contains(t, content.HTML, "host ID 10111198")
	assert.Contains(t, content.HTML, "1,000.00")
	assert.Contains(t, content.CSV, "Summer Fest")
}

func TestComposeScheduledGreeting(t *testing.T) {
	rows := []model.EventReportRow{{EventID: 1, EventName: "E", PayoutAmount: 1, TicketsSold: 1}}
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	named := ComposeScheduled(rows, strp("Ops Team"), now)
	assert.Contains(t, named.HTML, "Hi Ops Team,")
	assert.Equal(t, "event-report-2026-08-29.csv", named.Filename)

	anon := ComposeScheduled(rows, nil, now)
	assert.Contains(t, anon.HTML, "Hi,")
}

func TestTotals(t *testing.T) {
	rows := []model.EventReportRow{
		{PayoutAmount: 10.5, TicketsSold: 3},
		{PayoutAmount: 4.5, TicketsSold: 7},
	}
	payout, tickets := Totals(rows)
	assert.Equal(t, 15.0, payout)
	assert.Equal(t, int64(10), tickets)
}
