package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/squadup/event-reporting/internal/model"
)

func TestEventReportCSV(t *testing.T) {
	rows := []model.EventReportRow{
		{EventID: 1, EventName: "Summer Fest", PayoutAmount: 1200.5, TicketsSold: 340},
		{EventID: 2, EventName: "Comedy, Night", PayoutAmount: 99.999, TicketsSold: 12},
	}

	want := "Event ID,Event Name,Payout Amount,Tickets Sold\n" +
		"1,Summer Fest,1200.50,340\n" +
		"2,\"Comedy, Night\",100.00,12\n" +
		"\nTotal,,1300.50,352\n"
	assert.Equal(t, want, EventReportCSV(rows))
}

func TestEventReportCSVEmpty(t *testing.T) {
	want := "Event ID,Event Name,Payout Amount,Tickets Sold\n" +
		"\nTotal,,0.00,0\n"
	assert.Equal(t, want, EventReportCSV(nil))
}

func TestTierReportCSV(t *testing.T) {
	rows := []model.EventReportRow{
		{
			EventID: 1, EventName: "Summer Fest", PayoutAmount: 100, TicketsSold: 30,
			Tiers: []model.PriceTierPayout{
				{TierID: 10, TierName: "GA", PayoutAmount: 25, TicketsSold: 20},
				{TierID: 11, TierName: "VIP", PayoutAmount: 75, TicketsSold: 10},
			},
		},
		// No tier sales: falls back to the event-level line.
		{EventID: 2, EventName: "Quiet Show", PayoutAmount: 10, TicketsSold: 2},
	}

	want := "Event ID,Event Name,Price Tier,Payout Amount,Tickets Sold\n" +
		"1,Summer Fest,GA,25.00,20\n" +
		"1,Summer Fest,VIP,75.00,10\n" +
		"2,Quiet Show,,10.00,2\n" +
		"\nTotal,,,110.00,32\n"
	assert.Equal(t, want, TierReportCSV(rows))
}

func TestEscapeCSV(t *testing.T) {
	assert.Equal(t, "plain", escapeCSV("plain"))
	assert.Equal(t, `"a,b"`, escapeCSV("a,b"))
	assert.Equal(t, `"say ""hi"""`, escapeCSV(`say "hi"`))
	assert.Equal(t, `"both, ""quoted"""`, escapeCSV(`both, "quoted"`))
}
