package report

import (
	"strconv"
	"strings"

	"github.com/squadup/event-reporting/internal/model"
)

// The CSV output is consumed by spreadsheet users and diffed by monitoring,
// so it must stay byte-for-byte stable given identical input ordering:
// fixed headers, two-decimal payouts, a blank line, then a Total row.
// encoding/csv would quote differently and cannot produce the trailing
// blank-line-plus-total shape, hence the hand-rolled builder.

// EventReportCSV serializes the event list report.
func EventReportCSV(rows []model.EventReportRow) string {
	var b strings.Builder
	b.WriteString("Event ID,Event Name,Payout Amount,Tickets Sold\n")

	var totalPayout float64
	var totalTickets int64
	for _, row := range rows {
		b.WriteString(strconv.FormatInt(row.EventID, 10))
		b.WriteByte(',')
		b.WriteString(escapeCSV(row.EventName))
		b.WriteByte(',')
		b.WriteString(money(row.PayoutAmount))
		b.WriteByte(',')
		b.WriteString(strconv.FormatInt(row.TicketsSold, 10))
		b.WriteByte('\n')
		totalPayout += row.PayoutAmount
		totalTickets += row.TicketsSold
	}

	b.WriteString("\nTotal,,")
	b.WriteString(money(totalPayout))
	b.WriteByte(',')
	b.WriteString(strconv.FormatInt(totalTickets, 10))
	b.WriteByte('\n')
	return b.String()
}

// TierReportCSV serializes the price-tier breakdown: one line per tier row
// under its event. Events with no tier sales still contribute their
// event-level line with empty tier columns so they are not silently
// dropped from the file.
func TierReportCSV(rows []model.EventReportRow) string {
	var b strings.Builder
	b.WriteString("Event ID,Event Name,Price Tier,Payout Amount,Tickets Sold\n")

	var totalPayout float64
	var totalTickets int64
	for _, row := range rows {
		if len(row.Tiers) == 0 {
			b.WriteString(strconv.FormatInt(row.EventID, 10))
			b.WriteByte(',')
			b.WriteString(escapeCSV(row.EventName))
			b.WriteString(",,")
			b.WriteString(money(row.PayoutAmount))
			b.WriteByte(',')
			b.WriteString(strconv.FormatInt(row.TicketsSold, 10))
			b.WriteByte('\n')
			totalPayout += row.PayoutAmount
			totalTickets += row.TicketsSold
			continue
		}
		for _, tier := range row.Tiers {
			b.WriteString(strconv.FormatInt(row.EventID, 10))
			b.WriteByte(',')
			b.WriteString(escapeCSV(row.EventName))
			b.WriteByte(',')
			b.WriteString(escapeCSV(tier.TierName))
			b.WriteByte(',')
			b.WriteString(money(tier.PayoutAmount))
			b.WriteByte(',')
			b.WriteString(strconv.FormatInt(tier.TicketsSold, 10))
			b.WriteByte('\n')
			totalPayout += tier.PayoutAmount
			totalTickets += tier.TicketsSold
		}
	}

	b.WriteString("\nTotal,,,")
	b.WriteString(money(totalPayout))
	b.WriteByte(',')
	b.WriteString(strconv.FormatInt(totalTickets, 10))
	b.WriteByte('\n')
	return b.String()
}

// escapeCSV quotes a field only when it contains a comma or a double
// quote, doubling embedded quotes.
func escapeCSV(field string) string {
	if !strings.ContainsAny(field, `,"`) {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

func money(v float64) string {
	return strconv.FormatFloat(Round2(v), 'f', 2, 64)
}
