package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/squadup/event-reporting/internal/model"
)

// EmailContent is the rendered email for one report delivery.
type EmailContent struct {
	Subject  string
	HTML     string
	Filename string
	CSV      string
}

// Totals sums payout and tickets across rollup rows for email summaries.
func Totals(rows []model.EventReportRow) (payout float64, tickets int64) {
	for _, r := range rows {
		payout += r.PayoutAmount
		tickets += r.TicketsSold
	}
	return payout, tickets
}

// ComposeManual renders the email for an on-demand send triggered from the
// dashboard. The filename embeds the host so side-by-side downloads stay
// distinguishable.
func ComposeManual(rows []model.EventReportRow, hostUserID int64, now time.Time) EmailContent {
	today := now.Format("2006-01-02")
	payout, tickets := Totals(rows)

	html := fmt.Sprintf(`
		<h2>Event List Report</h2>
		<p>Please find attached the event list report for host ID %d.</p>
		%s
		<p>The complete details are available in the attached CSV file.</p>
		<hr />
		<p style="color: #666; font-size: 12px;">Generated with Event Reporting Tool</p>`,
		hostUserID, summaryHTML(len(rows), payout, tickets))

	return EmailContent{
		Subject:  "Event List Report - " + today,
		HTML:     html,
		Filename: fmt.Sprintf("event-report-%d-%s.csv", hostUserID, today),
		CSV:      EventReportCSV(rows),
	}
}

// ComposeScheduled renders the recurring report email for one recipient.
func ComposeScheduled(rows []model.EventReportRow, recipientName *string, now time.Time) EmailContent {
	today := now.Format("2006-01-02")
	payout, tickets := Totals(rows)

	greeting := "Hi,"
	if recipientName != nil && *recipientName != "" {
		greeting = "Hi " + *recipientName + ","
	}

	html := fmt.Sprintf(`
		<h2>Event List Report</h2>
		<p>%s</p>
		<p>Please find attached your daily event list report.</p>
		%s
		<p>The complete details are available in the attached CSV file.</p>
		<hr />
		<p style="color: #666; font-size: 12px;">
			Generated automatically by Event Reporting Tool<br/>
			Report Date: %s
		</p>`,
		greeting, summaryHTML(len(rows), payout, tickets), today)

	return EmailContent{
		Subject:  "Event List Report - " + today,
		HTML:     html,
		Filename: "event-report-" + today + ".csv",
		CSV:      EventReportCSV(rows),
	}
}

func summaryHTML(eventCount int, payout float64, tickets int64) string {
	return fmt.Sprintf(`
		<h3>Summary</h3>
		<ul>
			<li><strong>Total Events:</strong> %d</li>
			<li><strong>Total Payout Amount:</strong> $%s</li>
			<li><strong>Total Tickets Sold:</strong> %d</li>
		</ul>`,
		eventCount, groupedMoney(payout), tickets)
}

// groupedMoney renders 1234567.8 as "1,234,567.80" the way the dashboard
// always displayed totals.
func groupedMoney(v float64) string {
	s := money(v)
	dot := strings.IndexByte(s, '.')
	intPart, frac := s[:dot], s[dot:]

	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}
