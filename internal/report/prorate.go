// Package report holds the presentation-side report logic: payout
// proration across price tiers, CSV serialization, the event start-time
// display correction, seat formatting and the scheduled report runner.
package report

import (
	"math"

	"github.com/squadup/event-reporting/internal/model"
)

// Round2 rounds to two decimals, the precision every payout figure is
// reported at.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ProrateTiers turns raw payment-item rows into per-event price-tier
// payout lists. Each payment's net payout is split across its items in
// proportion to item quantity over the payment's total item quantity. The
// division is NULL-safe: a missing or zero total quantity contributes
// nothing for that payment. Tier sums are rounded to two decimals once,
// after accumulation. Input order (event, tier) is preserved.
func ProrateTiers(items []model.TierPaymentItem) map[int64][]model.PriceTierPayout {
	type tierKey struct {
		event int64
		tier  int64
	}

	sums := map[tierKey]float64{}
	order := map[int64][]int64{}
	names := map[tierKey]string{}
	tickets := map[tierKey]int64{}

	for _, it := range items {
		k := tierKey{event: it.EventID, tier: it.TierID}
		if _, seen := sums[k]; !seen {
			order[it.EventID] = append(order[it.EventID], it.TierID)
			names[k] = it.TierName
			tickets[k] = it.TierTickets
		}
		sums[k] += prorate(it)
	}

	out := make(map[int64][]model.PriceTierPayout, len(order))
	for eventID, tierIDs := range order {
		list := make([]model.PriceTierPayout, 0, len(tierIDs))
		for _, tierID := range tierIDs {
			k := tierKey{event: eventID, tier: tierID}
			list = append(list, model.PriceTierPayout{
				TierID:       tierID,
				TierName:     names[k],
				PayoutAmount: Round2(sums[k]),
				TicketsSold:  tickets[k],
			})
		}
		out[eventID] = list
	}
	return out
}

func prorate(it model.TierPaymentItem) float64 {
	if it.Quantity == nil || it.PaymentQuantity == nil || *it.PaymentQuantity == 0 {
		return 0
	}
	return it.NetPayout * float64(*it.Quantity) / float64(*it.PaymentQuantity)
}

// AttachTiers hangs the prorated tier lists onto the event rollup rows.
// Every event keeps a non-nil list so callers and JSON consumers see an
// empty breakdown rather than null for events without tier sales.
func AttachTiers(rows []model.EventReportRow, items []model.TierPaymentItem) []model.EventReportRow {
	tiers := ProrateTiers(items)
	for i := range rows {
		if list, ok := tiers[rows[i].EventID]; ok {
			rows[i].Tiers = list
		} else {
			rows[i].Tiers = []model.PriceTierPayout{}
		}
	}
	return rows
}
