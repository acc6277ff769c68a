package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squadup/event-reporting/internal/model"
)

func i64(v int64) *int64 { return &v }

func TestProrateTiersSplitsByQuantityShare(t *testing.T) {
	// One payment of 100 across two tiers, 1 and 3 items.
	items := []model.TierPaymentItem{
		{EventID: 1, TierID: 10, TierName: "GA", TierTickets: 5, PaymentID: 500, Quantity: i64(1), PaymentQuantity: i64(4), NetPayout: 100},
		{EventID: 1, TierID: 11, TierName: "VIP", TierTickets: 3, PaymentID: 500, Quantity: i64(3), PaymentQuantity: i64(4), NetPayout: 100},
	}

	tiers := ProrateTiers(items)
	require.Len(t, tiers[1], 2)

	assert.Equal(t, int64(10), tiers[1][0].TierID)
	assert.Equal(t, 25.0, tiers[1][0].PayoutAmount)
	assert.Equal(t, int64(5), tiers[1][0].TicketsSold)

	assert.Equal(t, int64(11), tiers[1][1].TierID)
	assert.Equal(t, 75.0, tiers[1][1].PayoutAmount)
}

func TestProrateTiersNullOrZeroTotalContributesNothing(t *testing.T) {
	items := []model.TierPaymentItem{
		{EventID: 1, TierID: 10, TierName: "GA", PaymentID: 1, Quantity: i64(2), PaymentQuantity: nil, NetPayout: 50},
		{EventID: 1, TierID: 10, TierName: "GA", PaymentID: 2, Quantity: i64(2), PaymentQuantity: i64(0), NetPayout: 50},
		{EventID: 1, TierID: 10, TierName: "GA", PaymentID: 3, Quantity: nil, PaymentQuantity: i64(2), NetPayout: 50},
	}

	tiers := ProrateTiers(items)
	require.Len(t, tiers[1], 1)
	assert.Equal(t, 0.0, tiers[1][0].PayoutAmount)
}

func TestProrateTiersAccumulatesAcrossPaymentsBeforeRounding(t *testing.T) {
	// Three payments of 10 each with a 1/3 share: 3.333... each. Summed
	// then rounded once: 10.00, not 3.33 * 3 = 9.99.
	items := []model.TierPaymentItem{
		{EventID: 7, TierID: 1, TierName: "GA", PaymentID: 1, Quantity: i64(1), PaymentQuantity: i64(3), NetPayout: 10},
		{EventID: 7, TierID: 1, TierName: "GA", PaymentID: 2, Quantity: i64(1), PaymentQuantity: i64(3), NetPayout: 10},
		{EventID: 7, TierID: 1, TierName: "GA", PaymentID: 3, Quantity: i64(1), PaymentQuantity: i64(3), NetPayout: 10},
	}

	tiers := ProrateTiers(items)
	require.Len(t, tiers[7], 1)
	assert.Equal(t, 10.0, tiers[7][0].PayoutAmount)
}

func TestProrateTiersPreservesInputOrder(t *testing.T) {
	items := []model.TierPaymentItem{
		{EventID: 1, TierID: 30, TierName: "C", Quantity: i64(1), PaymentQuantity: i64(1), NetPayout: 1},
		{EventID: 1, TierID: 10, TierName: "A", Quantity: i64(1), PaymentQuantity: i64(1), NetPayout: 1},
		{EventID: 1, TierID: 20, TierName: "B", Quantity: i64(1), PaymentQuantity: i64(1), NetPayout: 1},
	}

	tiers := ProrateTiers(items)
	require.Len(t, tiers[1], 3)
	assert.Equal(t, []int64{30, 10, 20}, []int64{tiers[1][0].TierID, tiers[1][1].TierID, tiers[1][2].TierID})
}

func TestAttachTiersGivesEveryEventAList(t *testing.T) {
	rows := []model.EventReportRow{
		{EventID: 1, EventName: "With tiers"},
		{EventID: 2, EventName: "No tiers"},
	}
	items := []model.TierPaymentItem{
		{EventID: 1, TierID: 10, TierName: "GA", Quantity: i64(1), PaymentQuantity: i64(1), NetPayout: 12.5},
	}

	out := AttachTiers(rows, items)
	require.Len(t, out, 2)
	require.Len(t, out[0].Tiers, 1)
	assert.Equal(t, 12.5, out[0].Tiers[0].PayoutAmount)

	require.NotNil(t, out[1].Tiers)
	assert.Empty(t, out[1].Tiers)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.2349))
	assert.Equal(t, 1.24, Round2(1.236))
	assert.Equal(t, -1.23, Round2(-1.2349))
	assert.Equal(t, 0.0, Round2(0))
}
