package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`WHERE e\.user_id = \$1\s+ORDER BY e\.name`).
		WithArgs(int64(10111198)).
		WillReturnRows(sqlmock.NewRows([]string{"event_id", "event_name", "payout_amount", "tickets_sold"}).
			AddRow(int64(1), "Autumn Gala", 1523.75, int64(410)).
			AddRow(int64(2), nil, 0.0, int64(0)))

	rows, err := NewReportRepo(db).EventList(context.Background(), 10111198, "", "")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Autumn Gala", rows[0].EventName)
	assert.Equal(t, 1523.75, rows[0].PayoutAmount)
	assert.Equal(t, int64(410), rows[0].TicketsSold)

	// Events with a NULL name and no qualifying payments still appear.
	assert.Equal(t, "", rows[1].EventName)
	assert.Equal(t, 0.0, rows[1].PayoutAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventListDateRangeAddsArgs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`p\.created_at::date >= \$2::date AND p\.created_at::date <= \$3::date`).
		WithArgs(int64(5), "2026-08-01", "2026-08-31").
		WillReturnRows(sqlmock.NewRows([]string{"event_id", "event_name", "payout_amount", "tickets_sold"}))

	_, err = NewReportRepo(db).EventList(context.Background(), 5, "2026-08-01", "2026-08-31")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTierItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`JOIN payment_items pi ON pi\.payment_id = p\.id`).
		WithArgs(int64(10111198)).
		WillReturnRows(sqlmock.NewRows([]string{
			"event_id", "tier_id", "tier_name", "tier_tickets",
			"payment_id", "quantity", "total_quantity", "net_payout",
		}).
			AddRow(int64(1), int64(10), "GA", int64(20), int64(500), int64(1), int64(4), 100.0).
			AddRow(int64(1), int64(11), "VIP", int64(10), int64(500), nil, nil, 100.0))

	items, err := NewReportRepo(db).TierItems(context.Background(), 10111198, "", "")
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NotNil(t, items[0].Quantity)
	assert.Equal(t, int64(1), *items[0].Quantity)
	require.NotNil(t, items[0].PaymentQuantity)
	assert.Equal(t, int64(4), *items[0].PaymentQuantity)

	assert.Nil(t, items[1].Quantity)
	assert.Nil(t, items[1].PaymentQuantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}
