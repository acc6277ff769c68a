package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paymentCols = []string{
	"id", "transaction_id", "status", "name_on_card", "card_type", "last_four",
	"amount", "created_at", "user_id", "event_id", "event_attendee_id",
	"shipping_address_id", "metadata", "host_user_id",
}

func TestPaymentSearchAllFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM payments_fdw p\s+LEFT JOIN events_fdw e`).
		WithArgs(
			pq.Array([]string{"t1_txn_a", "t1_txn_b"}),
			"2026-08-01", "2026-08-31",
			int64(10111198),
			100, 20,
		).
		WillReturnRows(sqlmock.NewRows(paymentCols).AddRow(
			int64(7), "t1_txn_a", "settle", "ADA LOVELACE", "visa", "4242",
			125.5, created, int64(3), int64(9), int64(11), nil,
			[]byte(`{"ip_address":"10.0.0.1"}`), int64(10111198),
		))

	got, err := NewPaymentRepo(db).Search(context.Background(), PaymentSearch{
		TransactionIDs: []string{"t1_txn_a", "t1_txn_b"},
		DateFrom:       "2026-08-01",
		DateTo:         "2026-08-31",
		HostUserID:     10111198,
		Limit:          100,
		Offset:         20,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)

	p := got[0]
	assert.Equal(t, int64(7), p.ID)
	require.NotNil(t, p.TransactionID)
	assert.Equal(t, "t1_txn_a", *p.TransactionID)
	require.NotNil(t, p.Amount)
	assert.Equal(t, 125.5, *p.Amount)
	assert.Equal(t, created.Format(time.RFC3339), p.CreatedAt)
	assert.Nil(t, p.ShippingAddressID)
	assert.Equal(t, "10.0.0.1", p.IPAddress())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentSearchNoFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// No filters: no WHERE args at all, no LIMIT/OFFSET clauses.
	mock.ExpectQuery(`ORDER BY p\.created_at DESC$`).
		WillReturnRows(sqlmock.NewRows(paymentCols))

	got, err := NewPaymentRepo(db).Search(context.Background(), PaymentSearch{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
