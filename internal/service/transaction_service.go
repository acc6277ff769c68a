package service

import (
	"context"
	"time"

	"github.com/squadup/event-reporting/internal/gateway"
	"github.com/squadup/event-reporting/internal/model"
	"github.com/squadup/event-reporting/internal/repository"
)

// TransactionResult is one searched payment enriched with the billing ZIP
// from the gateway. ZipCode always holds a displayable string; failed
// lookups carry the gateway's sentinel text instead of a code.
type TransactionResult struct {
	TransactionID   *string  `json:"transactionId"`
	ZipCode         string   `json:"zipCode"`
	CreatedAt       string   `json:"createdAt"`
	Amount          *float64 `json:"amount"`
	Status          string   `json:"status"`
	CardType        *string  `json:"cardType"`
	LastFour        *string  `json:"lastFour"`
	IPAddress       string   `json:"ipAddress,omitempty"`
	PaymentID       int64    `json:"paymentId"`
	UserID          *int64   `json:"userId"`
	EventID         *int64   `json:"eventId"`
	EventAttendeeID *int64   `json:"eventAttendeeId"`
}

// EnrichError records a payment whose enrichment was abandoned entirely,
// e.g. the request context expired mid-batch.
type EnrichError struct {
	TransactionID *string `json:"transactionId"`
	Error         string  `json:"error"`
}

// EnrichSummary totals one enrichment batch.
type EnrichSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// TransactionService searches warehouse payments and enriches each with a
// ZIP lookup. Lookups run sequentially with a fixed pause so a large page
// cannot flood the gateway.
type TransactionService struct {
	payments *repository.PaymentRepo
	zips     *gateway.Client
	delay    time.Duration
}

func NewTransactionService(payments *repository.PaymentRepo, zips *gateway.Client) *TransactionService {
	return &TransactionService{payments: payments, zips: zips, delay: gateway.LookupDelay}
}

// Search runs the payment query then the sequential lookup loop. A context
// expiry aborts the remaining lookups; the affected payments land in the
// error list rather than failing the whole request.
func (s *TransactionService) Search(ctx context.Context, q repository.PaymentSearch) ([]TransactionResult, []EnrichError, EnrichSummary, error) {
	payments, err := s.payments.Search(ctx, q)
	if err != nil {
		return nil, nil, EnrichSummary{}, err
	}

	results := []TransactionResult{}
	errs := []EnrichError{}
	for i, p := range payments {
		if ctx.Err() != nil {
			for _, rest := range payments[i:] {
				errs = append(errs, EnrichError{TransactionID: rest.TransactionID, Error: ctx.Err().Error()})
			}
			break
		}

		results = append(results, enriched(p, s.zips.ZipFor(ctx, p.TransactionID)))

		if s.delay > 0 && i < len(payments)-1 {
			select {
			case <-ctx.Done():
			case <-time.After(s.delay):
			}
		}
	}

	summary := EnrichSummary{
		Total:      len(payments),
		Successful: len(results),
		Failed:     len(errs),
	}
	return results, errs, summary, nil
}

func enriched(p model.Payment, zip string) TransactionResult {
	return TransactionResult{
		TransactionID:   p.TransactionID,
		ZipCode:         zip,
		CreatedAt:       p.CreatedAt,
		Amount:          p.Amount,
		Status:          p.Status,
		CardType:        p.CardType,
		LastFour:        p.LastFour,
		IPAddress:       p.IPAddress(),
		PaymentID:       p.ID,
		UserID:          p.UserID,
		EventID:         p.EventID,
		EventAttendeeID: p.EventAttendeeID,
	}
}
