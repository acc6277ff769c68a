package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/squadup/event-reporting/internal/config"
	"github.com/squadup/event-reporting/internal/repository"
	"github.com/squadup/event-reporting/internal/service"
)

const (
	defaultSearchLimit = 100
	maxSearchLimit     = 1000
)

// TransactionHandler serves the transaction search with ZIP enrichment.
type TransactionHandler struct {
	Cfg config.Config
	Svc *service.TransactionService
}

func NewTransactionHandler(cfg config.Config, svc *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{Cfg: cfg, Svc: svc}
}

type transactionSearchReq struct {
	TransactionIDs []string `json:"transactionIds"`
	DateFrom       string   `json:"dateFrom"`
	DateTo         string   `json:"dateTo"`
	HostUserID     int64    `json:"hostUserId"`
	Limit          int      `json:"limit"`
	Offset         int      `json:"offset"`
}

// Search filters warehouse payments and enriches each with the billing ZIP.
// The host filter is mandatory: unscoped payment dumps are never served.
func (h *TransactionHandler) Search(c echo.Context) error {
	var req transactionSearchReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.HostUserID == 0 {
		return badRequest(c, "Host user ID is required")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	results, errs, summary, err := h.Svc.Search(c.Request().Context(), repository.PaymentSearch{
		TransactionIDs: req.TransactionIDs,
		DateFrom:       req.DateFrom,
		DateTo:         req.DateTo,
		HostUserID:     req.HostUserID,
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		return dbError(c, h.Cfg, err, "Failed to query transactions")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"results": results,
		"errors":  errs,
		"summary": summary,
		"metadata": echo.Map{
			"source": "database + api",
			"limit":  limit,
			"offset": offset,
		},
	})
}
