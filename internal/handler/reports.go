package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/squadup/event-reporting/internal/config"
	"github.com/squadup/event-reporting/internal/report"
	"github.com/squadup/event-reporting/internal/repository"
)

// ReportHandler serves the per-event payout and tickets-sold rollup.
type ReportHandler struct {
	Cfg     config.Config
	Reports *repository.ReportRepo
}

func NewReportHandler(cfg config.Config, r *repository.ReportRepo) *ReportHandler {
	return &ReportHandler{Cfg: cfg, Reports: r}
}

type eventReportReq struct {
	HostUserID        int64  `json:"hostUserId"`
	DateFrom          string `json:"dateFrom"`
	DateTo            string `json:"dateTo"`
	IncludePriceTiers bool   `json:"includePriceTiers"`
}

// EventList returns the rollup for one host, optionally with the prorated
// per-price-tier breakdown attached to each event.
func (h *ReportHandler) EventList(c echo.Context) error {
	var req eventReportReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	host := req.HostUserID
	if host == 0 {
		host = h.Cfg.ReportHostUserID
	}

	ctx := c.Request().Context()
	rows, err := h.Reports.EventList(ctx, host, req.DateFrom, req.DateTo)
	if err != nil {
		return dbError(c, h.Cfg, err, "Failed to fetch event list report")
	}

	if req.IncludePriceTiers {
		items, err := h.Reports.TierItems(ctx, host, req.DateFrom, req.DateTo)
		if err != nil {
			return dbError(c, h.Cfg, err, "Failed to fetch price tier breakdown")
		}
		rows = report.AttachTiers(rows, items)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"results": rows,
		"metadata": echo.Map{
			"hostUserId": host,
			"total":      len(rows),
		},
	})
}
