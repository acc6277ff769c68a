package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/squadup/event-reporting/internal/config"
	"github.com/squadup/event-reporting/internal/report"
	"github.com/squadup/event-reporting/internal/repository"
)

// SeatHandler serves the attendee seat lookup.
type SeatHandler struct {
	Cfg   config.Config
	Seats *repository.SeatRepo
}

func NewSeatHandler(cfg config.Config, s *repository.SeatRepo) *SeatHandler {
	return &SeatHandler{Cfg: cfg, Seats: s}
}

type seatSearchReq struct {
	SearchTerm string `json:"searchTerm"`
	HostUserID int64  `json:"hostUserId"`
}

// Search finds payments by attendee name and returns display-ready rows
// with flattened seat assignments.
func (h *SeatHandler) Search(c echo.Context) error {
	var req seatSearchReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	term := strings.TrimSpace(req.SearchTerm)
	if term == "" {
		return badRequest(c, "Search term is required")
	}

	host := req.HostUserID
	if host == 0 {
		host = h.Cfg.ReportHostUserID
	}

	records, err := h.Seats.SearchByAttendee(c.Request().Context(), host, term)
	if err != nil {
		return dbError(c, h.Cfg, err, "Failed to search seats")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"results": report.BuildSeatLookupRows(records),
		"metadata": echo.Map{
			"searchTerm": term,
			"hostUserId": host,
			"total":      len(records),
		},
	})
}
