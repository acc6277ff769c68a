package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/squadup/event-reporting/internal/config"
	"github.com/squadup/event-reporting/internal/logger"
	"github.com/squadup/event-reporting/internal/mailer"
	"github.com/squadup/event-reporting/internal/report"
	"github.com/squadup/event-reporting/internal/repository"
)

// SendHandler serves on-demand report delivery: build the rollup, render
// the CSV and email it to one address.
type SendHandler struct {
	Cfg     config.Config
	Reports *repository.ReportRepo
	Mailer  *mailer.Client
}

func NewSendHandler(cfg config.Config, r *repository.ReportRepo, m *mailer.Client) *SendHandler {
	return &SendHandler{Cfg: cfg, Reports: r, Mailer: m}
}

type sendReportReq struct {
	Email      string `json:"email"`
	HostUserID int64  `json:"hostUserId"`
}

func (h *SendHandler) Send(c echo.Context) error {
	var req sendReportReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "Email is required"})
	}
	if err := validate.Var(req.Email, "email"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "Invalid email address"})
	}
	if !h.Mailer.Configured() {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "Email service not configured"})
	}

	host := req.HostUserID
	if host == 0 {
		host = h.Cfg.ReportHostUserID
	}

	rows, err := h.Reports.EventList(c.Request().Context(), host, "", "")
	if err != nil {
		return dbError(c, h.Cfg, err, "Failed to send report")
	}
	if len(rows) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "No events found to send"})
	}

	content := report.ComposeManual(rows, host, time.Now().UTC())
	att := mailer.EncodeAttachment(content.Filename, []byte(content.CSV))

	id, err := h.Mailer.Send(c.Request().Context(), req.Email, content.Subject, content.HTML, att)
	if err != nil {
		logger.L.Error("report email failed", zap.String("to", req.Email), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success": false,
			"error":   "Failed to send email",
			"details": detailOf(h.Cfg, err),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Report sent successfully",
		"emailId": id,
	})
}
