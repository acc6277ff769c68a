package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/squadup/event-reporting/internal/config"
	"github.com/squadup/event-reporting/internal/logger"
	"github.com/squadup/event-reporting/internal/queue"
	"github.com/squadup/event-reporting/internal/report"
	"github.com/squadup/event-reporting/internal/repository"
	"github.com/squadup/event-reporting/internal/scheduler"
	"github.com/squadup/event-reporting/internal/service"
)

// ScheduleHandler serves scheduled-report management: the schedule rows,
// recipient membership, the remote scheduler glue and the run webhook.
type ScheduleHandler struct {
	Cfg       config.Config
	Schedules *repository.ScheduleRepo
	Scheduler *scheduler.Client
}

func NewScheduleHandler(cfg config.Config, s *repository.ScheduleRepo, sc *scheduler.Client) *ScheduleHandler {
	return &ScheduleHandler{Cfg: cfg, Schedules: s, Scheduler: sc}
}

// List returns all scheduled reports ordered by name.
func (h *ScheduleHandler) List(c echo.Context) error {
	reports, err := h.Schedules.List(c.Request().Context())
	if err != nil {
		return dbError(c, h.Cfg, err, "Failed to fetch scheduled reports")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"reports": reports,
		"count":   len(reports),
	})
}

type updateScheduleReq struct {
	ID                  string  `json:"id"`
	CronExpression      *string `json:"cron_expression"`
	ScheduleDescription *string `json:"schedule_description"`
	IsActive            *bool   `json:"is_active"`
}

// Update patches cron expression, description and/or activity. The cron
// text is stored verbatim; the database check constraint is the only
// validation applied here.
func (h *ScheduleHandler) Update(c echo.Context) error {
	var req updateScheduleReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.ID == "" {
		return badRequest(c, "Report ID is required")
	}
	if _, err := uuid.Parse(req.ID); err != nil {
		return badRequest(c, "Invalid report ID")
	}

	u := repository.ScheduleUpdate{
		CronExpression:      req.CronExpression,
		ScheduleDescription: req.ScheduleDescription,
		IsActive:            req.IsActive,
	}
	if u.Empty() {
		return badRequest(c, "No fields to update")
	}

	rep, err := h.Schedules.Update(c.Request().Context(), req.ID, u)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, errResp{Error: "Scheduled report not found"})
		case errors.Is(err, repository.ErrValidation):
			return badRequest(c, "Invalid cron expression format")
		}
		return dbError(c, h.Cfg, err, "Failed to update scheduled report")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"report":  rep,
		"message": "Scheduled report updated successfully",
	})
}

// Recipients lists the recipients of one schedule.
func (h *ScheduleHandler) Recipients(c echo.Context) error {
	scheduleID := c.QueryParam("scheduled_report_id")
	if scheduleID == "" {
		return badRequest(c, "scheduled_report_id is required")
	}

	recipients, err := h.Schedules.RecipientsFor(c.Request().Context(), scheduleID, false)
	if err != nil {
		return dbError(c, h.Cfg, err, "Failed to fetch recipients")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"recipients": recipients,
		"count":      len(recipients),
	})
}

type membershipReq struct {
	ScheduledReportID string `json:"scheduled_report_id"`
	RecipientID       string `json:"recipient_id"`
}

// AddRecipient joins a recipient to a schedule; duplicates are a no-op.
func (h *ScheduleHandler) AddRecipient(c echo.Context) error {
	var req membershipReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.ScheduledReportID == "" || req.RecipientID == "" {
		return badRequest(c, "scheduled_report_id and recipient_id are required")
	}

	if err := h.Schedules.AddRecipient(c.Request().Context(), req.ScheduledReportID, req.RecipientID); err != nil {
		return dbError(c, h.Cfg, err, "Failed to add recipient to scheduled report")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Recipient added to scheduled report successfully",
	})
}

// RemoveRecipient drops a membership identified by query parameters.
func (h *ScheduleHandler) RemoveRecipient(c echo.Context) error {
	scheduleID := c.QueryParam("scheduled_report_id")
	recipientID := c.QueryParam("recipient_id")
	if scheduleID == "" || recipientID == "" {
		return badRequest(c, "scheduled_report_id and recipient_id are required")
	}

	if err := h.Schedules.RemoveRecipient(c.Request().Context(), scheduleID, recipientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, errResp{Error: "Association not found"})
		}
		return dbError(c, h.Cfg, err, "Failed to remove recipient from scheduled report")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Recipient removed from scheduled report successfully",
	})
}

// Sync joins every active recipient to every active schedule.
func (h *ScheduleHandler) Sync(c echo.Context) error {
	added, err := h.Schedules.SyncAllRecipients(c.Request().Context())
	if err != nil {
		return dbError(c, h.Cfg, err, "Failed to sync recipients")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Recipients synced successfully",
		"added":   added,
	})
}

type triggerScheduleReq struct {
	Cron     string `json:"cron"`
	Timezone string `json:"timezone"`
	IsActive bool   `json:"isActive"`
}

// Trigger pushes the schedule state to the external scheduler: active
// creates or updates the remote schedule under the fixed deduplication
// key, inactive deletes it (a missing remote schedule is fine).
func (h *ScheduleHandler) Trigger(c echo.Context) error {
	var req triggerScheduleReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Cron == "" {
		return badRequest(c, "Cron expression is required")
	}

	ctx := c.Request().Context()
	if req.IsActive {
		sched, err := h.Scheduler.Upsert(ctx, req.Cron, req.Timezone)
		if err != nil {
			logger.L.Error("scheduler upsert failed", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, errResp{
				Error:   "Failed to manage schedule",
				Details: detailOf(h.Cfg, err),
			})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"message": "Schedule created/updated successfully",
			"schedule": echo.Map{
				"id":       sched.ID,
				"cron":     sched.Cron,
				"timezone": sched.Timezone,
			},
		})
	}

	alreadyInactive, err := h.Scheduler.Delete(ctx)
	if err != nil {
		logger.L.Error("scheduler delete failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errResp{
			Error:   "Failed to manage schedule",
			Details: detailOf(h.Cfg, err),
		})
	}
	msg := "Schedule deleted successfully"
	if alreadyInactive {
		msg = "Schedule already inactive"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": msg,
	})
}

// Run is the scheduler webhook: it enqueues a report-run message for the
// consumer instead of running the report inside the request.
func (h *ScheduleHandler) Run(c echo.Context) error {
	triggeredBy := "scheduler_webhook"
	if sub, ok := c.Get("webhook_subject").(string); ok && sub != "" {
		triggeredBy = sub
	}

	ev := queue.ReportRunRequestedEvent{
		ScheduleName: report.DefaultScheduleName,
		TriggeredBy:  triggeredBy,
		RequestedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := service.PublishReportRun(c.Request().Context(), h.Cfg.AMQPUrl, ev); err != nil {
		return c.JSON(http.StatusInternalServerError, errResp{
			Error:   "Failed to enqueue report run",
			Details: detailOf(h.Cfg, err),
		})
	}

	return c.JSON(http.StatusAccepted, echo.Map{
		"message":  "Report run enqueued",
		"schedule": report.DefaultScheduleName,
	})
}
