package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/squadup/event-reporting/internal/logger"
	"github.com/squadup/event-reporting/internal/mailer"
	"github.com/squadup/event-reporting/internal/model"
	"github.com/squadup/event-reporting/internal/repository"
)

// DefaultScheduleName is the well-known schedule row driving the recurring
// report.
const DefaultScheduleName = "Daily Event Report"

// ErrNoActiveSchedule is returned when the schedule row is missing or
// inactive; the run is skipped without touching run bookkeeping.
var ErrNoActiveSchedule = errors.New("no active scheduled report found")

// Runner executes one scheduled report run: load the schedule and its
// active recipients, compute the event rollup, and email the CSV to each
// recipient. Per-recipient failures are isolated; the overall outcome is
// written back onto the schedule row.
type Runner struct {
	Schedules    *repository.ScheduleRepo
	Reports      *repository.ReportRepo
	Mailer       *mailer.Client
	HostUserID   int64
	ScheduleName string
}

// RunResult summarizes one run for logging and the webhook response.
type RunResult struct {
	Status string   `json:"status"`
	Sent   []string `json:"sent"`
	Failed []string `json:"failed,omitempty"`
}

// Run performs the report run. Errors before the delivery loop are
// recorded on the schedule row (status "error") and returned; delivery
// failures only degrade the status to partial_success.
func (r *Runner) Run(ctx context.Context) (RunResult, error) {
	name := r.ScheduleName
	if name == "" {
		name = DefaultScheduleName
	}

	sched, err := r.Schedules.ActiveByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return RunResult{}, ErrNoActiveSchedule
		}
		msg := fmt.Sprintf("%v", err)
		if rerr := r.Schedules.RecordRunByName(ctx, name, model.RunStatusError, &msg); rerr != nil {
			logger.L.Error("record run failure failed", zap.Error(rerr))
		}
		return RunResult{}, err
	}

	recipients, err := r.Schedules.RecipientsFor(ctx, sched.ID, true)
	if err != nil {
		r.recordFailure(ctx, sched.ID, err)
		return RunResult{}, err
	}
	if len(recipients) == 0 {
		msg := "No active recipients found"
		if err := r.Schedules.RecordRun(ctx, sched.ID, model.RunStatusNoRecipients, &msg); err != nil {
			logger.L.Error("record run status failed", zap.Error(err))
		}
		return RunResult{Status: model.RunStatusNoRecipients, Sent: []string{}}, nil
	}

	rows, err := r.Reports.EventList(ctx, r.HostUserID, "", "")
	if err != nil {
		r.recordFailure(ctx, sched.ID, err)
		return RunResult{}, err
	}

	now := time.Now().UTC()
	sent := []string{}
	failed := []string{}
	for _, rec := range recipients {
		content := ComposeScheduled(rows, rec.Name, now)
		att := mailer.EncodeAttachment(content.Filename, []byte(content.CSV))
		if _, err := r.Mailer.Send(ctx, rec.Email, content.Subject, content.HTML, att); err != nil {
			logger.L.Error("report email failed",
				zap.String("recipient", rec.Email), zap.Error(err))
			failed = append(failed, rec.Email)
			continue
		}
		sent = append(sent, rec.Email)
	}

	status := model.RunStatusSuccess
	var runErr *string
	if len(failed) > 0 {
		status = model.RunStatusPartialSuccess
		msg := "Failed to send to: " + strings.Join(failed, ", ")
		runErr = &msg
	}
	if err := r.Schedules.RecordRun(ctx, sched.ID, status, runErr); err != nil {
		logger.L.Error("record run status failed", zap.Error(err))
	}

	logger.L.Info("report run completed",
		zap.String("schedule", name),
		zap.Int("sent", len(sent)),
		zap.Int("failed", len(failed)))

	return RunResult{Status: status, Sent: sent, Failed: failed}, nil
}

func (r *Runner) recordFailure(ctx context.Context, scheduleID string, cause error) {
	msg := fmt.Sprintf("%v", cause)
	if err := r.Schedules.RecordRun(ctx, scheduleID, model.RunStatusError, &msg); err != nil {
		logger.L.Error("record run failure failed", zap.Error(err))
	}
}
