package model

import "encoding/json"

// ScheduledReport is a report schedule stored in the application database
// (scheduled_reports). The cron expression is persisted verbatim and handed
// to the external scheduler untouched; run bookkeeping fields are written
// back by the report runner after each execution.
type ScheduledReport struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Description         *string         `json:"description"`
	CronExpression      string          `json:"cron_expression"`
	ScheduleDescription *string         `json:"schedule_description"`
	ReportType          string          `json:"report_type"`
	FilterParams        json.RawMessage `json:"filter_params"`
	IsActive            bool            `json:"is_active"`
	TriggerJobID        *string         `json:"trigger_job_id"`
	LastRunAt           *string         `json:"last_run_at"`
	LastRunStatus       *string         `json:"last_run_status"`
	LastRunError        *string         `json:"last_run_error"`
	CreatedAt           string          `json:"created_at"`
	UpdatedAt           string          `json:"updated_at"`
}

// Run status values written by the report runner.
const (
	RunStatusSuccess        = "success"
	RunStatusPartialSuccess = "partial_success"
	RunStatusNoRecipients   = "no_recipients"
	RunStatusError          = "error"
)

// ReportRecipient is the slim recipient view joined through
// scheduled_report_recipients for a single schedule.
type ReportRecipient struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	Name     *string `json:"name"`
	IsActive bool    `json:"is_active"`
}
