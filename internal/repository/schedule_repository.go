package repository

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/squadup/event-reporting/internal/model"
)

// ScheduleRepo manages scheduled_reports and their recipient associations
// in the application store. Schedules themselves run on an external
// service; this repository only owns the rows describing them and the run
// bookkeeping the report runner writes back.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo returns a ScheduleRepo bound to the application pool.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

const scheduleColumns = `id, name, description, cron_expression, schedule_description, report_type,
		filter_params, is_active, trigger_job_id, last_run_at, last_run_status, last_run_error,
		created_at, updated_at`

// List returns all scheduled reports ordered by name.
func (r *ScheduleRepo) List(ctx context.Context) ([]model.ScheduledReport, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+scheduleColumns+`
		FROM scheduled_reports
		ORDER BY name`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []model.ScheduledReport{}
	for rows.Next() {
		rep, err := scanSchedule(rows)
		if err != nil {
			return nil, classify(err)
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// ScheduleUpdate lists the patchable schedule fields; nil means unchanged.
type ScheduleUpdate struct {
	CronExpression      *string
	ScheduleDescription *string
	IsActive            *bool
}

// Empty reports whether the patch contains no fields at all.
func (u ScheduleUpdate) Empty() bool {
	return u.CronExpression == nil && u.ScheduleDescription == nil && u.IsActive == nil
}

// Update applies the patch. A cron expression rejected by the table's check
// constraint surfaces as ErrValidation, a missing id as ErrNotFound.
func (r *ScheduleRepo) Update(ctx context.Context, id string, u ScheduleUpdate) (model.ScheduledReport, error) {
	sets := []string{}
	args := []any{}
	n := 0
	set := func(col string, v any) {
		n++
		sets = append(sets, col+" = $"+strconv.Itoa(n))
		args = append(args, v)
	}

	if u.CronExpression != nil {
		set("cron_expression", *u.CronExpression)
	}
	if u.ScheduleDescription != nil {
		set("schedule_description", *u.ScheduleDescription)
	}
	if u.IsActive != nil {
		set("is_active", *u.IsActive)
	}
	set("updated_at", time.Now().UTC())

	args = append(args, id)
	query := `UPDATE scheduled_reports SET ` + strings.Join(sets, ", ") +
		` WHERE id = $` + strconv.Itoa(n+1) +
		` RETURNING ` + scheduleColumns

	rep, err := scanSchedule(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return model.ScheduledReport{}, classify(err)
	}
	return rep, nil
}

// ActiveByName returns the active schedule with the given name, used by the
// report runner to locate its configuration row.
func (r *ScheduleRepo) ActiveByName(ctx context.Context, name string) (model.ScheduledReport, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+scheduleColumns+`
		FROM scheduled_reports
		WHERE is_active = true AND name = $1
		LIMIT 1`, name)
	rep, err := scanSchedule(row)
	if err != nil {
		return model.ScheduledReport{}, classify(err)
	}
	return rep, nil
}

// RecipientsFor returns the recipients associated with a schedule, ordered
// by email. When activeOnly is set, inactive recipients are skipped (the
// runner mails active recipients only; the admin UI lists everyone).
func (r *ScheduleRepo) RecipientsFor(ctx context.Context, scheduleID string, activeOnly bool) ([]model.ReportRecipient, error) {
	query := `
		SELECT rr.id, rr.email, rr.name, rr.is_active
		FROM scheduled_report_recipients srr
		JOIN report_recipients rr ON srr.recipient_id = rr.id
		WHERE srr.scheduled_report_id = $1`
	if activeOnly {
		query += ` AND rr.is_active = true`
	}
	query += ` ORDER BY rr.email`

	rows, err := r.db.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []model.ReportRecipient{}
	for rows.Next() {
		var (
			rec  model.ReportRecipient
			name sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.Email, &name, &rec.IsActive); err != nil {
			return nil, classify(err)
		}
		rec.Name = nullStr(name)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// AddRecipient associates a recipient with a schedule; already-present
// associations are a no-op.
func (r *ScheduleRepo) AddRecipient(ctx context.Context, scheduleID, recipientID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scheduled_report_recipients (scheduled_report_id, recipient_id)
		VALUES ($1, $2)
		ON CONFLICT (scheduled_report_id, recipient_id) DO NOTHING`,
		scheduleID, recipientID)
	return classify(err)
}

// RemoveRecipient drops the association; a missing one surfaces as
// ErrNotFound.
func (r *ScheduleRepo) RemoveRecipient(ctx context.Context, scheduleID, recipientID string) error {
	var id string
	err := r.db.QueryRowContext(ctx, `
		DELETE FROM scheduled_report_recipients
		WHERE scheduled_report_id = $1 AND recipient_id = $2
		RETURNING id`,
		scheduleID, recipientID).Scan(&id)
	return classify(err)
}

// SyncAllRecipients reconciles associations: every active recipient is
// joined to every active schedule it is not yet on. Returns how many
// associations were created.
func (r *ScheduleRepo) SyncAllRecipients(ctx context.Context) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO scheduled_report_recipients (scheduled_report_id, recipient_id)
		SELECT sr.id, rr.id
		FROM scheduled_reports sr
		CROSS JOIN report_recipients rr
		WHERE sr.is_active = true
		  AND rr.is_active = true
		  AND NOT EXISTS (
			SELECT 1
			FROM scheduled_report_recipients srr
			WHERE srr.scheduled_report_id = sr.id
			  AND srr.recipient_id = rr.id
		  )`)
	if err != nil {
		return 0, classify(err)
	}
	added, _ := res.RowsAffected()
	return int(added), nil
}

// RecordRun writes the outcome of a report run back onto the schedule row.
// runError may be nil for clean runs.
func (r *ScheduleRepo) RecordRun(ctx context.Context, id, status string, runError *string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE scheduled_reports
		SET last_run_at = NOW(),
		    last_run_status = $2,
		    last_run_error = $3
		WHERE id = $1`,
		id, status, runError)
	return classify(err)
}

// RecordRunByName is the failure path used when the run broke before the
// schedule row was loaded; it targets the schedule by its well-known name.
func (r *ScheduleRepo) RecordRunByName(ctx context.Context, name, status string, runError *string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE scheduled_reports
		SET last_run_at = NOW(),
		    last_run_status = $2,
		    last_run_error = $3
		WHERE name = $1`,
		name, status, runError)
	return classify(err)
}

func scanSchedule(s rowScanner) (model.ScheduledReport, error) {
	var (
		rep       model.ScheduledReport
		desc      sql.NullString
		schedDesc sql.NullString
		filter    []byte
		jobID     sql.NullString
		lastRunAt sql.NullTime
		runStatus sql.NullString
		runError  sql.NullString
		createdAt time.Time
		updatedAt time.Time
	)
	if err := s.Scan(
		&rep.ID, &rep.Name, &desc, &rep.CronExpression, &schedDesc, &rep.ReportType,
		&filter, &rep.IsActive, &jobID, &lastRunAt, &runStatus, &runError,
		&createdAt, &updatedAt,
	); err != nil {
		return model.ScheduledReport{}, err
	}
	rep.Description = nullStr(desc)
	rep.ScheduleDescription = nullStr(schedDesc)
	rep.FilterParams = filter
	rep.TriggerJobID = nullStr(jobID)
	if lastRunAt.Valid {
		t := lastRunAt.Time.Format(time.RFC3339)
		rep.LastRunAt = &t
	}
	rep.LastRunStatus = nullStr(runStatus)
	rep.LastRunError = nullStr(runError)
	rep.CreatedAt = createdAt.Format(time.RFC3339)
	rep.UpdatedAt = updatedAt.Format(time.RFC3339)
	return rep, nil
}
