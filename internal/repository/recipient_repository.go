package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/squadup/event-reporting/internal/model"
)

// RecipientRepo manages report_recipients in the application store. This is
// one of the two places the service writes; everything stays single
// statements or one short explicit transaction.
type RecipientRepo struct {
	db *sql.DB
}

// NewRecipientRepo returns a RecipientRepo bound to the application pool.
func NewRecipientRepo(db *sql.DB) *RecipientRepo { return &RecipientRepo{db: db} }

const recipientColumns = `id, email, name, organization_id, is_active, created_at, updated_at`

// List returns all recipients, newest first.
func (r *RecipientRepo) List(ctx context.Context) ([]model.Recipient, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recipientColumns+`
		FROM report_recipients
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []model.Recipient{}
	for rows.Next() {
		rec, err := scanRecipient(rows)
		if err != nil {
			return nil, classify(err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// Create inserts a recipient and, inside the same transaction, joins it to
// every active scheduled report. Returns the new row and the number of
// reports it was added to. A duplicate email surfaces as ErrConflict.
func (r *RecipientRepo) Create(ctx context.Context, email string, name, organizationID *string) (model.Recipient, int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Recipient{}, 0, classify(err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		INSERT INTO report_recipients (email, name, organization_id, is_active)
		VALUES ($1, $2, $3, true)
		RETURNING `+recipientColumns,
		email, name, organizationID)
	rec, err := scanRecipient(row)
	if err != nil {
		return model.Recipient{}, 0, classify(err)
	}

	// New recipients receive every active report by default.
	res, err := tx.ExecContext(ctx, `
		INSERT INTO scheduled_report_recipients (scheduled_report_id, recipient_id)
		SELECT sr.id, $1
		FROM scheduled_reports sr
		WHERE sr.is_active = true
		ON CONFLICT (scheduled_report_id, recipient_id) DO NOTHING`,
		rec.ID)
	if err != nil {
		return model.Recipient{}, 0, classify(err)
	}
	added, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return model.Recipient{}, 0, classify(err)
	}
	return rec, int(added), nil
}

// Update patches email, name and/or is_active; nil fields keep their
// current value. updated_at is owned by the table trigger, not set here.
// Missing id surfaces as ErrNotFound, duplicate email as ErrConflict.
func (r *RecipientRepo) Update(ctx context.Context, id string, email, name *string, isActive *bool) (model.Recipient, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE report_recipients
		SET email = COALESCE($2, email),
		    name = COALESCE($3, name),
		    is_active = COALESCE($4, is_active)
		WHERE id = $1
		RETURNING `+recipientColumns,
		id, email, name, isActive)
	rec, err := scanRecipient(row)
	if err != nil {
		return model.Recipient{}, classify(err)
	}
	return rec, nil
}

// Delete removes a recipient. Missing id surfaces as ErrNotFound.
func (r *RecipientRepo) Delete(ctx context.Context, id string) error {
	var deleted string
	err := r.db.QueryRowContext(ctx,
		`DELETE FROM report_recipients WHERE id = $1 RETURNING id`, id).Scan(&deleted)
	if err != nil {
		return classify(err)
	}
	return nil
}

// rowScanner lets scanRecipient work for both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipient(s rowScanner) (model.Recipient, error) {
	var (
		rec       model.Recipient
		name      sql.NullString
		orgID     sql.NullString
		createdAt time.Time
		updatedAt time.Time
	)
	if err := s.Scan(&rec.ID, &rec.Email, &name, &orgID, &rec.IsActive, &createdAt, &updatedAt); err != nil {
		return model.Recipient{}, err
	}
	rec.Name = nullStr(name)
	rec.OrganizationID = nullStr(orgID)
	rec.CreatedAt = createdAt.Format(time.RFC3339)
	rec.UpdatedAt = updatedAt.Format(time.RFC3339)
	return rec, nil
}
