package repository

import (
	"context"
	"database/sql"
	"time"
)

// Warehouse executes ad-hoc SELECTs against the read-only warehouse pool.
// Queries arrive already sanitized and rewritten by sqlguard; this layer
// only runs them and shapes the rows generically, since the column set is
// whatever the caller selected.
type Warehouse struct {
	db *sql.DB
}

// NewWarehouse returns a Warehouse bound to the given pool.
func NewWarehouse(db *sql.DB) *Warehouse { return &Warehouse{db: db} }

// ExecAdhoc runs the query and returns one map per row keyed by column
// name. Byte slices are converted to strings so JSON encoding produces
// text rather than base64.
func (w *Warehouse) ExecAdhoc(ctx context.Context, query string) ([]map[string]any, error) {
	rows, err := w.db.QueryContext(ctx, query)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, classify(err)
	}

	out := []map[string]any{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, classify(err)
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			v := vals[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[c] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// Ping runs a trivial query to verify connectivity and reports the
// database name and server time, used by the connection-test endpoints.
func (w *Warehouse) Ping(ctx context.Context) (database string, serverTime time.Time, err error) {
	const q = `SELECT NOW() as current_time, current_database() as database`
	if err = w.db.QueryRowContext(ctx, q).Scan(&serverTime, &database); err != nil {
		return "", time.Time{}, classify(err)
	}
	return database, serverTime, nil
}
