// Package database opens the two Postgres pools the service depends on:
// the analytical warehouse (read-only) and the application store
// (writable, owns recipients and scheduled reports).
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/lib/pq"
)

// OpenWarehouse connects to the warehouse cluster. Every pooled session is
// forced read-only and capped by statement_timeout via connection options,
// so ad-hoc SELECTs cannot write or run away. All warehouse access happens
// through this pool.
func OpenWarehouse(dsn string, statementTimeoutMS int) (*sql.DB, error) {
	opts := fmt.Sprintf("-c default_transaction_read_only=on -c statement_timeout=%d", statementTimeoutMS)
	withOpts, err := appendParam(dsn, "options", opts)
	if err != nil {
		return nil, err
	}
	return open(withOpts)
}

// OpenApp connects to the application store. Writes here are single
// statements or short explicit transactions; no session tuning is needed.
func OpenApp(dsn string) (*sql.DB, error) {
	return open(dsn)
}

func open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// appendParam adds a query parameter to a URL-form DSN without disturbing
// parameters already present.
func appendParam(dsn, key, value string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid database url: %w", err)
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
