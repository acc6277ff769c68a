// Package repository implements raw-SQL data access against the two
// Postgres clusters. This file defines the error taxonomy shared by every
// repository so handlers can map failures onto HTTP statuses without
// inspecting driver errors themselves.
package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// ErrConnection indicates the database is unreachable. Handlers translate
// this into an HTTP 503 response.
var ErrConnection = errors.New("database connection failed")

// ErrPermission indicates a warehouse grant problem, usually a bare table
// name that should carry the _fdw suffix. Handlers translate this into 403.
var ErrPermission = errors.New("permission denied")

// ErrNotFound is returned when a targeted row does not exist. Handlers
// translate this into 404.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned on unique-constraint violations, e.g. creating a
// recipient with an email that already exists. Handlers translate this
// into 409.
var ErrConflict = errors.New("conflict")

// ErrValidation is returned when the database rejects a value on a check
// constraint, e.g. a malformed cron expression. Handlers translate this
// into 400.
var ErrValidation = errors.New("validation failed")

// pq error codes the service cares about.
const (
	pqUniqueViolation = "23505"
	pqCheckViolation  = "23514"
)

// classify wraps a driver error with the matching taxonomy sentinel. The
// original driver error stays in the chain for server-side logging.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return fmt.Errorf("%w: %v", ErrConflict, err)
		case pqCheckViolation:
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if strings.Contains(pqErr.Message, "permission denied") {
			return fmt.Errorf("%w: %v", ErrPermission, err)
		}
	}
	msg := err.Error()
	if strings.Contains(msg, "permission denied") {
		return fmt.Errorf("%w: %v", ErrPermission, err)
	}
	// lib/pq surfaces unreachable hosts through net.OpError text; the
	// substring check mirrors how the dashboard always classified these.
	if strings.Contains(msg, "connect") || strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return err
}
