// Package sqlguard validates ad-hoc SQL before it reaches the warehouse
// and rewrites table references for the FDW naming convention.
//
// The keyword check is a word-boundary blocklist, not a SQL parser. It is
// best-effort gatekeeping for an internal tool: write statements disguised
// via comments, subqueries or dialect tricks are not exhaustively caught.
// The real protection is the read-only warehouse session; do not rely on
// this package as a security boundary.
package sqlguard

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrEmptyQuery is returned when the input is empty or whitespace.
var ErrEmptyQuery = errors.New("sql query is required")

// ErrNotSelect is returned when the query does not start with SELECT.
var ErrNotSelect = errors.New("only SELECT queries are allowed")

// BlockedKeywordError reports the first blocked keyword found in the query.
type BlockedKeywordError struct {
	Keyword string
}

func (e *BlockedKeywordError) Error() string {
	return fmt.Sprintf("sql query contains potentially dangerous keyword: %s; only SELECT queries are allowed", e.Keyword)
}

// blockedKeywords are rejected as whole words, checked in this order so the
// reported keyword is deterministic.
var blockedKeywords = []string{
	"drop", "delete", "truncate", "insert", "update",
	"create", "alter", "grant", "revoke", "exec", "execute",
}

var blockedPatterns = func() []*regexp.Regexp {
	ps := make([]*regexp.Regexp, len(blockedKeywords))
	for i, kw := range blockedKeywords {
		ps[i] = regexp.MustCompile(`\b` + kw + `\b`)
	}
	return ps
}()

// fdwTables are the warehouse tables reachable only through their FDW
// aliases. Bare FROM/JOIN references are rewritten to the _fdw form.
var fdwRewrites = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)\bFROM\s+payments\b`), "FROM payments_fdw"},
	{regexp.MustCompile(`(?i)\bJOIN\s+payments\b`), "JOIN payments_fdw"},
	{regexp.MustCompile(`(?i)\bFROM\s+events\b`), "FROM events_fdw"},
	{regexp.MustCompile(`(?i)\bJOIN\s+events\b`), "JOIN events_fdw"},
	{regexp.MustCompile(`(?i)\bFROM\s+users\b`), "FROM users_fdw"},
	{regexp.MustCompile(`(?i)\bJOIN\s+users\b`), "JOIN users_fdw"},
}

var selectStarRe = regexp.MustCompile(`(?i)SELECT\s+\*`)

// paymentsFDWColumns is the explicit column list substituted for SELECT *
// on payments_fdw. The FDW declares columns that have drifted from the
// remote table, so * fails; only payments_fdw has a defined expansion.
const paymentsFDWColumns = "id, transaction_id, status, name_on_card, card_type, last_four, " +
	"amount, created_at, user_id, event_id, event_attendee_id, shipping_address_id, " +
	"metadata, payment_gateway_id, refund_amount, phone_number"

// RewriteReason is attached to results whose query text was altered.
const RewriteReason = "Table names auto-corrected to use FDW suffix (warehouse cluster requirement)"

// Result carries the sanitized query along with what happened to it, so
// callers can echo both forms back to the requester.
type Result struct {
	Original  string `json:"originalQuery"`
	Rewritten string `json:"query"`
	Modified  bool   `json:"queryModified"`
	Reason    string `json:"modification,omitempty"`
}

// Prepare validates raw SQL and applies the FDW rewrites. It returns
// ErrEmptyQuery, a *BlockedKeywordError or ErrNotSelect on rejection;
// otherwise the Result holds the text to execute.
func Prepare(raw string) (Result, error) {
	if strings.TrimSpace(raw) == "" {
		return Result{}, ErrEmptyQuery
	}

	normalized := strings.ToLower(strings.TrimSpace(raw))
	for i, p := range blockedPatterns {
		if p.MatchString(normalized) {
			return Result{}, &BlockedKeywordError{Keyword: blockedKeywords[i]}
		}
	}
	if !strings.HasPrefix(normalized, "select") {
		return Result{}, ErrNotSelect
	}

	rewritten := raw
	// Queries already using the _fdw convention anywhere are left alone.
	if !strings.Contains(normalized, "_fdw") {
		for _, rw := range fdwRewrites {
			rewritten = rw.re.ReplaceAllString(rewritten, rw.repl)
		}
	}

	// SELECT * cannot cross the FDW boundary; expand it for payments_fdw.
	if strings.Contains(normalized, "select *") &&
		strings.Contains(strings.ToLower(rewritten), "payments_fdw") {
		if loc := selectStarRe.FindStringIndex(rewritten); loc != nil {
			rewritten = rewritten[:loc[0]] + "SELECT " + paymentsFDWColumns + rewritten[loc[1]:]
		}
	}

	res := Result{Original: raw, Rewritten: rewritten, Modified: rewritten != raw}
	if res.Modified {
		res.Reason = RewriteReason
	}
	return res, nil
}
