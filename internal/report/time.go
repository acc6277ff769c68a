package report

import "time"

// startAtCorrection compensates for the upstream system storing event
// start times four hours ahead of the intended Eastern wall-clock value.
// This is a literal data-correction hack carried over for output parity,
// not a timezone conversion; the proper fix is correcting the warehouse
// data upstream. Do not "generalize" this into DST-aware logic.
const startAtCorrection = -4 * time.Hour

// EventStartDisplay turns the stored start timestamp (already shifted to
// New York wall-clock time by the query) into the date and time display
// strings used across reports, e.g. "07/04/2026" and "7:30 PM".
func EventStartDisplay(startAt time.Time) (date string, clock string) {
	corrected := startAt.Add(startAtCorrection)
	return corrected.Format("01/02/2006"), corrected.Format("3:04 PM")
}
