// Package queue defines message payloads exchanged over the message broker
// and the background consumer that executes report runs.
package queue

// ReportRunQueueName is the durable queue carrying report-run requests.
const ReportRunQueueName = "report.run"

// ReportRunRequestedEvent is published when a report run is requested,
// either by the external scheduler webhook or a manual trigger. It carries
// enough context for the consumer to log the origin; the run itself reads
// everything from the databases.
type ReportRunRequestedEvent struct {
	ScheduleName string `json:"schedule_name"`
	TriggeredBy  string `json:"triggered_by"`
	RequestedAt  string `json:"requested_at"`
}
