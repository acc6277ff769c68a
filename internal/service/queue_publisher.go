package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/squadup/event-reporting/internal/logger"
	"github.com/squadup/event-reporting/internal/queue"
)

// PublishReportRun publishes a ReportRunRequestedEvent to the report.run
// queue. Any error is logged and returned so the caller can decide whether
// a failed enqueue should fail the request. Messages are persistent.
func PublishReportRun(ctx context.Context, url string, ev queue.ReportRunRequestedEvent) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		logger.L.Error("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.L.Error("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare. Durable so requests survive broker restarts.
	if _, err := ch.QueueDeclare(queue.ReportRunQueueName, true, false, false, false, nil); err != nil {
		logger.L.Error("rabbitmq: queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		logger.L.Error("rabbitmq: marshal event failed", zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", queue.ReportRunQueueName, false, false, pub); err != nil {
		logger.L.Error("rabbitmq: publish failed", zap.Error(err))
		return err
	}
	return nil
}
