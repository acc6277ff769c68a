package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/squadup/event-reporting/internal/logger"
	"github.com/squadup/event-reporting/internal/report"
)

// StartReportRunConsumer connects to RabbitMQ, declares the report.run
// queue (durable), and consumes run requests, executing each through the
// runner. It runs a reconnect loop with exponential backoff and never
// returns; processing errors are logged and the offending message is
// rejected without requeue so a poison message cannot loop.
func StartReportRunConsumer(url string, runner *report.Runner) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			logger.L.Warn("report-consumer: dial failed",
				zap.Error(err), zap.Duration("retry_in", backoff))
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, runner); err != nil {
			logger.L.Warn("report-consumer: consume loop ended", zap.Error(err))
			_ = conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, runner *report.Runner) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(1, 0, false); err != nil {
		logger.L.Warn("report-consumer: set QoS failed", zap.Error(err))
	}

	if _, err := ch.QueueDeclare(ReportRunQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(ReportRunQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, runner); err != nil {
			logger.L.Error("report-consumer: run failed", zap.Error(err))
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, runner *report.Runner) error {
	var ev ReportRunRequestedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	logger.L.Info("report-consumer: run requested",
		zap.String("schedule", ev.ScheduleName),
		zap.String("triggered_by", ev.TriggeredBy))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	res, err := runner.Run(ctx)
	if err != nil {
		if errors.Is(err, report.ErrNoActiveSchedule) {
			logger.L.Warn("report-consumer: no active schedule, skipping run")
			return nil
		}
		return err
	}

	logger.L.Info("report-consumer: run finished",
		zap.String("status", res.Status),
		zap.Int("sent", len(res.Sent)),
		zap.Int("failed", len(res.Failed)))
	return nil
}
