package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AuditConsumer tails the moderation audit queue and logs each event,
// the backing for the out-of-band audit-tail process.
type AuditConsumer struct {
	audit *AuditLog
}

// NewAuditConsumer creates a consumer over an established connection.
func NewAuditConsumer(audit *AuditLog) *AuditConsumer {
	return &AuditConsumer{audit: audit}
}

// Start consumes the audit queue until ctx is done. Events are
// acknowledged after logging; malformed bodies are logged raw and
// acknowledged anyway so they cannot wedge the queue.
func (c *AuditConsumer) Start(ctx context.Context) error {
	msgs, err := c.audit.channel.Consume(
		AuditQueue, // queue
		"",         // consumer
		false,      // auto-ack
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return err
	}

	slog.Info("tailing moderation audit queue", slog.String("queue", AuditQueue))

	go func() {
		for {
			select {
			case <-ctx.Done():
				slog.Info("stopping audit consumer")
				return
			case msg, ok := <-msgs:
				if !ok {
					slog.Warn("audit consumer channel closed")
					return
				}
				c.process(msg)
			}
		}
	}()

	return nil
}

func (c *AuditConsumer) process(msg amqp.Delivery) {
	defer func() {
		if err := msg.Ack(false); err != nil {
			slog.Warn("failed to ack audit event", slog.String("error", err.Error()))
		}
	}()

	switch msg.RoutingKey {
	case routingAdmin:
		var event AdminActionEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			slog.Error("malformed admin audit event", slog.String("body", string(msg.Body)))
			return
		}
		slog.Info("admin action",
			slog.String("command", event.Command),
			slog.String("room_id", event.RoomID),
			slog.String("message_id", event.MessageID),
			slog.Int64("timestamp", event.Timestamp))

	case routingReport:
		var event ReportEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			slog.Error("malformed report audit event", slog.String("body", string(msg.Body)))
			return
		}
		slog.Info("message reported",
			slog.String("message_id", event.MessageID),
			slog.String("room_id", event.RoomID),
			slog.String("content", event.Content),
			slog.Int64("timestamp", event.Timestamp))

	default:
		slog.Warn("unknown audit routing key", slog.String("routing_key", msg.RoutingKey))
	}
}
