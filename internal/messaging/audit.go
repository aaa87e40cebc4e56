// Package messaging carries moderation activity out of band over
// RabbitMQ so external tooling can audit admin actions and reports
// without touching the relay process.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/alivehamster/elliptical/internal/domain"
)

const (
	// ModerationExchange receives every audit event.
	ModerationExchange = "chat.moderation"
	// AuditQueue is the durable queue audit consumers read from.
	AuditQueue = "moderation.audit"

	routingAdmin  = "moderation.admin"
	routingReport = "moderation.report"
)

// AdminActionEvent is the audit record of one admin command.
type AdminActionEvent struct {
	Command   string `json:"command"`
	RoomID    string `json:"room_id,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// ReportEvent is the audit record of one message report.
type ReportEvent struct {
	MessageID string `json:"message_id"`
	RoomID    string `json:"room_id"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// AuditLog is the RabbitMQ-backed moderation audit channel.
type AuditLog struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewAuditLog connects to RabbitMQ and declares the moderation topology.
func NewAuditLog(url string) (*AuditLog, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	a := &AuditLog{
		conn:    conn,
		channel: ch,
	}

	if err := a.setup(); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// NewAuditLogWithRetry keeps dialing until the broker answers or ctx
// expires. Brokers routinely come up after the relay in dev setups.
func NewAuditLogWithRetry(ctx context.Context, url string) (*AuditLog, error) {
	backoff := time.Second

	for {
		audit, err := NewAuditLog(url)
		if err == nil {
			return audit, nil
		}

		slog.Warn("rabbitmq not ready, retrying",
			slog.String("error", err.Error()),
			slog.Duration("backoff", backoff))

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("gave up connecting to rabbitmq: %w", err)
		case <-time.After(backoff):
		}

		if backoff < 10*time.Second {
			backoff *= 2
		}
	}
}

func (a *AuditLog) setup() error {
	if err := a.channel.ExchangeDeclare(
		ModerationExchange, // name
		"topic",            // type
		true,               // durable
		false,              // auto-deleted
		false,              // internal
		false,              // no-wait
		nil,                // arguments
	); err != nil {
		return fmt.Errorf("failed to declare moderation exchange: %w", err)
	}

	if _, err := a.channel.QueueDeclare(
		AuditQueue, // name
		true,       // durable
		false,      // delete when unused
		false,      // exclusive
		false,      // no-wait
		nil,        // arguments
	); err != nil {
		return fmt.Errorf("failed to declare audit queue: %w", err)
	}

	if err := a.channel.QueueBind(
		AuditQueue,         // queue name
		"moderation.*",     // routing key
		ModerationExchange, // exchange
		false,
		nil,
	); err != nil {
		return fmt.Errorf("failed to bind audit queue: %w", err)
	}

	slog.Info("moderation audit topology declared")
	return nil
}

func (a *AuditLog) publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	err = a.channel.PublishWithContext(
		ctx,
		ModerationExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish audit event: %w", err)
	}
	return nil
}

// PublishAdminAction records one dispatched admin command.
func (a *AuditLog) PublishAdminAction(ctx context.Context, command, roomID, messageID string) error {
	return a.publish(ctx, routingAdmin, &AdminActionEvent{
		Command:   command,
		RoomID:    roomID,
		MessageID: messageID,
		Timestamp: time.Now().Unix(),
	})
}

// PublishReport records one filed message report.
func (a *AuditLog) PublishReport(ctx context.Context, report *domain.Report) error {
	return a.publish(ctx, routingReport, &ReportEvent{
		MessageID: report.MessageID,
		RoomID:    report.RoomID,
		Content:   report.Content,
		Timestamp: time.Now().Unix(),
	})
}

func (a *AuditLog) IsClosed() bool {
	return a.conn == nil || a.conn.IsClosed()
}

func (a *AuditLog) Close() error {
	if a.channel != nil {
		if err := a.channel.Close(); err != nil {
			slog.Warn("failed to close channel", slog.String("error", err.Error()))
		}
	}
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
