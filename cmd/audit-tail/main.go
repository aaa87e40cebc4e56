package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alivehamster/elliptical/internal/config"
	"github.com/alivehamster/elliptical/internal/messaging"
	"github.com/alivehamster/elliptical/internal/observability"
)

func main() {
	cfg := config.Load()

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "text"
	}
	observability.InitLogger(logLevel, logFormat)

	if cfg.RabbitMQURL == "" {
		slog.Error("RABBITMQ_URL must be set to tail the moderation audit queue")
		os.Exit(1)
	}

	slog.Info("starting audit tail")

	audit, err := messaging.NewAuditLog(cfg.RabbitMQURL)
	if err != nil {
		slog.Error("failed to connect to rabbitmq", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer audit.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := messaging.NewAuditConsumer(audit)
	if err := consumer.Start(ctx); err != nil {
		slog.Error("failed to start audit consumer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("audit tail stopped")
}
