package main

import (
	"bufio"
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alivehamster/elliptical/internal/config"
	"github.com/alivehamster/elliptical/internal/handler"
	"github.com/alivehamster/elliptical/internal/messaging"
	"github.com/alivehamster/elliptical/internal/middleware"
	"github.com/alivehamster/elliptical/internal/moderation"
	"github.com/alivehamster/elliptical/internal/observability"
	"github.com/alivehamster/elliptical/internal/repository/postgres"
	"github.com/alivehamster/elliptical/internal/service"
	"github.com/alivehamster/elliptical/internal/websocket"
)

func main() {
	cfg := config.Load()

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}
	observability.InitLogger(logLevel, logFormat)

	slog.Info("starting chat relay")

	connCtx, connCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer connCancel()

	db, err := config.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.EnsureSchema(connCtx, db); err != nil {
		slog.Error("failed to ensure schema", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("connected to postgresql")

	roomRepo := postgres.NewRoomRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	reportRepo := postgres.NewReportRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)

	adminPassword, err := settingsRepo.EnsurePassword(connCtx, cfg.AdminPassword)
	if err != nil {
		slog.Error("failed to load admin password", slog.String("error", err.Error()))
		os.Exit(1)
	}

	state := moderation.NewState(adminPassword, cfg.MaxRooms, cfg.BlockedTerms)

	var audit *messaging.AuditLog
	var auditCheck handler.Closable
	var auditPublisher service.AuditPublisher
	if cfg.RabbitMQURL != "" {
		rmqCtx, rmqCancel := context.WithTimeout(context.Background(), 60*time.Second)
		audit, err = messaging.NewAuditLogWithRetry(rmqCtx, cfg.RabbitMQURL)
		rmqCancel()
		if err != nil {
			slog.Error("failed to connect to rabbitmq", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer audit.Close()
		auditCheck = audit
		auditPublisher = audit
		slog.Info("moderation audit channel connected")
	} else {
		slog.Info("moderation audit channel disabled")
	}

	hub := websocket.NewHub(state)

	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	go func() {
		if err := hub.Run(hubCtx); err != nil && err != context.Canceled {
			slog.Error("hub error", slog.String("error", err.Error()))
		}
	}()
	slog.Info("websocket hub started")

	chatService := service.NewChatService(roomRepo, messageRepo, reportRepo, state, hub, auditPublisher)
	adminService := service.NewAdminService(roomRepo, messageRepo, reportRepo, settingsRepo, state, hub, auditPublisher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go runAdminConsole(ctx, adminService)
	slog.Info("admin console ready")

	allowedOrigins := middleware.ParseOrigins(cfg.AllowedOrigins)
	wsHandler := handler.NewWebSocketHandler(hub, chatService, adminService, allowedOrigins)

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.CORS(allowedOrigins))
	r.Use(middleware.Metrics())

	r.Get("/health", handler.Health)
	r.Get("/health/ready", handler.Ready(db, auditCheck))
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./static/index.html")
	})
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("./static"))))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	wsLimiter := middleware.NewRateLimiter(5, 10)
	defer wsLimiter.Stop()
	r.Group(func(r chi.Router) {
		r.Use(wsLimiter.Middleware())
		r.Get("/ws/chat", wsHandler.HandleConnection)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("chat relay listening", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
	}

	cancel()
	hubCancel()

	time.Sleep(100 * time.Millisecond)

	slog.Info("server stopped gracefully")
}

// runAdminConsole feeds operator-typed lines into the admin dispatcher.
// The console is a trusted local channel, so there is no password gate.
func runAdminConsole(ctx context.Context, admin *service.AdminService) {
	scanner := bufio.NewScanner(os.Stdin)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		cmd, ok := service.ParseCommandLine(scanner.Text())
		if !ok {
			continue
		}

		cmdCtx, cmdCancel := context.WithTimeout(ctx, 10*time.Second)
		admin.Execute(cmdCtx, cmd, nil)
		cmdCancel()
	}

	if err := scanner.Err(); err != nil {
		slog.Warn("admin console closed", slog.String("error", err.Error()))
	}
}
