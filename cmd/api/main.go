package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"provision_chat_backend/internal/calendar"
	"provision_chat_backend/internal/chat"
	"provision_chat_backend/internal/chat/ai"
	"provision_chat_backend/internal/chat/qualification"
	"provision_chat_backend/internal/email"
	"provision_chat_backend/internal/events"
	apphttp "provision_chat_backend/internal/http"
	"provision_chat_backend/internal/http/router"
	"provision_chat_backend/internal/leads"
	leadadapters "provision_chat_backend/internal/leads/adapters"
	"provision_chat_backend/internal/notification"
	"provision_chat_backend/internal/scheduler"
	"provision_chat_backend/internal/seminars"
	"provision_chat_backend/migrations"
	"provision_chat_backend/platform/config"
	"provision_chat_backend/platform/db"
	"provision_chat_backend/platform/logger"
	"provision_chat_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	sender := email.NewSender(cfg)

	// AI collaborators (Groq chat completions)
	aiClient := ai.NewClient(ai.Config{
		APIKey:  cfg.GetGroqAPIKey(),
		BaseURL: cfg.GetGroqBaseURL(),
		Model:   cfg.GetGroqModel(),
		Timeout: cfg.GetGroqTimeout(),
	})
	extractor := ai.NewExtractor(aiClient)
	generator := ai.NewGenerator(aiClient, cfg.GetGroqHistoryWindow())

	// Booking collaborator (Cal.com)
	booking := calendar.NewClient(calendar.Config{
		APIKey:      cfg.GetCalComAPIKey(),
		BaseURL:     cfg.GetCalComBaseURL(),
		Username:    cfg.GetCalComUsername(),
		EventTypeID: cfg.GetCalComEventTypeID(),
	})

	thresholds := qualification.Thresholds{
		High:      cfg.GetHighValueThreshold(),
		Qualified: cfg.GetQualifiedThreshold(),
		Warm:      cfg.GetWarmThreshold(),
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	leadsModule := leads.NewModule(pool, val, log, eventBus)
	leadStore := leadadapters.NewChatLeadStore(leadsModule.Service())

	chatModule := chat.NewModule(pool, val, log, eventBus, extractor, generator, booking, leadStore, thresholds)
	seminarsModule := seminars.NewModule(pool, val, log, eventBus)

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(seminarsModule.Repository(), sender, cfg, booking.BookingURL(), log)
	notificationModule.RegisterHandlers(eventBus)

	// Seminar reminders are delayed jobs; the scheduler worker binary
	// picks them up.
	reminderClient, closeScheduler := initReminderScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
		schedulerModule := scheduler.NewModule(reminderClient, log)
		schedulerModule.RegisterHandlers(eventBus)
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			chatModule,
			leadsModule,
			seminarsModule,
		},
	}

	engine := router.New(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initReminderScheduler(cfg config.RedisConfig, log *logger.Logger) (scheduler.ReminderScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; seminar reminders disabled")
		return nil, nil
	}

	reminderClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize reminder scheduler client", "error", err)
		return nil, nil
	}

	return reminderClient, func() {
		_ = reminderClient.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
