package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"pawresort/internal/api"
	"pawresort/internal/availability"
	"pawresort/internal/booking"
	"pawresort/internal/config"
	"pawresort/internal/metrics"
	"pawresort/internal/reminders"
	"pawresort/internal/store"
)

func main() {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	if level, err := zerolog.ParseLevel(levelOrDefault(os.Getenv("LOG_LEVEL"))); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	cfg, err := config.Load(os.Getenv("PAWRESORT_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := store.NewDB(store.DBConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var resources store.ResourceStore = db
	if rdb != nil && cfg.ResourceCacheTTL() > 0 {
		resources = store.NewCachedResourceStore(db, rdb, cfg.ResourceCacheTTL())
	}

	engine := availability.NewEngine(db, logger)
	validator := booking.NewValidator(engine, logger)
	sessions := booking.NewSessionStore(cfg.SessionTimeout())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, db, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	if cfg.Reminders.Enabled {
		go startReminderScheduler(ctx, cfg, db, &logger)
	}

	// Session cleanup keeps abandoned booking drafts from accumulating.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := sessions.Cleanup(); removed > 0 {
					logger.Debug().Int("removed", removed).Msg("expired booking sessions cleaned up")
				}
			}
		}
	}()

	server := api.NewHTTPServer(api.Options{
		Port:         cfg.Server.Port,
		APIKeys:      cfg.Server.APIKeys,
		MaxBatch:     cfg.MaxBatchResources(),
		Engine:       engine,
		Validator:    validator,
		Sessions:     sessions,
		Reservations: db,
		Resources:    resources,
		Tenants:      db,
		Logger:       logger,
	})

	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			logger.Error().Err(err).Msg("API server shutdown error")
		}
	}()

	logger.Info().Msg("pawresort availability service started")
	if err := server.Start(); err != nil {
		logger.Fatal().Err(err).Msg("API server error")
	}
}

func levelOrDefault(level string) string {
	if level == "" {
		return "info"
	}
	return level
}

func startReminderScheduler(ctx context.Context, cfg *config.Config, db *store.DB, logger *zerolog.Logger) {
	rcfg := reminders.DefaultConfig()
	if cfg.Reminders.Timezone != "" {
		rcfg.Timezone = cfg.Reminders.Timezone
	}
	if cfg.Reminders.DailyHour > 0 {
		rcfg.DailyHour = cfg.Reminders.DailyHour
	}
	if cfg.Reminders.RatePerSecond > 0 {
		rcfg.RatePerSecond = cfg.Reminders.RatePerSecond
	}
	rcfg.Window = cfg.ReminderWindow()

	var notifier reminders.Notifier
	if cfg.Reminders.WebhookURL != "" {
		notifier = reminders.NewWebhookNotifier(cfg.Reminders.WebhookURL)
	} else {
		notifier = &reminders.LogNotifier{Logger: *logger}
	}

	scheduler, err := reminders.NewScheduler(rcfg, db, notifier, *logger)
	if err != nil {
		logger.Error().Err(err).Msg("reminder scheduler init failed")
		return
	}
	scheduler.Start(ctx)
}

func startHealthServer(ctx context.Context, port int, db *store.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := db.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
