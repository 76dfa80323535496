// Package reminders scans for upcoming check-ins and notifies the resort's
// configured endpoint. It is a backend job: best effort, rate limited, and
// never on any request path.
package reminders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"pawresort/internal/metrics"
	"pawresort/internal/model"
	"pawresort/internal/store"
)

// Notifier delivers a check-in reminder for one reservation.
type Notifier interface {
	SendReminder(ctx context.Context, r model.Reservation) error
}

// WebhookNotifier posts reminder payloads to a configured URL.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a webhook notifier.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *WebhookNotifier) SendReminder(ctx context.Context, r model.Reservation) error {
	payload, err := json.Marshal(map[string]any{
		"reservation_id": r.ID,
		"tenant_id":      r.TenantID,
		"pet_id":         r.PetID,
		"customer_id":    r.CustomerID,
		"check_in":       r.StartDate,
	})
	if err != nil {
		return fmt.Errorf("marshal reminder: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build reminder request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post reminder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("reminder webhook returned %d", resp.StatusCode)
	}
	return nil
}

// LogNotifier writes reminders to the log. Used when no webhook is configured.
type LogNotifier struct {
	Logger zerolog.Logger
}

func (n *LogNotifier) SendReminder(_ context.Context, r model.Reservation) error {
	n.Logger.Info().
		Str("tenant_id", r.TenantID).
		Str("reservation_id", r.ID).
		Time("check_in", r.StartDate).
		Msg("check-in reminder")
	return nil
}

// Config holds scheduler settings.
type Config struct {
	// Timezone for the daily run (e.g. "America/Los_Angeles").
	Timezone string
	// DailyHour is the local hour (0-23) when reminders are processed.
	DailyHour int
	// Window is how far ahead of check-in reminders go out.
	Window time.Duration
	// RatePerSecond caps notifier calls.
	RatePerSecond float64
	// CheckInterval is how often the scheduler wakes up.
	CheckInterval time.Duration
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() Config {
	return Config{
		Timezone:      "UTC",
		DailyHour:     9,
		Window:        24 * time.Hour,
		RatePerSecond: 5,
		CheckInterval: time.Minute,
	}
}

// Scheduler runs the reminder scan once per day at the configured hour.
type Scheduler struct {
	config   Config
	store    store.ReminderStore
	notifier Notifier
	limiter  *rate.Limiter
	location *time.Location
	logger   zerolog.Logger

	mu          sync.Mutex
	lastRunDate string // YYYY-MM-DD of last run
}

// NewScheduler creates a reminder scheduler.
func NewScheduler(cfg Config, st store.ReminderStore, notifier Notifier, logger zerolog.Logger) (*Scheduler, error) {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = time.Minute
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = 24 * time.Hour
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	return &Scheduler{
		config:   cfg,
		store:    st,
		notifier: notifier,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
		location: loc,
		logger:   logger,
	}, nil
}

// Start blocks until the context is canceled, running the scan once per
// calendar day at the configured local hour.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.shouldRun(time.Now().In(s.location)) {
				if err := s.Run(ctx); err != nil {
					s.logger.Error().Err(err).Msg("reminder run failed")
				}
			}
		}
	}
}

func (s *Scheduler) shouldRun(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := now.Format("2006-01-02")
	if s.lastRunDate == today || now.Hour() < s.config.DailyHour {
		return false
	}
	s.lastRunDate = today
	return true
}

// Run performs one reminder scan: fetch upcoming check-ins, notify each,
// mark sent. A single failed notification is logged and retried on the next
// daily run; it does not abort the batch.
func (s *Scheduler) Run(ctx context.Context) error {
	upcoming, err := s.store.FindUpcomingCheckIns(ctx, s.config.Window)
	if err != nil {
		return fmt.Errorf("find upcoming check-ins: %w", err)
	}

	s.logger.Info().Int("count", len(upcoming)).Msg("processing check-in reminders")

	for _, r := range upcoming {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		if err := s.notifier.SendReminder(ctx, r); err != nil {
			metrics.IncReminder("failed")
			s.logger.Error().Err(err).
				Str("tenant_id", r.TenantID).
				Str("reservation_id", r.ID).
				Msg("reminder delivery failed")
			continue
		}

		if err := s.store.MarkReminderSent(ctx, r.TenantID, r.ID); err != nil {
			metrics.IncReminder("mark_failed")
			s.logger.Error().Err(err).
				Str("reservation_id", r.ID).
				Msg("failed to mark reminder sent")
			continue
		}
		metrics.IncReminder("sent")
	}

	return nil
}
