// Package api exposes the availability core over JSON HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"pawresort/internal/availability"
	"pawresort/internal/booking"
	"pawresort/internal/store"
	"pawresort/internal/tenant"
)

// statusClientClosedRequest mirrors nginx's 499 for canceled requests.
const statusClientClosedRequest = 499

// HTTPServer serves the availability and booking API.
type HTTPServer struct {
	engine       *availability.Engine
	validator    *booking.Validator
	sessions     *booking.SessionStore
	fsm          *booking.FSM
	reservations store.ReservationStore
	resources    store.ResourceStore
	tenants      store.TenantStore
	apiKeys      map[string]bool
	maxBatch     int
	logger       zerolog.Logger
	server       *http.Server
}

// Options configures the HTTP server.
type Options struct {
	Port         int
	APIKeys      []string
	MaxBatch     int
	Engine       *availability.Engine
	Validator    *booking.Validator
	Sessions     *booking.SessionStore
	Reservations store.ReservationStore
	Resources    store.ResourceStore
	Tenants      store.TenantStore
	Logger       zerolog.Logger
}

// NewHTTPServer builds the server and its routes.
func NewHTTPServer(opts Options) *HTTPServer {
	keys := make(map[string]bool, len(opts.APIKeys))
	for _, k := range opts.APIKeys {
		keys[k] = true
	}

	s := &HTTPServer{
		engine:       opts.Engine,
		validator:    opts.Validator,
		sessions:     opts.Sessions,
		fsm:          booking.NewFSM(),
		reservations: opts.Reservations,
		resources:    opts.Resources,
		tenants:      opts.Tenants,
		apiKeys:      keys,
		maxBatch:     opts.MaxBatch,
		logger:       opts.Logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/availability/check", s.withTenant(s.handleCheckAvailability))
	mux.HandleFunc("/api/availability/batch", s.withTenant(s.handleBatchAvailability))
	mux.HandleFunc("/api/bookings/validate", s.withTenant(s.handleValidateBooking))
	mux.HandleFunc("/api/reservations", s.withTenant(s.handleCreateReservation))
	mux.HandleFunc("/api/reservations/", s.withTenant(s.handleUpdateReservation))
	mux.HandleFunc("/api/resources", s.withTenant(s.handleListResources))

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// Handler returns the underlying handler, for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until the listener fails or Shutdown is called.
func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("API server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// withTenant authenticates the API key and resolves the tenant before the
// handler runs. A missing or unknown tenant key is a hard 401; there is no
// default tenant fallback.
func (s *HTTPServer) withTenant(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.apiKeys[r.Header.Get("X-Api-Key")] {
			writeError(w, http.StatusUnauthorized, "invalid or missing API key")
			return
		}

		key := r.Header.Get("X-Tenant-Key")
		if key == "" {
			writeError(w, http.StatusUnauthorized, "tenant key required")
			return
		}

		t, err := s.tenants.GetTenantByKey(r.Context(), key)
		if err != nil {
			if err == tenant.ErrTenantNotFound {
				writeError(w, http.StatusUnauthorized, "unknown tenant")
				return
			}
			s.logger.Error().Err(err).Msg("tenant resolution failed")
			writeError(w, http.StatusInternalServerError, "tenant resolution failed")
			return
		}
		if !t.IsActive() {
			writeError(w, http.StatusForbidden, "tenant is not active")
			return
		}

		next(w, r.WithContext(tenant.NewContext(r.Context(), t)))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
