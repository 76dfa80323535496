package api

import (
	"errors"
	"net/http"

	"pawresort/internal/availability"
	"pawresort/internal/metrics"
	"pawresort/internal/tenant"
)

// CheckAvailabilityRequest is the request body for POST /api/availability/check.
type CheckAvailabilityRequest struct {
	ResourceID           string `json:"resourceId"`
	Date                 string `json:"date,omitempty"`      // YYYY-MM-DD
	StartDate            string `json:"startDate,omitempty"` // ISO8601 or YYYY-MM-DD
	EndDate              string `json:"endDate,omitempty"`
	ExcludeReservationID string `json:"excludeReservationId,omitempty"`
}

// BatchAvailabilityRequest is the request body for POST /api/availability/batch.
type BatchAvailabilityRequest struct {
	ResourceIDs          []string `json:"resourceIds"`
	Date                 string   `json:"date,omitempty"`
	StartDate            string   `json:"startDate,omitempty"`
	EndDate              string   `json:"endDate,omitempty"`
	ExcludeReservationID string   `json:"excludeReservationId,omitempty"`
}

// handleCheckAvailability answers a single-resource availability query.
// POST /api/availability/check
func (s *HTTPServer) handleCheckAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability_check")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req CheckAvailabilityRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	tenantID, err := tenant.IDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "tenant key required")
		return
	}

	result, err := s.engine.CheckResource(r.Context(), tenantID, availability.CheckRequest{
		ResourceID:           req.ResourceID,
		Date:                 req.Date,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		ExcludeReservationID: req.ExcludeReservationID,
	})
	if err != nil {
		metrics.IncAvailabilityCheck("single", "error")
		s.writeCheckError(w, err)
		return
	}

	if result.IsAvailable {
		metrics.IncAvailabilityCheck("single", "available")
	} else {
		metrics.IncAvailabilityCheck("single", "conflict")
	}
	writeJSON(w, http.StatusOK, result)
}

// handleBatchAvailability answers a multi-resource availability query in one
// round trip. POST /api/availability/batch
func (s *HTTPServer) handleBatchAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability_batch")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req BatchAvailabilityRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.ResourceIDs) > s.maxBatch {
		writeError(w, http.StatusBadRequest, "too many resources in one batch")
		return
	}

	tenantID, err := tenant.IDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "tenant key required")
		return
	}

	result, err := s.engine.CheckResources(r.Context(), tenantID, availability.BatchRequest{
		ResourceIDs:          req.ResourceIDs,
		Date:                 req.Date,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		ExcludeReservationID: req.ExcludeReservationID,
	})
	if err != nil {
		metrics.IncAvailabilityCheck("batch", "error")
		s.writeCheckError(w, err)
		return
	}

	if result.Degraded {
		metrics.IncBatchDegraded()
		metrics.IncAvailabilityCheck("batch", "degraded")
	} else {
		metrics.IncAvailabilityCheck("batch", "ok")
	}
	writeJSON(w, http.StatusOK, result)
}

// writeCheckError maps engine errors onto HTTP statuses. Storage failures
// are 500s with a generic message; the detail is in the server log.
func (s *HTTPServer) writeCheckError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, availability.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, tenant.ErrNoTenant):
		writeError(w, http.StatusUnauthorized, "tenant key required")
	case errors.Is(err, availability.ErrCheckCanceled):
		writeError(w, statusClientClosedRequest, "request canceled")
	case errors.Is(err, availability.ErrCheckFailed):
		writeError(w, http.StatusInternalServerError, "availability check failed")
	default:
		s.logger.Error().Err(err).Msg("unexpected availability error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
