package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"pawresort/internal/booking"
	"pawresort/internal/metrics"
	"pawresort/internal/model"
	"pawresort/internal/store"
	"pawresort/internal/tenant"
)

// ValidateBookingRequest is the request body for POST /api/bookings/validate.
// SessionID is optional: absent starts a new booking session.
type ValidateBookingRequest struct {
	SessionID         string            `json:"sessionId,omitempty"`
	Pets              []booking.Pet     `json:"pets"`
	ServiceCategory   string            `json:"serviceCategory"`
	ServiceName       string            `json:"serviceName,omitempty"`
	StartDate         string            `json:"startDate"`
	EndDate           string            `json:"endDate"`
	Assignments       map[string]string `json:"assignments"` // pet id -> resource id or "AUTO"
	EditReservationID string            `json:"editReservationId,omitempty"`
}

// ValidateBookingResponse carries the verdict plus the session handle the
// client uses for subsequent validation attempts and submission.
type ValidateBookingResponse struct {
	SessionID string                    `json:"sessionId"`
	State     booking.State             `json:"state"`
	Result    *booking.ValidationResult `json:"result"`
}

// CreateReservationRequest is the request body for POST /api/reservations.
type CreateReservationRequest struct {
	SessionID       string  `json:"sessionId,omitempty"`
	ResourceID      *string `json:"resourceId,omitempty"` // nil: auto-assign pending
	PetID           string  `json:"petId"`
	CustomerID      string  `json:"customerId"`
	ServiceName     string  `json:"serviceName"`
	ServiceCategory string  `json:"serviceCategory"`
	StartDate       string  `json:"startDate"`
	EndDate         string  `json:"endDate"`
	Notes           string  `json:"notes,omitempty"`
}

// UpdateReservationRequest is the request body for PUT /api/reservations/{id}.
type UpdateReservationRequest struct {
	ResourceID *string `json:"resourceId,omitempty"`
	StartDate  string  `json:"startDate"`
	EndDate    string  `json:"endDate"`
}

// handleValidateBooking runs the multi-pet assignment validator against a
// booking draft. POST /api/bookings/validate
func (s *HTTPServer) handleValidateBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("booking_validate")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req ValidateBookingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	tenantID, err := tenant.IDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "tenant key required")
		return
	}

	session := s.sessions.Get(req.SessionID)
	if session == nil {
		session = s.sessions.Create()
	}

	draft := booking.Draft{
		Pets:              req.Pets,
		ServiceCategory:   model.ServiceCategory(req.ServiceCategory),
		ServiceName:       req.ServiceName,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		Assignments:       req.Assignments,
		EditReservationID: req.EditReservationID,
	}
	if err := s.fsm.ApplyDraft(session, draft); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.validator.Validate(r.Context(), tenantID, &draft)
	if err != nil {
		s.writeCheckError(w, err)
		return
	}

	s.fsm.RecordVerdict(session, result.Valid)
	if result.Valid {
		metrics.IncAssignmentValidation("valid")
	} else {
		metrics.IncAssignmentValidation("invalid")
	}

	writeJSON(w, http.StatusOK, ValidateBookingResponse{
		SessionID: session.ID,
		State:     session.GetState(),
		Result:    result,
	})
}

// handleCreateReservation persists a reservation. The insert re-validates
// non-overlap inside a transaction; the availability endpoints are advisory.
// POST /api/reservations
func (s *HTTPServer) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservation_create")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req CreateReservationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	tenantID, err := tenant.IDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "tenant key required")
		return
	}

	if req.PetID == "" || req.CustomerID == "" || req.ServiceName == "" {
		writeError(w, http.StatusBadRequest, "petId, customerId and serviceName are required")
		return
	}
	category := model.ServiceCategory(req.ServiceCategory)
	if !category.Valid() {
		writeError(w, http.StatusBadRequest, "unknown service category")
		return
	}
	start, end, err := parseStayRange(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if category.RequiresAssignment() && req.ResourceID != nil && *req.ResourceID == "" {
		writeError(w, http.StatusBadRequest, "resourceId must be a resource id or omitted for auto-assign")
		return
	}

	// A session handle, when supplied, must have passed validation.
	if req.SessionID != "" {
		session := s.sessions.Get(req.SessionID)
		if session == nil {
			writeError(w, http.StatusBadRequest, "unknown or expired booking session")
			return
		}
		if err := s.fsm.Submit(session); err != nil && !errors.Is(err, booking.ErrSessionSubmitted) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
	}

	created, err := s.reservations.CreateReservation(r.Context(), store.CreateReservationParams{
		TenantID:        tenantID,
		ResourceID:      req.ResourceID,
		PetID:           req.PetID,
		CustomerID:      req.CustomerID,
		ServiceName:     req.ServiceName,
		ServiceCategory: category,
		StartDate:       start,
		EndDate:         end,
		Status:          model.StatusPending,
		Notes:           req.Notes,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			metrics.IncWriteConflict()
			writeError(w, http.StatusConflict, "resource is no longer available for the requested dates")
			return
		}
		s.logger.Error().Err(err).Str("tenant_id", tenantID).Msg("create reservation failed")
		writeError(w, http.StatusInternalServerError, "failed to create reservation")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// handleUpdateReservation moves an existing stay. The edited reservation is
// always excluded from its own conflict set. PUT /api/reservations/{id}
func (s *HTTPServer) handleUpdateReservation(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservation_update")

	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use PUT")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/reservations/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "reservation id required")
		return
	}

	var req UpdateReservationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	tenantID, err := tenant.IDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "tenant key required")
		return
	}

	start, end, err := parseStayRange(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.reservations.UpdateStay(r.Context(), store.UpdateStayParams{
		TenantID:      tenantID,
		ReservationID: id,
		ResourceID:    req.ResourceID,
		StartDate:     start,
		EndDate:       end,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "reservation not found")
		case errors.Is(err, store.ErrConflict):
			metrics.IncWriteConflict()
			writeError(w, http.StatusConflict, "resource is not available for the requested dates")
		default:
			s.logger.Error().Err(err).
				Str("tenant_id", tenantID).
				Str("reservation_id", id).
				Msg("update reservation failed")
			writeError(w, http.StatusInternalServerError, "failed to update reservation")
		}
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// parseStayRange parses the stay boundaries, accepting RFC3339 timestamps or
// bare dates. A bare end date extends to the end of that day.
func parseStayRange(startDate, endDate string) (time.Time, time.Time, error) {
	if startDate == "" || endDate == "" {
		return time.Time{}, time.Time{}, errors.New("startDate and endDate are required")
	}

	start, err := parseStamp(startDate, false)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid startDate; expected ISO8601 or YYYY-MM-DD")
	}
	end, err := parseStamp(endDate, true)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid endDate; expected ISO8601 or YYYY-MM-DD")
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, errors.New("startDate must be before or equal to endDate")
	}
	return start, end, nil
}

func parseStamp(s string, endOfDay bool) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	dayStart, dayEnd := model.DayBounds(d)
	if endOfDay {
		return dayEnd, nil
	}
	return dayStart, nil
}
