// Package availability implements single and batch resource availability
// checks. It is the only place that decides whether a reservation conflicts
// with a requested window; call sites never re-implement overlap logic.
package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"pawresort/internal/model"
	"pawresort/internal/store"
	"pawresort/internal/tenant"
)

var (
	// ErrInvalidInput marks a malformed request: missing date range, bad
	// date strings, or an empty resource list.
	ErrInvalidInput = errors.New("invalid availability request")

	// ErrCheckFailed marks a storage failure on a single check. It is never
	// converted into an "available" result.
	ErrCheckFailed = errors.New("availability check failed")

	// ErrCheckCanceled marks a caller-side cancellation or deadline, distinct
	// from a storage failure.
	ErrCheckCanceled = errors.New("availability check canceled")
)

// ConflictFinder is the single storage method the engine needs.
type ConflictFinder interface {
	FindReservations(ctx context.Context, p store.FindReservationsParams) ([]store.OccupyingReservation, error)
}

// CheckRequest asks whether one resource is free. Either Date (YYYY-MM-DD,
// expanded to the full day) or both StartDate and EndDate must be set.
type CheckRequest struct {
	ResourceID           string
	Date                 string
	StartDate            string
	EndDate              string
	ExcludeReservationID string
}

// BatchRequest asks about several resources over one window in a single
// round trip.
type BatchRequest struct {
	ResourceIDs          []string
	Date                 string
	StartDate            string
	EndDate              string
	ExcludeReservationID string
}

// Result is the outcome of a single-resource check.
type Result struct {
	IsAvailable           bool                       `json:"isAvailable"`
	OccupyingReservations []model.ReservationSummary `json:"occupyingReservations"`
}

// ResourceResult is one entry of a batch outcome.
type ResourceResult struct {
	ResourceID            string                     `json:"resourceId"`
	IsAvailable           bool                       `json:"isAvailable"`
	OccupyingReservations []model.ReservationSummary `json:"occupyingReservations"`
}

// BatchResult holds per-resource outcomes in request order. Degraded is set
// when the underlying query failed and the results are a best-effort default,
// not a verified answer.
type BatchResult struct {
	Resources []ResourceResult `json:"resources"`
	Degraded  bool             `json:"degraded,omitempty"`
}

// Engine answers availability queries against the reservation store.
type Engine struct {
	finder ConflictFinder
	logger zerolog.Logger
}

// NewEngine creates an availability engine.
func NewEngine(finder ConflictFinder, logger zerolog.Logger) *Engine {
	return &Engine{finder: finder, logger: logger}
}

// parseStamp accepts RFC3339 timestamps or bare dates. A bare date resolves
// to the start or end of that day depending on which boundary it is.
func parseStamp(s string, endOfDay bool) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	start, end := model.DayBounds(d)
	if endOfDay {
		return end, nil
	}
	return start, nil
}

// Window resolves the request's date fields into a concrete [start, end]
// interval. A single date expands to the whole day.
func resolveWindow(date, startDate, endDate string) (time.Time, time.Time, error) {
	switch {
	case date != "":
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrInvalidInput, date)
		}
		start, end := model.DayBounds(d)
		return start, end, nil

	case startDate != "" && endDate != "":
		start, err := parseStamp(startDate, false)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid startDate %q", ErrInvalidInput, startDate)
		}
		end, err := parseStamp(endDate, true)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid endDate %q", ErrInvalidInput, endDate)
		}
		if start.After(end) {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: startDate after endDate", ErrInvalidInput)
		}
		return start, end, nil

	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: either date or both startDate and endDate are required", ErrInvalidInput)
	}
}

// CheckResource reports whether one resource is free over the requested
// window, with the occupying reservations when it is not. Storage failures
// surface as ErrCheckFailed; they are never reported as availability.
func (e *Engine) CheckResource(ctx context.Context, tenantID string, req CheckRequest) (*Result, error) {
	if tenantID == "" {
		return nil, tenant.ErrNoTenant
	}
	if req.ResourceID == "" {
		return nil, fmt.Errorf("%w: resourceId is required", ErrInvalidInput)
	}

	start, end, err := resolveWindow(req.Date, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	rows, err := e.finder.FindReservations(ctx, store.FindReservationsParams{
		TenantID:    tenantID,
		ResourceIDs: []string{req.ResourceID},
		StatusIn:    model.OccupyingStatuses,
		Start:       start,
		End:         end,
		ExcludeID:   req.ExcludeReservationID,
	})
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrCheckCanceled, err)
		}
		e.logger.Error().Err(err).
			Str("tenant_id", tenantID).
			Str("resource_id", req.ResourceID).
			Time("start", start).Time("end", end).
			Msg("single availability check failed")
		return nil, fmt.Errorf("%w: %v", ErrCheckFailed, err)
	}

	occupying := collectOccupying(rows, req.ResourceID, start, end, req.ExcludeReservationID)
	return &Result{
		IsAvailable:           len(occupying) == 0,
		OccupyingReservations: occupying,
	}, nil
}

// CheckResources reports availability for every requested resource using one
// storage query, partitioned in memory. The output always has one entry per
// requested resource, in request order. On total storage failure the batch
// degrades to all-available with Degraded set, so the caller can warn
// instead of presenting false confidence.
func (e *Engine) CheckResources(ctx context.Context, tenantID string, req BatchRequest) (*BatchResult, error) {
	if tenantID == "" {
		return nil, tenant.ErrNoTenant
	}
	if len(req.ResourceIDs) == 0 {
		return nil, fmt.Errorf("%w: resourceIds must not be empty", ErrInvalidInput)
	}
	for _, id := range req.ResourceIDs {
		if id == "" {
			return nil, fmt.Errorf("%w: resourceIds must not contain empty ids", ErrInvalidInput)
		}
	}

	start, end, err := resolveWindow(req.Date, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	rows, err := e.finder.FindReservations(ctx, store.FindReservationsParams{
		TenantID:    tenantID,
		ResourceIDs: req.ResourceIDs,
		StatusIn:    model.OccupyingStatuses,
		Start:       start,
		End:         end,
		ExcludeID:   req.ExcludeReservationID,
	})
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrCheckCanceled, err)
		}
		e.logger.Error().Err(err).
			Str("tenant_id", tenantID).
			Strs("resource_ids", req.ResourceIDs).
			Time("start", start).Time("end", end).
			Msg("batch availability check failed; returning degraded result")

		degraded := make([]ResourceResult, len(req.ResourceIDs))
		for i, id := range req.ResourceIDs {
			degraded[i] = ResourceResult{
				ResourceID:            id,
				IsAvailable:           true,
				OccupyingReservations: []model.ReservationSummary{},
			}
		}
		return &BatchResult{Resources: degraded, Degraded: true}, nil
	}

	results := make([]ResourceResult, len(req.ResourceIDs))
	for i, id := range req.ResourceIDs {
		occupying := collectOccupying(rows, id, start, end, req.ExcludeReservationID)
		results[i] = ResourceResult{
			ResourceID:            id,
			IsAvailable:           len(occupying) == 0,
			OccupyingReservations: occupying,
		}
	}

	return &BatchResult{Resources: results}, nil
}

// collectOccupying filters conflict rows down to one resource, applying the
// overlap predicate and self-exclusion. The store is expected to have
// narrowed already; the engine stays correct over a store that over-fetches.
func collectOccupying(rows []store.OccupyingReservation, resourceID string, start, end time.Time, excludeID string) []model.ReservationSummary {
	occupying := make([]model.ReservationSummary, 0)
	for _, row := range rows {
		if row.ResourceID != resourceID {
			continue
		}
		if excludeID != "" && row.ID == excludeID {
			continue
		}
		if !row.Status.IsOccupying() {
			continue
		}
		if !model.DateRangeOverlaps(row.StartDate, row.EndDate, start, end) {
			continue
		}
		occupying = append(occupying, row.ReservationSummary)
	}
	return occupying
}
