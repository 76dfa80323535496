// Package store provides tenant-scoped access to reservations, resources
// and tenants. The tenant id is a required parameter on every query; there
// is no unscoped path.
package store

import (
	"context"
	"errors"
	"time"

	"pawresort/internal/model"
	"pawresort/internal/tenant"
)

var (
	// ErrNotFound is returned when a record does not exist for the tenant.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a write would double-book a resource.
	ErrConflict = errors.New("reservation conflicts with an existing stay")
)

// OccupyingReservation is a conflict row: a reservation summary plus the
// resource it occupies, so batch results can be partitioned per resource.
type OccupyingReservation struct {
	model.ReservationSummary
	ResourceID string `db:"resource_id"`
}

// FindReservationsParams narrows the candidate conflict set.
// TenantID, ResourceIDs and the [Start, End] window are required.
type FindReservationsParams struct {
	TenantID    string
	ResourceIDs []string
	StatusIn    []model.Status
	Start       time.Time
	End         time.Time
	ExcludeID   string // reservation being edited; empty means no exclusion
}

// CreateReservationParams describes a new reservation. A nil ResourceID
// means auto-assignment is still pending and no conflict lock is taken.
type CreateReservationParams struct {
	TenantID        string
	ResourceID      *string
	PetID           string
	CustomerID      string
	ServiceName     string
	ServiceCategory model.ServiceCategory
	StartDate       time.Time
	EndDate         time.Time
	Status          model.Status
	Notes           string
}

// UpdateStayParams moves an existing reservation to a new resource and/or
// date range. ReservationID is always excluded from the conflict re-check.
type UpdateStayParams struct {
	TenantID      string
	ReservationID string
	ResourceID    *string
	StartDate     time.Time
	EndDate       time.Time
}

// ReservationStore is the storage surface the availability core consumes.
type ReservationStore interface {
	// FindReservations returns occupying reservations overlapping the window,
	// with denormalized customer/pet/service names, in one query.
	FindReservations(ctx context.Context, p FindReservationsParams) ([]OccupyingReservation, error)

	// CreateReservation inserts a reservation, re-validating non-overlap
	// inside a transaction. Returns ErrConflict on a write-time double-booking.
	CreateReservation(ctx context.Context, p CreateReservationParams) (*model.Reservation, error)

	// UpdateStay changes dates/resource of an existing reservation with the
	// same transactional re-check, excluding the reservation itself.
	UpdateStay(ctx context.Context, p UpdateStayParams) (*model.Reservation, error)

	// GetReservation fetches one reservation scoped by tenant.
	GetReservation(ctx context.Context, tenantID, id string) (*model.Reservation, error)
}

// ResourceStore exposes the read-only resource catalog.
type ResourceStore interface {
	ListResources(ctx context.Context, tenantID string) ([]model.Resource, error)
	GetResource(ctx context.Context, tenantID, id string) (*model.Resource, error)
}

// TenantStore resolves tenants from their request key.
type TenantStore interface {
	GetTenantByKey(ctx context.Context, key string) (*tenant.Tenant, error)
}

// ReminderStore is consumed by the check-in reminder scanner.
type ReminderStore interface {
	// FindUpcomingCheckIns returns occupying reservations starting within
	// the duration that have not had a reminder sent, across all tenants.
	FindUpcomingCheckIns(ctx context.Context, within time.Duration) ([]model.Reservation, error)

	// MarkReminderSent records that a reminder went out.
	MarkReminderSent(ctx context.Context, tenantID, reservationID string) error
}
