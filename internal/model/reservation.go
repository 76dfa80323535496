package model

import "time"

// Status is the lifecycle status of a reservation.
type Status string

const (
	StatusPending        Status = "PENDING"
	StatusConfirmed      Status = "CONFIRMED"
	StatusCheckedIn      Status = "CHECKED_IN"
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusPartiallyPaid  Status = "PARTIALLY_PAID"
	StatusCancelled      Status = "CANCELLED"
	StatusCompleted      Status = "COMPLETED"
	StatusCheckedOut     Status = "CHECKED_OUT"
	StatusNoShow         Status = "NO_SHOW"
)

// OccupyingStatuses is the canonical set of statuses that count toward
// conflict detection. Terminal statuses never occupy a resource.
var OccupyingStatuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusCheckedIn,
	StatusPendingPayment,
	StatusPartiallyPaid,
}

// IsOccupying reports whether a reservation in this status occupies its resource.
func (s Status) IsOccupying() bool {
	for _, o := range OccupyingStatuses {
		if s == o {
			return true
		}
	}
	return false
}

// Reservation represents a pet stay or appointment booked against a resource.
type Reservation struct {
	ID              string          `json:"id" db:"id"`
	TenantID        string          `json:"tenant_id" db:"tenant_id"`
	ResourceID      *string         `json:"resource_id,omitempty" db:"resource_id"` // nil: auto-assign pending
	PetID           string          `json:"pet_id" db:"pet_id"`
	CustomerID      string          `json:"customer_id" db:"customer_id"`
	ServiceName     string          `json:"service_name" db:"service_name"`
	ServiceCategory ServiceCategory `json:"service_category" db:"service_category"`
	StartDate       time.Time       `json:"start_date" db:"start_date"`
	EndDate         time.Time       `json:"end_date" db:"end_date"`
	Status          Status          `json:"status" db:"status"`
	Notes           string          `json:"notes,omitempty" db:"notes"`
	ReminderSentAt  *time.Time      `json:"reminder_sent_at,omitempty" db:"reminder_sent_at"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// ReservationSummary is the denormalized view returned by availability checks.
// It carries enough detail for the caller to render a conflict message
// without a second round trip.
type ReservationSummary struct {
	ID           string    `json:"id" db:"id"`
	StartDate    time.Time `json:"start_date" db:"start_date"`
	EndDate      time.Time `json:"end_date" db:"end_date"`
	Status       Status    `json:"status" db:"status"`
	CustomerName string    `json:"customer_name" db:"customer_name"`
	PetName      string    `json:"pet_name" db:"pet_name"`
	ServiceName  string    `json:"service_name" db:"service_name"`
}

// DateRangeOverlaps reports whether two date ranges conflict under the
// inclusive-boundary convention used for day-granularity kennel stays:
// a checkout day and a checkin day on the same calendar date conflict.
// Callers validate start <= end.
func DateRangeOverlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// TimeSlotOverlaps reports whether two intraday slots conflict. Touching
// boundaries do not overlap: [10:00,11:00) and [11:00,12:00) are compatible.
// Used for grooming/training appointment slots, never for kennel stays.
func TimeSlotOverlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// OverlapsRange reports whether the reservation's stay conflicts with
// [start, end] under day-range semantics.
func (r *Reservation) OverlapsRange(start, end time.Time) bool {
	return DateRangeOverlaps(r.StartDate, r.EndDate, start, end)
}

// ContainsDate reports whether the stay covers a calendar date,
// ignoring the time of day.
func (r *Reservation) ContainsDate(date time.Time) bool {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	startOnly := time.Date(r.StartDate.Year(), r.StartDate.Month(), r.StartDate.Day(), 0, 0, 0, 0, r.StartDate.Location())
	endOnly := time.Date(r.EndDate.Year(), r.EndDate.Month(), r.EndDate.Day(), 0, 0, 0, 0, r.EndDate.Location())

	return !dateOnly.Before(startOnly) && !dateOnly.After(endOnly)
}

// IsMultiDay reports whether the stay spans more than one calendar date.
func (r *Reservation) IsMultiDay() bool {
	return !r.StartDate.Truncate(24 * time.Hour).Equal(r.EndDate.Truncate(24 * time.Hour))
}

// DayBounds expands a calendar date to the full-day interval
// [00:00:00, 23:59:59.999999999] in UTC.
func DayBounds(date time.Time) (start, end time.Time) {
	start = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	end = start.Add(24*time.Hour - time.Nanosecond)
	return start, end
}
