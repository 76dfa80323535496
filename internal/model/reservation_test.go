package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func datetime(year int, month time.Month, d, hour, min int) time.Time {
	return time.Date(year, month, d, hour, min, 0, 0, time.UTC)
}

func TestDateRangeOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{
			name:   "disjoint before",
			aStart: day(2025, 11, 1), aEnd: day(2025, 11, 3),
			bStart: day(2025, 11, 5), bEnd: day(2025, 11, 7),
			want:   false,
		},
		{
			name:   "disjoint after",
			aStart: day(2025, 11, 10), aEnd: day(2025, 11, 12),
			bStart: day(2025, 11, 5), bEnd: day(2025, 11, 7),
			want:   false,
		},
		{
			name:   "back-to-back days conflict",
			aStart: day(2025, 11, 1), aEnd: day(2025, 11, 2),
			bStart: day(2025, 11, 2), bEnd: day(2025, 11, 3),
			want:   true,
		},
		{
			name:   "partial overlap",
			aStart: day(2025, 11, 10), aEnd: day(2025, 11, 12),
			bStart: day(2025, 11, 11), bEnd: day(2025, 11, 13),
			want:   true,
		},
		{
			name:   "contained",
			aStart: day(2025, 11, 10), aEnd: day(2025, 11, 20),
			bStart: day(2025, 11, 12), bEnd: day(2025, 11, 14),
			want:   true,
		},
		{
			name:   "identical",
			aStart: day(2025, 11, 10), aEnd: day(2025, 11, 12),
			bStart: day(2025, 11, 10), bEnd: day(2025, 11, 12),
			want:   true,
		},
		{
			name:   "zero-duration vs covering range",
			aStart: day(2025, 11, 10), aEnd: day(2025, 11, 10),
			bStart: day(2025, 11, 9), bEnd: day(2025, 11, 11),
			want:   true,
		},
		{
			name:   "zero-duration on boundary",
			aStart: day(2025, 11, 10), aEnd: day(2025, 11, 10),
			bStart: day(2025, 11, 10), bEnd: day(2025, 11, 12),
			want:   true,
		},
		{
			name:   "two equal zero-duration instants",
			aStart: day(2025, 11, 10), aEnd: day(2025, 11, 10),
			bStart: day(2025, 11, 10), bEnd: day(2025, 11, 10),
			want:   true,
		},
		{
			name:   "full timestamps across day boundary",
			aStart: datetime(2025, 11, 10, 22, 0), aEnd: datetime(2025, 11, 11, 2, 0),
			bStart: datetime(2025, 11, 11, 1, 0), bEnd: datetime(2025, 11, 11, 8, 0),
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DateRangeOverlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd)
			assert.Equal(t, tt.want, got)

			// Symmetry is part of the contract.
			assert.Equal(t, tt.want, DateRangeOverlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestTimeSlotOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{
			name:   "back-to-back slots do not conflict",
			aStart: datetime(2025, 11, 10, 10, 0), aEnd: datetime(2025, 11, 10, 11, 0),
			bStart: datetime(2025, 11, 10, 11, 0), bEnd: datetime(2025, 11, 10, 12, 0),
			want:   false,
		},
		{
			name:   "one minute of overlap",
			aStart: datetime(2025, 11, 10, 10, 0), aEnd: datetime(2025, 11, 10, 11, 1),
			bStart: datetime(2025, 11, 10, 11, 0), bEnd: datetime(2025, 11, 10, 12, 0),
			want:   true,
		},
		{
			name:   "contained slot",
			aStart: datetime(2025, 11, 10, 10, 0), aEnd: datetime(2025, 11, 10, 14, 0),
			bStart: datetime(2025, 11, 10, 11, 0), bEnd: datetime(2025, 11, 10, 12, 0),
			want:   true,
		},
		{
			name:   "disjoint",
			aStart: datetime(2025, 11, 10, 8, 0), aEnd: datetime(2025, 11, 10, 9, 0),
			bStart: datetime(2025, 11, 10, 11, 0), bEnd: datetime(2025, 11, 10, 12, 0),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TimeSlotOverlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, TimeSlotOverlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestStatusIsOccupying(t *testing.T) {
	occupying := []Status{StatusPending, StatusConfirmed, StatusCheckedIn, StatusPendingPayment, StatusPartiallyPaid}
	for _, s := range occupying {
		assert.True(t, s.IsOccupying(), "status %s should occupy", s)
	}

	terminal := []Status{StatusCancelled, StatusCompleted, StatusCheckedOut, StatusNoShow}
	for _, s := range terminal {
		assert.False(t, s.IsOccupying(), "status %s should not occupy", s)
	}
}

func TestReservationContainsDate(t *testing.T) {
	r := Reservation{
		StartDate: datetime(2025, 11, 10, 14, 0),
		EndDate:   datetime(2025, 11, 12, 11, 0),
	}

	assert.True(t, r.ContainsDate(day(2025, 11, 10)))
	assert.True(t, r.ContainsDate(day(2025, 11, 11)))
	assert.True(t, r.ContainsDate(day(2025, 11, 12)))
	assert.False(t, r.ContainsDate(day(2025, 11, 9)))
	assert.False(t, r.ContainsDate(day(2025, 11, 13)))
}

func TestDayBounds(t *testing.T) {
	start, end := DayBounds(datetime(2025, 11, 10, 15, 30))

	assert.Equal(t, day(2025, 11, 10), start)
	assert.Equal(t, time.Date(2025, 11, 10, 23, 59, 59, 999999999, time.UTC), end)
}

func TestServiceCategoryRequiresAssignment(t *testing.T) {
	assert.True(t, ServiceBoarding.RequiresAssignment())
	assert.True(t, ServiceDaycare.RequiresAssignment())
	assert.False(t, ServiceGrooming.RequiresAssignment())
	assert.False(t, ServiceTraining.RequiresAssignment())
}
