package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pawresort/internal/model"
	"pawresort/internal/store"
)

// fakeFinder serves canned reservations, applying the same narrowing the
// real store does: tenant, resource set, status, window, exclusion.
type fakeFinder struct {
	rows  []fakeRow
	err   error
	calls int
}

type fakeRow struct {
	store.OccupyingReservation
	TenantID string
}

func (f *fakeFinder) FindReservations(_ context.Context, p store.FindReservationsParams) ([]store.OccupyingReservation, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	inSet := func(id string) bool {
		for _, rid := range p.ResourceIDs {
			if rid == id {
				return true
			}
		}
		return false
	}

	var out []store.OccupyingReservation
	for _, row := range f.rows {
		if row.TenantID != p.TenantID {
			continue
		}
		if !inSet(row.ResourceID) {
			continue
		}
		if p.ExcludeID != "" && row.ID == p.ExcludeID {
			continue
		}
		if !row.Status.IsOccupying() {
			continue
		}
		if !model.DateRangeOverlaps(row.StartDate, row.EndDate, p.Start, p.End) {
			continue
		}
		out = append(out, row.OccupyingReservation)
	}
	return out, nil
}

func row(tenantID, resourceID, id string, start, end time.Time, status model.Status) fakeRow {
	return fakeRow{
		TenantID: tenantID,
		OccupyingReservation: store.OccupyingReservation{
			ResourceID: resourceID,
			ReservationSummary: model.ReservationSummary{
				ID:           id,
				StartDate:    start,
				EndDate:      end,
				Status:       status,
				CustomerName: "Dana Whitfield",
				PetName:      "Biscuit",
				ServiceName:  "Boarding - Standard",
			},
		},
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newEngine(f *fakeFinder) *Engine {
	return NewEngine(f, zerolog.Nop())
}

func TestCheckResource_ConflictAndSelfExclusion(t *testing.T) {
	finder := &fakeFinder{rows: []fakeRow{
		row("t1", "A01", "R1", day(2025, 11, 10), day(2025, 11, 12), model.StatusConfirmed),
	}}
	engine := newEngine(finder)

	// Overlapping query sees the conflict.
	result, err := engine.CheckResource(context.Background(), "t1", CheckRequest{
		ResourceID: "A01",
		StartDate:  "2025-11-11",
		EndDate:    "2025-11-13",
	})
	require.NoError(t, err)
	assert.False(t, result.IsAvailable)
	require.Len(t, result.OccupyingReservations, 1)
	assert.Equal(t, "R1", result.OccupyingReservations[0].ID)
	assert.Equal(t, "Biscuit", result.OccupyingReservations[0].PetName)

	// The same query excluding the reservation itself is clean.
	result, err = engine.CheckResource(context.Background(), "t1", CheckRequest{
		ResourceID:           "A01",
		StartDate:            "2025-11-11",
		EndDate:              "2025-11-13",
		ExcludeReservationID: "R1",
	})
	require.NoError(t, err)
	assert.True(t, result.IsAvailable)
	assert.Empty(t, result.OccupyingReservations)
}

func TestCheckResource_SelfWindowWithExclusion(t *testing.T) {
	finder := &fakeFinder{rows: []fakeRow{
		row("t1", "A01", "R1", day(2025, 11, 10), day(2025, 11, 12), model.StatusConfirmed),
	}}
	engine := newEngine(finder)

	// Checking a reservation's own window with self-exclusion is available.
	result, err := engine.CheckResource(context.Background(), "t1", CheckRequest{
		ResourceID:           "A01",
		StartDate:            "2025-11-10",
		EndDate:              "2025-11-12",
		ExcludeReservationID: "R1",
	})
	require.NoError(t, err)
	assert.True(t, result.IsAvailable)
}

func TestCheckResource_TerminalStatusesDoNotOccupy(t *testing.T) {
	finder := &fakeFinder{rows: []fakeRow{
		row("t1", "A01", "R1", day(2025, 11, 10), day(2025, 11, 12), model.StatusCancelled),
		row("t1", "A01", "R2", day(2025, 11, 10), day(2025, 11, 12), model.StatusCheckedOut),
		row("t1", "A01", "R3", day(2025, 11, 10), day(2025, 11, 12), model.StatusPendingPayment),
	}}
	engine := newEngine(finder)

	result, err := engine.CheckResource(context.Background(), "t1", CheckRequest{
		ResourceID: "A01",
		Date:       "2025-11-11",
	})
	require.NoError(t, err)
	assert.False(t, result.IsAvailable)
	require.Len(t, result.OccupyingReservations, 1)
	assert.Equal(t, "R3", result.OccupyingReservations[0].ID)
}

func TestCheckResource_TenantIsolation(t *testing.T) {
	// Same resource id seeded under two tenants.
	finder := &fakeFinder{rows: []fakeRow{
		row("t1", "A01", "R1", day(2025, 11, 10), day(2025, 11, 12), model.StatusConfirmed),
	}}
	engine := newEngine(finder)

	result, err := engine.CheckResource(context.Background(), "t2", CheckRequest{
		ResourceID: "A01",
		Date:       "2025-11-11",
	})
	require.NoError(t, err)
	assert.True(t, result.IsAvailable, "tenant t2 must not see tenant t1 reservations")
}

func TestCheckResource_InvalidInput(t *testing.T) {
	engine := newEngine(&fakeFinder{})

	tests := []struct {
		name string
		req  CheckRequest
	}{
		{"missing resource id", CheckRequest{Date: "2025-11-11"}},
		{"no date at all", CheckRequest{ResourceID: "A01"}},
		{"only start date", CheckRequest{ResourceID: "A01", StartDate: "2025-11-11"}},
		{"bad date", CheckRequest{ResourceID: "A01", Date: "11/11/2025"}},
		{"bad end date", CheckRequest{ResourceID: "A01", StartDate: "2025-11-11", EndDate: "nope"}},
		{"start after end", CheckRequest{ResourceID: "A01", StartDate: "2025-11-13", EndDate: "2025-11-11"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.CheckResource(context.Background(), "t1", tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestCheckResource_StorageErrorNeverReportsAvailable(t *testing.T) {
	finder := &fakeFinder{err: errors.New("connection reset")}
	engine := newEngine(finder)

	result, err := engine.CheckResource(context.Background(), "t1", CheckRequest{
		ResourceID: "A01",
		Date:       "2025-11-11",
	})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrCheckFailed)
}

func TestCheckResource_CanceledContext(t *testing.T) {
	finder := &fakeFinder{err: context.Canceled}
	engine := newEngine(finder)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.CheckResource(ctx, "t1", CheckRequest{ResourceID: "A01", Date: "2025-11-11"})
	assert.ErrorIs(t, err, ErrCheckCanceled)
	assert.NotErrorIs(t, err, ErrCheckFailed)
}

func TestCheckResources_SingleQueryAndOrder(t *testing.T) {
	finder := &fakeFinder{rows: []fakeRow{
		row("t1", "A02", "R1", day(2025, 11, 10), day(2025, 11, 12), model.StatusConfirmed),
	}}
	engine := newEngine(finder)

	result, err := engine.CheckResources(context.Background(), "t1", BatchRequest{
		ResourceIDs: []string{"A01", "A02", "A03"},
		StartDate:   "2025-11-11",
		EndDate:     "2025-11-13",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, finder.calls, "batch must issue exactly one query")
	assert.False(t, result.Degraded)

	require.Len(t, result.Resources, 3)
	assert.Equal(t, "A01", result.Resources[0].ResourceID)
	assert.Equal(t, "A02", result.Resources[1].ResourceID)
	assert.Equal(t, "A03", result.Resources[2].ResourceID)

	assert.True(t, result.Resources[0].IsAvailable)
	assert.Empty(t, result.Resources[0].OccupyingReservations)
	assert.False(t, result.Resources[1].IsAvailable)
	require.Len(t, result.Resources[1].OccupyingReservations, 1)
	assert.True(t, result.Resources[2].IsAvailable)
}

func TestCheckResources_MatchesSinglePointwise(t *testing.T) {
	finder := &fakeFinder{rows: []fakeRow{
		row("t1", "A01", "R1", day(2025, 11, 10), day(2025, 11, 12), model.StatusConfirmed),
		row("t1", "A02", "R2", day(2025, 11, 1), day(2025, 11, 5), model.StatusPending),
		row("t1", "A03", "R3", day(2025, 11, 12), day(2025, 11, 14), model.StatusCheckedIn),
	}}
	engine := newEngine(finder)

	ids := []string{"A01", "A02", "A03", "A04"}
	batch, err := engine.CheckResources(context.Background(), "t1", BatchRequest{
		ResourceIDs: ids,
		StartDate:   "2025-11-11",
		EndDate:     "2025-11-13",
	})
	require.NoError(t, err)

	for i, id := range ids {
		single, err := engine.CheckResource(context.Background(), "t1", CheckRequest{
			ResourceID: id,
			StartDate:  "2025-11-11",
			EndDate:    "2025-11-13",
		})
		require.NoError(t, err)
		assert.Equal(t, single.IsAvailable, batch.Resources[i].IsAvailable, "resource %s", id)
		assert.Equal(t, single.OccupyingReservations, batch.Resources[i].OccupyingReservations, "resource %s", id)
	}
}

func TestCheckResources_EmptyListRejected(t *testing.T) {
	engine := newEngine(&fakeFinder{})

	_, err := engine.CheckResources(context.Background(), "t1", BatchRequest{Date: "2025-11-11"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCheckResources_DegradedOnStorageFailure(t *testing.T) {
	finder := &fakeFinder{err: errors.New("relation does not exist")}
	engine := newEngine(finder)

	result, err := engine.CheckResources(context.Background(), "t1", BatchRequest{
		ResourceIDs: []string{"A01", "A02"},
		Date:        "2025-11-11",
	})
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	require.Len(t, result.Resources, 2)
	for _, res := range result.Resources {
		assert.True(t, res.IsAvailable)
		assert.Empty(t, res.OccupyingReservations)
	}
}

func TestCheckResources_CanceledContextIsNotDegraded(t *testing.T) {
	finder := &fakeFinder{err: context.DeadlineExceeded}
	engine := newEngine(finder)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := engine.CheckResources(ctx, "t1", BatchRequest{
		ResourceIDs: []string{"A01"},
		Date:        "2025-11-11",
	})
	assert.ErrorIs(t, err, ErrCheckCanceled)
}

func TestCheckResource_Idempotent(t *testing.T) {
	finder := &fakeFinder{rows: []fakeRow{
		row("t1", "A01", "R1", day(2025, 11, 10), day(2025, 11, 12), model.StatusConfirmed),
	}}
	engine := newEngine(finder)

	req := CheckRequest{ResourceID: "A01", StartDate: "2025-11-11", EndDate: "2025-11-13"}
	first, err := engine.CheckResource(context.Background(), "t1", req)
	require.NoError(t, err)
	second, err := engine.CheckResource(context.Background(), "t1", req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCheckResource_MissingTenant(t *testing.T) {
	engine := newEngine(&fakeFinder{})

	_, err := engine.CheckResource(context.Background(), "", CheckRequest{ResourceID: "A01", Date: "2025-11-11"})
	assert.Error(t, err)
}

func TestResolveWindow_DayExpansion(t *testing.T) {
	start, end, err := resolveWindow("2025-11-11", "", "")
	require.NoError(t, err)
	assert.Equal(t, day(2025, 11, 11), start)
	assert.Equal(t, time.Date(2025, 11, 11, 23, 59, 59, 999999999, time.UTC), end)
}

func TestResolveWindow_RFC3339(t *testing.T) {
	start, end, err := resolveWindow("", "2025-11-11T10:00:00Z", "2025-11-11T12:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 11, 11, 10, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 11, 11, 12, 30, 0, 0, time.UTC), end)
}
