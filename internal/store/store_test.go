package store

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/trajectory.report/internal/testutil"
	"github.com/banshee-data/trajectory.report/internal/timeutil"
	"github.com/banshee-data/trajectory.report/internal/trajectory"
)

// setupTestStore opens a migrated store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMigrated(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	s.SetClock(timeutil.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestImportAndLoad(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	tr := testutil.Leg{ID: "a1b2c3", Start: 1676665124, Samples: 5, Step: 10, Lat: 30, Lon: -91, DLon: 0.01, Velocity: 120, Climb: 50, Heading: 90}.Trajectory(t)

	f, err := s.Import(ctx, tr, "flights.csv")
	require.NoError(t, err)
	assert.Equal(t, "a1b2c3", f.Icao24)
	assert.Equal(t, 5, f.Samples)
	assert.Equal(t, 40.0, f.Duration())
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), f.Imported())
	assert.Len(t, f.Quantities, 6)

	got, err := s.LoadTrajectory(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)
	if diff := cmp.Diff(tr.Time, got.Time); diff != "" {
		t.Errorf("time mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(tr.Columns, got.Columns, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}

	stored, err := s.GetFlight(ctx, f.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(f, stored); diff != "" {
		t.Errorf("flight mismatch (-want +got):\n%s", diff)
	}
}

func TestImportKeepsMissingValuesAndColumns(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	tr, err := trajectory.New("gap", []float64{0, 10, 20}, map[string][]float64{
		"lat": {30, math.NaN(), 30.2},
		"lon": {-91, -90.9, -90.8},
	})
	require.NoError(t, err)

	f, err := s.Import(ctx, tr, "")
	require.NoError(t, err)
	assert.Equal(t, []trajectory.Quantity{trajectory.Lat, trajectory.Lon}, f.Quantities)

	got, err := s.LoadTrajectory(ctx, f.ID)
	require.NoError(t, err)
	assert.Len(t, got.Columns, 2)
	assert.True(t, math.IsNaN(got.Columns["lat"][1]))
	assert.False(t, got.Has(trajectory.Velocity))
}

func TestImportRejectsInvalid(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.Import(context.Background(), trajectory.Trajectory{ID: "x", Time: []float64{1}}, "")
	assert.ErrorIs(t, err, trajectory.ErrInvalidInput)
}

func TestListAndDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	flights, err := s.ImportAll(ctx, testutil.Bundle(t, 3, 0.01), "bundle.csv")
	require.NoError(t, err)
	require.Len(t, flights, 3)

	list, err := s.ListFlights(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, f := range list {
		assert.Equal(t, flights[i].ID, f.ID, "ordered by start time")
	}

	require.NoError(t, s.DeleteFlight(ctx, flights[1].ID))
	list, err = s.ListFlights(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	err = s.DeleteFlight(ctx, flights[1].ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.LoadTrajectory(ctx, flights[1].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadTrajectories(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	flights, err := s.ImportAll(ctx, testutil.Bundle(t, 2, 0.01), "")
	require.NoError(t, err)

	ts, err := s.LoadTrajectories(ctx, []string{flights[1].ID, flights[0].ID})
	require.NoError(t, err)
	require.Len(t, ts, 2)
	assert.Equal(t, flights[1].ID, ts[0].ID)

	_, err = s.LoadTrajectories(ctx, []string{flights[0].ID, "missing"})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPing(t *testing.T) {
	s := setupTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestCheckpointThenReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.db")
	s, err := OpenMigrated(path)
	require.NoError(t, err)
	_, err = s.ImportAll(context.Background(), testutil.Bundle(t, 2, 0.01), "bundle.csv")
	require.NoError(t, err)
	require.NoError(t, s.Checkpoint())
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	flights, err := s.ListFlights(context.Background())
	require.NoError(t, err)
	assert.Len(t, flights, 2)
}
