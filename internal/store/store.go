// Package store persists decoded state vectors in SQLite so flights can be
// imported once and plotted many times. It holds raw input only; resampled
// and aggregated results are always recomputed.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/trajectory.report/internal/monitoring"
	"github.com/banshee-data/trajectory.report/internal/timeutil"
	"github.com/banshee-data/trajectory.report/internal/trajectory"
)

// ErrNotFound is returned when a flight id is not in the store.
var ErrNotFound = errors.New("flight not found")

// storedQuantities are the state-vector columns of the schema, in column
// order.
var storedQuantities = []trajectory.Quantity{
	trajectory.Lat,
	trajectory.Lon,
	trajectory.Velocity,
	trajectory.Heading,
	trajectory.BaroAltitude,
	trajectory.GeoAltitude,
}

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA temp_store=MEMORY",
	"PRAGMA foreign_keys=ON",
}

// Flight is the stored summary of one imported trajectory.
type Flight struct {
	ID         string                `json:"flight_id"`
	Icao24     string                `json:"icao24"`
	Source     string                `json:"source,omitempty"`
	Quantities []trajectory.Quantity `json:"quantities"`
	Samples    int                   `json:"samples"`
	StartUnix  float64               `json:"start_unix"`
	EndUnix    float64               `json:"end_unix"`
	ImportedAt int64                 `json:"imported_at"`
}

// Duration is the flight's time span in seconds.
func (f Flight) Duration() float64 { return f.EndUnix - f.StartUnix }

// Imported is the import time in UTC.
func (f Flight) Imported() time.Time { return time.Unix(f.ImportedAt, 0).UTC() }

// Store is a SQLite state-vector store.
type Store struct {
	db    *sql.DB
	clock timeutil.Clock
}

// Open opens (or creates) the database at path and applies connection
// pragmas. It does not migrate; call MigrateUp.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection serialises writers and keeps per-connection pragmas
	// in force.
	db.SetMaxOpenConns(1)
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", p, err)
		}
	}
	return &Store{db: db, clock: timeutil.RealClock{}}, nil
}

// OpenMigrated opens path and migrates it to the latest schema.
func OpenMigrated(path string) (*Store, error) {
	s, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := s.MigrateUp(Migrations()); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// SetClock replaces the clock used for import timestamps.
func (s *Store) SetClock(c timeutil.Clock) { s.clock = c }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Checkpoint folds the write-ahead log back into the database file so
// the file can be copied on its own.
func (s *Store) Checkpoint() error {
	_, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return err
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Import stores t as a new flight and returns its summary. Non-finite
// values are stored as NULL.
func (s *Store) Import(ctx context.Context, t trajectory.Trajectory, source string) (Flight, error) {
	if err := t.Validate(); err != nil {
		return Flight{}, err
	}
	f := Flight{
		ID:         uuid.New().String(),
		Icao24:     t.ID,
		Source:     source,
		Samples:    t.Len(),
		StartUnix:  t.Start(),
		EndUnix:    t.End(),
		ImportedAt: s.clock.Now().Unix(),
	}
	var present []trajectory.Quantity
	for _, q := range storedQuantities {
		if t.Has(q) {
			present = append(present, q)
		}
	}
	f.Quantities = splitQuantities(joinQuantities(present))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Flight{}, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO flights (flight_id, icao24, source, quantities, samples, start_unix, end_unix, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Icao24, f.Source, joinQuantities(f.Quantities), f.Samples, f.StartUnix, f.EndUnix, f.ImportedAt,
	); err != nil {
		return Flight{}, fmt.Errorf("insert flight: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO state_vectors (flight_id, time, lat, lon, velocity, heading, baroaltitude, geoaltitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Flight{}, fmt.Errorf("prepare state vectors: %w", err)
	}
	defer stmt.Close()

	args := make([]interface{}, 2+len(storedQuantities))
	for i, tm := range t.Time {
		args[0], args[1] = f.ID, tm
		for j, q := range storedQuantities {
			args[2+j] = nullable(t.Columns[string(q)], i)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return Flight{}, fmt.Errorf("insert state vector %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Flight{}, fmt.Errorf("commit import: %w", err)
	}
	monitoring.Logf("store: imported %s (%s) with %d samples", f.ID, f.Icao24, f.Samples)
	return f, nil
}

// ImportAll imports every trajectory, stopping at the first failure.
func (s *Store) ImportAll(ctx context.Context, ts []trajectory.Trajectory, source string) ([]Flight, error) {
	out := make([]Flight, 0, len(ts))
	for _, t := range ts {
		f, err := s.Import(ctx, t, source)
		if err != nil {
			return out, fmt.Errorf("flight %s: %w", t.ID, err)
		}
		out = append(out, f)
	}
	return out, nil
}

const flightColumns = `flight_id, icao24, source, quantities, samples, start_unix, end_unix, imported_at`

// ListFlights returns every stored flight ordered by start time.
func (s *Store) ListFlights(ctx context.Context) ([]Flight, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY start_unix, icao24`)
	if err != nil {
		return nil, fmt.Errorf("query flights: %w", err)
	}
	defer rows.Close()

	var out []Flight
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// GetFlight returns the flight with the given id.
func (s *Store) GetFlight(ctx context.Context, id string) (Flight, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+flightColumns+` FROM flights WHERE flight_id = ?`, id)
	f, err := scanFlight(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Flight{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return f, err
}

// DeleteFlight removes a flight and its state vectors.
func (s *Store) DeleteFlight(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM flights WHERE flight_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete flight: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// LoadTrajectory rebuilds the stored trajectory of flight id. The
// trajectory id is the flight id; columns absent from the import are
// omitted.
func (s *Store) LoadTrajectory(ctx context.Context, id string) (trajectory.Trajectory, error) {
	f, err := s.GetFlight(ctx, id)
	if err != nil {
		return trajectory.Trajectory{}, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT time, lat, lon, velocity, heading, baroaltitude, geoaltitude
		FROM state_vectors WHERE flight_id = ? ORDER BY time`, id)
	if err != nil {
		return trajectory.Trajectory{}, fmt.Errorf("query state vectors: %w", err)
	}
	defer rows.Close()

	times := make([]float64, 0, f.Samples)
	cols := make(map[string][]float64, len(f.Quantities))
	vals := make([]sql.NullFloat64, len(storedQuantities))
	dest := make([]interface{}, 1+len(vals))
	var tm float64
	dest[0] = &tm
	for i := range vals {
		dest[1+i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return trajectory.Trajectory{}, fmt.Errorf("scan state vector: %w", err)
		}
		times = append(times, tm)
		for j, q := range storedQuantities {
			if !contains(f.Quantities, q) {
				continue
			}
			v := math.NaN()
			if vals[j].Valid {
				v = vals[j].Float64
			}
			cols[string(q)] = append(cols[string(q)], v)
		}
	}
	if err := rows.Err(); err != nil {
		return trajectory.Trajectory{}, err
	}
	return trajectory.New(f.ID, times, cols)
}

// LoadTrajectories loads several flights in the order given.
func (s *Store) LoadTrajectories(ctx context.Context, ids []string) ([]trajectory.Trajectory, error) {
	out := make([]trajectory.Trajectory, 0, len(ids))
	for _, id := range ids {
		t, err := s.LoadTrajectory(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanFlight(r scanner) (Flight, error) {
	var (
		f          Flight
		quantities string
	)
	if err := r.Scan(&f.ID, &f.Icao24, &f.Source, &quantities, &f.Samples, &f.StartUnix, &f.EndUnix, &f.ImportedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Flight{}, err
		}
		return Flight{}, fmt.Errorf("scan flight: %w", err)
	}
	f.Quantities = splitQuantities(quantities)
	return f, nil
}

func nullable(col []float64, i int) interface{} {
	if col == nil || math.IsNaN(col[i]) || math.IsInf(col[i], 0) {
		return nil
	}
	return col[i]
}

func joinQuantities(qs []trajectory.Quantity) string {
	parts := make([]string, len(qs))
	for i, q := range qs {
		parts[i] = string(q)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func splitQuantities(s string) []trajectory.Quantity {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]trajectory.Quantity, len(parts))
	for i, p := range parts {
		out[i] = trajectory.Quantity(p)
	}
	return out
}

func contains(qs []trajectory.Quantity, q trajectory.Quantity) bool {
	for _, v := range qs {
		if v == q {
			return true
		}
	}
	return false
}
