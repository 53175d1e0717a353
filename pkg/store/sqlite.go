// Package store persists finished flight runs in the sqlite archive.
package store

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"aerosentinel/pkg/db"
	"aerosentinel/pkg/model"
)

// LastFlightKey is the state key holding the id of the most recent archived flight.
const LastFlightKey = "last_flight_id"

// Store defines the repository interface.
type Store interface {
	FlightStore
	StateStore

	// Close closes the store connection.
	Close() error
}

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Flights ---

const flightColumns = `id, rocket_name, motor_used, flyer, flight_date, location, flight_computer,
	record_count, duration, apogee_time, apogee_altitude, max_velocity, landing_time,
	launch_cell, output_path, phases, created_at`

// SaveFlight archives the summary, its events and the gzipped telemetry in
// one transaction. An empty summary ID is filled with a new UUID.
func (s *SQLiteStore) SaveFlight(ctx context.Context, sum *model.FlightSummary, flightLog *model.FlightLog) error {
	if sum.ID == "" {
		sum.ID = uuid.NewString()
	}
	if sum.CreatedAt.IsZero() {
		sum.CreatedAt = time.Now()
	}

	var blob []byte
	if flightLog != nil {
		raw, err := json.Marshal(flightLog)
		if err != nil {
			return fmt.Errorf("failed to encode telemetry: %w", err)
		}
		if blob, err = compress(raw); err != nil {
			return fmt.Errorf("failed to compress telemetry: %w", err)
		}
	}

	phases, err := json.Marshal(sum.Phases)
	if err != nil {
		return fmt.Errorf("failed to encode phases: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	c := sum.Card
	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO flights (`+flightColumns+`, telemetry)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.ID, c.RocketName, c.MotorUsed, c.Flyer, c.FlightDate, c.Location, c.FlightComputer,
		sum.RecordCount, sum.Duration, sum.ApogeeTime, sum.ApogeeAltitude, sum.MaxVelocity, sum.LandingTime,
		sum.LaunchCell, sum.OutputPath, string(phases), sum.CreatedAt.UTC(), blob,
	)
	if err != nil {
		return fmt.Errorf("failed to save flight: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM flight_events WHERE flight_id = ?`, sum.ID); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO flight_events (
		flight_id, seq, type, title, summary, time, altitude, velocity, lat, lon, recorded_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range sum.Events {
		e := &sum.Events[i]
		if _, err := stmt.ExecContext(ctx, sum.ID, i, string(e.Type), e.Title, e.Summary,
			e.Time, e.Altitude, e.Velocity, e.Latitude, e.Longitude, e.Timestamp.UTC()); err != nil {
			return fmt.Errorf("failed to save event %s: %w", e.Type, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO persistent_state (key, value) VALUES (?, ?)`, LastFlightKey, sum.ID); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetFlight(ctx context.Context, id string) (*model.FlightSummary, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+flightColumns+` FROM flights WHERE id = ?`, id)
	sum, err := scanFlight(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadEvents(ctx, sum); err != nil {
		return nil, err
	}
	return sum, nil
}

// GetTelemetry returns the archived flight log of a run.
func (s *SQLiteStore) GetTelemetry(ctx context.Context, id string) (*model.FlightLog, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT telemetry FROM flights WHERE id = ?`, id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		return nil, fmt.Errorf("%w: no telemetry archived for %s", ErrNotFound, id)
	}

	raw, err := decompress(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress telemetry: %w", err)
	}
	var flightLog model.FlightLog
	if err := json.Unmarshal(raw, &flightLog); err != nil {
		return nil, fmt.Errorf("failed to decode telemetry: %w", err)
	}
	return &flightLog, nil
}

// ListFlights returns the most recent flights first. A limit <= 0 returns all.
func (s *SQLiteStore) ListFlights(ctx context.Context, limit int) ([]*model.FlightSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.queryFlights(ctx,
		`SELECT `+flightColumns+` FROM flights ORDER BY created_at DESC, id LIMIT ?`, limit)
}

// FlightsByCell returns the flights launched from the given H3 cell.
func (s *SQLiteStore) FlightsByCell(ctx context.Context, cell string) ([]*model.FlightSummary, error) {
	return s.queryFlights(ctx,
		`SELECT `+flightColumns+` FROM flights WHERE launch_cell = ? ORDER BY created_at DESC, id`, cell)
}

func (s *SQLiteStore) queryFlights(ctx context.Context, query string, args ...any) ([]*model.FlightSummary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	var results []*model.FlightSummary
	for rows.Next() {
		sum, err := scanFlight(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		results = append(results, sum)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// Release the single connection before loading events
	rows.Close()

	for _, sum := range results {
		if err := s.loadEvents(ctx, sum); err != nil {
			return nil, err
		}
	}
	return results, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFlight(row scanner) (*model.FlightSummary, error) {
	var sum model.FlightSummary
	var launchCell, outputPath, phases sql.NullString
	c := &sum.Card
	err := row.Scan(
		&sum.ID, &c.RocketName, &c.MotorUsed, &c.Flyer, &c.FlightDate, &c.Location, &c.FlightComputer,
		&sum.RecordCount, &sum.Duration, &sum.ApogeeTime, &sum.ApogeeAltitude, &sum.MaxVelocity, &sum.LandingTime,
		&launchCell, &outputPath, &phases, &sum.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	sum.LaunchCell = launchCell.String
	sum.OutputPath = outputPath.String
	if phases.Valid && phases.String != "" && phases.String != "null" {
		if err := json.Unmarshal([]byte(phases.String), &sum.Phases); err != nil {
			return nil, fmt.Errorf("failed to decode phases: %w", err)
		}
	}
	return &sum, nil
}

func (s *SQLiteStore) loadEvents(ctx context.Context, sum *model.FlightSummary) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT type, title, summary, time, altitude, velocity, lat, lon, recorded_at
		 FROM flight_events WHERE flight_id = ? ORDER BY seq`, sum.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	sum.Events = nil
	for rows.Next() {
		var e model.FlightEvent
		var typ string
		if err := rows.Scan(&typ, &e.Title, &e.Summary, &e.Time, &e.Altitude, &e.Velocity,
			&e.Latitude, &e.Longitude, &e.Timestamp); err != nil {
			return err
		}
		e.Type = model.FlightEventType(typ)
		sum.Events = append(sum.Events, e)
	}
	return rows.Err()
}

// --- Compression ---

var (
	// Pool for gzip writers to reuse flate state
	gzipWriterPool = sync.Pool{
		New: func() interface{} {
			return gzip.NewWriter(io.Discard)
		},
	}
	bufferPool = sync.Pool{
		New: func() interface{} {
			return new(bytes.Buffer)
		},
	}
)

func compress(data []byte) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	w := gzipWriterPool.Get().(*gzip.Writer)
	defer gzipWriterPool.Put(w)
	w.Reset(buf)

	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	// Must copy because buf is returned to pool
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// --- State ---

func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, bool) {
	var val string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM persistent_state WHERE key = ?", key).Scan(&val)
	if err != nil {
		return "", false
	}
	return val, true
}
