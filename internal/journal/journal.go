// Package journal records hive and gameplay events in a sqlite database so a
// session can be charted or replayed after the fact.
package journal

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Event is one journal row. Row and Column are only meaningful when HasCell
// is set.
type Event struct {
	Tick    int64  `json:"tick"`
	Kind    string `json:"kind"`
	HasCell bool   `json:"has_cell"`
	Row     int    `json:"row"`
	Column  int    `json:"column"`
	Detail  string `json:"detail,omitempty"`
}

// GrowthPoint is the revealed-cell total at the end of a tick.
type GrowthPoint struct {
	Tick     int64 `json:"tick"`
	Revealed int   `json:"revealed"`
}

// Journal is a sqlite-backed event log scoped to one session at a time.
type Journal struct {
	db      *sql.DB
	session string
}

// Open opens (or creates) the journal at path and applies pending migrations.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection keeps sqlite writes serialized
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}
	j := &Journal{db: db}
	if err := j.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(j.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	// m is not closed: closing it would close the shared database handle.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Close closes the database.
func (j *Journal) Close() error { return j.db.Close() }

// BeginSession scopes subsequent records to id.
func (j *Journal) BeginSession(id string) error {
	if _, err := j.db.Exec(`INSERT INTO sessions (session_id) VALUES (?)`, id); err != nil {
		return fmt.Errorf("failed to begin session %s: %w", id, err)
	}
	j.session = id
	return nil
}

// EndSession stores the final score of the current session.
func (j *Journal) EndSession(score int, tick int64) error {
	_, err := j.db.Exec(`
		UPDATE sessions SET final_score = ?, final_tick = ?, ended_at = CURRENT_TIMESTAMP
		WHERE session_id = ?`, score, tick, j.session)
	if err != nil {
		return fmt.Errorf("failed to end session %s: %w", j.session, err)
	}
	return nil
}

// Session returns the id of the current session, empty before BeginSession.
func (j *Journal) Session() string { return j.session }

// Record appends one event to the current session.
func (j *Journal) Record(ev Event) error {
	var row, col sql.NullInt64
	if ev.HasCell {
		row = sql.NullInt64{Int64: int64(ev.Row), Valid: true}
		col = sql.NullInt64{Int64: int64(ev.Column), Valid: true}
	}
	_, err := j.db.Exec(`
		INSERT INTO events (session_id, tick, kind, row_idx, col_idx, detail)
		VALUES (?, ?, ?, ?, ?, ?)`,
		j.session, ev.Tick, ev.Kind, row, col, ev.Detail)
	if err != nil {
		return fmt.Errorf("failed to record %s event: %w", ev.Kind, err)
	}
	return nil
}

// Recent returns up to limit events of the current session, newest first.
func (j *Journal) Recent(limit int) ([]Event, error) {
	rows, err := j.db.Query(`
		SELECT tick, kind, row_idx, col_idx, COALESCE(detail, '')
		FROM events WHERE session_id = ?
		ORDER BY event_id DESC LIMIT ?`, j.session, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			ev       Event
			row, col sql.NullInt64
		)
		if err := rows.Scan(&ev.Tick, &ev.Kind, &row, &col, &ev.Detail); err != nil {
			return nil, err
		}
		if row.Valid && col.Valid {
			ev.HasCell = true
			ev.Row, ev.Column = int(row.Int64), int(col.Int64)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// GrowthSeries returns the cumulative revealed-cell count for every tick of
// the current session that revealed at least one cell.
func (j *Journal) GrowthSeries(revealKind string) ([]GrowthPoint, error) {
	rows, err := j.db.Query(`
		SELECT tick, COUNT(*) FROM events
		WHERE session_id = ? AND kind = ?
		GROUP BY tick ORDER BY tick`, j.session, revealKind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		out   []GrowthPoint
		total int
	)
	for rows.Next() {
		var (
			tick int64
			n    int
		)
		if err := rows.Scan(&tick, &n); err != nil {
			return nil, err
		}
		total += n
		out = append(out, GrowthPoint{Tick: tick, Revealed: total})
	}
	return out, rows.Err()
}
