// Package telemetry persists collection-cycle statistics so long-running
// embeddings can inspect GC behavior after the fact.
package telemetry

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/velalang/vela/heap"
)

const schema = `
CREATE TABLE IF NOT EXISTS gc_cycles (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	kind         TEXT    NOT NULL,
	marked       INTEGER NOT NULL,
	freed        INTEGER NOT NULL,
	promoted     INTEGER NOT NULL,
	weak_cleared INTEGER NOT NULL,
	duration_us  INTEGER NOT NULL,
	at           INTEGER NOT NULL
);
`

// Cycle is one recorded collection, as read back from storage.
type Cycle struct {
	ID          int64
	Kind        heap.CollectionKind
	Marked      int
	Freed       int
	Promoted    int
	WeakCleared int
	Duration    time.Duration
	At          time.Time
}

// Recorder stores collection stats in a SQLite database.
type Recorder struct {
	db *sql.DB
}

// Open creates (or opens) the database at path and ensures the schema
// exists.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("telemetry: create schema: %w", err)
	}
	return &Recorder{db: db}, nil
}

// Close releases the underlying database.
func (r *Recorder) Close() error {
	return r.db.Close()
}

// Record appends one collection cycle.
func (r *Recorder) Record(stats *heap.CollectionStats) error {
	_, err := r.db.Exec(
		`INSERT INTO gc_cycles (kind, marked, freed, promoted, weak_cleared, duration_us, at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(stats.Kind), stats.Marked, stats.Freed, stats.Promoted,
		stats.WeakEntriesCleared, stats.Duration.Microseconds(),
		stats.Timestamp.UnixMicro(),
	)
	if err != nil {
		return fmt.Errorf("telemetry: record cycle: %w", err)
	}
	return nil
}

// Recent returns the n most recent cycles, newest first.
func (r *Recorder) Recent(n int) ([]Cycle, error) {
	rows, err := r.db.Query(
		`SELECT id, kind, marked, freed, promoted, weak_cleared, duration_us, at
		 FROM gc_cycles ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("telemetry: query cycles: %w", err)
	}
	defer rows.Close()

	var cycles []Cycle
	for rows.Next() {
		var c Cycle
		var kind string
		var durationUs, atUs int64
		if err := rows.Scan(&c.ID, &kind, &c.Marked, &c.Freed, &c.Promoted,
			&c.WeakCleared, &durationUs, &atUs); err != nil {
			return nil, fmt.Errorf("telemetry: scan cycle: %w", err)
		}
		c.Kind = heap.CollectionKind(kind)
		c.Duration = time.Duration(durationUs) * time.Microsecond
		c.At = time.UnixMicro(atUs)
		cycles = append(cycles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("telemetry: iterate cycles: %w", err)
	}
	return cycles, nil
}

// Count returns the total number of recorded cycles.
func (r *Recorder) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM gc_cycles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("telemetry: count cycles: %w", err)
	}
	return n, nil
}
