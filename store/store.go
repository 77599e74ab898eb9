// Package store persists a battle timeline in SQLite. The database is an
// exact mirror of the in-memory log: one row per entry, keyed by the event's
// timeline position, so a battle can be reloaded and replayed after a restart
// or inspected offline.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"github.com/saltmarsh/skirmish/battle"
	"github.com/saltmarsh/skirmish/engine"
	"github.com/saltmarsh/skirmish/event"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// Store provides durable storage for battle timelines.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// Open is idempotent.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	// SQLite only supports one writer at a time; a single connection avoids
	// SQLITE_BUSY errors under contention.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// WriteEntry inserts one committed entry. Uses ON CONFLICT(id) DO NOTHING
// for idempotency: re-writing an already persisted entry is a no-op, which
// lets crash recovery blindly re-emit the tail of the log.
func (s *Store) WriteEntry(ctx context.Context, e engine.Entry) error {
	payload, err := event.Marshal(e.Event)
	if err != nil {
		return fmt.Errorf("write entry: %w", err)
	}
	var originEvent sql.NullInt64
	var originSubmitter sql.NullString
	switch e.Event.Origin.Kind {
	case event.OriginEvent:
		originEvent = sql.NullInt64{Int64: int64(e.Event.Origin.Event), Valid: true}
	case event.OriginSubmitter:
		originSubmitter = sql.NullString{String: e.Event.Origin.Submitter, Valid: true}
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events
		(id, kind, origin_kind, origin_event, origin_submitter, payload, checksum)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		int64(e.Event.ID),
		string(e.Event.Kind),
		int(e.Event.Origin.Kind),
		originEvent,
		originSubmitter,
		string(payload),
		e.Checksum.String(),
	)
	if err != nil {
		return fmt.Errorf("write entry: %w", err)
	}
	return nil
}

// ReadEntries loads the whole persisted timeline in id order. Payloads of
// user-defined kinds need their decoders registered before the read.
func (s *Store) ReadEntries(ctx context.Context) ([]engine.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, payload, checksum FROM events ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	defer rows.Close()

	var entries []engine.Entry
	for rows.Next() {
		var id int64
		var payload, checksum string
		if err := rows.Scan(&id, &payload, &checksum); err != nil {
			return nil, fmt.Errorf("read entries: %w", err)
		}
		ev, err := event.Unmarshal([]byte(payload))
		if err != nil {
			return nil, fmt.Errorf("read entries: event %d: %w", id, err)
		}
		if int64(ev.ID) != id {
			return nil, fmt.Errorf("read entries: row id %d holds event id %d", id, ev.ID)
		}
		sum, err := strconv.ParseUint(checksum, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("read entries: event %d: bad checksum %q", id, checksum)
		}
		entries = append(entries, engine.Entry{Event: ev, Checksum: engine.Checksum(sum)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	return entries, nil
}

// TruncateAfter deletes every persisted entry with id greater than id,
// mirroring a timeline rollback. Pass battle.NoEvent to clear the log.
func (s *Store) TruncateAfter(ctx context.Context, id battle.EventID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id > ?`, int64(id))
	if err != nil {
		return fmt.Errorf("truncate after %d: %w", id, err)
	}
	return nil
}

// Len returns the number of persisted entries.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}
