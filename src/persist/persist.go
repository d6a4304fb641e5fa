// Package persist stores the playback history kept by the history package
// in a local SQLite database, reached through database/sql and the
// mattn/go-sqlite3 driver.
package persist

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Handle owns the connection pool to the history database and exposes one
// repository per table.
type Handle struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and makes
// sure its schema exists.
func Open(path string) (*Handle, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_journal_mode=WAL", path))
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("persist: failed to apply schema: %w", err)
	}

	return &Handle{db: db}, nil
}

// Close releases the underlying connection pool.
func (h *Handle) Close() error {
	return h.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS playback_history_events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	play_id     INTEGER NOT NULL,
	elapsed     REAL NOT NULL,
	kind        TEXT NOT NULL,
	recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS playback_history_events_play_id_idx ON playback_history_events (play_id);
CREATE INDEX IF NOT EXISTS playback_history_events_recorded_at_idx ON playback_history_events (recorded_at);

CREATE TABLE IF NOT EXISTS playback_history_metadata (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	play_id INTEGER NOT NULL,
	key     TEXT NOT NULL,
	value   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS playback_history_metadata_play_id_idx ON playback_history_metadata (play_id);
`

// PlaybackHistoryEvent returns the events repository.
func (h *Handle) PlaybackHistoryEvent() *EventRepo {
	return &EventRepo{db: h.db}
}

// PlaybackHistoryMetadata returns the metadata repository.
func (h *Handle) PlaybackHistoryMetadata() *MetadataRepo {
	return &MetadataRepo{db: h.db}
}

// Tx is a database transaction exposing the same repositories as Handle,
// so a caller can record an event and its metadata atomically.
type Tx struct {
	tx *sql.Tx
}

// Begin starts a transaction. The caller must Commit or Rollback it.
func (h *Handle) Begin() (*Tx, error) {
	tx, err := h.db.Begin()
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

func (t *Tx) Commit() error   { return t.tx.Commit() }
func (t *Tx) Rollback() error { return t.tx.Rollback() }

// PlaybackHistoryEvent returns the events repository scoped to this
// transaction.
func (t *Tx) PlaybackHistoryEvent() *EventRepo {
	return &EventRepo{db: t.tx}
}

// PlaybackHistoryMetadata returns the metadata repository scoped to this
// transaction.
func (t *Tx) PlaybackHistoryMetadata() *MetadataRepo {
	return &MetadataRepo{db: t.tx}
}
