package persist

import (
	"database/sql"
	"fmt"
	"time"
)

// EventKind tags what kind of playback transition a PlaybackHistoryEvent
// records.
type EventKind int

const (
	EventStart EventKind = iota
	EventPause
	EventResume
	EventStop
	EventSeek
	EventInterrupt
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "START"
	case EventPause:
		return "PAUSE"
	case EventResume:
		return "RESUME"
	case EventStop:
		return "STOP"
	case EventSeek:
		return "SEEK"
	case EventInterrupt:
		return "INTERRUPT"
	default:
		return "UNKNOWN"
	}
}

func parseEventKind(s string) (EventKind, error) {
	switch s {
	case "START":
		return EventStart, nil
	case "PAUSE":
		return EventPause, nil
	case "RESUME":
		return EventResume, nil
	case "STOP":
		return EventStop, nil
	case "SEEK":
		return EventSeek, nil
	case "INTERRUPT":
		return EventInterrupt, nil
	default:
		return 0, fmt.Errorf("persist: unknown event kind %q", s)
	}
}

// PlayID identifies one continuous listening session: every event and
// metadata row produced for a single song play shares the same PlayID.
type PlayID = int64

// Event is one row of the playback_history_events table.
type Event struct {
	ID         int64
	PlayID     PlayID
	Elapsed    time.Duration
	Kind       EventKind
	RecordedAt time.Time
}

// CreateEvent is the set of fields needed to insert a new Event; the row's
// ID is assigned by the database.
type CreateEvent struct {
	PlayID     PlayID
	Elapsed    time.Duration
	Kind       EventKind
	RecordedAt time.Time
}

// EventRepo reads and writes playback_history_events.
type EventRepo struct {
	db dbtx
}

// dbtx is satisfied by both *sql.DB and *sql.Tx, letting repo methods run
// inside or outside an explicit transaction without duplicating queries.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

func scanEvent(row interface{ Scan(dest ...any) error }) (Event, error) {
	var (
		e          Event
		elapsedSec float64
		kind       string
		recordedAt string
	)
	if err := row.Scan(&e.ID, &e.PlayID, &elapsedSec, &kind, &recordedAt); err != nil {
		return Event{}, err
	}
	parsedKind, err := parseEventKind(kind)
	if err != nil {
		return Event{}, err
	}
	e.Kind = parsedKind
	recordedAtTime, err := time.Parse(time.RFC3339Nano, recordedAt)
	if err != nil {
		return Event{}, fmt.Errorf("persist: malformed recorded_at %q: %w", recordedAt, err)
	}
	e.RecordedAt = recordedAtTime
	e.Elapsed = time.Duration(elapsedSec * float64(time.Second))
	return e, nil
}

// GetByID returns the event with the given id.
func (r *EventRepo) GetByID(id int64) (Event, error) {
	row := r.db.QueryRow(`
		SELECT "id", "play_id", "elapsed", "kind", "recorded_at"
		FROM "playback_history_events"
		WHERE "id" = ?
	`, id)
	return scanEvent(row)
}

// GetLatest returns the most recently recorded event, or sql.ErrNoRows if
// the table is empty.
func (r *EventRepo) GetLatest() (Event, error) {
	row := r.db.QueryRow(`
		SELECT "id", "play_id", "elapsed", "kind", "recorded_at"
		FROM "playback_history_events"
		ORDER BY "recorded_at" DESC
		LIMIT 1
	`)
	return scanEvent(row)
}

// GetAll returns events recorded in [from, to), in descending order. Either
// bound may be the zero time to leave it open.
func (r *EventRepo) GetAll(from, to time.Time) ([]Event, error) {
	var fromArg, toArg any
	if !from.IsZero() {
		fromArg = from.Format(time.RFC3339Nano)
	}
	if !to.IsZero() {
		toArg = to.Format(time.RFC3339Nano)
	}

	rows, err := r.db.Query(`
		SELECT "id", "play_id", "elapsed", "kind", "recorded_at"
		FROM "playback_history_events"
		WHERE (?1 IS NULL OR "recorded_at" >= ?1)
		  AND (?2 IS NULL OR "recorded_at" < ?2)
		ORDER BY "recorded_at" DESC
	`, fromArg, toArg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

// GetAllByID returns the events matching ids, in no particular order.
func (r *EventRepo) GetAllByID(ids []int64) ([]Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders, args := inClause(ids)
	rows, err := r.db.Query(fmt.Sprintf(`
		SELECT "id", "play_id", "elapsed", "kind", "recorded_at"
		FROM "playback_history_events"
		WHERE "id" IN (%s)
	`, placeholders), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func collectEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Create inserts a single event and returns its assigned id.
func (r *EventRepo) Create(create CreateEvent) (int64, error) {
	res, err := r.db.Exec(`
		INSERT INTO "playback_history_events" ("play_id", "elapsed", "kind", "recorded_at")
		VALUES (?, ?, ?, ?)
	`, create.PlayID, create.Elapsed.Seconds(), create.Kind.String(), create.RecordedAt.Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// CreateAll inserts create in one batch and returns the assigned ids in
// the same order. An empty input is a no-op.
func (r *EventRepo) CreateAll(create []CreateEvent) ([]int64, error) {
	if len(create) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(create))
	for _, c := range create {
		id, err := r.Create(c)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func inClause(ids []int64) (string, []any) {
	placeholders := ""
	args := make([]any, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		args[i] = id
	}
	return placeholders, args
}
