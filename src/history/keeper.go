// Package history derives a log of what was played, when, from the raw
// status/queue change feed an mpd.Handle produces, and persists it through
// the persist package.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/polyfloyd/trollibox/src/mpd"
	"github.com/polyfloyd/trollibox/src/persist"
)

// statusDiffKind tags the kind of transition diff() detected between two
// consecutive Status values.
type statusDiffKind int

const (
	diffPlaybackStart statusDiffKind = iota
	diffPlaybackPause
	diffPlaybackResume
	diffPlaybackStop
	diffSongChange
	diffOther
)

// statusDiff pairs a transition kind with the SongStatus it was derived
// from. song is nil only for diffPlaybackStop.
type statusDiff struct {
	kind statusDiffKind
	song *mpd.SongStatus
}

// diff classifies the transition between two consecutive statuses. It
// returns nil if the two statuses carry no playback-relevant change (for
// example, two calls that both report no song).
func diff(old, new mpd.Status) *statusDiff {
	switch {
	case old.Song == nil && new.Song == nil:
		return nil
	case old.Song == nil && new.Song != nil:
		return &statusDiff{kind: diffPlaybackStart, song: new.Song}
	case old.Song != nil && new.Song == nil:
		return &statusDiff{kind: diffPlaybackStop}
	case old.Song.ID != new.Song.ID:
		return &statusDiff{kind: diffSongChange, song: new.Song}
	default:
		switch {
		case old.State == mpd.StatePaused && new.State == mpd.StatePlaying:
			return &statusDiff{kind: diffPlaybackResume, song: new.Song}
		case old.State == mpd.StatePlaying && new.State == mpd.StatePaused:
			return &statusDiff{kind: diffPlaybackPause, song: new.Song}
		default:
			return &statusDiff{kind: diffOther, song: new.Song}
		}
	}
}

// elapsedNow extrapolates how far into the song play currently is, given
// when its last event was recorded, capped at the song's duration so a
// stale event from a paused/stopped song never overshoots.
func elapsedNow(event persist.Event, duration time.Duration) time.Duration {
	extrapolated := time.Since(event.RecordedAt) + event.Elapsed
	if extrapolated > duration {
		return duration
	}
	return extrapolated
}

// filter picks the Status and Queue update out of a batch, discarding the
// Db/Playlist hints this keeper has no use for. It returns a nil status if
// the batch held none.
func filter(updates []mpd.Update) (*mpd.Status, []mpd.QueueItem) {
	var status *mpd.Status
	var queue []mpd.QueueItem
	for _, u := range updates {
		switch u.Kind {
		case mpd.UpdateStatus:
			s := u.Status
			status = &s
		case mpd.UpdateQueue:
			queue = u.Queue
		}
	}
	return status, queue
}

// state is the keeper's notion of "what's currently playing": the latest
// recorded event plus the metadata of the play it belongs to.
type state struct {
	event persist.Event
	meta  persist.Metadata
}

func lastState(h *persist.Handle) (*state, error) {
	event, err := h.PlaybackHistoryEvent().GetLatest()
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	meta, err := h.PlaybackHistoryMetadata().GetByPlayID(event.PlayID)
	if err != nil {
		return nil, err
	}

	return &state{event: event, meta: meta}, nil
}

func newCreateEvent(playID persist.PlayID, elapsed time.Duration, kind persist.EventKind) persist.CreateEvent {
	return persist.CreateEvent{
		PlayID:     playID,
		Elapsed:    elapsed,
		Kind:       kind,
		RecordedAt: time.Now().UTC(),
	}
}

func createEventFromState(st *state, kind persist.EventKind) persist.CreateEvent {
	return newCreateEvent(st.event.PlayID, elapsedNow(st.event, st.meta.Duration), kind)
}

func newCreateMetadata(playID persist.PlayID, song mpd.QueueItem) persist.CreateMetadata {
	return persist.CreateMetadata{
		PlayID:     playID,
		PlaylistID: song.ID,
		URI:        song.URI,
		Duration:   song.Duration,
		Titles:     song.Tags.Titles,
		Artists:    song.Tags.Artists,
		Albums:     song.Tags.Albums,
	}
}

// initialPlayID is assigned to the very first play this keeper ever
// records, when no prior history exists at all.
const initialPlayID persist.PlayID = 1

// continuityThreshold bounds how far a song's reported elapsed time may
// drift from what this keeper extrapolated before the gap is treated as a
// genuine interruption (a restart, a long pause spanning a process
// restart) rather than normal clock skew between polls.
const continuityThreshold = time.Second

// processInitial reconciles whatever was already on disk with what MPD is
// doing right now when the keeper starts up, so that a keeper restart
// doesn't fabricate a spurious new play for a song that was already
// playing uninterrupted.
func processInitial(h *persist.Handle, st *state, status mpd.Status, queue []mpd.QueueItem) (*state, error) {
	if status.Song == nil || int(status.Song.Position) >= len(queue) {
		return st, nil
	}
	songStatus := status.Song
	song := queue[songStatus.Position]

	if st == nil {
		meta := newCreateMetadata(initialPlayID, song)
		if err := h.PlaybackHistoryMetadata().CreateAll(meta); err != nil {
			return nil, err
		}
		eventID, err := h.PlaybackHistoryEvent().Create(newCreateEvent(initialPlayID, songStatus.Elapsed, persist.EventStart))
		if err != nil {
			return nil, err
		}
		event, err := h.PlaybackHistoryEvent().GetByID(eventID)
		if err != nil {
			return nil, err
		}
		return &state{event: event, meta: metaFromCreate(meta)}, nil
	}

	matches := st.meta.PlaylistID == song.ID && st.meta.URI == song.URI
	if matches {
		gap := time.Since(st.event.RecordedAt)
		extrapolationError := gap - (songStatus.Elapsed - st.event.Elapsed)
		uninterrupted := extrapolationError.Abs() < continuityThreshold

		if uninterrupted || st.event.Kind == persist.EventStop {
			return st, nil
		}

		if _, err := h.PlaybackHistoryEvent().Create(newCreateEvent(st.event.PlayID, st.event.Elapsed, persist.EventStop)); err != nil {
			return nil, err
		}
	}

	newPlayID := st.event.PlayID + 1
	meta := newCreateMetadata(newPlayID, song)
	if err := h.PlaybackHistoryMetadata().CreateAll(meta); err != nil {
		return nil, err
	}
	eventID, err := h.PlaybackHistoryEvent().Create(newCreateEvent(newPlayID, songStatus.Elapsed, persist.EventStart))
	if err != nil {
		return nil, err
	}
	event, err := h.PlaybackHistoryEvent().GetByID(eventID)
	if err != nil {
		return nil, err
	}
	return &state{event: event, meta: metaFromCreate(meta)}, nil
}

func metaFromCreate(c persist.CreateMetadata) persist.Metadata {
	return persist.Metadata{
		PlayID:     c.PlayID,
		PlaylistID: c.PlaylistID,
		URI:        c.URI,
		Duration:   c.Duration,
		Titles:     c.Titles,
		Artists:    c.Artists,
		Albums:     c.Albums,
	}
}

// processedDiff is what process emits: the event rows to persist
// (typically one, two for a song change that both stops the old play and
// starts the new one) and, when a new play started, its metadata.
type processedDiff struct {
	events []persist.CreateEvent
	meta   *persist.CreateMetadata
}

// process turns a statusDiff into the rows that should be persisted for
// it, or nil if the diff doesn't warrant a write (an Other diff within
// continuityThreshold of what was already extrapolated is just clock
// noise).
func process(d *statusDiff, st *state, queue []mpd.QueueItem) *processedDiff {
	switch d.kind {
	case diffPlaybackStart:
		if d.song == nil || int(d.song.Position) >= len(queue) {
			return nil
		}
		song := queue[d.song.Position]
		playID := initialPlayID
		if st != nil {
			playID = st.event.PlayID + 1
		}
		meta := newCreateMetadata(playID, song)
		return &processedDiff{
			events: []persist.CreateEvent{newCreateEvent(playID, d.song.Elapsed, persist.EventStart)},
			meta:   &meta,
		}

	case diffPlaybackPause, diffPlaybackResume, diffPlaybackStop:
		if st == nil {
			return nil
		}
		var kind persist.EventKind
		switch d.kind {
		case diffPlaybackPause:
			kind = persist.EventPause
		case diffPlaybackResume:
			kind = persist.EventResume
		case diffPlaybackStop:
			kind = persist.EventStop
		}
		return &processedDiff{events: []persist.CreateEvent{createEventFromState(st, kind)}}

	case diffSongChange:
		if st == nil || d.song == nil || int(d.song.Position) >= len(queue) {
			return nil
		}
		song := queue[d.song.Position]
		newPlayID := st.event.PlayID + 1
		meta := newCreateMetadata(newPlayID, song)
		return &processedDiff{
			events: []persist.CreateEvent{
				createEventFromState(st, persist.EventStop),
				newCreateEvent(newPlayID, d.song.Elapsed, persist.EventStart),
			},
			meta: &meta,
		}

	case diffOther:
		if st == nil || d.song == nil {
			return nil
		}
		if (elapsedNow(st.event, st.meta.Duration) - d.song.Elapsed).Abs() < continuityThreshold {
			return nil
		}
		return &processedDiff{events: []persist.CreateEvent{newCreateEvent(st.event.PlayID, d.song.Elapsed, persist.EventSeek)}}

	default:
		return nil
	}
}

// Keeper watches an mpd.SubscriptionHandle and appends playback history to
// a persist.Handle. Run it in a goroutine; it does not return until its
// context is cancelled or the update feed reports an error (including a
// disconnect from MPD).
type Keeper struct {
	handle  *mpd.Handle
	sub     *mpd.SubscriptionHandle
	persist *persist.Handle
	log     logrus.FieldLogger
}

// NewKeeper builds a Keeper. Call Run to start it.
func NewKeeper(handle *mpd.Handle, sub *mpd.SubscriptionHandle, store *persist.Handle, log logrus.FieldLogger) *Keeper {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Keeper{handle: handle, sub: sub, persist: store, log: log}
}

// Run blocks, recording history until ctx is cancelled.
func (k *Keeper) Run(ctx context.Context) error {
	queue, mpdErr := k.handle.Queue().Get()
	if mpdErr != nil {
		return fmt.Errorf("history: %s", mpdErr)
	}
	status, mpdErr := k.handle.Status().Get()
	if mpdErr != nil {
		return fmt.Errorf("history: %s", mpdErr)
	}

	st, err := lastState(k.persist)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}

	st, err = processInitial(k.persist, st, status, queue)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}

	// TODO: detect an ongoing playback interrupted without a clean Stop
	// (e.g. power loss) on the next startup instead of silently resuming.
	for {
		updates, updErr := k.sub.Updates(ctx)
		if updErr != nil {
			return fmt.Errorf("history: %s", updErr)
		}

		newStatus, newQueue := filter(updates)
		if newStatus == nil {
			continue
		}
		if newQueue != nil {
			queue = newQueue
		}

		d := diff(status, *newStatus)
		if d == nil {
			continue
		}

		changed := process(d, st, queue)
		if changed == nil {
			continue
		}

		status = *newStatus

		tx, err := k.persist.Begin()
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}
		if changed.meta != nil {
			if err := tx.PlaybackHistoryMetadata().CreateAll(*changed.meta); err != nil {
				tx.Rollback()
				return fmt.Errorf("history: %w", err)
			}
		}

		ids, err := tx.PlaybackHistoryEvent().CreateAll(changed.events)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("history: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("history: %w", err)
		}
		lastEvent, err := k.persist.PlaybackHistoryEvent().GetByID(ids[len(ids)-1])
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}

		meta := st.meta
		if changed.meta != nil {
			meta = metaFromCreate(*changed.meta)
		}
		st = &state{event: lastEvent, meta: meta}
	}
}
