package history

import (
	"time"

	"github.com/polyfloyd/trollibox/src/mpd"
	"github.com/polyfloyd/trollibox/src/persist"
)

// Entry is one played song as it reads back out of history: an event's
// play_id and timestamp joined with its metadata.
type Entry struct {
	PlayID     persist.PlayID
	URI        string
	Tags       mpd.DbTags
	Duration   time.Duration
	RecordedAt time.Time
}

// Handle is the read side of the history store, used to answer "what was
// recently played" queries independently of the Keeper that writes to it.
type Handle struct {
	store *persist.Handle
}

// NewHandle wraps a persistence handle for read-only history queries.
func NewHandle(store *persist.Handle) *Handle {
	return &Handle{store: store}
}

// Recent returns the history entries recorded in [from, to), most recent
// first, collapsing repeated events for the same play down to one entry.
func (h *Handle) Recent(from, to time.Time) ([]Entry, error) {
	events, err := h.store.PlaybackHistoryEvent().GetAll(from, to)
	if err != nil {
		return nil, err
	}

	playIDs := make([]persist.PlayID, 0, len(events))
	seen := make(map[persist.PlayID]bool, len(events))
	var deduped []persist.Event
	for _, e := range events {
		if seen[e.PlayID] {
			continue
		}
		seen[e.PlayID] = true
		deduped = append(deduped, e)
		playIDs = append(playIDs, e.PlayID)
	}

	metaByPlayID, err := h.store.PlaybackHistoryMetadata().GetAllByPlayID(playIDs)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(deduped))
	for _, e := range deduped {
		meta, ok := metaByPlayID[e.PlayID]
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			PlayID:     e.PlayID,
			URI:        meta.URI,
			Tags:       mpd.DbTags{Titles: meta.Titles, Artists: meta.Artists, Albums: meta.Albums},
			Duration:   meta.Duration,
			RecordedAt: e.RecordedAt,
		})
	}
	return entries, nil
}
