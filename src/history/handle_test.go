package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/polyfloyd/trollibox/src/persist"
)

func TestHandleRecentDedupsAndJoinsMetadata(t *testing.T) {
	store, err := persist.Open(t.TempDir() + "/history.db")
	require.NoError(t, err)
	defer store.Close()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	_, err = store.PlaybackHistoryEvent().CreateAll([]persist.CreateEvent{
		{PlayID: 1, Kind: persist.EventStart, RecordedAt: base},
		{PlayID: 1, Kind: persist.EventStop, RecordedAt: base.Add(time.Minute)},
		{PlayID: 2, Kind: persist.EventStart, RecordedAt: base.Add(2 * time.Minute)},
	})
	require.NoError(t, err)

	require.NoError(t, store.PlaybackHistoryMetadata().CreateAll(persist.CreateMetadata{
		PlayID: 1, URI: "file:///a.mp3", Duration: time.Minute, Titles: []string{"A"},
	}))
	require.NoError(t, store.PlaybackHistoryMetadata().CreateAll(persist.CreateMetadata{
		PlayID: 2, URI: "file:///b.mp3", Duration: time.Minute, Titles: []string{"B"},
	}))

	h := NewHandle(store)
	entries, err := h.Recent(time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byURI := map[string]Entry{}
	for _, e := range entries {
		byURI[e.URI] = e
	}
	require.Contains(t, byURI, "file:///a.mp3")
	require.Contains(t, byURI, "file:///b.mp3")
	require.Equal(t, []string{"A"}, byURI["file:///a.mp3"].Tags.Titles)
}

func TestHandleRecentRange(t *testing.T) {
	store, err := persist.Open(t.TempDir() + "/history.db")
	require.NoError(t, err)
	defer store.Close()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	_, err = store.PlaybackHistoryEvent().CreateAll([]persist.CreateEvent{
		{PlayID: 1, Kind: persist.EventStart, RecordedAt: base},
		{PlayID: 2, Kind: persist.EventStart, RecordedAt: base.Add(time.Hour)},
	})
	require.NoError(t, err)
	require.NoError(t, store.PlaybackHistoryMetadata().CreateAll(persist.CreateMetadata{PlayID: 1, URI: "a"}))
	require.NoError(t, store.PlaybackHistoryMetadata().CreateAll(persist.CreateMetadata{PlayID: 2, URI: "b"}))

	h := NewHandle(store)
	entries, err := h.Recent(base.Add(30*time.Minute), time.Time{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "b", entries[0].URI)
}
