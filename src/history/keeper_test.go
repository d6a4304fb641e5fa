package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/polyfloyd/trollibox/src/mpd"
	"github.com/polyfloyd/trollibox/src/persist"
)

func songStatus(id, pos int64, elapsed, duration time.Duration) *mpd.SongStatus {
	return &mpd.SongStatus{ID: id, Position: pos, Elapsed: elapsed, Duration: duration}
}

func TestDiffNoSongToSong(t *testing.T) {
	old := mpd.Status{}
	new := mpd.Status{Song: songStatus(1, 0, 0, time.Minute)}

	d := diff(old, new)
	require.NotNil(t, d)
	require.Equal(t, diffPlaybackStart, d.kind)
}

func TestDiffSongToNoSong(t *testing.T) {
	old := mpd.Status{Song: songStatus(1, 0, 0, time.Minute)}
	new := mpd.Status{}

	d := diff(old, new)
	require.NotNil(t, d)
	require.Equal(t, diffPlaybackStop, d.kind)
}

func TestDiffBothNil(t *testing.T) {
	require.Nil(t, diff(mpd.Status{}, mpd.Status{}))
}

func TestDiffSongChange(t *testing.T) {
	old := mpd.Status{Song: songStatus(1, 0, 0, time.Minute)}
	new := mpd.Status{Song: songStatus(2, 1, 0, time.Minute)}

	d := diff(old, new)
	require.Equal(t, diffSongChange, d.kind)
}

func TestDiffPauseAndResume(t *testing.T) {
	playing := mpd.Status{State: mpd.StatePlaying, Song: songStatus(1, 0, 10*time.Second, time.Minute)}
	paused := mpd.Status{State: mpd.StatePaused, Song: songStatus(1, 0, 11*time.Second, time.Minute)}

	d := diff(playing, paused)
	require.Equal(t, diffPlaybackPause, d.kind)

	d = diff(paused, playing)
	require.Equal(t, diffPlaybackResume, d.kind)
}

func TestDiffOther(t *testing.T) {
	a := mpd.Status{State: mpd.StatePlaying, Song: songStatus(1, 0, 10*time.Second, time.Minute)}
	b := mpd.Status{State: mpd.StatePlaying, Song: songStatus(1, 0, 20*time.Second, time.Minute)}

	d := diff(a, b)
	require.Equal(t, diffOther, d.kind)
}

func TestElapsedNowCapsAtDuration(t *testing.T) {
	event := persist.Event{
		Elapsed:    50 * time.Second,
		RecordedAt: time.Now().Add(-time.Minute),
	}
	require.Equal(t, 20*time.Second, elapsedNow(event, 20*time.Second))
}

func TestProcessInitialFreshStart(t *testing.T) {
	h, err := persist.Open(t.TempDir() + "/history.db")
	require.NoError(t, err)
	defer h.Close()

	queue := []mpd.QueueItem{
		{ID: 9, URI: "file:///a.mp3", Duration: 3 * time.Minute, Tags: mpd.DbTags{Titles: []string{"A"}}},
	}
	status := mpd.Status{Song: songStatus(9, 0, 5*time.Second, 3*time.Minute)}

	st, err := processInitial(h, nil, status, queue)
	require.NoError(t, err)
	require.NotNil(t, st)
	require.Equal(t, initialPlayID, st.event.PlayID)
	require.Equal(t, persist.EventStart, st.event.Kind)
	require.Equal(t, "file:///a.mp3", st.meta.URI)
}

func TestProcessInitialMatchingPlayWithStaleGapStartsNewPlay(t *testing.T) {
	h, err := persist.Open(t.TempDir() + "/history.db")
	require.NoError(t, err)
	defer h.Close()

	queue := []mpd.QueueItem{
		{ID: 9, URI: "file:///a.mp3", Duration: 3 * time.Minute},
	}
	eventID, err := h.PlaybackHistoryEvent().Create(persist.CreateEvent{
		PlayID:     1,
		Kind:       persist.EventStart,
		Elapsed:    5 * time.Second,
		RecordedAt: time.Now().Add(-10 * time.Second),
	})
	require.NoError(t, err)
	event, err := h.PlaybackHistoryEvent().GetByID(eventID)
	require.NoError(t, err)
	require.NoError(t, h.PlaybackHistoryMetadata().CreateAll(persist.CreateMetadata{
		PlayID: 1, PlaylistID: 9, URI: "file:///a.mp3", Duration: 3 * time.Minute,
	}))
	meta, err := h.PlaybackHistoryMetadata().GetByPlayID(1)
	require.NoError(t, err)
	st := &state{event: event, meta: meta}

	// The reported elapsed barely advanced even though ten seconds passed
	// wall-clock-wise: playback was not continuous, and the last event is
	// not a Stop, so the old play is closed and a new one is started.
	status := mpd.Status{Song: songStatus(9, 0, 5500*time.Millisecond, 3*time.Minute)}
	result, err := processInitial(h, st, status, queue)
	require.NoError(t, err)
	require.Equal(t, st.event.PlayID+1, result.event.PlayID)
}

func TestProcessSongChangeStopsAndStartsNewPlay(t *testing.T) {
	queue := []mpd.QueueItem{
		{ID: 1, URI: "file:///a.mp3", Duration: time.Minute},
		{ID: 2, URI: "file:///b.mp3", Duration: time.Minute},
	}
	st := &state{
		event: persist.Event{PlayID: 1, Kind: persist.EventStart, Elapsed: 10 * time.Second, RecordedAt: time.Now()},
		meta:  persist.Metadata{PlayID: 1, PlaylistID: 1, URI: "file:///a.mp3", Duration: time.Minute},
	}

	d := &statusDiff{kind: diffSongChange, song: songStatus(2, 1, 0, time.Minute)}
	changed := process(d, st, queue)
	require.NotNil(t, changed)
	require.Len(t, changed.events, 2)
	require.Equal(t, persist.EventStop, changed.events[0].Kind)
	require.Equal(t, persist.EventStart, changed.events[1].Kind)
	require.NotNil(t, changed.meta)
	require.Equal(t, persist.PlayID(2), changed.meta.PlayID)
}

func TestProcessOtherWithinThresholdIsIgnored(t *testing.T) {
	st := &state{
		event: persist.Event{PlayID: 1, Elapsed: 10 * time.Second, RecordedAt: time.Now()},
		meta:  persist.Metadata{Duration: time.Minute},
	}
	d := &statusDiff{kind: diffOther, song: songStatus(1, 0, 10500*time.Millisecond, time.Minute)}

	require.Nil(t, process(d, st, nil))
}

func TestProcessOtherPastThresholdEmitsSeek(t *testing.T) {
	st := &state{
		event: persist.Event{PlayID: 1, Elapsed: 10 * time.Second, RecordedAt: time.Now()},
		meta:  persist.Metadata{Duration: time.Minute},
	}
	d := &statusDiff{kind: diffOther, song: songStatus(1, 0, 40*time.Second, time.Minute)}

	changed := process(d, st, nil)
	require.NotNil(t, changed)
	require.Equal(t, persist.EventSeek, changed.events[0].Kind)
}
