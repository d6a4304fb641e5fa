package persist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMetadataRepoRoundTrip(t *testing.T) {
	h := openTestHandle(t)
	meta := h.PlaybackHistoryMetadata()

	err := meta.CreateAll(CreateMetadata{
		PlayID:     7,
		PlaylistID: 3,
		URI:        "spotify:track:abc",
		Duration:   3*time.Minute + 30*time.Second,
		Titles:     []string{"A Song"},
		Artists:    []string{"An Artist", "Featured Artist"},
		Albums:     []string{"An Album"},
	})
	require.NoError(t, err)

	got, err := meta.GetByPlayID(7)
	require.NoError(t, err)
	require.Equal(t, PlayID(7), got.PlayID)
	require.Equal(t, int64(3), got.PlaylistID)
	require.Equal(t, "spotify:track:abc", got.URI)
	require.InDelta(t, 210, got.Duration.Seconds(), 0.001)
	require.Equal(t, []string{"A Song"}, got.Titles)
	require.ElementsMatch(t, []string{"An Artist", "Featured Artist"}, got.Artists)
	require.Equal(t, []string{"An Album"}, got.Albums)
}

func TestMetadataRepoGetAllByPlayID(t *testing.T) {
	h := openTestHandle(t)
	meta := h.PlaybackHistoryMetadata()

	require.NoError(t, meta.CreateAll(CreateMetadata{PlayID: 1, URI: "a", Titles: []string{"Song A"}}))
	require.NoError(t, meta.CreateAll(CreateMetadata{PlayID: 2, URI: "b", Titles: []string{"Song B"}}))

	none, err := meta.GetAllByPlayID(nil)
	require.NoError(t, err)
	require.Empty(t, none)

	all, err := meta.GetAllByPlayID([]PlayID{1, 2})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "a", all[1].URI)
	require.Equal(t, "b", all[2].URI)
}

func TestMetadataRepoIncompleteRowsError(t *testing.T) {
	h := openTestHandle(t)
	meta := h.PlaybackHistoryMetadata()

	_, err := meta.GetByPlayID(999)
	require.Error(t, err)
}
