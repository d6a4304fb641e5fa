package client

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeStatusFull(t *testing.T) {
	body := []byte(
		"volume: 80\n" +
			"repeat: 1\n" +
			"random: 0\n" +
			"single: 0\n" +
			"consume: 1\n" +
			"playlistlength: 12\n" +
			"state: play\n" +
			"song: 3\n" +
			"songid: 42\n" +
			"elapsed: 10.5\n" +
			"duration: 180.2\n" +
			"xfade: 5\n",
	)

	st, err := DecodeStatus(body)
	require.NoError(t, err)
	require.EqualValues(t, 80, st.Volume)
	require.EqualValues(t, 1, st.Repeat)
	require.EqualValues(t, 0, st.Random)
	require.Equal(t, "0", st.Single)
	require.Equal(t, "1", st.Consume)
	require.Equal(t, "play", st.State)
	require.Equal(t, 12, st.PlaylistLength)
	require.NotNil(t, st.Song)
	require.EqualValues(t, 3, *st.Song)
	require.NotNil(t, st.SongID)
	require.EqualValues(t, 42, *st.SongID)
	require.InDelta(t, 10.5, *st.Elapsed, 0.001)
	require.InDelta(t, 180.2, *st.Duration, 0.001)
}

func TestDecodeStatusWithoutSong(t *testing.T) {
	st, err := DecodeStatus([]byte("volume: -1\nrepeat: 0\nrandom: 0\nsingle: 0\nconsume: 0\nplaylistlength: 0\nstate: stop\n"))
	require.NoError(t, err)
	require.Nil(t, st.Song)
	require.Nil(t, st.SongID)
	require.Nil(t, st.Elapsed)
	require.Nil(t, st.Duration)
}

func TestDecodeChanges(t *testing.T) {
	changes, err := DecodeChanges([]byte("changed: player\nchanged: mixer\n"))
	require.NoError(t, err)
	require.Equal(t, []Change{{Changed: "player"}, {Changed: "mixer"}}, changes)
}

func TestDecodeDbCount(t *testing.T) {
	c, err := DecodeDbCount([]byte("songs: 120\nplaytime: 36000\n"))
	require.NoError(t, err)
	require.EqualValues(t, 120, c.Songs)
	require.EqualValues(t, 36000, c.Playtime)
}

func TestDecodeDbItemsMixedShapes(t *testing.T) {
	body := []byte(
		"directory: Music/Artist\n" +
			"playlist: Favorites\n" +
			"file: Music/Artist/song.mp3\n" +
			"duration: 200.5\n" +
			"Artist: The Artist\n" +
			"Title: The Song\n" +
			"file: Music/Artist/song2.mp3\n" +
			"Title: Other Song\n",
	)

	items, err := DecodeDbItems(body)
	require.NoError(t, err)
	require.Len(t, items, 4)

	require.Equal(t, DbItemKindDirectory, items[0].Kind)
	require.Equal(t, "Music/Artist", items[0].Directory)

	require.Equal(t, DbItemKindPlaylist, items[1].Kind)
	require.Equal(t, "Favorites", items[1].Playlist)

	require.Equal(t, DbItemKindFile, items[2].Kind)
	require.Equal(t, "Music/Artist/song.mp3", items[2].File)
	require.NotNil(t, items[2].Duration)
	require.InDelta(t, 200.5, *items[2].Duration, 0.001)
	require.Equal(t, []string{"The Artist"}, items[2].Artist)
	require.Equal(t, []string{"The Song"}, items[2].Title)

	require.Equal(t, DbItemKindFile, items[3].Kind)
	require.Equal(t, []string{"Other Song"}, items[3].Title)
}

func TestDecodePlaylistItemsResyncsOnSecondFile(t *testing.T) {
	body := []byte(
		"file: a.mp3\n" +
			"Id: 1\n" +
			"Pos: 0\n" +
			"duration: 100\n" +
			"Artist: A\n" +
			"file: b.mp3\n" +
			"Id: 2\n" +
			"Pos: 1\n" +
			"duration: 90\n",
	)

	items, err := DecodePlaylistItems(body)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "a.mp3", items[0].File)
	require.EqualValues(t, 1, items[0].ID)
	require.Equal(t, []string{"A"}, items[0].Artist)
	require.Equal(t, "b.mp3", items[1].File)
	require.EqualValues(t, 2, items[1].ID)
}

func TestDecodePlaylists(t *testing.T) {
	body := []byte(
		"playlist: Favorites\n" +
			"Last-Modified: 2024-01-01T00:00:00Z\n" +
			"playlist: Chill\n" +
			"Last-Modified: 2024-02-02T00:00:00Z\n",
	)

	lists, err := DecodePlaylists(body)
	require.NoError(t, err)
	require.Len(t, lists, 2)
	require.Equal(t, "Favorites", lists[0].Playlist)
	require.Equal(t, "Chill", lists[1].Playlist)
}

func TestDecodeBinary(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	body := append([]byte("size: 4\nbinary: 4\n"), append(append([]byte{}, data...), '\n')...)

	bin, err := DecodeBinary(body)
	require.NoError(t, err)
	require.Equal(t, 4, bin.Info.Size)
	require.Equal(t, 4, bin.Info.Binary)
	require.Equal(t, data, bin.Data)
}

func TestDecodeBinaryMissingBlob(t *testing.T) {
	_, err := DecodeBinary([]byte("size: 4\n"))
	require.Error(t, err)
}
