package client

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScannerNextAndDone(t *testing.T) {
	sc := NewScanner([]byte("volume: 100\nrepeat: 0\n"))
	require.False(t, sc.Done())

	key, value, err := sc.Next()
	require.NoError(t, err)
	require.Equal(t, "volume", key)
	require.Equal(t, "100", value)

	key, value, err = sc.Next()
	require.NoError(t, err)
	require.Equal(t, "repeat", key)
	require.Equal(t, "0", value)

	require.True(t, sc.Done())
}

func TestScannerPeekDoesNotConsume(t *testing.T) {
	sc := NewScanner([]byte("file: a.mp3\n"))
	key, ok, err := sc.Peek()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "file", key)

	// Peeking again should see the same field.
	key, ok, err = sc.Peek()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "file", key)
}

func TestScannerPeekAtEndOfInput(t *testing.T) {
	sc := NewScanner(nil)
	_, ok, err := sc.Peek()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestScannerTakeSeqGroupsRepeatedKeys(t *testing.T) {
	sc := NewScanner([]byte("Artist: A\nArtist: B\nTitle: Song\n"))
	artists, err := sc.TakeSeq("Artist")
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, artists)

	key, value, err := sc.Next()
	require.NoError(t, err)
	require.Equal(t, "Title", key)
	require.Equal(t, "Song", value)
}

func TestScannerTakeSeqEmptyWhenKeyDoesNotMatch(t *testing.T) {
	sc := NewScanner([]byte("Title: Song\n"))
	values, err := sc.TakeSeq("Artist")
	require.NoError(t, err)
	require.Empty(t, values)

	key, _, err := sc.Next()
	require.NoError(t, err)
	require.Equal(t, "Title", key)
}

func TestScannerNextBinary(t *testing.T) {
	sc := NewScanner(append([]byte{0xA, 0xB, 0xC}, '\n'))
	blob, err := sc.NextBinary(3)
	require.NoError(t, err)
	require.Equal(t, []byte{0xA, 0xB, 0xC}, blob)
	require.True(t, sc.Done())
}

func TestScannerNextBinaryTruncated(t *testing.T) {
	sc := NewScanner([]byte{0xA, 0xB})
	_, err := sc.NextBinary(5)
	require.Error(t, err)
}

func TestScannerSkipValue(t *testing.T) {
	sc := NewScanner([]byte("xfade: 0\nvolume: 50\n"))
	require.NoError(t, sc.SkipValue())
	key, value, err := sc.Next()
	require.NoError(t, err)
	require.Equal(t, "volume", key)
	require.Equal(t, "50", value)
}
