package client

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnReadFrameAcrossShortReads(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	conn := NewConn(client)

	go func() {
		// Dribble the frame out a few bytes at a time to exercise fill()'s
		// partial-read loop.
		body := []byte("volume: 100\nOK\n")
		for _, chunk := range splitBytes(body, 3) {
			server.Write(chunk)
		}
	}()

	frame, err := conn.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, FrameOk, frame.Kind)
	require.Equal(t, []byte("volume: 100\n"), frame.Body)
}

func TestConnReadFrameReturnsErrClosedWhenPeerClosesBeforeAnyData(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	conn := NewConn(client)
	server.Close()

	_, err := conn.ReadFrame()
	require.ErrorIs(t, err, ErrClosed)
}

func TestConnWriteCommandAppendsNewline(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	conn := NewConn(client)

	done := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 64)
		n, _ := server.Read(buf)
		done <- buf[:n]
	}()

	require.NoError(t, conn.WriteCommand("status"))
	require.Equal(t, []byte("status\n"), <-done)
}

func splitBytes(b []byte, n int) [][]byte {
	var chunks [][]byte
	for len(b) > 0 {
		if n > len(b) {
			n = len(b)
		}
		chunks = append(chunks, b[:n])
		b = b[n:]
	}
	return chunks
}
