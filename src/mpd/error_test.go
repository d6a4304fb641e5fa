package mpd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polyfloyd/trollibox/src/mpd/client"
)

func TestErrorStringFormatsKindAndMessage(t *testing.T) {
	err := NewError(KindNotFound, "track %q is gone", "a.mp3")
	require.Equal(t, `not found: track "a.mp3" is gone`, err.Error())
}

func TestWrapClientErrReturnsNilForNilInput(t *testing.T) {
	require.Nil(t, wrapClientErr(nil))
}

func TestWrapClientErrMapsClosedConnection(t *testing.T) {
	err := wrapClientErr(client.ErrClosed)
	require.Equal(t, KindDisconnected, err.Kind)
}

func TestWrapClientErrMapsAckCodes(t *testing.T) {
	cases := []struct {
		code int8
		want ErrorKind
	}{
		{client.AckCodePermission, KindForbidden},
		{client.AckCodeNoExist, KindNotFound},
		{client.AckCodeExist, KindAlreadyExists},
		{99, KindInternal},
	}
	for _, c := range cases {
		ackErr := &client.AckError{Ack: client.Ack{Code: c.code, Message: "boom"}}
		err := wrapClientErr(ackErr)
		require.Equal(t, c.want, err.Kind)
		require.Equal(t, "boom", err.Message)
	}
}

func TestWrapClientErrFallsBackToInternal(t *testing.T) {
	err := wrapClientErr(errors.New("weird"))
	require.Equal(t, KindInternal, err.Kind)
	require.Equal(t, "weird", err.Message)
}
