package client

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAck(t *testing.T) {
	ack, err := ParseAck([]byte(`[5@0] {} unknown command "err"`))
	require.NoError(t, err)
	require.Equal(t, Ack{
		Code:         5,
		Message:      `unknown command "err"`,
		Command:      nil,
		CommandIndex: 0,
	}, ack)
}

func TestParseAckWithCommand(t *testing.T) {
	ack, err := ParseAck([]byte(`[4@0] {lsinfo} you don't have permission for "lsinfo"`))
	require.NoError(t, err)
	require.Equal(t, int8(AckCodePermission), ack.Code)
	require.Equal(t, `you don't have permission for "lsinfo"`, ack.Message)
	require.NotNil(t, ack.Command)
	require.Equal(t, "lsinfo", *ack.Command)
	require.EqualValues(t, 0, ack.CommandIndex)
}

func TestParseAckMalformed(t *testing.T) {
	_, err := ParseAck([]byte(`4@0] {lsinfo} you don't have permission for "lsinfo"`))
	require.Error(t, err)
}
