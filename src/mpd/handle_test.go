package mpd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSubmitReturnsJobResult(t *testing.T) {
	jobs := make(chan job, 1)
	h := &Handle{jobs: jobs}

	go func() {
		j := <-jobs
		j.run(nil)
	}()

	v, err := submit(h, func(s *service) (int, *Error) { return 7, nil })
	require.Nil(t, err)
	require.Equal(t, 7, v)
}

func TestSubmitPropagatesServiceError(t *testing.T) {
	jobs := make(chan job, 1)
	h := &Handle{jobs: jobs}

	go func() {
		j := <-jobs
		j.run(nil)
	}()

	_, err := submit(h, func(s *service) (int, *Error) { return 0, NewError(KindNotFound, "nope") })
	require.NotNil(t, err)
	require.Equal(t, KindNotFound, err.Kind)
}

func TestChangesReturnsUnavailableOnContextCancel(t *testing.T) {
	w := newWatch(idleResult{})
	h := &Handle{idleRecv: w.Receiver()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Changes(ctx)
	require.NotNil(t, err)
	require.Equal(t, KindUnavailable, err.Kind)
}

func TestChangesReturnsPublishedSubsystems(t *testing.T) {
	w := newWatch(idleResult{})
	h := &Handle{idleRecv: w.Receiver()}

	go func() {
		time.Sleep(10 * time.Millisecond)
		w.Send(idleResult{subsystems: []Subsystem{SubsystemQueue}})
	}()

	subs, err := h.Changes(context.Background())
	require.Nil(t, err)
	require.Equal(t, []Subsystem{SubsystemQueue}, subs)
}
