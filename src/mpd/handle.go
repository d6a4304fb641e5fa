package mpd

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/polyfloyd/trollibox/src/mpd/client"
)

// actionTimeout bounds how long a Handle method waits for the manager
// goroutine to service a job before giving up with KindUnavailable.
const actionTimeout = 10 * time.Second

// Handle is a cheaply-cloneable, concurrency-safe entry point to one MPD
// server. Internally it owns a single goroutine driving one TCP
// connection; every exported method submits a job to that goroutine and
// waits for its result, racing an actionTimeout.
type Handle struct {
	jobs     chan job
	idleRecv *watchReceiver[idleResult]
}

// NewHandle starts the connection manager goroutine, dialing through
// dial whenever it needs a fresh connection (including the first time, and
// after every disconnect).
func NewHandle(dial func() (*client.Session, error), log logrus.FieldLogger) *Handle {
	mgr := newManager(dial, log)
	go mgr.run()

	return &Handle{jobs: mgr.jobs, idleRecv: mgr.idle.Receiver()}
}

// submit runs fn against the live service through the manager goroutine and
// returns its result, or a KindUnavailable error if the manager doesn't
// service the job within actionTimeout.
func submit[T any](h *Handle, fn func(svc *service) (T, *Error)) (T, *Error) {
	respCh := make(chan struct {
		v   T
		err *Error
	}, 1)

	h.jobs <- job{run: func(svc *service) {
		v, err := fn(svc)
		respCh <- struct {
			v   T
			err *Error
		}{v, err}
	}}

	var zero T
	select {
	case <-time.After(actionTimeout):
		return zero, NewError(KindUnavailable, "action timed out")
	case resp := <-respCh:
		return resp.v, resp.err
	}
}

// DbHandle groups database operations.
type DbHandle struct{ h *Handle }

func (h *Handle) Db() DbHandle { return DbHandle{h} }

func (d DbHandle) Get(uri string) ([]DbItem, *Error) {
	return submit(d.h, func(s *service) ([]DbItem, *Error) { return s.DbGet(uri) })
}

func (d DbHandle) Count(uri string) (DbCount, *Error) {
	return submit(d.h, func(s *service) (DbCount, *Error) { return s.DbCount(uri) })
}

func (d DbHandle) Search(query string) ([]DbItem, *Error) {
	return submit(d.h, func(s *service) ([]DbItem, *Error) { return s.DbSearch(query) })
}

func (d DbHandle) Update(uri *string) *Error {
	_, err := submit(d.h, func(s *service) (struct{}, *Error) { return struct{}{}, s.DbUpdate(uri) })
	return err
}

func (d DbHandle) CoverArt(uri string, kind CoverArtKind) ([]byte, *Error) {
	return submit(d.h, func(s *service) ([]byte, *Error) { return s.DbCoverArt(uri, kind) })
}

// QueueHandle groups queue operations.
type QueueHandle struct{ h *Handle }

func (h *Handle) Queue() QueueHandle { return QueueHandle{h} }

func (q QueueHandle) Get() ([]QueueItem, *Error) {
	return submit(q.h, func(s *service) ([]QueueItem, *Error) { return s.QueueGet() })
}

func (q QueueHandle) Add(source QueueSource) *Error {
	_, err := submit(q.h, func(s *service) (struct{}, *Error) { return struct{}{}, s.QueueAdd(source) })
	return err
}

func (q QueueHandle) Replace(source QueueSource) *Error {
	_, err := submit(q.h, func(s *service) (struct{}, *Error) { return struct{}{}, s.QueueReplace(source) })
	return err
}

func (q QueueHandle) Clear() *Error {
	_, err := submit(q.h, func(s *service) (struct{}, *Error) { return struct{}{}, s.QueueClear() })
	return err
}

func (q QueueHandle) Remove(id int64) *Error {
	_, err := submit(q.h, func(s *service) (struct{}, *Error) { return struct{}{}, s.QueueRemove(id) })
	return err
}

func (q QueueHandle) Next() *Error {
	_, err := submit(q.h, func(s *service) (struct{}, *Error) { return struct{}{}, s.QueueNext() })
	return err
}

func (q QueueHandle) Prev() *Error {
	_, err := submit(q.h, func(s *service) (struct{}, *Error) { return struct{}{}, s.QueuePrev() })
	return err
}

func (q QueueHandle) Repeat(state bool) *Error {
	_, err := submit(q.h, func(s *service) (struct{}, *Error) { return struct{}{}, s.QueueRepeat(state) })
	return err
}

func (q QueueHandle) Consume(state OneshotState) *Error {
	_, err := submit(q.h, func(s *service) (struct{}, *Error) { return struct{}{}, s.QueueConsume(state) })
	return err
}

func (q QueueHandle) Random(state bool) *Error {
	_, err := submit(q.h, func(s *service) (struct{}, *Error) { return struct{}{}, s.QueueRandom(state) })
	return err
}

func (q QueueHandle) Single(state OneshotState) *Error {
	_, err := submit(q.h, func(s *service) (struct{}, *Error) { return struct{}{}, s.QueueSingle(state) })
	return err
}

// PlaylistHandle groups stored-playlist operations.
type PlaylistHandle struct{ h *Handle }

func (h *Handle) Playlists() PlaylistHandle { return PlaylistHandle{h} }

func (p PlaylistHandle) Get(name string) ([]DbItem, *Error) {
	return submit(p.h, func(s *service) ([]DbItem, *Error) { return s.PlaylistsGet(name) })
}

func (p PlaylistHandle) List() ([]Playlist, *Error) {
	return submit(p.h, func(s *service) ([]Playlist, *Error) { return s.PlaylistsList() })
}

func (p PlaylistHandle) Delete(name string) *Error {
	_, err := submit(p.h, func(s *service) (struct{}, *Error) { return struct{}{}, s.PlaylistsDelete(name) })
	return err
}

func (p PlaylistHandle) DeleteSongs(name string, positions []int) *Error {
	_, err := submit(p.h, func(s *service) (struct{}, *Error) {
		return struct{}{}, s.PlaylistsDeleteSongs(name, positions)
	})
	return err
}

// PlaybackHandle groups transport operations.
type PlaybackHandle struct{ h *Handle }

func (h *Handle) Playback() PlaybackHandle { return PlaybackHandle{h} }

func (p PlaybackHandle) Play(id *int64) *Error {
	_, err := submit(p.h, func(s *service) (struct{}, *Error) { return struct{}{}, s.PlaybackPlay(id) })
	return err
}

func (p PlaybackHandle) Toggle() *Error {
	_, err := submit(p.h, func(s *service) (struct{}, *Error) { return struct{}{}, s.PlaybackToggle() })
	return err
}

func (p PlaybackHandle) Stop() *Error {
	_, err := submit(p.h, func(s *service) (struct{}, *Error) { return struct{}{}, s.PlaybackStop() })
	return err
}

func (p PlaybackHandle) Seek(time float64) *Error {
	_, err := submit(p.h, func(s *service) (struct{}, *Error) { return struct{}{}, s.PlaybackSeek(time) })
	return err
}

// StatusHandle groups status operations.
type StatusHandle struct{ h *Handle }

func (h *Handle) Status() StatusHandle { return StatusHandle{h} }

func (st StatusHandle) Get() (Status, *Error) {
	return submit(st.h, func(s *service) (Status, *Error) { return s.StatusGet() })
}

// VolumeHandle groups volume operations.
type VolumeHandle struct{ h *Handle }

func (h *Handle) Volume() VolumeHandle { return VolumeHandle{h} }

func (v VolumeHandle) Set(value uint8) *Error {
	_, err := submit(v.h, func(s *service) (struct{}, *Error) { return struct{}{}, s.VolumeSet(value) })
	return err
}

// Changes blocks until the set of changed subsystems since the last call
// (or since the Handle was created) is known, then returns it.
func (h *Handle) Changes(ctx context.Context) ([]Subsystem, *Error) {
	result, err := h.idleRecv.Changed(ctx)
	if err != nil {
		return nil, NewError(KindUnavailable, "%s", err)
	}
	if result.err != nil {
		return nil, result.err
	}
	return result.subsystems, nil
}
