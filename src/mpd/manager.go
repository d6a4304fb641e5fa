package mpd

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/polyfloyd/trollibox/src/mpd/client"
)

// reconnectTimeout is how long the manager waits after a failed connection
// attempt before trying again.
const reconnectTimeout = 5 * time.Second

// idleSubsystems is what every idle command blocks on; the manager itself
// doesn't distinguish between subsystems, it just relays whatever changed.
var idleSubsystems = []Subsystem{
	SubsystemDatabase,
	SubsystemPlaylist,
	SubsystemQueue,
	SubsystemVolume,
	SubsystemPlayer,
	SubsystemOptions,
}

func idleSubsystemNames() []string {
	names := make([]string, len(idleSubsystems))
	for i, s := range idleSubsystems {
		names[i] = s.String()
	}
	return names
}

// manager owns the single TCP connection to MPD and is the only goroutine
// that ever touches it. It serializes idle-blocking reads against incoming
// jobs the way a single mpsc consumer would: either it is blocked inside an
// idle call, in which case an incoming job first sends noidle, or it is
// between idle calls and can run the job immediately.
type manager struct {
	dial    func() (*client.Session, error)
	jobs    chan job
	idle    *watch[idleResult]
	log     logrus.FieldLogger
}

type idleResult struct {
	subsystems []Subsystem
	err        *Error
}

func newManager(dial func() (*client.Session, error), log logrus.FieldLogger) *manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &manager{
		dial: dial,
		jobs: make(chan job, 8),
		idle: newWatch(idleResult{}),
		log:  log,
	}
}

func (m *manager) run() {
	ntries := 0
	for {
		session, err := m.dial()
		if err != nil {
			m.log.WithError(err).Warnf("connection failed, retrying in %s", reconnectTimeout)
			time.Sleep(reconnectTimeout)
			ntries++
			continue
		}

		m.log.Info("connection established")
		if ntries > 0 {
			// Anything could've changed while we were disconnected.
			m.idle.Send(idleResult{subsystems: idleSubsystems})
		}

		disconnected := m.serve(session)
		session.Close()
		if !disconnected {
			// A non-disconnect error ended the session; still worth a
			// backoff so a persistently failing MPD doesn't spin us.
			time.Sleep(reconnectTimeout)
		}
		ntries++
	}
}

// serve runs the idle/job select loop against one live session until the
// connection is lost, returning true if it ended because of a disconnect.
func (m *manager) serve(session *client.Session) bool {
	svc := newService(session)

	type idleOutcome struct {
		changes []client.Change
		err     error
	}
	idleResultCh := make(chan idleOutcome, 1)
	isIdling := false

	startIdle := func() {
		isIdling = true
		go func() {
			changes, err := session.Idle(idleSubsystemNames(), nil)
			idleResultCh <- idleOutcome{changes: changes, err: err}
		}()
	}

	startIdle()

	for {
		select {
		case outcome := <-idleResultCh:
			isIdling = false
			if m.handleChanges(outcome.changes, outcome.err) {
				return true
			}
			startIdle()

		case j := <-m.jobs:
			if isIdling {
				// Only write the interrupt here; the read of its response
				// belongs to the goroutine already blocked inside
				// startIdle's session.Idle call. Reading it again from
				// this goroutine too would race it for the same frame on
				// the connection's unsynchronized buffer.
				writeErr := session.WriteNoidle()
				outcome := <-idleResultCh
				isIdling = false
				if writeErr != nil && outcome.err == nil {
					outcome.err = writeErr
				}
				if m.handleChanges(outcome.changes, outcome.err) {
					return true
				}
			}

			j.run(svc)
			startIdle()
		}
	}
}

// handleChanges converts a raw idle/noidle response into subsystems and
// publishes it, returning true if the connection should be considered
// lost.
func (m *manager) handleChanges(changes []client.Change, err error) bool {
	if err != nil {
		wrapped := wrapClientErr(err)
		m.log.WithError(wrapped).Error("encountered error while handling changes")
		m.idle.Send(idleResult{err: wrapped})
		return wrapped.Kind == KindDisconnected
	}

	if len(changes) == 0 {
		// Expected result of most noidle calls; nothing to publish.
		return false
	}

	subsystems, convErr := toSubsystems(changes)
	if convErr != nil {
		m.log.WithError(convErr).Error("encountered error while handling changes")
		m.idle.Send(idleResult{err: convErr})
		return false
	}

	m.idle.Send(idleResult{subsystems: subsystems})
	return false
}
