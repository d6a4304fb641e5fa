package mpd

import (
	"context"
	"time"
)

// statusSubsystems is the set of changes that warrant a fresh Status fetch.
var statusSubsystems = map[Subsystem]bool{
	SubsystemVolume:  true,
	SubsystemPlayer:  true,
	SubsystemOptions: true,
	SubsystemQueue:   true,
}

const batchSleepDuration = 10 * time.Millisecond

// UpdateKind tags what a subscription Update carries.
type UpdateKind int

const (
	UpdateDb UpdateKind = iota
	UpdatePlaylists
	UpdateStatus
	UpdateQueue
)

// Update is one coalesced change notification. Only the field matching
// Kind is populated.
type Update struct {
	Kind   UpdateKind
	Status Status
	Queue  []QueueItem
}

// SubscriptionHandle turns the Handle's raw Changes feed into
// application-level updates: it resolves a Database change hint, a
// Playlist change hint, and fetches the fresh Status/Queue whenever a
// subsystem that affects them changes. Bursts of changes that land inside
// batchSleepDuration of each other are coalesced into one round of
// updates, since MPD commonly reports several subsystems changing back to
// back for a single user action (e.g. a track change touches player and
// playlist).
type SubscriptionHandle struct {
	handle   *Handle
	updates  *watch[updatesResult]
}

type updatesResult struct {
	updates []Update
	err     *Error
}

// NewSubscriptionHandle starts the fan-out goroutine and returns a handle
// to its output.
func NewSubscriptionHandle(handle *Handle) *SubscriptionHandle {
	sh := &SubscriptionHandle{
		handle:  handle,
		updates: newWatch(updatesResult{}),
	}
	go sh.run()
	return sh
}

// Updates blocks until the next coalesced batch of updates is ready.
func (sh *SubscriptionHandle) Updates(ctx context.Context) ([]Update, *Error) {
	result, err := sh.updates.Receiver().Changed(ctx)
	if err != nil {
		return nil, NewError(KindUnavailable, "%s", err)
	}
	return result.updates, result.err
}

func (sh *SubscriptionHandle) run() {
	recv := sh.handle.idleRecv
	ctx := context.Background()
	for {
		updates, err := sh.next(ctx, recv)
		sh.updates.Send(updatesResult{updates: updates, err: err})
	}
}

func (sh *SubscriptionHandle) next(ctx context.Context, recv *watchReceiver[idleResult]) ([]Update, *Error) {
	first, err := recv.Changed(ctx)
	if err != nil {
		return nil, NewError(KindUnavailable, "%s", err)
	}
	if first.err != nil {
		return nil, first.err
	}
	changes := append([]Subsystem(nil), first.subsystems...)

	// Try to batch a quick follow-up burst together with this one.
	batchCtx, cancel := context.WithTimeout(ctx, batchSleepDuration)
	more, moreErr := recv.Changed(batchCtx)
	cancel()
	if moreErr == nil && more.err == nil {
		changes = append(changes, more.subsystems...)
	}

	seen := make(map[Subsystem]bool, len(changes))
	for _, c := range changes {
		seen[c] = true
	}

	var updates []Update
	if seen[SubsystemDatabase] {
		updates = append(updates, Update{Kind: UpdateDb})
	}
	if seen[SubsystemPlaylist] {
		updates = append(updates, Update{Kind: UpdatePlaylists})
	}

	wantStatus := false
	for s := range seen {
		if statusSubsystems[s] {
			wantStatus = true
			break
		}
	}
	if wantStatus {
		status, statusErr := sh.handle.Status().Get()
		if statusErr != nil {
			return nil, statusErr
		}
		updates = append(updates, Update{Kind: UpdateStatus, Status: status})
	}

	if seen[SubsystemQueue] {
		queue, queueErr := sh.handle.Queue().Get()
		if queueErr != nil {
			return nil, queueErr
		}
		updates = append(updates, Update{Kind: UpdateQueue, Queue: queue})
	}

	return updates, nil
}
