package mpd

import (
	"strconv"
	"strings"
	"time"

	"github.com/polyfloyd/trollibox/src/mpd/client"
)

// PlaybackState mirrors MPD's "state" status field.
type PlaybackState int

const (
	StatePlaying PlaybackState = iota
	StateStopped
	StatePaused
)

func parsePlaybackState(s string) (PlaybackState, *Error) {
	switch s {
	case "play":
		return StatePlaying, nil
	case "stop":
		return StateStopped, nil
	case "pause":
		return StatePaused, nil
	default:
		return 0, NewError(KindInternal, "unknown state %q", s)
	}
}

// OneshotState mirrors the three-way "single"/"consume" status fields.
type OneshotState int

const (
	OneshotOn OneshotState = iota
	OneshotOff
	OneshotOneshot
)

func parseOneshotState(s string) (OneshotState, *Error) {
	switch s {
	case "1":
		return OneshotOn, nil
	case "0":
		return OneshotOff, nil
	case "oneshot":
		return OneshotOneshot, nil
	default:
		return 0, NewError(KindInternal, "unknown oneshot state %q", s)
	}
}

// ToStateString renders a OneshotState back into the wire form MPD's
// single/consume commands expect.
func (s OneshotState) ToStateString() string {
	switch s {
	case OneshotOn:
		return "1"
	case OneshotOff:
		return "0"
	case OneshotOneshot:
		return "oneshot"
	default:
		return "0"
	}
}

// ToStateString renders a bool as the "0"/"1" MPD expects for repeat/random.
func ToStateString(state bool) string {
	if state {
		return "1"
	}
	return "0"
}

// SongStatus describes the song currently loaded for playback.
type SongStatus struct {
	ID       int64
	Position int64
	Elapsed  time.Duration
	Duration time.Duration
}

// QueueStatus describes the current playlist's aggregate state.
type QueueStatus struct {
	Length int
}

// Status is the domain-level, validated counterpart of client.Status.
type Status struct {
	Volume  int8
	Repeat  bool
	Random  bool
	State   PlaybackState
	Single  OneshotState
	Consume OneshotState
	Song    *SongStatus
	Queue   QueueStatus
}

func toBool(v int8) (bool, *Error) {
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, NewError(KindInternal, "unknown boolean value %d", v)
	}
}

// newStatus validates and converts a raw client.Status.
func newStatus(raw client.Status) (Status, *Error) {
	repeat, err := toBool(raw.Repeat)
	if err != nil {
		return Status{}, err
	}
	random, err := toBool(raw.Random)
	if err != nil {
		return Status{}, err
	}
	single, err := parseOneshotState(raw.Single)
	if err != nil {
		return Status{}, err
	}
	consume, err := parseOneshotState(raw.Consume)
	if err != nil {
		return Status{}, err
	}
	state, err := parsePlaybackState(raw.State)
	if err != nil {
		return Status{}, err
	}

	var song *SongStatus
	if raw.SongID != nil && raw.Song != nil && raw.Elapsed != nil && raw.Duration != nil {
		song = &SongStatus{
			ID:       *raw.SongID,
			Position: *raw.Song,
			Elapsed:  durationFromSecsF64(*raw.Elapsed),
			Duration: durationFromSecsF64(*raw.Duration),
		}
	}

	return Status{
		Volume:  raw.Volume,
		Repeat:  repeat,
		Random:  random,
		State:   state,
		Single:  single,
		Consume: consume,
		Song:    song,
		Queue:   QueueStatus{Length: raw.PlaylistLength},
	}, nil
}

func durationFromSecsF64(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Subsystem is one of the change categories MPD's idle command recognizes.
type Subsystem int

const (
	SubsystemDatabase Subsystem = iota
	SubsystemPlaylist
	SubsystemQueue
	SubsystemPlayer
	SubsystemVolume
	SubsystemOptions
)

const (
	subsystemDatabaseValue = "database"
	subsystemPlaylistValue = "stored_playlist"
	subsystemQueueValue    = "playlist"
	subsystemPlayerValue   = "player"
	subsystemVolumeValue   = "mixer"
	subsystemOptionsValue  = "options"
)

func parseSubsystem(s string) (Subsystem, *Error) {
	switch s {
	case subsystemDatabaseValue:
		return SubsystemDatabase, nil
	case subsystemPlaylistValue:
		return SubsystemPlaylist, nil
	case subsystemQueueValue:
		return SubsystemQueue, nil
	case subsystemPlayerValue:
		return SubsystemPlayer, nil
	case subsystemVolumeValue:
		return SubsystemVolume, nil
	case subsystemOptionsValue:
		return SubsystemOptions, nil
	default:
		return 0, NewError(KindInternal, "unknown subsystem %q", s)
	}
}

// String renders the subsystem back into the wire value "idle" reports.
func (s Subsystem) String() string {
	switch s {
	case SubsystemDatabase:
		return subsystemDatabaseValue
	case SubsystemPlaylist:
		return subsystemPlaylistValue
	case SubsystemQueue:
		return subsystemQueueValue
	case SubsystemPlayer:
		return subsystemPlayerValue
	case SubsystemVolume:
		return subsystemVolumeValue
	case SubsystemOptions:
		return subsystemOptionsValue
	default:
		return "unknown"
	}
}

// toSubsystems converts the raw idle response into validated Subsystems.
func toSubsystems(changes []client.Change) ([]Subsystem, *Error) {
	out := make([]Subsystem, len(changes))
	for i, c := range changes {
		s, err := parseSubsystem(c.Changed)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// DbCount is the domain-level counterpart of client.DbCount.
type DbCount struct {
	NSongs   int64
	Playtime time.Duration
}

func newDbCount(raw client.DbCount) DbCount {
	return DbCount{
		NSongs:   raw.Songs,
		Playtime: time.Duration(raw.Playtime) * time.Second,
	}
}

// DbAudioFormat is MPD's "samplerate:bits:channels" format string, parsed.
type DbAudioFormat struct {
	BitDepth          int64
	SamplingRate      int64
	NumberOfChannels  int64
}

func parseDbAudioFormat(s string) DbAudioFormat {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return DbAudioFormat{BitDepth: -1, SamplingRate: -1, NumberOfChannels: -1}
	}
	parseOr := func(s string) int64 {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return -1
		}
		return n
	}
	return DbAudioFormat{
		SamplingRate:     parseOr(parts[0]),
		BitDepth:         parseOr(parts[1]),
		NumberOfChannels: parseOr(parts[2]),
	}
}

// DbTags groups the repeatable text tags a track can carry.
type DbTags struct {
	Titles  []string
	Artists []string
	Albums  []string
}

// DbItemKind tags the three shapes a database listing entry can take.
type DbItemKind int

const (
	DbItemFile DbItemKind = iota
	DbItemDirectory
	DbItemPlaylist
)

// DbItem is the domain-level counterpart of client.DbItem.
type DbItem struct {
	Kind     DbItemKind
	URI      string
	Duration *time.Duration
	Tags     DbTags
	Format   *DbAudioFormat
}

func newDbItem(raw client.DbItem) DbItem {
	switch raw.Kind {
	case client.DbItemKindDirectory:
		return DbItem{Kind: DbItemDirectory, URI: raw.Directory}
	case client.DbItemKindPlaylist:
		return DbItem{Kind: DbItemPlaylist, URI: raw.Playlist}
	default:
		item := DbItem{
			Kind: DbItemFile,
			URI:  raw.File,
			Tags: DbTags{
				Titles:  raw.Title,
				Artists: raw.Artist,
				Albums:  raw.Album,
			},
		}
		if raw.Duration != nil {
			d := durationFromSecsF64(*raw.Duration)
			item.Duration = &d
		}
		if raw.Format != nil {
			f := parseDbAudioFormat(*raw.Format)
			item.Format = &f
		}
		return item
	}
}

func newDbItems(raw []client.DbItem) []DbItem {
	out := make([]DbItem, len(raw))
	for i, r := range raw {
		out[i] = newDbItem(r)
	}
	return out
}

// QueueItem is the domain-level counterpart of client.PlaylistItem.
type QueueItem struct {
	ID       int64
	Position int64
	URI      string
	Duration time.Duration
	Tags     DbTags
	Format   *DbAudioFormat
}

func newQueueItem(raw client.PlaylistItem) QueueItem {
	item := QueueItem{
		ID:       raw.ID,
		Position: raw.Pos,
		URI:      raw.File,
		Duration: durationFromSecsF64(raw.Duration),
		Tags: DbTags{
			Titles:  raw.Title,
			Artists: raw.Artist,
			Albums:  raw.Album,
		},
	}
	if raw.Format != nil {
		f := parseDbAudioFormat(*raw.Format)
		item.Format = &f
	}
	return item
}

func newQueueItems(raw []client.PlaylistItem) []QueueItem {
	out := make([]QueueItem, len(raw))
	for i, r := range raw {
		out[i] = newQueueItem(r)
	}
	return out
}

// Playlist is the domain-level counterpart of client.Playlist.
type Playlist struct {
	Name      string
	UpdatedAt string
}

func newPlaylist(raw client.Playlist) Playlist {
	return Playlist{Name: raw.Playlist, UpdatedAt: raw.LastModified}
}

func newPlaylists(raw []client.Playlist) []Playlist {
	out := make([]Playlist, len(raw))
	for i, r := range raw {
		out[i] = newPlaylist(r)
	}
	return out
}
