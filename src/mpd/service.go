package mpd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/polyfloyd/trollibox/src/mpd/client"
)

// service wraps one live client.Session and exposes the domain-level
// operations grouped the way the action protocol groups them: db, queue,
// playlists, playback, status, volume.
type service struct {
	session *client.Session
}

func newService(session *client.Session) *service {
	return &service{session: session}
}

func fileFilter(query string) string {
	return fmt.Sprintf(`(file =~ "%s")`, client.Escape(query))
}

func baseFilter(uri string) string {
	return fmt.Sprintf(`(base "%s")`, client.Escape(uri))
}

// uriMatches expands a single file match into itself plus a synthetic
// directory entry for every path segment (other than the basename) whose
// name contains query. MPD can't search for directories directly, so the
// search result has to be reconstructed from the path of every matching
// file.
//
// For example, given query "test" and item.URI
// "alfa/test/beta/test.flac", this returns a Directory for "alfa/test"
// followed by the File itself.
func uriMatches(item DbItem, query string) ([]DbItem, *Error) {
	const pathSeparator = "/"

	if item.Kind != DbItemFile {
		return nil, NewError(KindInternal, "uri matches should only be extracted from files")
	}

	var segments []string
	for _, s := range strings.Split(item.URI, pathSeparator) {
		if s != "" {
			segments = append(segments, s)
		}
	}

	var items []DbItem
	for i, segment := range segments[:max(len(segments)-1, 0)] {
		if !strings.Contains(strings.ToLower(segment), query) {
			continue
		}
		items = append(items, DbItem{
			Kind: DbItemDirectory,
			URI:  strings.Join(segments[:i+1], pathSeparator),
		})
	}

	if len(segments) > 0 && strings.Contains(strings.ToLower(segments[len(segments)-1]), query) {
		items = append(items, item)
	}

	return items, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// DbGet lists the contents of a database directory.
func (s *service) DbGet(uri string) ([]DbItem, *Error) {
	raw, err := s.session.Lsinfo(uri)
	if err != nil {
		return nil, wrapClientErr(err)
	}
	return newDbItems(raw), nil
}

// DbCount returns aggregate stats for every track under uri.
func (s *service) DbCount(uri string) (DbCount, *Error) {
	raw, err := s.session.Count(baseFilter(uri))
	if err != nil {
		return DbCount{}, wrapClientErr(err)
	}
	return newDbCount(raw), nil
}

// DbSearch performs a case-insensitive filename search and reconstructs
// matching pseudo-directories via uriMatches.
func (s *service) DbSearch(query string) ([]DbItem, *Error) {
	query = strings.ToLower(query)

	raw, err := s.session.Search(fileFilter(query))
	if err != nil {
		return nil, wrapClientErr(err)
	}

	var items []DbItem
	for _, r := range raw {
		matches, mErr := uriMatches(newDbItem(r), query)
		if mErr != nil {
			return nil, mErr
		}
		items = append(items, matches...)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return dbItemLess(items[i], items[j])
	})
	items = dedupByURI(items)

	return items, nil
}

func dbItemLess(a, b DbItem) bool {
	if a.Kind == b.Kind {
		return a.URI < b.URI
	}
	if a.Kind == DbItemPlaylist {
		return true
	}
	if b.Kind == DbItemPlaylist {
		return false
	}
	// File sorts after Directory.
	return a.Kind == DbItemDirectory && b.Kind == DbItemFile
}

func dedupByURI(items []DbItem) []DbItem {
	out := items[:0]
	for i, item := range items {
		if i > 0 && item.URI == out[len(out)-1].URI {
			continue
		}
		out = append(out, item)
	}
	return out
}

// DbUpdate rescans the database, optionally rooted at uri.
func (s *service) DbUpdate(uri *string) *Error {
	return wrapClientErr(s.session.Update(uri))
}

// CoverArtKind selects which of MPD's two cover-art sources to query.
type CoverArtKind int

const (
	CoverArtFile CoverArtKind = iota
	CoverArtEmbedded
)

// DbCoverArt fetches the full cover art blob for uri, paging through MPD's
// chunked albumart/readpicture responses until the announced size has been
// consumed.
func (s *service) DbCoverArt(uri string, kind CoverArtKind) ([]byte, *Error) {
	var result []byte
	size := int(^uint(0) >> 1)
	offset := 0

	for offset < size {
		var info client.BinaryInfo
		var data []byte

		switch kind {
		case CoverArtFile:
			bin, err := s.session.Albumart(uri, offset)
			if err != nil {
				return nil, wrapClientErr(err)
			}
			info, data = bin.Info, bin.Data
		case CoverArtEmbedded:
			bin, found, err := s.session.Readpicture(uri, offset)
			if err != nil {
				return nil, wrapClientErr(err)
			}
			if !found {
				return nil, NewError(KindNotFound, "file at uri %q exists, but has no embedded cover art", uri)
			}
			info, data = bin.Info, bin.Data
		}

		size = info.Size
		offset += info.Binary
		result = append(result, data...)
	}

	return result, nil
}

// QueueGet lists the current queue.
func (s *service) QueueGet() ([]QueueItem, *Error) {
	raw, err := s.session.Playlistinfo()
	if err != nil {
		return nil, wrapClientErr(err)
	}
	return newQueueItems(raw), nil
}

// QueueSource is either a single track or a whole stored playlist being
// queued or loaded.
type QueueSource struct {
	URI          string
	PlaylistName string
}

func (qs QueueSource) isPlaylist() bool {
	return qs.PlaylistName != ""
}

// QueueAdd appends source to the end of the current queue.
func (s *service) QueueAdd(source QueueSource) *Error {
	var err error
	if source.isPlaylist() {
		err = s.session.Load(source.PlaylistName)
	} else {
		err = s.session.Add(source.URI)
	}
	return wrapClientErr(err)
}

// QueueReplace clears the queue and loads source in its place.
func (s *service) QueueReplace(source QueueSource) *Error {
	cmds := []client.Command{client.CmdClear}
	if source.isPlaylist() {
		cmds = append(cmds, client.LoadCmd{Name: source.PlaylistName})
	} else {
		cmds = append(cmds, client.AddCmd{URI: source.URI})
	}
	cmds = append(cmds, client.PlayidCmd{SongID: nil})

	return wrapClientErr(s.session.CommandList(cmds...))
}

func (s *service) QueueClear() *Error {
	return wrapClientErr(s.session.Clear())
}

func (s *service) QueueRemove(id int64) *Error {
	return wrapClientErr(s.session.Deleteid(id))
}

func (s *service) QueueNext() *Error {
	return wrapClientErr(s.session.Next())
}

func (s *service) QueuePrev() *Error {
	return wrapClientErr(s.session.Previous())
}

func (s *service) QueueRepeat(state bool) *Error {
	return wrapClientErr(s.session.Repeat(state))
}

func (s *service) QueueConsume(state OneshotState) *Error {
	return wrapClientErr(s.session.Consume(state.ToStateString()))
}

func (s *service) QueueRandom(state bool) *Error {
	return wrapClientErr(s.session.Random(state))
}

func (s *service) QueueSingle(state OneshotState) *Error {
	return wrapClientErr(s.session.Single(state.ToStateString()))
}

// PlaylistsGet lists the tracks of a stored playlist.
func (s *service) PlaylistsGet(name string) ([]DbItem, *Error) {
	raw, err := s.session.Listplaylistinfo(name)
	if err != nil {
		return nil, wrapClientErr(err)
	}
	return newDbItems(raw), nil
}

// PlaylistsList lists the names of stored playlists.
func (s *service) PlaylistsList() ([]Playlist, *Error) {
	raw, err := s.session.Listplaylists()
	if err != nil {
		return nil, wrapClientErr(err)
	}
	return newPlaylists(raw), nil
}

func (s *service) PlaylistsDelete(name string) *Error {
	return wrapClientErr(s.session.Rm(name))
}

// PlaylistsDeleteSongs removes the given track positions from a stored
// playlist in a single command list.
func (s *service) PlaylistsDeleteSongs(name string, positions []int) *Error {
	cmds := make([]client.Command, len(positions))
	for i, pos := range positions {
		cmds[i] = client.PlaylistdeleteCmd{Name: name, SongPos: pos}
	}
	return wrapClientErr(s.session.CommandList(cmds...))
}

func (s *service) PlaybackPlay(id *int64) *Error {
	return wrapClientErr(s.session.Playid(id))
}

func (s *service) PlaybackToggle() *Error {
	return wrapClientErr(s.session.Pause())
}

func (s *service) PlaybackStop() *Error {
	return wrapClientErr(s.session.Stop())
}

func (s *service) PlaybackSeek(time float64) *Error {
	return wrapClientErr(s.session.Seekcur(strconv.FormatFloat(time, 'f', -1, 64)))
}

// StatusGet fetches and validates the current player status.
func (s *service) StatusGet() (Status, *Error) {
	raw, err := s.session.Status()
	if err != nil {
		return Status{}, wrapClientErr(err)
	}
	return newStatus(raw)
}

func (s *service) VolumeSet(value uint8) *Error {
	return wrapClientErr(s.session.Setvol(value))
}
