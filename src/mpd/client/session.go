package client

import (
	"fmt"
)

// Session is one authenticated, sequential request/response conversation
// with an MPD server. It does not retry or reconnect; that is the
// connection manager's job one layer up.
type Session struct {
	conn *Conn
}

// Connect dials addr over network ("tcp" or "unix"), reads the mandatory
// greeting frame and returns a ready Session.
func Connect(network, addr string) (*Session, error) {
	conn, err := Dial(network, addr)
	if err != nil {
		return nil, err
	}

	frame, err := conn.ReadFrame()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if frame.Kind != FrameVersion {
		conn.Close()
		return nil, fmt.Errorf("mpd: unexpected frame on connect")
	}

	return &Session{conn: conn}, nil
}

// Close closes the underlying connection.
func (s *Session) Close() error {
	return s.conn.Close()
}

// Do renders cmd, sends it, and returns the raw body of the Ok response.
// Ack frames are surfaced as *AckError.
func (s *Session) Do(cmd Command) ([]byte, error) {
	if err := s.conn.WriteCommand(Render(cmd)); err != nil {
		return nil, err
	}

	frame, err := s.conn.ReadFrame()
	if err != nil {
		return nil, err
	}

	switch frame.Kind {
	case FrameOk:
		return frame.Body, nil
	case FrameAck:
		ack, parseErr := ParseAck(frame.Body)
		if parseErr != nil {
			return nil, parseErr
		}
		return nil, &AckError{Ack: ack}
	default:
		return nil, fmt.Errorf("mpd: unexpected version frame mid-session")
	}
}

// AckError wraps a decoded Ack so callers can type-switch on it.
type AckError struct {
	Ack Ack
}

func (e *AckError) Error() string {
	return e.Ack.Message
}

// Add queues a URI onto the end of the current playlist.
func (s *Session) Add(uri string) error {
	_, err := s.Do(AddCmd{URI: uri})
	return err
}

// Load loads a stored playlist onto the end of the current playlist.
func (s *Session) Load(name string) error {
	_, err := s.Do(LoadCmd{Name: name})
	return err
}

// Noidle interrupts a prior idle command, if any was in flight. It writes
// and reads a full round trip, so it must only be called when no other
// goroutine is reading from this Session's connection.
func (s *Session) Noidle() ([]Change, error) {
	body, err := s.Do(CmdNoidle)
	if err != nil {
		return nil, err
	}
	return DecodeChanges(body)
}

// WriteNoidle writes the "noidle" command without reading a response. Use
// this to interrupt a concurrent Idle call whose own ReadFrame is already
// in flight: that call will receive and decode the resulting frame, so
// reading it again here would race it for the same bytes on the
// connection's shared buffer.
func (s *Session) WriteNoidle() error {
	return s.conn.WriteCommand(Render(CmdNoidle))
}

// Clear empties the current playlist.
func (s *Session) Clear() error {
	_, err := s.Do(CmdClear)
	return err
}

// Deleteid removes a song from the queue by id.
func (s *Session) Deleteid(songID int64) error {
	_, err := s.Do(DeleteidCmd{SongID: songID})
	return err
}

// Playid resumes playback at songID, or at the current position if nil.
func (s *Session) Playid(songID *int64) error {
	_, err := s.Do(PlayidCmd{SongID: songID})
	return err
}

func (s *Session) Pause() error {
	_, err := s.Do(CmdPause)
	return err
}

func (s *Session) Stop() error {
	_, err := s.Do(CmdStop)
	return err
}

func (s *Session) Next() error {
	_, err := s.Do(CmdNext)
	return err
}

func (s *Session) Previous() error {
	_, err := s.Do(CmdPrevious)
	return err
}

// Count returns aggregate stats for songs matching filter.
func (s *Session) Count(filter string) (DbCount, error) {
	body, err := s.Do(CountCmd{Filter: filter})
	if err != nil {
		return DbCount{}, err
	}
	return DecodeDbCount(body)
}

// Lsinfo lists the contents of a database directory.
func (s *Session) Lsinfo(uri string) ([]DbItem, error) {
	body, err := s.Do(LsinfoCmd{URI: uri})
	if err != nil {
		return nil, err
	}
	return DecodeDbItems(body)
}

// Search performs a case-insensitive database search.
func (s *Session) Search(filter string) ([]DbItem, error) {
	body, err := s.Do(SearchCmd{Filter: filter})
	if err != nil {
		return nil, err
	}
	return DecodeDbItems(body)
}

// Playlistinfo lists the current queue.
func (s *Session) Playlistinfo() ([]PlaylistItem, error) {
	body, err := s.Do(CmdPlaylistinfo)
	if err != nil {
		return nil, err
	}
	return DecodePlaylistItems(body)
}

// Listplaylists lists the names of stored playlists.
func (s *Session) Listplaylists() ([]Playlist, error) {
	body, err := s.Do(CmdListplaylist)
	if err != nil {
		return nil, err
	}
	return DecodePlaylists(body)
}

// Listplaylistinfo lists the tracks of a stored playlist.
func (s *Session) Listplaylistinfo(name string) ([]DbItem, error) {
	body, err := s.Do(ListplaylistinfoCmd{Name: name})
	if err != nil {
		return nil, err
	}
	return DecodeDbItems(body)
}

// Rm deletes a stored playlist.
func (s *Session) Rm(name string) error {
	_, err := s.Do(RmCmd{Name: name})
	return err
}

// Status fetches the current player status.
func (s *Session) Status() (Status, error) {
	body, err := s.Do(CmdStatus)
	if err != nil {
		return Status{}, err
	}
	return DecodeStatus(body)
}

// Password authenticates the connection.
func (s *Session) Password(pass string) error {
	_, err := s.Do(PasswordCmd{Password: pass})
	return err
}

// Update rescans the database, optionally rooted at uri.
func (s *Session) Update(uri *string) error {
	_, err := s.Do(UpdateCmd{URI: uri})
	return err
}

// Seekcur seeks the currently playing song.
func (s *Session) Seekcur(time string) error {
	_, err := s.Do(SeekcurCmd{Time: time})
	return err
}

// Setvol sets the output volume, 0-100.
func (s *Session) Setvol(vol uint8) error {
	_, err := s.Do(SetvolCmd{Vol: vol})
	return err
}

// Albumart fetches one chunk of embedded-file cover art.
func (s *Session) Albumart(uri string, offset int) (Binary, error) {
	body, err := s.Do(AlbumartCmd{URI: uri, Offset: offset})
	if err != nil {
		return Binary{}, err
	}
	return DecodeBinary(body)
}

// Readpicture fetches one chunk of embedded picture metadata. MPD answers
// an empty Ok body when the track carries no separate picture, which
// DecodeBinary can't parse as a header; the found return value is false
// in that case and callers must not treat it as an error.
func (s *Session) Readpicture(uri string, offset int) (bin Binary, found bool, err error) {
	body, err := s.Do(ReadpictureCmd{URI: uri, Offset: offset})
	if err != nil {
		return Binary{}, false, err
	}
	if len(body) == 0 {
		return Binary{}, false, nil
	}
	bin, err = DecodeBinary(body)
	return bin, true, err
}

func (s *Session) Repeat(state bool) error {
	_, err := s.Do(RepeatCmd{State: toStateString(state)})
	return err
}

func (s *Session) Consume(state string) error {
	_, err := s.Do(ConsumeCmd{State: state})
	return err
}

func (s *Session) Random(state bool) error {
	_, err := s.Do(RandomCmd{State: toStateString(state)})
	return err
}

func (s *Session) Single(state string) error {
	_, err := s.Do(SingleCmd{State: state})
	return err
}

func toStateString(state bool) string {
	if state {
		return "1"
	}
	return "0"
}

// Idle blocks until one of subsystems changes, calling onIdle once the
// command has been written so the caller can release a lock or otherwise
// signal that it is now safe to issue a concurrent Noidle.
func (s *Session) Idle(subsystems []string, onIdle func()) ([]Change, error) {
	if err := s.conn.WriteCommand(Render(IdleCmd{Subsystems: subsystems})); err != nil {
		return nil, err
	}
	if onIdle != nil {
		onIdle()
	}

	frame, err := s.conn.ReadFrame()
	if err != nil {
		return nil, err
	}
	switch frame.Kind {
	case FrameOk:
		return DecodeChanges(frame.Body)
	case FrameAck:
		ack, parseErr := ParseAck(frame.Body)
		if parseErr != nil {
			return nil, parseErr
		}
		return nil, &AckError{Ack: ack}
	default:
		return nil, fmt.Errorf("mpd: unexpected version frame mid-session")
	}
}

// CommandList executes cmds as a single command_list_begin/_end batch.
func (s *Session) CommandList(cmds ...Command) error {
	_, err := s.Do(CommandList{Commands: cmds})
	return err
}
