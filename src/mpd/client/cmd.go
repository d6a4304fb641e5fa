package client

import "strings"

// Command is anything that can be rendered into a single MPD command line
// (or, for CommandList, several).
type Command interface {
	render() string
}

func escape(arg string) string {
	var b strings.Builder
	b.Grow(len(arg))
	for _, c := range arg {
		if c == '"' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// Escape escapes a string the way MPD commands escape quoted arguments,
// without surrounding it in quotes. Exposed for callers (the service layer)
// that embed escaped fragments inside filter expressions.
func Escape(arg string) string {
	return escape(arg)
}

func quote(arg string) string {
	return `"` + escape(arg) + `"`
}

type simpleCommand string

func (c simpleCommand) render() string { return string(c) }

var (
	CmdPause        Command = simpleCommand("pause")
	CmdStop         Command = simpleCommand("stop")
	CmdNext         Command = simpleCommand("next")
	CmdPrevious     Command = simpleCommand("previous")
	CmdNoidle       Command = simpleCommand("noidle")
	CmdClear        Command = simpleCommand("clear")
	CmdStatus       Command = simpleCommand("status")
	CmdPlaylistinfo Command = simpleCommand("playlistinfo")
	CmdListplaylist Command = simpleCommand("listplaylists")
)

// AddCmd queues a URI onto the end of the current playlist.
type AddCmd struct{ URI string }

func (c AddCmd) render() string { return "add " + quote(c.URI) }

// LoadCmd loads a stored playlist onto the end of the current playlist.
type LoadCmd struct{ Name string }

func (c LoadCmd) render() string { return "load " + quote(c.Name) }

// PlayidCmd resumes playback at SongID, or at the current position if
// SongID is nil — this renders with a trailing space and empty argument,
// which is how MPD spells "resume at current position".
type PlayidCmd struct{ SongID *int64 }

func (c PlayidCmd) render() string {
	if c.SongID == nil {
		return "playid "
	}
	return "playid " + itoa(*c.SongID)
}

// DeleteidCmd removes the song with the given id from the queue.
type DeleteidCmd struct{ SongID int64 }

func (c DeleteidCmd) render() string { return "deleteid " + itoa(c.SongID) }

// CountCmd returns aggregate stats (song count, playtime) for songs
// matching Filter.
type CountCmd struct{ Filter string }

func (c CountCmd) render() string { return "count " + quote(c.Filter) }

// LsinfoCmd lists the contents of a database directory.
type LsinfoCmd struct{ URI string }

func (c LsinfoCmd) render() string { return "lsinfo " + quote(c.URI) }

// SearchCmd performs a case-insensitive database search.
type SearchCmd struct{ Filter string }

func (c SearchCmd) render() string { return "search " + quote(c.Filter) }

// ListplaylistinfoCmd lists the tracks of a stored playlist.
type ListplaylistinfoCmd struct{ Name string }

func (c ListplaylistinfoCmd) render() string { return "listplaylistinfo " + quote(c.Name) }

// RmCmd deletes a stored playlist.
type RmCmd struct{ Name string }

func (c RmCmd) render() string { return "rm " + quote(c.Name) }

// PlaylistdeleteCmd removes one song, by playlist position, from a stored
// playlist.
type PlaylistdeleteCmd struct {
	Name    string
	SongPos int
}

func (c PlaylistdeleteCmd) render() string {
	return "playlistdelete " + quote(c.Name) + " " + itoa(int64(c.SongPos))
}

// PasswordCmd authenticates the connection.
type PasswordCmd struct{ Password string }

func (c PasswordCmd) render() string { return "password " + quote(c.Password) }

// UpdateCmd rescans the database, optionally rooted at URI.
type UpdateCmd struct{ URI *string }

func (c UpdateCmd) render() string {
	if c.URI == nil {
		return "update"
	}
	return "update " + quote(*c.URI)
}

// SeekcurCmd seeks the currently playing song.
type SeekcurCmd struct{ Time string }

func (c SeekcurCmd) render() string { return "seekcur " + quote(c.Time) }

// SetvolCmd sets the output volume, 0-100.
type SetvolCmd struct{ Vol uint8 }

func (c SetvolCmd) render() string { return "setvol " + itoa(int64(c.Vol)) }

// AlbumartCmd fetches a chunk of embedded-file cover art starting at Offset.
type AlbumartCmd struct {
	URI    string
	Offset int
}

func (c AlbumartCmd) render() string {
	return "albumart " + quote(c.URI) + " " + itoa(int64(c.Offset))
}

// ReadpictureCmd fetches a chunk of embedded picture metadata starting at
// Offset.
type ReadpictureCmd struct {
	URI    string
	Offset int
}

func (c ReadpictureCmd) render() string {
	return "readpicture " + quote(c.URI) + " " + itoa(int64(c.Offset))
}

// RepeatCmd toggles repeat mode.
type RepeatCmd struct{ State string }

func (c RepeatCmd) render() string { return "repeat " + quote(c.State) }

// ConsumeCmd toggles consume mode.
type ConsumeCmd struct{ State string }

func (c ConsumeCmd) render() string { return "consume " + quote(c.State) }

// RandomCmd toggles random mode.
type RandomCmd struct{ State string }

func (c RandomCmd) render() string { return "random " + quote(c.State) }

// SingleCmd toggles single mode.
type SingleCmd struct{ State string }

func (c SingleCmd) render() string { return "single " + quote(c.State) }

// IdleCmd blocks the connection until one of Subsystems changes.
type IdleCmd struct{ Subsystems []string }

func (c IdleCmd) render() string {
	quoted := make([]string, len(c.Subsystems))
	for i, s := range c.Subsystems {
		quoted[i] = quote(s)
	}
	return "idle " + strings.Join(quoted, " ")
}

// CommandList renders xs as a single command_list_begin/_end batch. MPD
// answers with one Ok frame concatenating every inner command's response.
type CommandList struct{ Commands []Command }

func (c CommandList) render() string {
	var b strings.Builder
	b.WriteString("command_list_begin\n")
	for _, cmd := range c.Commands {
		b.WriteString(cmd.render())
		b.WriteByte('\n')
	}
	b.WriteString("command_list_end")
	return b.String()
}

// Render renders cmd into the line(s) that should be written to the
// connection, without a trailing newline.
func Render(cmd Command) string {
	return cmd.render()
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
