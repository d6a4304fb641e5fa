package client

import (
	"fmt"
	"strconv"
)

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

func parseInt(s string, bits int) (int64, error) {
	return strconv.ParseInt(s, 10, bits)
}

func parseUint(s string, bits int) (uint64, error) {
	return strconv.ParseUint(s, 10, bits)
}

// DecodeStatus decodes the response to the "status" command.
func DecodeStatus(body []byte) (Status, error) {
	sc := NewScanner(body)
	var st Status
	for !sc.Done() {
		key, value, err := sc.Next()
		if err != nil {
			return Status{}, err
		}
		switch key {
		case "volume":
			n, err := parseInt(value, 8)
			if err != nil {
				return Status{}, err
			}
			st.Volume = int8(n)
		case "repeat":
			n, err := parseInt(value, 8)
			if err != nil {
				return Status{}, err
			}
			st.Repeat = int8(n)
		case "random":
			n, err := parseInt(value, 8)
			if err != nil {
				return Status{}, err
			}
			st.Random = int8(n)
		case "single":
			st.Single = value
		case "consume":
			st.Consume = value
		case "state":
			st.State = value
		case "elapsed":
			f, err := parseFloat(value)
			if err != nil {
				return Status{}, err
			}
			st.Elapsed = &f
		case "duration":
			f, err := parseFloat(value)
			if err != nil {
				return Status{}, err
			}
			st.Duration = &f
		case "song":
			n, err := parseInt(value, 64)
			if err != nil {
				return Status{}, err
			}
			st.Song = &n
		case "songid":
			n, err := parseInt(value, 64)
			if err != nil {
				return Status{}, err
			}
			st.SongID = &n
		case "playlistlength":
			n, err := parseInt(value, 64)
			if err != nil {
				return Status{}, err
			}
			st.PlaylistLength = int(n)
		default:
			// Ignore fields this client doesn't model (e.g. xfade, mixrampdb).
		}
	}
	return st, nil
}

// DecodeChanges decodes the response to "idle"/"noidle".
func DecodeChanges(body []byte) ([]Change, error) {
	sc := NewScanner(body)
	values, err := sc.TakeSeq("changed")
	if err != nil {
		return nil, err
	}
	changes := make([]Change, len(values))
	for i, v := range values {
		changes[i] = Change{Changed: v}
	}
	return changes, nil
}

// DecodeDbCount decodes the response to "count".
func DecodeDbCount(body []byte) (DbCount, error) {
	sc := NewScanner(body)
	var c DbCount
	for !sc.Done() {
		key, value, err := sc.Next()
		if err != nil {
			return DbCount{}, err
		}
		switch key {
		case "songs":
			n, err := parseInt(value, 64)
			if err != nil {
				return DbCount{}, err
			}
			c.Songs = n
		case "playtime":
			n, err := parseUint(value, 64)
			if err != nil {
				return DbCount{}, err
			}
			c.Playtime = n
		}
	}
	return c, nil
}

// DecodeDbItems decodes the response to "lsinfo", "search" or
// "listplaylistinfo", a sequence of file/directory/playlist records.
func DecodeDbItems(body []byte) ([]DbItem, error) {
	sc := NewScanner(body)
	var items []DbItem
	for !sc.Done() {
		item, err := decodeOneDbItem(sc)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func decodeOneDbItem(sc *Scanner) (DbItem, error) {
	key, ok, err := sc.Peek()
	if err != nil {
		return DbItem{}, err
	}
	if !ok {
		return DbItem{}, fmt.Errorf("attrs: unexpected end of input while decoding db item")
	}

	switch key {
	case "directory":
		_, v, err := sc.Next()
		if err != nil {
			return DbItem{}, err
		}
		return DbItem{Kind: DbItemKindDirectory, Directory: v}, nil

	case "playlist":
		_, v, err := sc.Next()
		if err != nil {
			return DbItem{}, err
		}
		return DbItem{Kind: DbItemKindPlaylist, Playlist: v}, nil

	case "file":
		_, file, err := sc.Next()
		if err != nil {
			return DbItem{}, err
		}
		item := DbItem{Kind: DbItemKindFile, File: file}

		for {
			nextKey, ok, err := sc.Peek()
			if err != nil {
				return DbItem{}, err
			}
			if !ok {
				return item, nil
			}
			switch nextKey {
			case "file", "directory", "playlist":
				return item, nil
			case "duration":
				_, v, err := sc.Next()
				if err != nil {
					return DbItem{}, err
				}
				f, err := parseFloat(v)
				if err != nil {
					return DbItem{}, err
				}
				item.Duration = &f
			case "Title":
				vs, err := sc.TakeSeq("Title")
				if err != nil {
					return DbItem{}, err
				}
				item.Title = vs
			case "Artist":
				vs, err := sc.TakeSeq("Artist")
				if err != nil {
					return DbItem{}, err
				}
				item.Artist = vs
			case "Album":
				vs, err := sc.TakeSeq("Album")
				if err != nil {
					return DbItem{}, err
				}
				item.Album = vs
			case "Format":
				_, v, err := sc.Next()
				if err != nil {
					return DbItem{}, err
				}
				item.Format = &v
			default:
				if err := sc.SkipValue(); err != nil {
					return DbItem{}, err
				}
			}
		}

	default:
		return DbItem{}, fmt.Errorf("attrs: unexpected key %q while decoding db item", key)
	}
}

// DecodePlaylistItems decodes the response to "playlistinfo".
func DecodePlaylistItems(body []byte) ([]PlaylistItem, error) {
	sc := NewScanner(body)
	var items []PlaylistItem
	for !sc.Done() {
		item, err := decodeOnePlaylistItem(sc)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func decodeOnePlaylistItem(sc *Scanner) (PlaylistItem, error) {
	var item PlaylistItem
	for {
		key, ok, err := sc.Peek()
		if err != nil {
			return PlaylistItem{}, err
		}
		if !ok {
			return item, nil
		}
		if key == "file" && item.File != "" {
			// A second "file" line marks the start of the next record.
			return item, nil
		}
		switch key {
		case "Id":
			_, v, err := sc.Next()
			if err != nil {
				return PlaylistItem{}, err
			}
			n, err := parseInt(v, 64)
			if err != nil {
				return PlaylistItem{}, err
			}
			item.ID = n
		case "Pos":
			_, v, err := sc.Next()
			if err != nil {
				return PlaylistItem{}, err
			}
			n, err := parseInt(v, 64)
			if err != nil {
				return PlaylistItem{}, err
			}
			item.Pos = n
		case "file":
			_, v, err := sc.Next()
			if err != nil {
				return PlaylistItem{}, err
			}
			item.File = v
		case "duration":
			_, v, err := sc.Next()
			if err != nil {
				return PlaylistItem{}, err
			}
			f, err := parseFloat(v)
			if err != nil {
				return PlaylistItem{}, err
			}
			item.Duration = f
		case "Title":
			vs, err := sc.TakeSeq("Title")
			if err != nil {
				return PlaylistItem{}, err
			}
			item.Title = vs
		case "Artist":
			vs, err := sc.TakeSeq("Artist")
			if err != nil {
				return PlaylistItem{}, err
			}
			item.Artist = vs
		case "Album":
			vs, err := sc.TakeSeq("Album")
			if err != nil {
				return PlaylistItem{}, err
			}
			item.Album = vs
		case "Format":
			_, v, err := sc.Next()
			if err != nil {
				return PlaylistItem{}, err
			}
			item.Format = &v
		default:
			if err := sc.SkipValue(); err != nil {
				return PlaylistItem{}, err
			}
		}
	}
}

// DecodePlaylists decodes the response to "listplaylists".
func DecodePlaylists(body []byte) ([]Playlist, error) {
	sc := NewScanner(body)
	var lists []Playlist
	for !sc.Done() {
		var p Playlist
		for {
			key, ok, err := sc.Peek()
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			if key == "playlist" && p.Playlist != "" {
				break
			}
			switch key {
			case "playlist":
				_, v, err := sc.Next()
				if err != nil {
					return nil, err
				}
				p.Playlist = v
			case "Last-Modified":
				_, v, err := sc.Next()
				if err != nil {
					return nil, err
				}
				p.LastModified = v
			default:
				if err := sc.SkipValue(); err != nil {
					return nil, err
				}
			}
			if p.Playlist != "" && p.LastModified != "" {
				break
			}
		}
		lists = append(lists, p)
	}
	return lists, nil
}

// DecodeBinary decodes the response to "albumart"/"readpicture": a
// BinaryInfo header followed by the announced number of raw bytes.
func DecodeBinary(body []byte) (Binary, error) {
	sc := NewScanner(body)
	var info BinaryInfo
	for {
		key, ok, err := sc.Peek()
		if err != nil {
			return Binary{}, err
		}
		if !ok {
			return Binary{}, fmt.Errorf("attrs: missing binary blob")
		}
		if key == "binary" {
			_, v, err := sc.Next()
			if err != nil {
				return Binary{}, err
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return Binary{}, err
			}
			info.Binary = n
			break
		}
		_, v, err := sc.Next()
		if err != nil {
			return Binary{}, err
		}
		if key == "size" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return Binary{}, err
			}
			info.Size = n
		}
	}

	data, err := sc.NextBinary(info.Binary)
	if err != nil {
		return Binary{}, err
	}
	return Binary{Info: info, Data: data}, nil
}
