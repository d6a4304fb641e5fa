package persist

import (
	"fmt"
	"strconv"
	"time"
)

// Well-known metadata keys. uri, playlist_id and duration occur exactly
// once per play; title, artist and album may repeat, once per tag value
// MPD reported for that song.
const (
	metaKeyURI        = "uri"
	metaKeyPlaylistID = "playlist_id"
	metaKeyDuration   = "duration"
	metaKeyTitle      = "title"
	metaKeyArtist     = "artist"
	metaKeyAlbum      = "album"
)

// Metadata describes the song a PlayID refers to: its queue song id at
// the time, its source URI and duration, and whatever tags MPD reported.
type Metadata struct {
	PlayID     PlayID
	PlaylistID int64
	URI        string
	Duration   time.Duration
	Titles     []string
	Artists    []string
	Albums     []string
}

// CreateMetadata is the set of fields needed to record a play's metadata.
type CreateMetadata struct {
	PlayID     PlayID
	PlaylistID int64
	URI        string
	Duration   time.Duration
	Titles     []string
	Artists    []string
	Albums     []string
}

// MetadataRepo reads and writes the flattened playback_history_metadata
// table: one (play_id, key, value) row per fact.
type MetadataRepo struct {
	db dbtx
}

func flattenMetadata(create CreateMetadata) []CreateMetadataRow {
	rows := []CreateMetadataRow{
		{PlayID: create.PlayID, Key: metaKeyURI, Value: create.URI},
		{PlayID: create.PlayID, Key: metaKeyPlaylistID, Value: strconv.FormatInt(create.PlaylistID, 10)},
		{PlayID: create.PlayID, Key: metaKeyDuration, Value: strconv.FormatFloat(create.Duration.Seconds(), 'f', -1, 64)},
	}
	for _, title := range create.Titles {
		rows = append(rows, CreateMetadataRow{PlayID: create.PlayID, Key: metaKeyTitle, Value: title})
	}
	for _, artist := range create.Artists {
		rows = append(rows, CreateMetadataRow{PlayID: create.PlayID, Key: metaKeyArtist, Value: artist})
	}
	for _, album := range create.Albums {
		rows = append(rows, CreateMetadataRow{PlayID: create.PlayID, Key: metaKeyAlbum, Value: album})
	}
	return rows
}

// CreateMetadataRow is one flattened (play_id, key, value) fact.
type CreateMetadataRow struct {
	PlayID PlayID
	Key    string
	Value  string
}

func unflattenMetadata(playID PlayID, rows []CreateMetadataRow) (Metadata, error) {
	m := Metadata{PlayID: playID}
	haveURI, havePlaylistID, haveDuration := false, false, false
	for _, row := range rows {
		switch row.Key {
		case metaKeyURI:
			m.URI = row.Value
			haveURI = true
		case metaKeyPlaylistID:
			id, err := strconv.ParseInt(row.Value, 10, 64)
			if err != nil {
				return Metadata{}, fmt.Errorf("persist: malformed playlist_id %q: %w", row.Value, err)
			}
			m.PlaylistID = id
			havePlaylistID = true
		case metaKeyDuration:
			secs, err := strconv.ParseFloat(row.Value, 64)
			if err != nil {
				return Metadata{}, fmt.Errorf("persist: malformed duration %q: %w", row.Value, err)
			}
			m.Duration = time.Duration(secs * float64(time.Second))
			haveDuration = true
		case metaKeyTitle:
			m.Titles = append(m.Titles, row.Value)
		case metaKeyArtist:
			m.Artists = append(m.Artists, row.Value)
		case metaKeyAlbum:
			m.Albums = append(m.Albums, row.Value)
		}
	}
	if !haveURI || !havePlaylistID || !haveDuration {
		return Metadata{}, fmt.Errorf("persist: incomplete metadata for play %d", playID)
	}
	return m, nil
}

// CreateAll flattens and inserts the metadata rows for create in one
// multi-row INSERT. The uri, playlist_id and duration rows are always
// written, even when their values are zero.
func (r *MetadataRepo) CreateAll(create CreateMetadata) error {
	rows := flattenMetadata(create)

	query := `INSERT INTO "playback_history_metadata" ("play_id", "key", "value") VALUES `
	args := make([]any, 0, len(rows)*3)
	for i, row := range rows {
		if i > 0 {
			query += ", "
		}
		query += "(?, ?, ?)"
		args = append(args, row.PlayID, row.Key, row.Value)
	}

	_, err := r.db.Exec(query, args...)
	return err
}

// GetByPlayID returns the reconstructed metadata for one play.
func (r *MetadataRepo) GetByPlayID(playID PlayID) (Metadata, error) {
	rows, err := r.queryRows(`
		SELECT "play_id", "key", "value"
		FROM "playback_history_metadata"
		WHERE "play_id" = ?
	`, playID)
	if err != nil {
		return Metadata{}, err
	}
	return unflattenMetadata(playID, rows)
}

// GetAllByPlayID returns the reconstructed metadata for every play in
// playIDs, keyed by play id.
func (r *MetadataRepo) GetAllByPlayID(playIDs []PlayID) (map[PlayID]Metadata, error) {
	if len(playIDs) == 0 {
		return nil, nil
	}

	placeholders, args := inClause(playIDs)
	rows, err := r.queryRows(fmt.Sprintf(`
		SELECT "play_id", "key", "value"
		FROM "playback_history_metadata"
		WHERE "play_id" IN (%s)
		ORDER BY "play_id"
	`, placeholders), args...)
	if err != nil {
		return nil, err
	}

	byPlayID := make(map[PlayID][]CreateMetadataRow)
	for _, row := range rows {
		byPlayID[row.PlayID] = append(byPlayID[row.PlayID], row)
	}

	out := make(map[PlayID]Metadata, len(byPlayID))
	for playID, rows := range byPlayID {
		m, err := unflattenMetadata(playID, rows)
		if err != nil {
			return nil, err
		}
		out[playID] = m
	}
	return out, nil
}

func (r *MetadataRepo) queryRows(query string, args ...any) ([]CreateMetadataRow, error) {
	rs, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	var rows []CreateMetadataRow
	for rs.Next() {
		var row CreateMetadataRow
		if err := rs.Scan(&row.PlayID, &row.Key, &row.Value); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, rs.Err()
}
