package domain

import (
	"strings"
	"unicode"
)

// Unknown is the display sentinel for missing tag fields. Tracks are
// stored with this value (never with an empty string), so index
// lookups and field-equality checks agree.
const Unknown = "Unknown"

// Track is one persisted library entry: tag metadata, optional cover
// art, and the audio payload itself.
type Track struct {
	ID      int64  `json:"id"`      // assigned by the store on insert, never reused
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	Album   string `json:"album"`
	Picture []byte `json:"-"` // embedded cover art, may be nil
	File    []byte `json:"-"` // audio payload; loaded lazily via Store.GetFile
}

// TrackMeta is the importer's extraction result for a single file.
type TrackMeta struct {
	Title   string
	Artist  string
	Album   string
	Picture []byte
}

// NewTrack builds a Track from extracted metadata, applying the
// default-construction rules: a missing title falls back to the file
// name without its extension, missing artist/album to Unknown.
func NewTrack(filename string, meta TrackMeta, payload []byte) Track {
	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = stemOf(filename)
	}
	artist := strings.TrimSpace(meta.Artist)
	if artist == "" {
		artist = Unknown
	}
	album := strings.TrimSpace(meta.Album)
	if album == "" {
		album = Unknown
	}
	return Track{
		Title:   title,
		Artist:  artist,
		Album:   album,
		Picture: meta.Picture,
		File:    payload,
	}
}

func stemOf(filename string) string {
	base := filename
	if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	if base == "" {
		return Unknown
	}
	return base
}

// DisplayTitle returns the title, never empty.
func (t Track) DisplayTitle() string {
	if t.Title == "" {
		return Unknown
	}
	return t.Title
}

// DisplayArtist returns the artist, never empty.
func (t Track) DisplayArtist() string {
	if t.Artist == "" {
		return Unknown
	}
	return t.Artist
}

// PlaceholderRune returns the character for the generated cover-art
// placeholder: the first letter of the display title, uppercased.
func (t Track) PlaceholderRune() rune {
	return PlaceholderRune(t.DisplayTitle())
}

// PlaceholderRune returns the uppercased first rune of name, or '?'
// when name is empty.
func PlaceholderRune(name string) rune {
	for _, r := range name {
		return unicode.ToUpper(r)
	}
	return '?'
}
