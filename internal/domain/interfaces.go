package domain

import "time"

// Store handles the persistent track collection (BoltDB).
type Store interface {
	// InsertTracks appends records in one transaction, assigning ids.
	// The batch is atomic: on failure no record is visible.
	InsertTracks(tracks []Track) error

	// QueryAll returns all records in reverse-insertion order, or only
	// the records matching the single-field query. Read errors degrade
	// to an empty result; they never propagate.
	QueryAll(q *Query) []Track

	// GetFile fetches one record's audio payload by id.
	GetFile(id int64) ([]byte, error)

	Close() error
}

// Output is the audio backend driven by the playback controller.
// Load begins playback of a local file path or a stream URL.
type Output interface {
	Load(source string) error
	Play() error
	Pause() error
	Paused() bool
	Position() time.Duration
	Seek(pos time.Duration) error
	Stop() error
}

// SessionMetadata is the outbound lock-screen surface state.
type SessionMetadata struct {
	Title   string
	Artist  string
	Artwork []ArtworkVariant
}

// ArtworkVariant is one resolution of the current cover art.
type ArtworkVariant struct {
	Size int    // square edge in pixels
	URL  string // file:// or http(s):// location
}

// MediaSession mirrors playback into the OS media control surface
// and delivers its inbound commands to a SessionHandler.
type MediaSession interface {
	SetMetadata(md SessionMetadata)
	SetPlaying(playing bool)
	Close() error
}

// SessionHandler receives inbound media-session commands
// (lock-screen buttons, hardware keys).
type SessionHandler interface {
	PlayPause()
	Next()
	Previous()
	Seek(pos time.Duration)
}

// Notifier surfaces a transient title/message banner to the user.
type Notifier interface {
	Notify(title, message string)
}
