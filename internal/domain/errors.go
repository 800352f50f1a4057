package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrStorageUnavailable indicates the local store could not be opened;
	// the app falls back to an empty library
	ErrStorageUnavailable = errors.New("local storage is unavailable")

	// ErrWriteFailed indicates a batch insert transaction aborted
	ErrWriteFailed = errors.New("library write failed")

	// ErrTrackNotFound indicates no record exists for the requested id
	ErrTrackNotFound = errors.New("track not found")

	// ErrPlaybackUnresolved indicates the audio payload could not be
	// resolved or the output rejected playback
	ErrPlaybackUnresolved = errors.New("playback could not be started")

	// ErrRadioUnreachable indicates a radio stream could not be reached
	ErrRadioUnreachable = errors.New("radio stream is unreachable")

	// ErrOffline indicates no network connectivity is available
	ErrOffline = errors.New("no network connection")
)
