package tui

import (
	"github.com/wbell/sonora/internal/domain"
	"github.com/wbell/sonora/internal/importer"
	"github.com/wbell/sonora/internal/library"
	"github.com/wbell/sonora/internal/notify"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// ViewLoadedMsg carries a freshly built library view
type ViewLoadedMsg struct {
	Result library.BrowseResult
}

// PlaybackChangedMsg signals that the playback state moved; the UI
// re-reads the controller
type PlaybackChangedMsg struct{}

// TrackEndedMsg signals natural end of the current source
type TrackEndedMsg struct{}

// PositionTickMsg drives the player bar's position readout
type PositionTickMsg struct{}

// SearchResultsMsg carries live search results
type SearchResultsMsg struct {
	Term    string
	Results []domain.Track
}

// NotificationMsg surfaces a banner pushed from outside the UI loop
type NotificationMsg struct {
	Notification notify.Notification
}

// BannerExpiredMsg re-checks the visible banner
type BannerExpiredMsg struct{}

// ImportProgressMsg reports one import progress step
type ImportProgressMsg struct {
	Phase importer.Phase
	Done  int
	Total int
}

// ImportFinishedMsg signals that an import batch completed
type ImportFinishedMsg struct {
	Count int
}
