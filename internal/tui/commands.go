package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wbell/sonora/internal/domain"
	"github.com/wbell/sonora/internal/importer"
	"github.com/wbell/sonora/internal/library"
	"github.com/wbell/sonora/internal/notify"
	"github.com/wbell/sonora/internal/player"
)

// Command factories for async operations

// BrowseCmd builds the library view for a filter
func BrowseCmd(svc *library.Service, filter domain.LibraryFilter) tea.Cmd {
	return func() tea.Msg {
		return ViewLoadedMsg{Result: svc.Browse(filter)}
	}
}

// PlayTrackCmd starts playback of a stored track. When queue is
// non-nil it becomes the playback context first.
func PlayTrackCmd(ctl *player.Controller, id int64, queue []domain.Track) tea.Cmd {
	return func() tea.Msg {
		if queue != nil {
			ctl.SetQueue(queue)
		}
		if err := ctl.PlayTrack(id); err != nil {
			return ErrMsg{Err: err, Context: "starting playback"}
		}
		return PlaybackChangedMsg{}
	}
}

// PlayRadioCmd connects to a radio station
func PlayRadioCmd(ctl *player.Controller, station domain.RadioStation) tea.Cmd {
	return func() tea.Msg {
		if err := ctl.PlayRadio(station); err != nil {
			return ErrMsg{Err: err, Context: "starting radio"}
		}
		return PlaybackChangedMsg{}
	}
}

// SkipCmd advances or rewinds the queue
func SkipCmd(ctl *player.Controller, forward bool) tea.Cmd {
	return func() tea.Msg {
		var err error
		if forward {
			err = ctl.PlayNext()
		} else {
			err = ctl.PlayPrevious()
		}
		if err != nil {
			return ErrMsg{Err: err, Context: "skipping"}
		}
		return PlaybackChangedMsg{}
	}
}

// SearchCmd runs a live search against the library snapshot
func SearchCmd(cache *library.Cache, term string, limit int) tea.Cmd {
	return func() tea.Msg {
		return SearchResultsMsg{Term: term, Results: cache.Search(term, limit)}
	}
}

// importContext tags import errors so the UI can banner them.
const importContext = "importing files"

// ImportCmd imports files and refreshes the library snapshot.
// Progress steps stream through send when it is set.
func ImportCmd(svc *importer.Service, cache *library.Cache, paths []string, send func(tea.Msg)) tea.Cmd {
	return func() tea.Msg {
		var progress importer.ProgressFunc
		if send != nil {
			progress = func(phase importer.Phase, done, total int) {
				send(ImportProgressMsg{Phase: phase, Done: done, Total: total})
			}
		}

		tracks, err := svc.ImportFiles(paths, progress)
		if err != nil {
			return ErrMsg{Err: err, Context: importContext}
		}
		cache.Refresh()
		return ImportFinishedMsg{Count: len(tracks)}
	}
}

// PositionTickCmd schedules the next player bar refresh
func PositionTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return PositionTickMsg{}
	})
}

// BannerExpiryCmd schedules a banner re-check at its dismiss time
func BannerExpiryCmd() tea.Cmd {
	return tea.Tick(notify.DismissAfter, func(time.Time) tea.Msg {
		return BannerExpiredMsg{}
	})
}
