package library

import (
	"fmt"

	"github.com/wbell/sonora/internal/domain"
)

// Item is one browsable entry in a library view: a single track in
// the songs view, or an artist/album summary card.
type Item interface {
	isItem()
}

// TrackItem is a playable row in the songs view.
type TrackItem struct {
	Track domain.Track
}

func (TrackItem) isItem() {}

// GroupItem is an artist or album summary card.
type GroupItem struct {
	View   domain.ViewType // ViewArtists or ViewAlbums
	Name   string
	Tracks []domain.Track
}

func (GroupItem) isItem() {}

// Cover returns the cover art of the first track in the group that
// has one, or nil.
func (g GroupItem) Cover() []byte {
	for _, t := range g.Tracks {
		if len(t.Picture) > 0 {
			return t.Picture
		}
	}
	return nil
}

// Badge returns the card's track-count caption.
func (g GroupItem) Badge() string {
	if len(g.Tracks) == 1 {
		return "1 track"
	}
	return fmt.Sprintf("%d tracks", len(g.Tracks))
}

// Subtitle returns the card's secondary line: the track count for
// artists, the leading track's artist for albums.
func (g GroupItem) Subtitle() string {
	if g.View == domain.ViewAlbums && len(g.Tracks) > 0 {
		return g.Tracks[0].DisplayArtist()
	}
	return g.Badge()
}
