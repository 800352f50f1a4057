package domain

// ViewType selects how the library view groups tracks.
type ViewType string

const (
	ViewAlbums  ViewType = "albums"
	ViewArtists ViewType = "artists"
	ViewSongs   ViewType = "songs"
)

// FilterKey names the track field a scoped library view filters on.
type FilterKey string

const (
	FilterNone   FilterKey = ""
	FilterArtist FilterKey = "artist"
	FilterAlbum  FilterKey = "album"
)

// LibraryFilter describes the current library view: the grouping
// type plus an optional single-field scope (e.g. one artist's songs).
// When Key is set, Value must be non-empty.
type LibraryFilter struct {
	Type  ViewType
	Value string
	Key   FilterKey
}

// DefaultFilter is the unscoped albums view shown on first load.
func DefaultFilter() LibraryFilter {
	return LibraryFilter{Type: ViewAlbums}
}

// Scoped reports whether the filter narrows to one artist or album.
func (f LibraryFilter) Scoped() bool {
	return f.Key != FilterNone && f.Value != ""
}

// Query resolves the store query for this filter, or nil for a full
// scan.
func (f LibraryFilter) Query() *Query {
	switch {
	case f.Key == FilterArtist && f.Value != "":
		return &Query{Artist: f.Value}
	case f.Key == FilterAlbum && f.Value != "":
		return &Query{Album: f.Value}
	default:
		return nil
	}
}

// Query is a single-field store filter. At most one field is set;
// conjunctions are not supported.
type Query struct {
	Artist string
	Album  string
}
