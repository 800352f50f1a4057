package library

import (
	"log/slog"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/wbell/sonora/internal/artwork"
	"github.com/wbell/sonora/internal/domain"
	"github.com/wbell/sonora/internal/render"
)

// BrowseResult is one loaded library view: the ordered item list for
// the incremental renderer plus, for song views, the replacement
// playback queue.
type BrowseResult struct {
	Filter domain.LibraryFilter
	Title  string
	Scoped bool // a clear-filter affordance should be shown
	Items  []Item
	Empty  bool

	// Queue is non-nil for songs views: playing an item from this view
	// queues exactly this list, not the whole library.
	Queue []domain.Track
}

// Service groups tracks into library views and renders their items.
type Service struct {
	store  domain.Store
	art    *artwork.Cache
	coll   *collate.Collator
	logger *slog.Logger
}

// NewService creates a new library service.
func NewService(store domain.Store, art *artwork.Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		art:    art,
		coll:   collate.New(language.Und, collate.IgnoreCase),
		logger: logger,
	}
}

// Browse loads the library view for filter. Transient cover leases
// from the previous view are drained before any new ones are created.
func (s *Service) Browse(filter domain.LibraryFilter) BrowseResult {
	s.art.Drain()

	result := BrowseResult{
		Filter: filter,
		Title:  "Library",
		Scoped: filter.Scoped(),
	}
	if result.Scoped {
		result.Title = filter.Value
	}

	tracks := s.store.QueryAll(filter.Query())
	if len(tracks) == 0 {
		result.Empty = true
		s.logger.Debug("library view is empty", "type", filter.Type, "value", filter.Value)
		return result
	}

	switch filter.Type {
	case domain.ViewSongs:
		s.coll.Sort(byTitle(tracks))
		result.Queue = tracks
		result.Items = make([]Item, len(tracks))
		for i, t := range tracks {
			result.Items[i] = TrackItem{Track: t}
		}

	case domain.ViewArtists:
		result.Items = s.groupItems(tracks, domain.ViewArtists, func(t domain.Track) string { return t.Artist })

	default: // albums
		result.Items = s.groupItems(tracks, domain.ViewAlbums, func(t domain.Track) string { return t.Album })
	}

	s.logger.Debug("library view loaded", "type", filter.Type, "items", len(result.Items))
	return result
}

// groupItems partitions tracks by key, one summary card per group,
// group names sorted ascending. A missing key groups under Unknown.
func (s *Service) groupItems(tracks []domain.Track, view domain.ViewType, key func(domain.Track) string) []Item {
	groups := make(map[string][]domain.Track)
	for _, t := range tracks {
		k := key(t)
		if k == "" {
			k = domain.Unknown
		}
		groups[k] = append(groups[k], t)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	s.coll.SortStrings(names)

	items := make([]Item, len(names))
	for i, name := range names {
		items[i] = GroupItem{View: view, Name: name, Tracks: groups[name]}
	}
	return items
}

// RenderItem converts one library item into its view-model,
// materializing its cover art (or a generated placeholder) as a view
// lease.
func (s *Service) RenderItem(item Item) (render.ItemView, error) {
	switch it := item.(type) {
	case TrackItem:
		t := it.Track
		return render.ItemView{
			Kind:     render.KindTrack,
			TrackID:  t.ID,
			Title:    t.DisplayTitle(),
			Subtitle: t.DisplayArtist(),
			ArtPath:  s.art.CoverFor(t.Picture, t.DisplayTitle()),
		}, nil

	case GroupItem:
		kind := render.KindAlbum
		if it.View == domain.ViewArtists {
			kind = render.KindArtist
		}
		return render.ItemView{
			Kind:     kind,
			Title:    it.Name,
			Subtitle: it.Subtitle(),
			Badge:    it.Badge(),
			ArtPath:  s.art.CoverFor(it.Cover(), it.Name),
			NavValue: it.Name,
		}, nil

	default:
		return render.ItemView{}, domain.ErrTrackNotFound
	}
}

// byTitle adapts a track slice to the collator's Lister interface.
type byTitle []domain.Track

func (b byTitle) Len() int           { return len(b) }
func (b byTitle) Swap(i, j int)      { b[i], b[j] = b[j], b[i] }
func (b byTitle) Bytes(i int) []byte { return []byte(b[i].Title) }
