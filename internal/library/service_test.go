package library

import (
	"strings"
	"testing"

	"github.com/wbell/sonora/internal/artwork"
	"github.com/wbell/sonora/internal/domain"
	applog "github.com/wbell/sonora/internal/log"
	"github.com/wbell/sonora/internal/render"
)

// fakeStore serves a fixed snapshot, applying the single-field filter
// the way the real store guarantees it.
type fakeStore struct {
	tracks []domain.Track
}

func (f *fakeStore) InsertTracks(tracks []domain.Track) error { return nil }

func (f *fakeStore) QueryAll(q *domain.Query) []domain.Track {
	if q == nil {
		return f.tracks
	}
	var out []domain.Track
	for _, t := range f.tracks {
		if q.Artist != "" && t.Artist != q.Artist {
			continue
		}
		if q.Album != "" && t.Album != q.Album {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (f *fakeStore) GetFile(id int64) ([]byte, error) { return nil, domain.ErrTrackNotFound }
func (f *fakeStore) Close() error                     { return nil }

func newTestService(t *testing.T, tracks []domain.Track) (*Service, *artwork.Cache) {
	t.Helper()
	art, err := artwork.NewCache(t.TempDir(), applog.NullLogger())
	if err != nil {
		t.Fatal(err)
	}
	return NewService(&fakeStore{tracks: tracks}, art, applog.NullLogger()), art
}

func testTracks() []domain.Track {
	return []domain.Track{
		{ID: 1, Title: "Zenith", Artist: "Aster", Album: "First"},
		{ID: 2, Title: "annex", Artist: "Brill", Album: "First"},
		{ID: 3, Title: "Mirror", Artist: "Aster", Album: "Second"},
		{ID: 4, Title: "Echo", Artist: domain.Unknown, Album: domain.Unknown},
	}
}

func TestBrowseSongsSortsAndReplacesQueue(t *testing.T) {
	svc, _ := newTestService(t, testTracks())

	res := svc.Browse(domain.LibraryFilter{Type: domain.ViewSongs})
	if res.Empty {
		t.Fatal("view unexpectedly empty")
	}

	var titles []string
	for _, it := range res.Items {
		titles = append(titles, it.(TrackItem).Track.Title)
	}
	want := []string{"annex", "Echo", "Mirror", "Zenith"}
	for i, w := range want {
		if titles[i] != w {
			t.Fatalf("songs order = %v, want %v", titles, want)
		}
	}

	if len(res.Queue) != 4 {
		t.Fatalf("queue length = %d, want the full rendered list", len(res.Queue))
	}
	for i, it := range res.Items {
		if res.Queue[i].ID != it.(TrackItem).Track.ID {
			t.Errorf("queue position %d does not match rendered list", i)
		}
	}
}

func TestBrowseGroupingIsAPartition(t *testing.T) {
	tracks := testTracks()

	tests := []struct {
		view       domain.ViewType
		wantGroups []string
	}{
		{domain.ViewArtists, []string{"Aster", "Brill", domain.Unknown}},
		{domain.ViewAlbums, []string{"First", "Second", domain.Unknown}},
	}

	for _, tt := range tests {
		t.Run(string(tt.view), func(t *testing.T) {
			svc, _ := newTestService(t, tracks)
			res := svc.Browse(domain.LibraryFilter{Type: tt.view})

			if len(res.Items) != len(tt.wantGroups) {
				t.Fatalf("got %d groups, want %d", len(res.Items), len(tt.wantGroups))
			}

			total := 0
			seen := map[int64]bool{}
			for i, it := range res.Items {
				g := it.(GroupItem)
				if g.Name != tt.wantGroups[i] {
					t.Errorf("group %d = %q, want %q", i, g.Name, tt.wantGroups[i])
				}
				total += len(g.Tracks)
				for _, tr := range g.Tracks {
					if seen[tr.ID] {
						t.Errorf("track %d appears in more than one group", tr.ID)
					}
					seen[tr.ID] = true
				}
			}
			if total != len(tracks) {
				t.Errorf("sum of group sizes = %d, want %d", total, len(tracks))
			}
		})
	}
}

func TestBrowseScopedFilter(t *testing.T) {
	svc, _ := newTestService(t, testTracks())

	res := svc.Browse(domain.LibraryFilter{
		Type:  domain.ViewSongs,
		Key:   domain.FilterArtist,
		Value: "Aster",
	})

	if !res.Scoped || res.Title != "Aster" {
		t.Errorf("scoped view: Scoped=%v Title=%q, want scoped with the artist as title", res.Scoped, res.Title)
	}
	if len(res.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(res.Items))
	}
	if len(res.Queue) != 2 {
		t.Errorf("scoped songs view must queue the filtered set, got %d", len(res.Queue))
	}
}

func TestBrowseEmptyState(t *testing.T) {
	svc, _ := newTestService(t, nil)

	res := svc.Browse(domain.DefaultFilter())
	if !res.Empty {
		t.Error("empty library must report the empty state")
	}
	if len(res.Items) != 0 {
		t.Errorf("empty view carries %d items", len(res.Items))
	}
}

func TestBrowseDrainsPreviousViewLeases(t *testing.T) {
	tracks := testTracks()
	tracks[0].Picture = tinyPNG(t)
	svc, art := newTestService(t, tracks)

	for range 5 {
		res := svc.Browse(domain.LibraryFilter{Type: domain.ViewSongs})
		for _, it := range res.Items {
			if _, err := svc.RenderItem(it); err != nil {
				t.Fatal(err)
			}
		}
	}

	// One picture-backed lease per reload; older ones drained.
	if got := art.LiveViewLeases(); got != 1 {
		t.Errorf("live view leases after repeated browsing = %d, want 1", got)
	}
}

func TestRenderItemPlaceholderUsesFirstCharacter(t *testing.T) {
	svc, art := newTestService(t, nil)

	view, err := svc.RenderItem(TrackItem{Track: domain.Track{Title: "Echo", Artist: domain.Unknown}})
	if err != nil {
		t.Fatal(err)
	}
	if view.ArtPath != art.Placeholder('E') {
		t.Errorf("ArtPath = %q, want the 'E' placeholder", view.ArtPath)
	}
}

func TestRenderItemGroupCard(t *testing.T) {
	svc, _ := newTestService(t, nil)

	g := GroupItem{
		View: domain.ViewAlbums,
		Name: "First",
		Tracks: []domain.Track{
			{ID: 1, Title: "a", Artist: "Aster"},
			{ID: 2, Title: "b", Artist: "Brill"},
		},
	}
	view, err := svc.RenderItem(g)
	if err != nil {
		t.Fatal(err)
	}

	if view.Kind != render.KindAlbum {
		t.Errorf("Kind = %v, want KindAlbum", view.Kind)
	}
	if view.Subtitle != "Aster" {
		t.Errorf("album subtitle = %q, want the first track's artist", view.Subtitle)
	}
	if view.NavValue != "First" {
		t.Errorf("NavValue = %q, want group name", view.NavValue)
	}
	if !strings.Contains(view.Badge, "2") {
		t.Errorf("Badge = %q, want track count", view.Badge)
	}
}
