package library

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/wbell/sonora/internal/domain"
	applog "github.com/wbell/sonora/internal/log"
)

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestCache(t *testing.T, tracks []domain.Track) *Cache {
	t.Helper()
	c := NewCache(&fakeStore{tracks: tracks}, applog.NullLogger())
	c.Refresh()
	return c
}

func TestCacheRefreshSnapshots(t *testing.T) {
	store := &fakeStore{}
	c := NewCache(store, applog.NullLogger())

	c.Refresh()
	if len(c.All()) != 0 {
		t.Fatal("fresh cache over empty store should be empty")
	}

	store.tracks = testTracks()
	if len(c.All()) != 0 {
		t.Fatal("cache must not observe writes before Refresh")
	}

	c.Refresh()
	if got := len(c.All()); got != 4 {
		t.Fatalf("after refresh cache holds %d tracks, want 4", got)
	}
}

func TestCacheRecent(t *testing.T) {
	c := newTestCache(t, testTracks())

	recent := c.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("Recent(2) returned %d tracks", len(recent))
	}
	// Store order is newest first; Recent preserves it.
	if recent[0].ID != 1 || recent[1].ID != 2 {
		t.Errorf("Recent(2) = %v, want the first two snapshot entries", recent)
	}

	if got := len(c.Recent(100)); got != 4 {
		t.Errorf("Recent beyond size returned %d, want 4", got)
	}
}

func TestCacheSearch(t *testing.T) {
	c := newTestCache(t, []domain.Track{
		{ID: 1, Title: "Morning Echo", Artist: "Aster"},
		{ID: 2, Title: "Night Drive", Artist: "Echoline"},
		{ID: 3, Title: "Silence", Artist: "Brill"},
	})

	tests := []struct {
		term string
		want []int64
	}{
		{"echo", []int64{1, 2}},   // title and artist substring
		{"ECHO", []int64{1, 2}},   // case-insensitive
		{"silence", []int64{3}},
		{"drive", []int64{2}},
		{"zzz", nil},
		{"  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got := c.Search(tt.term, 20)
			if len(got) != len(tt.want) {
				t.Fatalf("Search(%q) returned %d tracks, want %d", tt.term, len(got), len(tt.want))
			}
			ids := map[int64]bool{}
			for _, tr := range got {
				ids[tr.ID] = true
			}
			for _, id := range tt.want {
				if !ids[id] {
					t.Errorf("Search(%q) missing track %d", tt.term, id)
				}
			}
		})
	}
}

func TestCacheSearchLimit(t *testing.T) {
	var tracks []domain.Track
	for i := range 30 {
		tracks = append(tracks, domain.Track{ID: int64(i + 1), Title: "common title", Artist: "x"})
	}
	c := newTestCache(t, tracks)

	if got := len(c.Search("common", 20)); got != 20 {
		t.Errorf("Search limit: got %d results, want 20", got)
	}
}
