package artwork

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"testing"

	applog "github.com/wbell/sonora/internal/log"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := NewCache(t.TempDir(), applog.NullLogger())
	if err != nil {
		t.Fatalf("NewCache() error: %v", err)
	}
	return c
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestPlaceholderIsDeterministic(t *testing.T) {
	c := newTestCache(t)

	first := c.Placeholder('E')
	second := c.Placeholder('E')
	if first != second {
		t.Errorf("placeholder path changed between calls: %q vs %q", first, second)
	}

	a, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("placeholder not written: %v", err)
	}
	if len(a) == 0 {
		t.Error("placeholder file is empty")
	}

	if c.Placeholder('E') == c.Placeholder('F') {
		t.Error("different runes must map to different placeholder files")
	}
}

func TestCoverForWithoutPictureUsesFirstRune(t *testing.T) {
	c := newTestCache(t)

	got := c.CoverFor(nil, "Echo")
	want := c.Placeholder('E')
	if got != want {
		t.Errorf("CoverFor(nil, Echo) = %q, want placeholder 'E' %q", got, want)
	}
	if c.LiveViewLeases() != 0 {
		t.Error("placeholders must not count as view leases")
	}
}

func TestDrainReleasesAllViewLeases(t *testing.T) {
	c := newTestCache(t)
	pic := pngBytes(t)

	var paths []string
	for range 5 {
		paths = append(paths, c.CoverFor(pic, "x"))
	}
	if c.LiveViewLeases() != 5 {
		t.Fatalf("live leases = %d, want 5", c.LiveViewLeases())
	}

	c.Drain()
	if c.LiveViewLeases() != 0 {
		t.Errorf("live leases after drain = %d, want 0", c.LiveViewLeases())
	}
	for _, p := range paths {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("lease %q not removed", p)
		}
	}
}

func TestDrainDoesNotGrowAcrossReloads(t *testing.T) {
	c := newTestCache(t)
	pic := pngBytes(t)

	// N view reloads: drain then render. The live set must not grow
	// monotonically.
	for range 10 {
		c.Drain()
		c.CoverFor(pic, "a")
		c.CoverFor(pic, "b")
	}
	if c.LiveViewLeases() != 2 {
		t.Errorf("live leases = %d, want 2 after each reload", c.LiveViewLeases())
	}
}

func TestSessionVariantsSupersede(t *testing.T) {
	c := newTestCache(t)
	pic := pngBytes(t)

	first := c.SessionVariants(pic, "Echo")
	if len(first) != len(SessionSizes) {
		t.Fatalf("got %d variants, want %d", len(first), len(SessionSizes))
	}
	for i, v := range first {
		if v.Size != SessionSizes[i] {
			t.Errorf("variant %d size = %d, want %d", i, v.Size, SessionSizes[i])
		}
	}

	second := c.SessionVariants(nil, "Delta")
	if len(second) != len(SessionSizes) {
		t.Fatalf("got %d variants, want %d", len(second), len(SessionSizes))
	}

	// First track's files must be gone after supersede.
	for _, v := range first {
		path := v.URL[len("file://"):]
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("superseded session artwork %q not removed", path)
		}
	}
}
