package artwork

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fogleman/gg"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/basicfont"

	"github.com/wbell/sonora/internal/domain"
)

// SessionSizes are the artwork resolutions exported to the OS media
// session surface.
var SessionSizes = []int{96, 128, 192, 512}

const placeholderEdge = 100

// Cache materializes cover-art blobs as temporary files and owns
// their lifetime. View leases accumulate while a library view is
// rendered and are drained wholesale on every view reload; session
// leases back the media-session artwork for the current track and are
// released when superseded. Generated letter placeholders are stable
// files, created once per rune and never drained.
type Cache struct {
	dir    string
	logger *slog.Logger

	mu      sync.Mutex
	view    map[string]struct{} // live view lease paths
	session []string            // current track's session lease paths
}

// NewCache creates the lease directory and an empty cache.
func NewCache(dir string, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, logger: logger, view: make(map[string]struct{})}, nil
}

// CoverFor returns a displayable file path for a track or group
// cover: the picture blob written out as a view lease, or the
// deterministic letter placeholder when there is no picture.
func (c *Cache) CoverFor(picture []byte, name string) string {
	if len(picture) == 0 {
		return c.Placeholder(domain.PlaceholderRune(name))
	}

	path := filepath.Join(c.dir, "view-"+uuid.NewString()+".img")
	if err := os.WriteFile(path, picture, 0644); err != nil {
		c.logger.Warn("failed to write cover lease", "error", err)
		return c.Placeholder(domain.PlaceholderRune(name))
	}

	c.mu.Lock()
	c.view[path] = struct{}{}
	c.mu.Unlock()
	return path
}

// Drain releases every live view lease. Called on each library view
// reload, before new leases are created.
func (c *Cache) Drain() {
	c.mu.Lock()
	paths := make([]string, 0, len(c.view))
	for p := range c.view {
		paths = append(paths, p)
	}
	c.view = make(map[string]struct{})
	c.mu.Unlock()

	for _, p := range paths {
		os.Remove(p)
	}
}

// LiveViewLeases reports the number of undrained view leases.
func (c *Cache) LiveViewLeases() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.view)
}

// SessionVariants renders the current track's artwork at each session
// size, replacing (and deleting) the previous track's variants.
func (c *Cache) SessionVariants(picture []byte, name string) []domain.ArtworkVariant {
	src := c.decodeOrPlaceholder(picture, name)

	var variants []domain.ArtworkVariant
	var paths []string
	for _, size := range SessionSizes {
		dst := image.NewRGBA(image.Rect(0, 0, size, size))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

		path := filepath.Join(c.dir, fmt.Sprintf("session-%s-%d.png", uuid.NewString(), size))
		if err := writePNG(path, dst); err != nil {
			c.logger.Warn("failed to write session artwork", "size", size, "error", err)
			continue
		}
		paths = append(paths, path)
		variants = append(variants, domain.ArtworkVariant{Size: size, URL: "file://" + path})
	}

	c.mu.Lock()
	old := c.session
	c.session = paths
	c.mu.Unlock()

	for _, p := range old {
		os.Remove(p)
	}
	return variants
}

// Placeholder returns the path of the generated cover for r, drawing
// it on first use. The image is a dark tile with the centered
// uppercase letter, the same for every caller.
func (c *Cache) Placeholder(r rune) string {
	path := filepath.Join(c.dir, fmt.Sprintf("placeholder-%04x.png", r))
	if _, err := os.Stat(path); err == nil {
		return path
	}

	img := renderPlaceholder(r)
	if err := writePNG(path, img); err != nil {
		c.logger.Warn("failed to write placeholder", "rune", string(r), "error", err)
	}
	return path
}

func (c *Cache) decodeOrPlaceholder(picture []byte, name string) image.Image {
	if len(picture) > 0 {
		if img, _, err := image.Decode(bytes.NewReader(picture)); err == nil {
			return img
		}
		c.logger.Debug("undecodable cover art, using placeholder", "name", name)
	}
	return renderPlaceholder(domain.PlaceholderRune(name))
}

// renderPlaceholder draws the letter tile.
func renderPlaceholder(r rune) image.Image {
	dc := gg.NewContext(placeholderEdge, placeholderEdge)
	dc.SetHexColor("#18181b")
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(string(r), placeholderEdge/2, placeholderEdge/2, 0.5, 0.5)
	return dc.Image()
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
