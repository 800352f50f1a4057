package assetcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/wbell/sonora/internal/domain"
)

// Cache is a versioned, cache-first store for remote assets such as
// station artwork and embed pages. Each release version owns its own
// directory; activating a version deletes every other one, so stale
// assets from old releases cannot accumulate.
type Cache struct {
	dir     string
	version string
	client  *http.Client
	skip    func(url string) bool
	logger  *slog.Logger
}

// New builds a cache rooted at dir for the given version string.
// URLs for which skip returns true are never cached and always hit
// the network; live radio streams belong there.
func New(dir, version string, skip func(url string) bool, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if skip == nil {
		skip = func(string) bool { return false }
	}
	if err := os.MkdirAll(filepath.Join(dir, version), 0755); err != nil {
		return nil, fmt.Errorf("creating asset cache: %w", err)
	}
	return &Cache{
		dir:     dir,
		version: version,
		client:  &http.Client{Timeout: 15 * time.Second},
		skip:    skip,
		logger:  logger,
	}, nil
}

// Activate purges every version directory except the current one and
// prefetches the manifest. Prefetch failures are logged and skipped;
// a missing asset is fetched again on first use.
func (c *Cache) Activate(manifest []string) error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() && e.Name() != c.version {
			if err := os.RemoveAll(filepath.Join(c.dir, e.Name())); err != nil {
				c.logger.Warn("purging old asset version", "version", e.Name(), "error", err)
			} else {
				c.logger.Info("purged old asset version", "version", e.Name())
			}
		}
	}

	for _, url := range manifest {
		if c.skip(url) {
			continue
		}
		if _, err := c.Fetch(url); err != nil {
			c.logger.Warn("prefetch failed", "url", url, "error", err)
		}
	}
	return nil
}

// Fetch returns the asset bytes, preferring the cached copy. On a
// cache miss the asset is fetched and stored. Skip-listed URLs go
// straight to the network and are never stored.
func (c *Cache) Fetch(url string) ([]byte, error) {
	if c.skip(url) {
		return c.download(url)
	}

	path := c.assetPath(url)
	if data, err := os.ReadFile(path); err == nil {
		return data, nil
	}

	data, err := c.download(url)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		c.logger.Warn("storing asset", "url", url, "error", err)
	}
	return data, nil
}

// Cached reports whether the asset is already stored locally.
func (c *Cache) Cached(url string) bool {
	if c.skip(url) {
		return false
	}
	_, err := os.Stat(c.assetPath(url))
	return err == nil
}

func (c *Cache) download(url string) ([]byte, error) {
	resp, err := c.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrOffline, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *Cache) assetPath(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, c.version, hex.EncodeToString(sum[:16]))
}
