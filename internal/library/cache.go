package library

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/wbell/sonora/internal/domain"
)

// Cache is the in-memory snapshot of every track record, refreshed
// after each store write. It backs substring search and serves as the
// default playback queue when an item is played without a queue
// context. Invalidation is always a full reload; the target scale is
// a personal library.
type Cache struct {
	store  domain.Store
	logger *slog.Logger

	mu     sync.RWMutex
	tracks []domain.Track
}

// NewCache creates an empty cache over the store.
func NewCache(store domain.Store, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{store: store, logger: logger}
}

// Refresh replaces the snapshot with a full store scan. Must be
// called after every write.
func (c *Cache) Refresh() {
	tracks := c.store.QueryAll(nil)

	c.mu.Lock()
	c.tracks = tracks
	c.mu.Unlock()

	c.logger.Debug("track cache refreshed", "count", len(tracks))
}

// All returns the snapshot, newest first.
func (c *Cache) All() []domain.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tracks
}

// Recent returns the n most recently added tracks.
func (c *Cache) Recent(n int) []domain.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if n > len(c.tracks) {
		n = len(c.tracks)
	}
	return c.tracks[:n]
}

// Search returns up to limit tracks whose title or artist contains
// term (case-insensitive). Containment decides membership; fuzzy rank
// only orders the results, closest match first.
func (c *Cache) Search(term string, limit int) []domain.Track {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}

	c.mu.RLock()
	snapshot := c.tracks
	c.mu.RUnlock()

	type hit struct {
		track domain.Track
		rank  int
	}
	var hits []hit

	for _, t := range snapshot {
		title := strings.ToLower(t.Title)
		artist := strings.ToLower(t.Artist)
		if !strings.Contains(title, term) && !strings.Contains(artist, term) {
			continue
		}

		rank := fuzzy.RankMatchNormalizedFold(term, t.Title)
		if r := fuzzy.RankMatchNormalizedFold(term, t.Artist); rank < 0 || (r >= 0 && r < rank) {
			rank = r
		}
		if rank < 0 {
			rank = len(title) // contained but unranked, sort after ranked hits
		}
		hits = append(hits, hit{track: t, rank: rank})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].rank < hits[j].rank })

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]domain.Track, len(hits))
	for i, h := range hits {
		out[i] = h.track
	}
	return out
}
