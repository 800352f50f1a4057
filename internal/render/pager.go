// Package render paginates a large item list into small batches,
// materializing only what is visible plus a lookahead margin. The
// host UI owns a visibility sentinel after the last rendered batch
// and calls Trigger when it comes into view.
package render

import (
	"fmt"
	"log/slog"
)

// DefaultBatchSize is the number of items revealed per render pass.
const DefaultBatchSize = 30

// Kind classifies an ItemView for the presentation adapter.
type Kind int

const (
	KindTrack Kind = iota
	KindArtist
	KindAlbum
	KindRadio
)

// ItemView is the structured view-model produced for one list item.
// It is host-UI-agnostic; a presentation adapter materializes it.
type ItemView struct {
	Kind     Kind
	TrackID  int64  // set for KindTrack
	Title    string
	Subtitle string
	Badge    string // e.g. "12 tracks"
	ArtPath  string
	NavValue string // group name to drill into, for artist/album cards
}

// RenderFunc converts one item into its view-model. An error (or a
// panic) skips that item only; it never aborts the batch.
type RenderFunc[T any] func(T) (ItemView, error)

// Sink receives materialized batches.
type Sink interface {
	// Append adds one rendered batch after the previously rendered items.
	Append(views []ItemView)
	// End marks the list complete. Called once, only for non-empty lists.
	End()
}

// Pager is the incremental list renderer's state machine. A Pager is
// built fresh for each view load and discarded on the next; nothing
// carries across navigations.
type Pager[T any] struct {
	items     []T
	render    RenderFunc[T]
	sink      Sink
	batchSize int
	next      int
	stopped   bool
	logger    *slog.Logger
}

// NewPager creates a pager over items. batchSize <= 0 selects the
// default.
func NewPager[T any](items []T, batchSize int, render RenderFunc[T], sink Sink, logger *slog.Logger) *Pager[T] {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pager[T]{
		items:     items,
		render:    render,
		sink:      sink,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Trigger renders the next batch. It reports whether the sentinel
// should remain observed (more items pending).
func (p *Pager[T]) Trigger() bool {
	if p.stopped {
		return false
	}

	if p.next >= len(p.items) {
		p.stop()
		return false
	}

	end := p.next + p.batchSize
	if end > len(p.items) {
		end = len(p.items)
	}
	batch := p.items[p.next:end]
	p.next = end

	views := make([]ItemView, 0, len(batch))
	for i := range batch {
		if view, ok := p.renderOne(batch[i]); ok {
			views = append(views, view)
		}
	}
	p.sink.Append(views)

	if p.next >= len(p.items) {
		p.stop()
		return false
	}
	return true
}

// renderOne isolates a single item's render failure.
func (p *Pager[T]) renderOne(item T) (view ItemView, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("item render panicked, skipping", "panic", fmt.Sprint(r))
			ok = false
		}
	}()

	view, err := p.render(item)
	if err != nil {
		p.logger.Warn("item render failed, skipping", "error", err)
		return ItemView{}, false
	}
	return view, true
}

// stop unobserves the sentinel and, for non-empty lists, shows the
// end-of-list marker.
func (p *Pager[T]) stop() {
	if p.stopped {
		return
	}
	p.stopped = true
	if len(p.items) > 0 {
		p.sink.End()
	}
}

// Done reports whether pagination has terminated.
func (p *Pager[T]) Done() bool { return p.stopped }

// Remaining reports how many items have not been rendered yet.
func (p *Pager[T]) Remaining() int { return len(p.items) - p.next }
