package render

import (
	"errors"
	"fmt"
	"testing"

	applog "github.com/wbell/sonora/internal/log"
)

type recordingSink struct {
	batches [][]ItemView
	ended   int
}

func (s *recordingSink) Append(views []ItemView) { s.batches = append(s.batches, views) }
func (s *recordingSink) End()                    { s.ended++ }

func (s *recordingSink) titles() []string {
	var out []string
	for _, b := range s.batches {
		for _, v := range b {
			out = append(out, v.Title)
		}
	}
	return out
}

func numbered(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

func renderInt(i int) (ItemView, error) {
	return ItemView{Title: fmt.Sprintf("item-%d", i)}, nil
}

func TestPagerCoversEveryItemOnceInOrder(t *testing.T) {
	sink := &recordingSink{}
	p := NewPager(numbered(73), 30, renderInt, sink, applog.NullLogger())

	triggers := 0
	for !p.Done() {
		p.Trigger()
		triggers++
		if triggers > 10 {
			t.Fatal("pager did not terminate")
		}
	}

	wantBatches := []int{30, 30, 13}
	if len(sink.batches) != len(wantBatches) {
		t.Fatalf("got %d batches, want %d", len(sink.batches), len(wantBatches))
	}
	for i, want := range wantBatches {
		if len(sink.batches[i]) != want {
			t.Errorf("batch %d has %d items, want %d", i, len(sink.batches[i]), want)
		}
	}

	titles := sink.titles()
	if len(titles) != 73 {
		t.Fatalf("rendered %d items, want 73", len(titles))
	}
	for i, title := range titles {
		if want := fmt.Sprintf("item-%d", i); title != want {
			t.Fatalf("position %d = %q, want %q (order or duplication broken)", i, title, want)
		}
	}

	if sink.ended != 1 {
		t.Errorf("End() called %d times, want 1", sink.ended)
	}
}

func TestPagerExactMultipleOfBatchSize(t *testing.T) {
	sink := &recordingSink{}
	p := NewPager(numbered(60), 30, renderInt, sink, applog.NullLogger())

	for !p.Done() {
		p.Trigger()
	}

	if got := len(sink.titles()); got != 60 {
		t.Errorf("rendered %d items, want 60", got)
	}
	if sink.ended != 1 {
		t.Errorf("End() called %d times, want 1", sink.ended)
	}
}

func TestPagerEmptyListShowsNoEndMarker(t *testing.T) {
	sink := &recordingSink{}
	p := NewPager(nil, 30, renderInt, sink, applog.NullLogger())

	if more := p.Trigger(); more {
		t.Error("Trigger() on empty list reported more items")
	}
	if !p.Done() {
		t.Error("pager not done after empty trigger")
	}
	if sink.ended != 0 {
		t.Errorf("End() called %d times for empty list, want 0", sink.ended)
	}
}

func TestPagerIsolatesPerItemFailures(t *testing.T) {
	sink := &recordingSink{}
	render := func(i int) (ItemView, error) {
		switch i {
		case 3:
			return ItemView{}, errors.New("malformed item")
		case 7:
			panic("renderer exploded")
		}
		return renderInt(i)
	}
	p := NewPager(numbered(10), 30, render, sink, applog.NullLogger())

	p.Trigger()

	titles := sink.titles()
	if len(titles) != 8 {
		t.Fatalf("rendered %d items, want 8 (two skipped)", len(titles))
	}
	for _, title := range titles {
		if title == "item-3" || title == "item-7" {
			t.Errorf("failed item %q should have been skipped", title)
		}
	}
	if sink.ended != 1 {
		t.Errorf("End() called %d times, want 1", sink.ended)
	}
}

func TestPagerTriggerAfterDoneIsNoop(t *testing.T) {
	sink := &recordingSink{}
	p := NewPager(numbered(5), 30, renderInt, sink, applog.NullLogger())

	p.Trigger()
	p.Trigger()
	p.Trigger()

	if got := len(sink.titles()); got != 5 {
		t.Errorf("rendered %d items, want 5", got)
	}
	if sink.ended != 1 {
		t.Errorf("End() called %d times, want 1", sink.ended)
	}
}

func TestPagerDefaultBatchSize(t *testing.T) {
	sink := &recordingSink{}
	p := NewPager(numbered(40), 0, renderInt, sink, applog.NullLogger())

	p.Trigger()
	if got := len(sink.batches[0]); got != DefaultBatchSize {
		t.Errorf("first batch = %d items, want default %d", got, DefaultBatchSize)
	}
}
