package player

import (
	"errors"
	"testing"
	"time"

	"github.com/wbell/sonora/internal/artwork"
	"github.com/wbell/sonora/internal/domain"
	"github.com/wbell/sonora/internal/library"
	applog "github.com/wbell/sonora/internal/log"
)

type fakeOutput struct {
	loaded  []string
	playing bool
	pos     time.Duration
	seeks   []time.Duration
	loadErr error
}

func (f *fakeOutput) Load(source string) error {
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loaded = append(f.loaded, source)
	f.playing = true
	return nil
}

func (f *fakeOutput) Play() error  { f.playing = true; return nil }
func (f *fakeOutput) Pause() error { f.playing = false; return nil }
func (f *fakeOutput) Paused() bool { return !f.playing }

func (f *fakeOutput) Position() time.Duration { return f.pos }

func (f *fakeOutput) Seek(pos time.Duration) error {
	f.seeks = append(f.seeks, pos)
	return nil
}

func (f *fakeOutput) Stop() error { f.playing = false; return nil }

type fakeSession struct {
	metadata []domain.SessionMetadata
	playing  []bool
}

func (f *fakeSession) SetMetadata(md domain.SessionMetadata) { f.metadata = append(f.metadata, md) }
func (f *fakeSession) SetPlaying(p bool)                     { f.playing = append(f.playing, p) }
func (f *fakeSession) Close() error                          { return nil }

type fakeNotifier struct {
	titles []string
}

func (f *fakeNotifier) Notify(title, message string) { f.titles = append(f.titles, title) }

type fixedStore struct {
	tracks []domain.Track
}

func (s *fixedStore) InsertTracks(tracks []domain.Track) error { return nil }

func (s *fixedStore) QueryAll(q *domain.Query) []domain.Track {
	out := make([]domain.Track, len(s.tracks))
	copy(out, s.tracks)
	return out
}

func (s *fixedStore) GetFile(id int64) ([]byte, error) {
	for _, t := range s.tracks {
		if t.ID == id {
			return t.File, nil
		}
	}
	return nil, domain.ErrTrackNotFound
}

func (s *fixedStore) Close() error { return nil }

func queueOf(n int) []domain.Track {
	tracks := make([]domain.Track, n)
	for i := range tracks {
		tracks[i] = domain.Track{
			ID:    int64(i + 1),
			Title: string(rune('A' + i)),
			File:  []byte{byte(i + 1)},
		}
	}
	return tracks
}

type harness struct {
	ctl      *Controller
	out      *fakeOutput
	session  *fakeSession
	notifier *fakeNotifier
	cache    *library.Cache
}

func newHarness(t *testing.T, tracks []domain.Track) *harness {
	t.Helper()

	store := &fixedStore{tracks: tracks}
	cache := library.NewCache(store, applog.NullLogger())
	cache.Refresh()

	art, err := artwork.NewCache(t.TempDir(), applog.NullLogger())
	if err != nil {
		t.Fatalf("artwork cache: %v", err)
	}

	out := &fakeOutput{}
	session := &fakeSession{}
	notifier := &fakeNotifier{}

	ctl, err := NewController(store, cache, out, session, notifier, art,
		func() bool { return true }, t.TempDir(), applog.NullLogger())
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return &harness{ctl: ctl, out: out, session: session, notifier: notifier, cache: cache}
}

func TestNextWrapsToFront(t *testing.T) {
	h := newHarness(t, queueOf(5))
	h.ctl.SetQueue(h.cache.All())

	if err := h.ctl.PlayTrackByIndex(4); err != nil {
		t.Fatalf("play last: %v", err)
	}
	if err := h.ctl.PlayNext(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if got := h.ctl.CurrentIndex(); got != 0 {
		t.Errorf("index after wrap = %d, want 0", got)
	}
}

func TestPreviousWrapsToEnd(t *testing.T) {
	h := newHarness(t, queueOf(5))
	h.ctl.SetQueue(h.cache.All())

	if err := h.ctl.PlayTrackByIndex(0); err != nil {
		t.Fatalf("play first: %v", err)
	}
	if err := h.ctl.PlayPrevious(); err != nil {
		t.Fatalf("previous: %v", err)
	}
	if got := h.ctl.CurrentIndex(); got != 4 {
		t.Errorf("index after wrap = %d, want 4", got)
	}
}

func TestPreviousRestartsAfterThreshold(t *testing.T) {
	h := newHarness(t, queueOf(5))
	h.ctl.SetQueue(h.cache.All())

	if err := h.ctl.PlayTrackByIndex(2); err != nil {
		t.Fatalf("play: %v", err)
	}

	h.out.pos = 5 * time.Second
	if err := h.ctl.PlayPrevious(); err != nil {
		t.Fatalf("previous: %v", err)
	}
	if got := h.ctl.CurrentIndex(); got != 2 {
		t.Errorf("index = %d, want 2 (restart, not navigate)", got)
	}
	if len(h.out.seeks) != 1 || h.out.seeks[0] != 0 {
		t.Errorf("seeks = %v, want [0]", h.out.seeks)
	}

	h.out.pos = time.Second
	if err := h.ctl.PlayPrevious(); err != nil {
		t.Fatalf("previous: %v", err)
	}
	if got := h.ctl.CurrentIndex(); got != 1 {
		t.Errorf("index = %d, want 1 (navigate under threshold)", got)
	}
}

func TestPlayTrackOutsideQueueAdoptsLibrary(t *testing.T) {
	h := newHarness(t, queueOf(5))
	h.ctl.SetQueue(nil)

	if err := h.ctl.PlayTrack(3); err != nil {
		t.Fatalf("play track: %v", err)
	}
	if got := len(h.ctl.Queue()); got != 5 {
		t.Errorf("queue length = %d, want 5", got)
	}
	q := h.ctl.Queue()
	if q[h.ctl.CurrentIndex()].ID != 3 {
		t.Errorf("current id = %d, want 3", q[h.ctl.CurrentIndex()].ID)
	}
}

func TestRadioClearsQueue(t *testing.T) {
	h := newHarness(t, queueOf(5))
	h.ctl.SetQueue(h.cache.All())
	if err := h.ctl.PlayTrackByIndex(1); err != nil {
		t.Fatalf("play: %v", err)
	}

	station := domain.RadioStation{
		ID:        "test-fm",
		Title:     "Test FM",
		StreamURL: "https://stream.example/testfm",
	}
	if err := h.ctl.PlayRadio(station); err != nil {
		t.Fatalf("radio: %v", err)
	}
	if got := len(h.ctl.Queue()); got != 0 {
		t.Errorf("queue length = %d, want 0", got)
	}
	if got := h.ctl.CurrentIndex(); got != NoTrack {
		t.Errorf("index = %d, want %d", got, NoTrack)
	}
	if h.ctl.HasPosition() {
		t.Error("radio playback should not expose a position")
	}
	last := h.out.loaded[len(h.out.loaded)-1]
	if last != station.StreamURL {
		t.Errorf("loaded %q, want %q", last, station.StreamURL)
	}
}

func TestRadioOffline(t *testing.T) {
	h := newHarness(t, nil)
	h.ctl.online = func() bool { return false }

	err := h.ctl.PlayRadio(domain.RadioStation{
		ID: "x", Title: "X", StreamURL: "https://stream.example/x",
	})
	if !errors.Is(err, domain.ErrOffline) {
		t.Fatalf("err = %v, want ErrOffline", err)
	}
	if len(h.out.loaded) != 0 {
		t.Errorf("output loaded %v, want nothing", h.out.loaded)
	}
	if len(h.notifier.titles) == 0 {
		t.Error("expected an offline notification")
	}
}

func TestToggleMirrorsSession(t *testing.T) {
	h := newHarness(t, queueOf(1))
	h.ctl.SetQueue(h.cache.All())
	if err := h.ctl.PlayTrackByIndex(0); err != nil {
		t.Fatalf("play: %v", err)
	}

	h.ctl.TogglePlayPause()
	if h.ctl.State() != StatePaused {
		t.Errorf("state = %v, want paused", h.ctl.State())
	}
	h.ctl.TogglePlayPause()
	if h.ctl.State() != StatePlaying {
		t.Errorf("state = %v, want playing", h.ctl.State())
	}

	want := []bool{true, false, true}
	if len(h.session.playing) != len(want) {
		t.Fatalf("session playing calls = %v, want %v", h.session.playing, want)
	}
	for i, p := range want {
		if h.session.playing[i] != p {
			t.Errorf("session playing[%d] = %v, want %v", i, h.session.playing[i], p)
		}
	}
}

func TestToggleIdleIsNoop(t *testing.T) {
	h := newHarness(t, nil)
	h.ctl.TogglePlayPause()
	if h.ctl.State() != StateIdle {
		t.Errorf("state = %v, want idle", h.ctl.State())
	}
	if len(h.session.playing) != 0 {
		t.Errorf("session calls = %v, want none", h.session.playing)
	}
}

func TestTrackEndAdvancesLocalOnly(t *testing.T) {
	h := newHarness(t, queueOf(3))
	h.ctl.SetQueue(h.cache.All())
	if err := h.ctl.PlayTrackByIndex(0); err != nil {
		t.Fatalf("play: %v", err)
	}

	h.ctl.OnTrackEnded()
	if got := h.ctl.CurrentIndex(); got != 1 {
		t.Errorf("index after end = %d, want 1", got)
	}

	if err := h.ctl.PlayRadio(domain.RadioStation{
		ID: "r", Title: "R", StreamURL: "https://stream.example/r",
	}); err != nil {
		t.Fatalf("radio: %v", err)
	}
	loads := len(h.out.loaded)
	h.ctl.OnTrackEnded()
	if len(h.out.loaded) != loads {
		t.Error("radio end must not trigger auto-advance")
	}
}

func TestLoadFailureKeepsPriorState(t *testing.T) {
	h := newHarness(t, queueOf(2))
	h.ctl.SetQueue(h.cache.All())
	if err := h.ctl.PlayTrackByIndex(0); err != nil {
		t.Fatalf("play: %v", err)
	}

	h.out.loadErr = errors.New("backend gone")
	err := h.ctl.PlayTrackByIndex(1)
	if !errors.Is(err, domain.ErrPlaybackUnresolved) {
		t.Fatalf("err = %v, want ErrPlaybackUnresolved", err)
	}
	if h.ctl.State() != StatePlaying {
		t.Errorf("state = %v, want prior playing state", h.ctl.State())
	}
	if len(h.notifier.titles) == 0 {
		t.Error("expected a playback error notification")
	}
}
