package player

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wbell/sonora/internal/artwork"
	"github.com/wbell/sonora/internal/domain"
	"github.com/wbell/sonora/internal/library"
)

// State is the playback controller's coarse state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StatePlaying
	StatePaused
)

// TrackType says whether the loaded audio is a stored file or a live
// radio stream.
type TrackType int

const (
	TrackLocal TrackType = iota
	TrackRadio
)

// restartThreshold is how much local playback must have elapsed
// before "previous" restarts the track instead of navigating back.
const restartThreshold = 3 * time.Second

// NoTrack is the queue index when nothing is loaded.
const NoTrack = -1

// Controller unifies local-file and radio playback in one state
// machine. It owns the current queue and index, resolves audio
// payloads through the store, and mirrors state into the OS media
// session.
type Controller struct {
	store    domain.Store
	cache    *library.Cache
	out      domain.Output
	session  domain.MediaSession
	notifier domain.Notifier
	art      *artwork.Cache
	online   func() bool
	logger   *slog.Logger

	mu        sync.Mutex
	queue     []domain.Track
	index     int
	state     State
	trackType TrackType
	current   *domain.Track
	station   *domain.RadioStation
	lease     *audioLease
}

// NewController creates an idle controller. leaseDir receives the
// transient payload files for local playback.
func NewController(
	store domain.Store,
	cache *library.Cache,
	out domain.Output,
	session domain.MediaSession,
	notifier domain.Notifier,
	art *artwork.Cache,
	online func() bool,
	leaseDir string,
	logger *slog.Logger,
) (*Controller, error) {
	if logger == nil {
		logger = slog.Default()
	}
	lease, err := newAudioLease(leaseDir)
	if err != nil {
		return nil, err
	}
	return &Controller{
		store:    store,
		cache:    cache,
		out:      out,
		session:  session,
		notifier: notifier,
		art:      art,
		online:   online,
		logger:   logger,
		index:    NoTrack,
		lease:    lease,
	}, nil
}

// SetSession swaps the media session surface. The controller is
// built before the session because the session's inbound commands
// need a handler.
func (c *Controller) SetSession(session domain.MediaSession) {
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
}

// SetQueue replaces the playback queue wholesale. Called when the
// library filter context changes; the current index is kept only if
// the playing track is part of the new queue.
func (c *Controller) SetQueue(tracks []domain.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.queue = tracks
	c.index = NoTrack
	if c.current != nil {
		for i, t := range tracks {
			if t.ID == c.current.ID {
				c.index = i
				break
			}
		}
	}
}

// Queue returns the current queue.
func (c *Controller) Queue() []domain.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue
}

// CurrentIndex returns the queue position, or NoTrack.
func (c *Controller) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// State returns the playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// TrackType returns the loaded audio's type. Meaningless when idle.
func (c *Controller) TrackType() TrackType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trackType
}

// NowPlaying returns the loaded track's display strings, whether
// local or radio, and false when idle.
func (c *Controller) NowPlaying() (title, artist string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.station != nil:
		return c.station.Title, c.station.Artist, true
	case c.current != nil:
		return c.current.DisplayTitle(), c.current.DisplayArtist(), true
	default:
		return "", "", false
	}
}

// HasPosition reports whether a seekable position should be shown.
// Radio streams have no duration.
func (c *Controller) HasPosition() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil && c.trackType == TrackLocal
}

// Position returns the output's playback position.
func (c *Controller) Position() time.Duration {
	return c.out.Position()
}

// PlayTrackByIndex plays queue position i. Out-of-range indexes are
// ignored.
func (c *Controller) PlayTrackByIndex(i int) error {
	c.mu.Lock()
	if i < 0 || i >= len(c.queue) {
		c.mu.Unlock()
		return nil
	}
	c.index = i
	track := c.queue[i]
	c.mu.Unlock()

	return c.playTrackInternal(track)
}

// PlayTrack plays the track with the given id, as clicked from any
// rendered view. When the track is outside the current queue context
// the full library snapshot becomes the queue.
func (c *Controller) PlayTrack(id int64) error {
	track, ok := c.findTrack(id)
	if !ok {
		c.notifier.Notify("Playback error", "Track could not be found")
		return domain.ErrPlaybackUnresolved
	}

	c.mu.Lock()
	if !c.queueContains(id) {
		c.queue = c.cache.All()
	}
	c.index = NoTrack
	for i, t := range c.queue {
		if t.ID == id {
			c.index = i
			break
		}
	}
	c.mu.Unlock()

	return c.playTrackInternal(track)
}

// PlayNext advances to the next queue entry, wrapping to the front.
func (c *Controller) PlayNext() error {
	c.mu.Lock()
	if len(c.queue) == 0 {
		c.mu.Unlock()
		return nil
	}
	next := c.index + 1
	if next >= len(c.queue) {
		next = 0
	}
	c.index = next
	track := c.queue[next]
	c.mu.Unlock()

	return c.playTrackInternal(track)
}

// PlayPrevious moves back one queue entry, wrapping to the end.
// After more than three seconds of local playback it restarts the
// current track instead.
func (c *Controller) PlayPrevious() error {
	c.mu.Lock()
	if len(c.queue) == 0 {
		c.mu.Unlock()
		return nil
	}
	if c.trackType == TrackLocal && c.current != nil && c.out.Position() > restartThreshold {
		c.mu.Unlock()
		return c.out.Seek(0)
	}
	prev := c.index - 1
	if prev < 0 {
		prev = len(c.queue) - 1
	}
	c.index = prev
	track := c.queue[prev]
	c.mu.Unlock()

	return c.playTrackInternal(track)
}

// playTrackInternal resolves the payload, supersedes the previous
// audio lease, updates the media session and starts playback.
// Failures surface as a notification and leave the prior state.
func (c *Controller) playTrackInternal(track domain.Track) error {
	c.mu.Lock()
	prevState := c.state
	c.state = StateLoading
	c.trackType = TrackLocal
	c.station = nil
	c.current = &track
	session := c.session
	c.mu.Unlock()

	fail := func(err error) error {
		c.logger.Error("playback failed", "trackID", track.ID, "error", err)
		c.notifier.Notify("Playback error", "Could not play "+track.DisplayTitle())
		c.mu.Lock()
		c.state = prevState
		c.mu.Unlock()
		return fmt.Errorf("%w: %v", domain.ErrPlaybackUnresolved, err)
	}

	payload := track.File
	if len(payload) == 0 {
		var err error
		payload, err = c.store.GetFile(track.ID)
		if err != nil {
			return fail(err)
		}
	}

	path, err := c.lease.Supersede(payload)
	if err != nil {
		return fail(err)
	}

	session.SetMetadata(domain.SessionMetadata{
		Title:   track.DisplayTitle(),
		Artist:  track.DisplayArtist(),
		Artwork: c.art.SessionVariants(track.Picture, track.DisplayTitle()),
	})

	if err := c.out.Load(path); err != nil {
		return fail(err)
	}

	c.mu.Lock()
	c.state = StatePlaying
	c.mu.Unlock()
	session.SetPlaying(true)

	c.logger.Info("playing track", "trackID", track.ID, "title", track.Title)
	return nil
}

// PlayRadio starts a stream station. Radio is not part of any queue:
// the queue empties and the index drops to the sentinel. Requires
// connectivity; connection failure notifies and does not retry.
func (c *Controller) PlayRadio(station domain.RadioStation) error {
	if !station.Playable() {
		return domain.ErrRadioUnreachable
	}
	if c.online != nil && !c.online() {
		c.notifier.Notify("No connection", "An internet connection is required for radio")
		return domain.ErrOffline
	}

	c.mu.Lock()
	c.queue = nil
	c.index = NoTrack
	c.current = nil
	c.trackType = TrackRadio
	c.station = &station
	c.lease.Release()
	session := c.session
	c.mu.Unlock()

	session.SetMetadata(domain.SessionMetadata{
		Title:   station.Title,
		Artist:  station.Artist,
		Artwork: []domain.ArtworkVariant{{Size: 300, URL: station.Art}},
	})

	if err := c.out.Load(station.StreamURL); err != nil {
		c.logger.Error("radio connection failed", "station", station.ID, "error", err)
		c.notifier.Notify("Radio error", "Could not connect to "+station.Title)
		return fmt.Errorf("%w: %v", domain.ErrRadioUnreachable, err)
	}

	c.mu.Lock()
	c.state = StatePlaying
	c.mu.Unlock()
	session.SetPlaying(true)

	c.logger.Info("playing radio", "station", station.ID)
	return nil
}

// TogglePlayPause flips the output state and mirrors it into the
// media session. A no-op while idle.
func (c *Controller) TogglePlayPause() {
	c.mu.Lock()
	if c.state != StatePlaying && c.state != StatePaused {
		c.mu.Unlock()
		return
	}
	paused := c.out.Paused()
	if paused {
		c.state = StatePlaying
	} else {
		c.state = StatePaused
	}
	session := c.session
	c.mu.Unlock()

	if paused {
		c.out.Play()
		session.SetPlaying(true)
	} else {
		c.out.Pause()
		session.SetPlaying(false)
	}
}

// OnTrackEnded handles natural end of playback: local tracks
// auto-advance, radio streams do not (they are not queue members).
func (c *Controller) OnTrackEnded() {
	c.mu.Lock()
	local := c.trackType == TrackLocal && c.current != nil
	c.mu.Unlock()

	if local {
		c.PlayNext()
	}
}

// Close releases the audio lease and stops the output.
func (c *Controller) Close() error {
	c.mu.Lock()
	c.lease.Release()
	c.mu.Unlock()
	return c.out.Stop()
}

// --- media session inbound commands ---

// PlayPause implements domain.SessionHandler.
func (c *Controller) PlayPause() { c.TogglePlayPause() }

// Next implements domain.SessionHandler.
func (c *Controller) Next() { c.PlayNext() }

// Previous implements domain.SessionHandler.
func (c *Controller) Previous() { c.PlayPrevious() }

// Seek implements domain.SessionHandler; pos is absolute.
func (c *Controller) Seek(pos time.Duration) { c.out.Seek(pos) }

// --- helpers ---

func (c *Controller) queueContains(id int64) bool {
	for _, t := range c.queue {
		if t.ID == id {
			return true
		}
	}
	return false
}

func (c *Controller) findTrack(id int64) (domain.Track, bool) {
	for _, t := range c.cache.All() {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Track{}, false
}

var _ domain.SessionHandler = (*Controller)(nil)
