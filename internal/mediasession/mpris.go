package mediasession

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"

	"github.com/wbell/sonora/internal/domain"
)

const (
	busName    = "org.mpris.MediaPlayer2.sonora"
	objectPath = "/org/mpris/MediaPlayer2"

	rootInterface   = "org.mpris.MediaPlayer2"
	playerInterface = "org.mpris.MediaPlayer2.Player"
)

// MPRIS exposes playback on the session bus so desktop shells and
// hardware media keys can see and control it.
type MPRIS struct {
	conn    *dbus.Conn
	props   *prop.Properties
	handler domain.SessionHandler
	logger  *slog.Logger
}

// NewMPRIS connects to the session bus and claims the player name.
// Inbound commands are forwarded to handler.
func NewMPRIS(handler domain.SessionHandler, logger *slog.Logger) (*MPRIS, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connecting to session bus: %w", err)
	}

	m := &MPRIS{conn: conn, handler: handler, logger: logger}

	if err := conn.Export(m, objectPath, rootInterface); err != nil {
		conn.Close()
		return nil, err
	}
	if err := conn.Export(m, objectPath, playerInterface); err != nil {
		conn.Close()
		return nil, err
	}

	props, err := prop.Export(conn, objectPath, m.propSpec())
	if err != nil {
		conn.Close()
		return nil, err
	}
	m.props = props

	node := &introspect.Node{
		Name: objectPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{Name: rootInterface},
			{Name: playerInterface},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), objectPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		conn.Close()
		return nil, err
	}

	reply, err := conn.RequestName(busName, dbus.NameFlagReplaceExisting)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("claiming bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("bus name %s already owned", busName)
	}

	logger.Info("media session registered", "name", busName)
	return m, nil
}

func (m *MPRIS) propSpec() prop.Map {
	return prop.Map{
		rootInterface: {
			"Identity":            {Value: "Sonora", Emit: prop.EmitTrue},
			"CanQuit":             {Value: false, Emit: prop.EmitTrue},
			"CanRaise":            {Value: false, Emit: prop.EmitTrue},
			"HasTrackList":        {Value: false, Emit: prop.EmitTrue},
			"SupportedUriSchemes": {Value: []string{"file", "http", "https"}, Emit: prop.EmitTrue},
			"SupportedMimeTypes":  {Value: []string{"audio/mpeg", "audio/flac", "audio/ogg"}, Emit: prop.EmitTrue},
		},
		playerInterface: {
			"PlaybackStatus": {Value: "Stopped", Emit: prop.EmitTrue},
			"Metadata":       {Value: map[string]dbus.Variant{}, Emit: prop.EmitTrue},
			"CanGoNext":      {Value: true, Emit: prop.EmitTrue},
			"CanGoPrevious":  {Value: true, Emit: prop.EmitTrue},
			"CanPlay":        {Value: true, Emit: prop.EmitTrue},
			"CanPause":       {Value: true, Emit: prop.EmitTrue},
			"CanSeek":        {Value: true, Emit: prop.EmitTrue},
			"CanControl":     {Value: true, Emit: prop.EmitTrue},
			"Volume":         {Value: 1.0, Emit: prop.EmitTrue, Writable: true},
			"Rate":           {Value: 1.0, Emit: prop.EmitTrue},
			"MinimumRate":    {Value: 1.0, Emit: prop.EmitTrue},
			"MaximumRate":    {Value: 1.0, Emit: prop.EmitTrue},
		},
	}
}

// SetMetadata publishes the current track's display metadata. The
// largest artwork variant becomes the session's art URL.
func (m *MPRIS) SetMetadata(md domain.SessionMetadata) {
	meta := map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(dbus.ObjectPath("/org/sonora/track/current")),
		"xesam:title":   dbus.MakeVariant(md.Title),
		"xesam:artist":  dbus.MakeVariant([]string{md.Artist}),
	}
	if art := largestVariant(md.Artwork); art != "" {
		meta["mpris:artUrl"] = dbus.MakeVariant(art)
	}
	m.props.SetMust(playerInterface, "Metadata", meta)
}

// SetPlaying flips the published playback status.
func (m *MPRIS) SetPlaying(playing bool) {
	status := "Paused"
	if playing {
		status = "Playing"
	}
	m.props.SetMust(playerInterface, "PlaybackStatus", status)
}

// Close releases the bus name and disconnects.
func (m *MPRIS) Close() error {
	if _, err := m.conn.ReleaseName(busName); err != nil {
		m.logger.Warn("releasing bus name", "error", err)
	}
	return m.conn.Close()
}

func largestVariant(variants []domain.ArtworkVariant) string {
	best := ""
	size := -1
	for _, v := range variants {
		if v.Size > size {
			best = v.URL
			size = v.Size
		}
	}
	return best
}

// --- inbound D-Bus methods ---

// PlayPause handles the org.mpris.MediaPlayer2.Player.PlayPause call.
func (m *MPRIS) PlayPause() *dbus.Error {
	m.handler.PlayPause()
	return nil
}

// Play maps to the same toggle; the controller knows its own state.
func (m *MPRIS) Play() *dbus.Error {
	m.handler.PlayPause()
	return nil
}

// Pause maps to the same toggle.
func (m *MPRIS) Pause() *dbus.Error {
	m.handler.PlayPause()
	return nil
}

// Next skips forward in the queue.
func (m *MPRIS) Next() *dbus.Error {
	m.handler.Next()
	return nil
}

// Previous steps back, or restarts mid-track.
func (m *MPRIS) Previous() *dbus.Error {
	m.handler.Previous()
	return nil
}

// Stop is treated as pause; the process owns backend lifetime.
func (m *MPRIS) Stop() *dbus.Error {
	m.handler.PlayPause()
	return nil
}

// SetPosition seeks to an absolute position in microseconds.
func (m *MPRIS) SetPosition(trackID dbus.ObjectPath, position int64) *dbus.Error {
	m.handler.Seek(time.Duration(position) * time.Microsecond)
	return nil
}

// Seek is relative in MPRIS; unsupported offsets are ignored rather
// than misapplied as absolute positions.
func (m *MPRIS) Seek(offset int64) *dbus.Error {
	return nil
}

var _ domain.MediaSession = (*MPRIS)(nil)
