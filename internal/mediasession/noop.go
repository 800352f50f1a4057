package mediasession

import "github.com/wbell/sonora/internal/domain"

// Null is the media session used when no session bus is reachable.
// Playback works normally; the OS surface is simply absent.
type Null struct{}

func (Null) SetMetadata(domain.SessionMetadata) {}
func (Null) SetPlaying(bool)                    {}
func (Null) Close() error                       { return nil }

var _ domain.MediaSession = Null{}
