package domain

// RadioStation is a fixed station entry. A station carries either a
// direct StreamURL the player can drive, or an EmbedURL pointing at a
// third-party widget that is rendered but never controlled by the
// playback controller.
type RadioStation struct {
	ID        string `mapstructure:"id"`
	Title     string `mapstructure:"title"`
	Artist    string `mapstructure:"artist"` // subtitle, e.g. the genre
	Art       string `mapstructure:"art"`    // artwork image URL
	StreamURL string `mapstructure:"stream_url"`
	EmbedURL  string `mapstructure:"embed_url"`
}

// Playable reports whether the station can be driven by the player
// directly. Embed-only stations are display-only.
func (s RadioStation) Playable() bool {
	return s.StreamURL != ""
}
