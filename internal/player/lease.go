package player

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// audioLease owns the single temporary file backing the currently
// loaded local track. Exactly one lease is live at a time: allocating
// a new one releases the previous file first, so track changes never
// accumulate payload copies.
type audioLease struct {
	dir     string
	current string
}

func newAudioLease(dir string) (*audioLease, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &audioLease{dir: dir}, nil
}

// Supersede releases the previous payload file and writes data to a
// fresh one, returning its path.
func (l *audioLease) Supersede(data []byte) (string, error) {
	l.Release()

	path := filepath.Join(l.dir, "audio-"+uuid.NewString())
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("writing audio lease: %w", err)
	}
	l.current = path
	return path, nil
}

// Release removes the current payload file, if any.
func (l *audioLease) Release() {
	if l.current != "" {
		os.Remove(l.current)
		l.current = ""
	}
}
