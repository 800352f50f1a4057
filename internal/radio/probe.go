package radio

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"
)

// probeTTL caches a connectivity answer briefly so rapid UI checks
// do not stack network dials.
const probeTTL = 10 * time.Second

// Probe answers "is the network reachable right now". It dials a
// well-known endpoint rather than trusting interface state, since a
// wifi link with no upstream should still count as offline.
type Probe struct {
	target  string
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	online  bool
	checked time.Time
}

// NewProbe builds a probe against the given host:port. An empty
// target falls back to a public DNS endpoint.
func NewProbe(target string, logger *slog.Logger) *Probe {
	if target == "" {
		target = "1.1.1.1:53"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Probe{target: target, timeout: 3 * time.Second, logger: logger}
}

// Online reports connectivity, serving a cached answer inside the
// probe window.
func (p *Probe) Online() bool {
	p.mu.Lock()
	if time.Since(p.checked) < probeTTL {
		online := p.online
		p.mu.Unlock()
		return online
	}
	p.mu.Unlock()

	online := p.check()

	p.mu.Lock()
	p.online = online
	p.checked = time.Now()
	p.mu.Unlock()
	return online
}

func (p *Probe) check() bool {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", p.target)
	if err != nil {
		p.logger.Debug("connectivity probe failed", "target", p.target, "error", err)
		return false
	}
	conn.Close()
	return true
}
