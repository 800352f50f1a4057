package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wbell/sonora/internal/domain"
)

// MPVOutput drives a headless mpv process over its JSON IPC socket.
// One process is spawned lazily on the first Load and reused for
// every subsequent local file or stream URL.
type MPVOutput struct {
	command string
	args    []string
	logger  *slog.Logger

	// OnEnded fires when mpv reports natural end of file. Stops and
	// errors do not fire it.
	OnEnded func()

	mu     sync.Mutex
	cmd    *exec.Cmd
	conn   net.Conn
	socket string
	reqID  int
	pos    time.Duration
	paused bool

	replies map[int]chan mpvReply
}

type mpvReply struct {
	Error string          `json:"error"`
	Data  json.RawMessage `json:"data"`
}

type mpvEvent struct {
	Event     string          `json:"event"`
	Reason    string          `json:"reason"`
	RequestID int             `json:"request_id"`
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
}

// NewMPVOutput builds an output around the given player command,
// normally "mpv". Extra args are passed through to the process.
func NewMPVOutput(command string, args []string, logger *slog.Logger) *MPVOutput {
	if command == "" {
		command = "mpv"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MPVOutput{
		command: command,
		args:    args,
		logger:  logger,
		replies: make(map[int]chan mpvReply),
	}
}

// Load starts playback of a file path or stream URL, spawning the
// backend process if needed.
func (o *MPVOutput) Load(source string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.conn == nil {
		if err := o.spawnLocked(); err != nil {
			return err
		}
	}
	if _, err := o.commandLocked("loadfile", source, "replace"); err != nil {
		return err
	}
	if _, err := o.commandLocked("set_property", "pause", false); err != nil {
		return err
	}
	o.paused = false
	return nil
}

// Play resumes a paused backend.
func (o *MPVOutput) Play() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.conn == nil {
		return domain.ErrPlaybackUnresolved
	}
	if _, err := o.commandLocked("set_property", "pause", false); err != nil {
		return err
	}
	o.paused = false
	return nil
}

// Pause pauses playback without unloading the source.
func (o *MPVOutput) Pause() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.conn == nil {
		return domain.ErrPlaybackUnresolved
	}
	if _, err := o.commandLocked("set_property", "pause", true); err != nil {
		return err
	}
	o.paused = true
	return nil
}

// Paused reports the last commanded pause state.
func (o *MPVOutput) Paused() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.paused
}

// Position returns the current playback position. The value is
// pushed by mpv's time-pos observer, so a just-loaded source may
// briefly report zero.
func (o *MPVOutput) Position() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pos
}

// Seek jumps to an absolute position.
func (o *MPVOutput) Seek(pos time.Duration) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.conn == nil {
		return domain.ErrPlaybackUnresolved
	}
	_, err := o.commandLocked("seek", pos.Seconds(), "absolute")
	if err == nil {
		o.pos = pos
	}
	return err
}

// Stop unloads the source and terminates the backend process.
func (o *MPVOutput) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.conn != nil {
		o.commandLocked("quit")
		o.conn.Close()
		o.conn = nil
	}
	if o.cmd != nil && o.cmd.Process != nil {
		done := make(chan struct{})
		cmd := o.cmd
		go func() {
			cmd.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			cmd.Process.Kill()
		}
		o.cmd = nil
	}
	if o.socket != "" {
		os.Remove(o.socket)
		o.socket = ""
	}
	o.pos = 0
	o.paused = false
	return nil
}

func (o *MPVOutput) spawnLocked() error {
	socket := filepath.Join(os.TempDir(), "sonora-mpv-"+uuid.NewString()+".sock")

	args := []string{
		"--no-video",
		"--no-terminal",
		"--idle=yes",
		"--input-ipc-server=" + socket,
	}
	args = append(args, o.args...)

	cmd := exec.Command(o.command, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", o.command, err)
	}

	conn, err := waitForSocket(socket, 5*time.Second)
	if err != nil {
		cmd.Process.Kill()
		return fmt.Errorf("connecting to %s ipc: %w", o.command, err)
	}

	o.cmd = cmd
	o.conn = conn
	o.socket = socket
	go o.readLoop(conn)

	// Observed properties arrive as events; id 1 tags time-pos.
	o.commandLocked("observe_property", 1, "time-pos")

	o.logger.Info("audio backend started", "command", o.command, "socket", socket)
	return nil
}

func waitForSocket(path string, timeout time.Duration) (net.Conn, error) {
	deadline := time.Now().Add(timeout)
	for {
		conn, err := net.Dial("unix", path)
		if err == nil {
			return conn, nil
		}
		if time.Now().After(deadline) {
			return nil, err
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// commandLocked sends one IPC command and waits for its reply.
func (o *MPVOutput) commandLocked(args ...any) (json.RawMessage, error) {
	o.reqID++
	id := o.reqID
	ch := make(chan mpvReply, 1)
	o.replies[id] = ch

	payload, err := json.Marshal(map[string]any{
		"command":    args,
		"request_id": id,
	})
	if err != nil {
		delete(o.replies, id)
		return nil, err
	}
	if _, err := o.conn.Write(append(payload, '\n')); err != nil {
		delete(o.replies, id)
		return nil, err
	}

	o.mu.Unlock()
	var reply mpvReply
	select {
	case reply = <-ch:
	case <-time.After(3 * time.Second):
		o.mu.Lock()
		delete(o.replies, id)
		return nil, fmt.Errorf("ipc reply timed out")
	}
	o.mu.Lock()

	if reply.Error != "" && reply.Error != "success" {
		return nil, fmt.Errorf("ipc command failed: %s", reply.Error)
	}
	return reply.Data, nil
}

// readLoop demultiplexes the IPC stream into command replies and
// playback events.
func (o *MPVOutput) readLoop(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		var ev mpvEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue
		}

		switch {
		case ev.RequestID != 0 && ev.Event == "":
			o.mu.Lock()
			if ch, ok := o.replies[ev.RequestID]; ok {
				delete(o.replies, ev.RequestID)
				ch <- mpvReply{Error: ev.Error, Data: ev.Data}
			}
			o.mu.Unlock()

		case ev.Event == "property-change":
			var seconds float64
			if err := json.Unmarshal(ev.Data, &seconds); err == nil {
				o.mu.Lock()
				o.pos = time.Duration(seconds * float64(time.Second))
				o.mu.Unlock()
			}

		case ev.Event == "end-file" && ev.Reason == "eof":
			o.mu.Lock()
			onEnded := o.OnEnded
			o.mu.Unlock()
			if onEnded != nil {
				onEnded()
			}
		}
	}
}

var _ domain.Output = (*MPVOutput)(nil)
