package input

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/term"

	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
	"git.home.luguber.info/inful/vpndesk/internal/logfields"
)

// Terminal reads key presses from a terminal in raw mode and dispatches them.
// Ctrl+C and Ctrl+D call onInterrupt since raw mode suppresses SIGINT.
type Terminal struct {
	in          *os.File
	dispatcher  *Dispatcher
	onInterrupt func()
	logger      *slog.Logger

	mu       sync.Mutex
	oldState *term.State
}

// NewTerminal wires in to dispatcher.
func NewTerminal(in *os.File, dispatcher *Dispatcher, onInterrupt func(), logger *slog.Logger) *Terminal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Terminal{in: in, dispatcher: dispatcher, onInterrupt: onInterrupt, logger: logger.With(logfields.Service("input"))}
}

// Interactive reports whether in is a terminal.
func (t *Terminal) Interactive() bool {
	return term.IsTerminal(int(t.in.Fd()))
}

// Start switches the terminal to raw mode and starts reading. It is a no-op
// when in is not a terminal.
func (t *Terminal) Start(context.Context) error {
	if !t.Interactive() {
		t.logger.Debug("Input is not a terminal; key listener disabled")
		return nil
	}
	state, err := term.MakeRaw(int(t.in.Fd()))
	if err != nil {
		return ferrors.RuntimeError("set terminal raw mode").WithCause(err).Build()
	}
	t.mu.Lock()
	t.oldState = state
	t.mu.Unlock()

	go t.readLoop(t.in)
	return nil
}

// Stop restores the terminal. A read already blocked on the terminal returns
// with the next key press.
func (t *Terminal) Stop(context.Context) error {
	t.mu.Lock()
	state := t.oldState
	t.oldState = nil
	t.mu.Unlock()

	if state == nil {
		return nil
	}
	if err := term.Restore(int(t.in.Fd()), state); err != nil {
		return ferrors.RuntimeError("restore terminal").WithCause(err).Build()
	}
	return nil
}

func (t *Terminal) raw() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.oldState != nil
}

func (t *Terminal) readLoop(r io.Reader) {
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		if n > 0 && t.raw() {
			t.dispatch(buf[:n])
		}
		if err != nil || !t.raw() {
			return
		}
	}
}

func (t *Terminal) dispatch(raw []byte) {
	for _, key := range Decode(raw) {
		if key == KeyCtrlC || key == KeyCtrlD {
			if t.onInterrupt != nil {
				t.onInterrupt()
			}
			continue
		}
		if !t.dispatcher.Press(key) {
			t.logger.Debug("Unbound key", logfields.KeyCode(key))
		}
	}
}

// CRLFWriter translates "\n" to "\r\n" so log lines render correctly while
// the terminal is in raw mode.
type CRLFWriter struct {
	w io.Writer
}

// NewCRLFWriter wraps w.
func NewCRLFWriter(w io.Writer) *CRLFWriter {
	return &CRLFWriter{w: w}
}

func (c *CRLFWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
