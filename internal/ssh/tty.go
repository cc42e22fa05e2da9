// Package ssh turns gliderlabs SSH sessions into tcell screens.
package ssh

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	gossh "github.com/gliderlabs/ssh"
)

// DefaultTerm is used when the client sends no TERM or one outside AllowedTerms.
const DefaultTerm = "xterm-256color"

// ErrNoPTY is returned by NewScreen for sessions opened without a PTY.
var ErrNoPTY = errors.New("session has no PTY")

// AllowedTerms is the set of TERM values handed to terminfo. Anything else
// falls back to DefaultTerm so clients cannot pick arbitrary terminfo entries.
var AllowedTerms = map[string]bool{
	"xterm":                 true,
	"xterm-256color":        true,
	"xterm-color":           true,
	"screen":                true,
	"screen-256color":       true,
	"tmux":                  true,
	"tmux-256color":         true,
	"linux":                 true,
	"vt100":                 true,
	"vt220":                 true,
	"rxvt-unicode":          true,
	"rxvt-unicode-256color": true,
}

// Tty implements tcell.Tty on top of an SSH session channel.
type Tty struct {
	session gossh.Session
	mu      sync.Mutex
	window  gossh.Window
	winCh   <-chan gossh.Window
	onSize  func()
	watch   sync.Once
}

// NewTty wraps s. win is the size from the PTY request; winCh delivers later
// window-change requests.
func NewTty(s gossh.Session, win gossh.Window, winCh <-chan gossh.Window) *Tty {
	return &Tty{session: s, window: win, winCh: winCh}
}

func (t *Tty) Read(b []byte) (int, error)  { return t.session.Read(b) }
func (t *Tty) Write(b []byte) (int, error) { return t.session.Write(b) }
func (t *Tty) Close() error                { return t.session.Close() }

// Start, Stop and Drain are no-ops: the channel is already in raw mode on the
// client side and writes go straight out.
func (t *Tty) Start() error { return nil }
func (t *Tty) Stop() error  { return nil }
func (t *Tty) Drain() error { return nil }

// WindowSize reports the latest known client window.
func (t *Tty) WindowSize() (tcell.WindowSize, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tcell.WindowSize{Width: t.window.Width, Height: t.window.Height}, nil
}

// NotifyResize registers cb and, on first call, starts draining winCh until
// the session ends.
func (t *Tty) NotifyResize(cb func()) {
	t.mu.Lock()
	t.onSize = cb
	t.mu.Unlock()

	t.watch.Do(func() {
		if t.winCh == nil {
			return
		}
		go func() {
			for win := range t.winCh {
				t.mu.Lock()
				t.window = win
				cb := t.onSize
				t.mu.Unlock()
				if cb != nil {
					cb()
				}
			}
		}()
	})
}

// TermFromEnv picks the TERM value out of a session environment, restricted
// to AllowedTerms.
func TermFromEnv(environ []string) string {
	for _, kv := range environ {
		if v, ok := strings.CutPrefix(kv, "TERM="); ok {
			if AllowedTerms[v] {
				return v
			}
			break
		}
	}
	return DefaultTerm
}

// termMu serializes the TERM swap around terminfo lookup; tcell reads TERM
// from the process environment.
var termMu sync.Mutex

// NewScreen creates and initializes a tcell screen for s.
func NewScreen(s gossh.Session) (tcell.Screen, error) {
	pty, winCh, ok := s.Pty()
	if !ok {
		return nil, ErrNoPTY
	}
	term := TermFromEnv(s.Environ())
	if pty.Term != "" && AllowedTerms[pty.Term] {
		term = pty.Term
	}

	tty := NewTty(s, pty.Window, winCh)
	termMu.Lock()
	_ = os.Setenv("TERM", term)
	screen, err := tcell.NewTerminfoScreenFromTty(tty)
	termMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("terminal %s: %w", term, err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("screen init: %w", err)
	}
	return screen, nil
}
