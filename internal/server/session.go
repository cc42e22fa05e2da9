package server

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"

	"github.com/Justash01/inventory-saver/internal/vault"
)

// MaxMessages caps a session's message log.
const MaxMessages = 50

// MaxInputLength caps the command line, in runes.
const MaxInputLength = 120

// playerNamespace scopes the name-based player UUIDs.
var playerNamespace = uuid.MustParse("6f1c7f9a-3a55-4f49-9d3e-2b1d5c0e8a11")

// PlayerID derives a stable player identity from a login name. The same name
// always maps to the same id, so saved inventories survive reconnects.
func PlayerID(name string) string {
	return uuid.NewSHA1(playerNamespace, []byte(name)).String()
}

// Message is one line of the session log.
type Message struct {
	Tone vault.Tone
	Text string
}

// Session holds the per-connection state of one player.
type Session struct {
	ID     int
	Name   string
	Player vault.Player
	Screen tcell.Screen

	// Guarded by the server mutex.
	Messages []Message

	// Owned by the session goroutine.
	input []rune

	// RenderCh asks the session goroutine to redraw.
	RenderCh chan struct{}
}

// NewSession allocates a Session for a newly-connected player.
func NewSession(id int, name string, screen tcell.Screen) *Session {
	return &Session{
		ID:       id,
		Name:     name,
		Player:   vault.Player{ID: PlayerID(name)},
		Screen:   screen,
		RenderCh: make(chan struct{}, 1),
	}
}

// AddMessage appends text to the log, one entry per line, keeping the last
// MaxMessages entries.
func (s *Session) AddMessage(tone vault.Tone, text string) {
	for line := range strings.SplitSeq(text, "\n") {
		s.Messages = append(s.Messages, Message{Tone: tone, Text: line})
	}
	if len(s.Messages) > MaxMessages {
		s.Messages = s.Messages[len(s.Messages)-MaxMessages:]
	}
}

// requestRender signals the session goroutine without blocking.
func (s *Session) requestRender() {
	select {
	case s.RenderCh <- struct{}{}:
	default:
	}
}
