// Package server hosts the shared world for SSH players. Each connection gets
// a Session with a command prompt; inventory commands go to the vault router
// and a handful of host commands let players stock their inventory.
//
// One mutex serializes every command against the world. The configuration
// form is the only step that waits on the player, and it runs without the
// lock.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Justash01/inventory-saver/internal/component"
	"github.com/Justash01/inventory-saver/internal/settings"
	"github.com/Justash01/inventory-saver/internal/vault"
	"github.com/Justash01/inventory-saver/internal/world"
)

// Server owns the world and all connected sessions.
type Server struct {
	mu       sync.Mutex
	world    *world.World
	router   *vault.Router
	logger   *slog.Logger
	sessions []*Session
	nextID   int
	spawn    component.Position
}

// New returns a Server. Players join at spawn.
func New(w *world.World, router *vault.Router, logger *slog.Logger, spawn component.Position) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{world: w, router: router, logger: logger, spawn: spawn}
}

// NextSessionID returns a unique session id. Safe to call concurrently.
func (s *Server) NextSessionID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	return id
}

// AddSession registers sess and spawns its player entity.
func (s *Server) AddSession(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.Player.Entity = s.world.SpawnPlayer(s.spawn)
	s.sessions = append(s.sessions, sess)
	s.logger.Info("player joined", "session", sess.ID, "name", sess.Name, "player", sess.Player.ID)
	sess.AddMessage(vault.ToneInfo, fmt.Sprintf("Welcome, %s. Type help for commands.", sess.Name))
	s.broadcastLocked(sess, fmt.Sprintf("%s joined.", sess.Name))
}

// RemoveSession deregisters sess and removes its player entity.
func (s *Server) RemoveSession(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.world.Remove(sess.Player.Entity)
	for i, other := range s.sessions {
		if other == sess {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			break
		}
	}
	s.logger.Info("player left", "session", sess.ID, "name", sess.Name)
	s.broadcastLocked(nil, fmt.Sprintf("%s left.", sess.Name))
}

// Sessions returns the number of connected sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Result tells the session loop what to do after a command.
type Result struct {
	Form *settings.Form // show the configuration form
	Quit bool
}

// Execute runs one command line for sess and appends the outcome to its log.
func (s *Server) Execute(ctx context.Context, sess *Session, line string) Result {
	cmd, ok := ParseCommand(line)
	if !ok {
		return Result{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cmd.Inventory() {
		reply := s.router.Dispatch(ctx, cmd.Verb, cmd.Arg, sess.Player)
		if reply.Text != "" {
			sess.AddMessage(reply.Tone, reply.Text)
		}
		return Result{Form: reply.Form}
	}
	return s.hostCommandLocked(sess, cmd)
}

// ApplyConfig stores a submitted configuration form for sess.
func (s *Server) ApplyConfig(ctx context.Context, sess *Session, resp settings.Response) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply := s.router.ApplyConfig(ctx, resp)
	if reply.Text != "" {
		sess.AddMessage(reply.Tone, reply.Text)
	}
}

// broadcastLocked adds msg to every session except skip and asks them to
// redraw. Caller must hold s.mu.
func (s *Server) broadcastLocked(skip *Session, msg string) {
	for _, other := range s.sessions {
		if other == skip {
			continue
		}
		other.AddMessage(vault.ToneNone, msg)
		other.requestRender()
	}
}
