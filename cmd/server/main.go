// inventory-saver-server hosts a shared world over SSH where players save,
// load, list and delete labelled inventories. Build:
//
//	go build -o inventory-saver-server ./cmd/server
//
// Usage:
//
//	./inventory-saver-server [--port 2222] [--key server_host_key] [--data DIR]
//
// Every flag falls back to its INVENTORY_* environment variable. Connect with:
//
//	ssh -p 2222 localhost
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	"unicode"
	"unicode/utf8"

	gossh "github.com/gliderlabs/ssh"
	xssh "golang.org/x/crypto/ssh"

	"github.com/Justash01/inventory-saver/internal/carrier"
	"github.com/Justash01/inventory-saver/internal/component"
	"github.com/Justash01/inventory-saver/internal/config"
	"github.com/Justash01/inventory-saver/internal/server"
	"github.com/Justash01/inventory-saver/internal/settings"
	"github.com/Justash01/inventory-saver/internal/snapshot"
	internalssh "github.com/Justash01/inventory-saver/internal/ssh"
	"github.com/Justash01/inventory-saver/internal/storage/sqlite"
	"github.com/Justash01/inventory-saver/internal/vault"
	"github.com/Justash01/inventory-saver/internal/world"
)

// maxNameBytes caps display names.
const maxNameBytes = 16

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	flag.IntVar(&cfg.Port, "port", cfg.Port, "SSH server port")
	flag.StringVar(&cfg.HostKey, "key", cfg.HostKey, "Path to the PEM-encoded host key (auto-generated if absent)")
	flag.StringVar(&cfg.DataDir, "data", cfg.DataDir, "Directory holding the inventory database")
	flag.Parse()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	db, err := sqlite.Open(cfg.DBPath())
	if err != nil {
		return err
	}
	defer db.Close()

	w := world.New()
	for _, t := range cfg.EntityTypes() {
		w.RegisterType(t)
		logger.Debug("carrier type registered", "type", t.ID, "slots", t.Slots)
	}

	snapshots := snapshot.NewStore(w, db, snapshot.NewMemoryBackend(), logger)
	carriers := carrier.NewManager(w, logger, world.PlayerInventorySize+component.EquipSlotCount)
	svc := vault.NewService(w, snapshots, carriers, vault.WithLogger(logger))
	router := vault.NewRouter(svc, settings.NewStore(db, settings.WithDefaultCarrier(cfg.CarrierType)), logger)
	srv := server.New(w, router, logger, component.Position{Realm: world.Overworld, X: 0.5, Y: 64, Z: 0.5})

	signer, err := loadOrCreateHostKey(cfg.HostKey, logger)
	if err != nil {
		return err
	}

	sshSrv := &gossh.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: func(s gossh.Session) {
			handleSession(srv, s, logger)
		},
		PtyCallback: func(_ gossh.Context, _ gossh.Pty) bool { return true },
		// Any client may connect; the SSH user name is the player identity.
		HostSigners: []gossh.Signer{signer},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- sshSrv.ListenAndServe() }()
	logger.Info("listening", "addr", sshSrv.Addr, "db", cfg.DBPath())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sshSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, gossh.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// handleSession is the gliderlabs SSH handler for one connection. It blocks
// for the lifetime of the connection.
func handleSession(srv *server.Server, s gossh.Session, logger *slog.Logger) {
	screen, err := internalssh.NewScreen(s)
	if errors.Is(err, internalssh.ErrNoPTY) {
		fmt.Fprintln(s, "A terminal is required. Connect with: ssh -t -p <port> <host>")
		return
	}
	if err != nil {
		logger.Warn("screen setup failed", "remote", s.RemoteAddr().String(), "error", err)
		fmt.Fprintf(s, "Terminal setup failed: %v\n", err)
		return
	}
	defer screen.Fini()

	id := srv.NextSessionID()
	name := sanitizeName(s.User())
	if name == "" {
		name = fmt.Sprintf("Player%d", id+1)
	}
	sess := server.NewSession(id, name, screen)
	srv.AddSession(sess)
	defer srv.RemoveSession(sess)

	srv.RunLoop(s.Context(), sess)
}

// sanitizeName drops control characters and truncates to maxNameBytes
// without splitting a rune.
func sanitizeName(name string) string {
	out := make([]byte, 0, maxNameBytes)
	for _, r := range name {
		if unicode.IsControl(r) || r == utf8.RuneError {
			continue
		}
		if len(out)+utf8.RuneLen(r) > maxNameBytes {
			break
		}
		out = utf8.AppendRune(out, r)
	}
	return string(out)
}

// ─── host key ───────────────────────────────────────────────────────────────

// loadOrCreateHostKey loads a PEM private key from path, or generates and
// persists a new ed25519 key if the file is absent or unreadable.
func loadOrCreateHostKey(path string, logger *slog.Logger) (gossh.Signer, error) {
	if data, err := os.ReadFile(path); err == nil {
		if signer, err := xssh.ParsePrivateKey(data); err == nil {
			logger.Info("loaded host key", "path", path)
			return signer, nil
		}
		logger.Warn("host key unreadable, generating a new one", "path", path)
	}

	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate host key: %w", err)
	}
	signer, err := xssh.NewSignerFromKey(key)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}
	block, err := xssh.MarshalPrivateKey(key, "inventory-saver server")
	if err != nil {
		return nil, fmt.Errorf("marshal host key: %w", err)
	}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		logger.Warn("host key not persisted", "path", path, "error", err)
	} else {
		logger.Info("generated host key", "path", path)
	}
	return signer, nil
}
