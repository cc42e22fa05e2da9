package server

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/Justash01/inventory-saver/internal/carrier"
	"github.com/Justash01/inventory-saver/internal/component"
	"github.com/Justash01/inventory-saver/internal/settings"
	"github.com/Justash01/inventory-saver/internal/snapshot"
	"github.com/Justash01/inventory-saver/internal/vault"
	"github.com/Justash01/inventory-saver/internal/world"
)

// ─── helpers ──────────────────────────────────────────────────────────────────

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newSimScreen() tcell.Screen {
	ss := tcell.NewSimulationScreen("UTF-8")
	ss.SetSize(80, 24)
	_ = ss.Init()
	return ss
}

func newTestServer() (*Server, *world.World) {
	w := world.New()
	snaps := snapshot.NewStore(w, snapshot.NewMemoryBackend(), nil, quiet)
	carriers := carrier.NewManager(w, quiet, world.PlayerInventorySize+component.EquipSlotCount)
	svc := vault.NewService(w, snaps, carriers, vault.WithLogger(quiet))
	router := vault.NewRouter(svc, settings.NewStore(settings.NewMemoryProperties()), quiet)
	spawn := component.Position{Realm: world.Overworld, X: 0.5, Y: 64, Z: 0.5}
	return New(w, router, quiet, spawn), w
}

func newTestSession(s *Server, name string) *Session {
	sess := NewSession(s.NextSessionID(), name, newSimScreen())
	s.AddSession(sess)
	return sess
}

func lastMessage(sess *Session) Message {
	if len(sess.Messages) == 0 {
		return Message{}
	}
	return sess.Messages[len(sess.Messages)-1]
}

func run(t *testing.T, s *Server, sess *Session, line string) Result {
	t.Helper()
	return s.Execute(context.Background(), sess, line)
}

// ─── identity and log ─────────────────────────────────────────────────────────

func TestPlayerIDStable(t *testing.T) {
	if PlayerID("alice") != PlayerID("alice") {
		t.Error("same name should give the same id")
	}
	if PlayerID("alice") == PlayerID("bob") {
		t.Error("different names should give different ids")
	}
	if strings.Contains(PlayerID("a:b"), snapshot.Separator) {
		t.Error("player ids must not contain the key separator")
	}
}

func TestMessageLogCapped(t *testing.T) {
	sess := NewSession(0, "alice", newSimScreen())
	for i := range MaxMessages + 20 {
		sess.AddMessage(vault.ToneInfo, strings.Repeat("x", i%5+1))
	}
	if len(sess.Messages) != MaxMessages {
		t.Fatalf("log holds %d messages, want %d", len(sess.Messages), MaxMessages)
	}
}

func TestMultilineMessageSplit(t *testing.T) {
	sess := NewSession(0, "alice", newSimScreen())
	sess.AddMessage(vault.ToneSuccess, "a\nb\nc")
	if len(sess.Messages) != 3 || sess.Messages[2].Text != "c" {
		t.Fatalf("messages = %+v", sess.Messages)
	}
}

// ─── parsing ──────────────────────────────────────────────────────────────────

func TestParseCommand(t *testing.T) {
	cases := []struct {
		line string
		want Command
		ok   bool
	}{
		{`save kit`, Command{Verb: vault.VerbSave, Arg: "kit"}, true},
		{`/inventory:load "kit"`, Command{Verb: vault.VerbLoad, Arg: `"kit"`}, true},
		{`/scriptevent inventory:delete kit`, Command{Verb: vault.VerbDelete, Arg: "kit"}, true},
		{`  SAVE   my kit `, Command{Verb: vault.VerbSave, Arg: "my kit"}, true},
		{`give diamond 3`, Command{Verb: "give", Arg: "diamond 3"}, true},
		{`list`, Command{Verb: vault.VerbList}, true},
		{`   `, Command{}, false},
		{`/`, Command{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			got, ok := ParseCommand(tc.line)
			if ok != tc.ok || got != tc.want {
				t.Errorf("ParseCommand(%q) = %+v, %v; want %+v, %v", tc.line, got, ok, tc.want, tc.ok)
			}
		})
	}
}

// ─── sessions ─────────────────────────────────────────────────────────────────

func TestAddRemoveSession(t *testing.T) {
	s, w := newTestServer()
	alice := newTestSession(s, "alice")
	bob := newTestSession(s, "bob")

	if s.Sessions() != 2 || w.Len() != 2 {
		t.Fatalf("sessions=%d entities=%d, want 2 and 2", s.Sessions(), w.Len())
	}
	if !strings.Contains(lastMessage(alice).Text, "bob joined") {
		t.Errorf("alice last message = %q", lastMessage(alice).Text)
	}

	s.RemoveSession(bob)
	if s.Sessions() != 1 || w.Alive(bob.Player.Entity) {
		t.Fatal("bob still registered after RemoveSession")
	}
	if !strings.Contains(lastMessage(alice).Text, "bob left") {
		t.Errorf("alice last message = %q", lastMessage(alice).Text)
	}
}

// ─── commands ─────────────────────────────────────────────────────────────────

func TestSaveLoadThroughCommands(t *testing.T) {
	s, w := newTestServer()
	sess := newTestSession(s, "alice")

	run(t, s, sess, "give diamond 5")
	run(t, s, sess, "wear head iron_helmet")
	run(t, s, sess, "save kit")
	if m := lastMessage(sess); m.Tone != vault.ToneSuccess || !strings.Contains(m.Text, "saved with ID 'kit'") {
		t.Fatalf("save message = %+v", m)
	}
	if !w.Container(sess.Player.Entity).Empty() {
		t.Fatal("inventory not cleared by save")
	}

	run(t, s, sess, "list")
	if m := lastMessage(sess); !strings.HasPrefix(m.Text, "kit: x5 minecraft:diamond") {
		t.Fatalf("list message = %+v", m)
	}

	run(t, s, sess, `load "kit"`)
	got, ok := w.Container(sess.Player.Entity).Item(0)
	if !ok || got != (component.ItemStack{TypeID: "minecraft:diamond", Amount: 5}) {
		t.Fatalf("slot 0 after load = %+v", got)
	}
	if helmet, _ := w.Equipment(sess.Player.Entity).Worn(component.EquipHead); helmet.TypeID != "minecraft:iron_helmet" {
		t.Fatalf("head after load = %+v", helmet)
	}
	if w.Len() != 1 {
		t.Fatalf("%d entities alive, want only the player", w.Len())
	}
}

func TestSavedInventoriesAreScopedByPlayer(t *testing.T) {
	s, _ := newTestServer()
	alice := newTestSession(s, "alice")
	bob := newTestSession(s, "bob")

	run(t, s, alice, "give stone")
	run(t, s, alice, "save mine")
	run(t, s, bob, "load mine")
	if m := lastMessage(bob); m.Tone != vault.ToneFailure {
		t.Fatalf("bob loaded alice's inventory: %+v", m)
	}
}

func TestSpaceLabelRejected(t *testing.T) {
	s, w := newTestServer()
	sess := newTestSession(s, "alice")
	run(t, s, sess, "give stone")
	run(t, s, sess, `save "my kit"`)
	if m := lastMessage(sess); m.Tone != vault.ToneFailure || !strings.Contains(m.Text, "Spaces are not allowed") {
		t.Fatalf("message = %+v", m)
	}
	if w.Container(sess.Player.Entity).Empty() {
		t.Fatal("rejected save moved items")
	}
}

func TestUnknownInventoryVerbIsSilent(t *testing.T) {
	s, _ := newTestServer()
	sess := newTestSession(s, "alice")
	before := len(sess.Messages)
	run(t, s, sess, "inventory:export kit")
	if len(sess.Messages) != before {
		t.Fatalf("unknown inventory verb produced %+v", lastMessage(sess))
	}
}

func TestUnknownHostCommand(t *testing.T) {
	s, _ := newTestServer()
	sess := newTestSession(s, "alice")
	run(t, s, sess, "dance")
	if m := lastMessage(sess); m.Tone != vault.ToneFailure || !strings.Contains(m.Text, "Unknown command") {
		t.Fatalf("message = %+v", m)
	}
}

func TestHostCommands(t *testing.T) {
	s, w := newTestServer()
	sess := newTestSession(s, "alice")
	id := sess.Player.Entity

	cases := []struct {
		line string
		tone vault.Tone
	}{
		{"give", vault.ToneFailure},
		{"give dirt 0", vault.ToneFailure},
		{"give dirt 65", vault.ToneFailure},
		{"give dirt 64", vault.ToneSuccess},
		{"give mod:gem", vault.ToneSuccess},
		{"wear hat leather_cap", vault.ToneFailure},
		{"wear offhand shield", vault.ToneSuccess},
		{"realm mars", vault.ToneFailure},
		{"realm nether", vault.ToneSuccess},
		{"inv", vault.ToneInfo},
		{"help", vault.ToneInfo},
	}
	for _, tc := range cases {
		run(t, s, sess, tc.line)
		// multi-line replies end with their last line; tone is shared
		if m := lastMessage(sess); m.Tone != tc.tone {
			t.Errorf("%q: tone = %v, want %v (%q)", tc.line, m.Tone, tc.tone, m.Text)
		}
	}

	inv := w.Container(id)
	if got, _ := inv.Item(0); got.TypeID != "minecraft:dirt" || got.Amount != 64 {
		t.Errorf("slot 0 = %+v", got)
	}
	if got, _ := inv.Item(1); got.TypeID != "mod:gem" {
		t.Errorf("slot 1 = %+v", got)
	}
	if got, _ := w.Equipment(id).Worn(component.EquipOffhand); got.TypeID != "minecraft:shield" {
		t.Errorf("offhand = %+v", got)
	}
	if pos, _ := w.Position(id); pos.Realm != world.Nether {
		t.Errorf("realm = %s", pos.Realm)
	}

	run(t, s, sess, "clear")
	if !inv.Empty() || !w.Equipment(id).Empty() {
		t.Error("clear left items behind")
	}
}

func TestGiveIntoFullInventory(t *testing.T) {
	s, _ := newTestServer()
	sess := newTestSession(s, "alice")
	for range world.PlayerInventorySize {
		run(t, s, sess, "give stone")
	}
	run(t, s, sess, "give stone")
	if m := lastMessage(sess); m.Tone != vault.ToneFailure || !strings.Contains(m.Text, "full") {
		t.Fatalf("message = %+v", m)
	}
}

func TestQuit(t *testing.T) {
	s, _ := newTestServer()
	sess := newTestSession(s, "alice")
	if !run(t, s, sess, "quit").Quit {
		t.Fatal("quit should end the session")
	}
}

func TestConfigRoundTrip(t *testing.T) {
	s, _ := newTestServer()
	sess := newTestSession(s, "alice")

	res := run(t, s, sess, "config")
	if res.Form == nil {
		t.Fatal("config should open the form")
	}
	values := *res.Form
	values.RemoveSaved = false
	s.ApplyConfig(context.Background(), sess, settings.Response{Values: values})
	if m := lastMessage(sess); m.Tone != vault.ToneSuccess {
		t.Fatalf("apply message = %+v", m)
	}

	// loads now keep the snapshot
	run(t, s, sess, "give stone")
	run(t, s, sess, "save keep")
	run(t, s, sess, "load keep")
	run(t, s, sess, "list")
	if m := lastMessage(sess); !strings.HasPrefix(m.Text, "keep: ") {
		t.Fatalf("snapshot gone after load: %+v", m)
	}

	before := len(sess.Messages)
	s.ApplyConfig(context.Background(), sess, settings.Response{Canceled: true})
	if len(sess.Messages) != before {
		t.Fatal("canceled form produced a message")
	}
}

// ─── prompt and rendering ─────────────────────────────────────────────────────

func TestEditPrompt(t *testing.T) {
	sess := NewSession(0, "alice", newSimScreen())
	for _, r := range "savx" {
		sess.edit(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
	sess.edit(tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone))
	sess.edit(tcell.NewEventKey(tcell.KeyRune, 'e', tcell.ModNone))

	line, submitted, quit := sess.edit(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	if line != "save" || !submitted || quit {
		t.Fatalf("edit = %q, %v, %v", line, submitted, quit)
	}
	if _, submitted, _ := sess.edit(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)); submitted {
		t.Fatal("empty line should not submit")
	}
	if _, _, quit := sess.edit(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModNone)); !quit {
		t.Fatal("Ctrl+C should quit")
	}
}

func TestRenderShowsLogStatusAndPrompt(t *testing.T) {
	s, _ := newTestServer()
	sess := newTestSession(s, "alice")
	run(t, s, sess, "give diamond")
	sess.input = []rune("list")

	s.mu.Lock()
	s.renderLocked(sess)
	s.mu.Unlock()

	_, sh := sess.Screen.Size()
	if got := screenRow(sess.Screen, sh-1); !strings.HasPrefix(got, "> list_") {
		t.Errorf("prompt row = %q", got)
	}
	if got := screenRow(sess.Screen, sh-2); !strings.Contains(got, "alice") || !strings.Contains(got, "1/36 slots") {
		t.Errorf("status row = %q", got)
	}
	if got := screenRow(sess.Screen, 1); !strings.Contains(got, "Gave x1 minecraft:diamond") {
		t.Errorf("log row = %q", got)
	}
}

func screenRow(screen tcell.Screen, y int) string {
	sw, _ := screen.Size()
	var b strings.Builder
	for x := range sw {
		r, _, _, _ := screen.GetContent(x, y)
		if r == 0 {
			r = ' '
		}
		b.WriteRune(r)
	}
	return b.String()
}
