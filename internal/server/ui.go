package server

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/Justash01/inventory-saver/internal/form"
	"github.com/Justash01/inventory-saver/internal/vault"
)

var toneColors = map[vault.Tone]tcell.Color{
	vault.ToneNone:    tcell.ColorGray,
	vault.ToneSuccess: tcell.ColorGreen,
	vault.ToneFailure: tcell.ColorRed,
	vault.ToneInfo:    tcell.ColorSilver,
}

// renderLocked draws the message log, a status line and the prompt.
// Caller must hold s.mu.
func (s *Server) renderLocked(sess *Session) {
	scr := sess.Screen
	scr.Clear()
	sw, sh := scr.Size()
	if sw <= 0 || sh < 3 {
		return
	}

	gray := tcell.StyleDefault.Foreground(tcell.ColorGray)
	status := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorAqua)
	prompt := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)

	// Log fills everything above the status bar, newest at the bottom.
	logRows := sh - 3
	first := max(len(sess.Messages)-logRows, 0)
	for i, m := range sess.Messages[first:] {
		st := tcell.StyleDefault.Foreground(toneColors[m.Tone])
		form.PutText(scr, 0, i, runewidth.Truncate(m.Text, sw, "…"), st)
	}

	for x := range sw {
		scr.SetContent(x, sh-3, '─', nil, gray)
	}

	line := fmt.Sprintf(" %s", sess.Name)
	if pos, ok := s.world.Position(sess.Player.Entity); ok {
		bx, by, bz := pos.Block()
		line += fmt.Sprintf("  %s (%d, %d, %d)", pos.Realm, bx, by, bz)
	}
	if inv := s.world.Container(sess.Player.Entity); inv != nil {
		line += fmt.Sprintf("  %d/%d slots", len(inv.Occupied()), inv.Size())
	}
	for x := range sw {
		scr.SetContent(x, sh-2, ' ', nil, status)
	}
	form.PutText(scr, 0, sh-2, line, status)

	input := "> " + string(sess.input) + "_"
	form.PutText(scr, 0, sh-1, tailFit(input, sw), prompt)
}

// tailFit keeps the end of s that fits in width columns.
func tailFit(s string, width int) string {
	r := []rune(s)
	for len(r) > 0 && runewidth.StringWidth(string(r)) > width {
		r = r[1:]
	}
	return string(r)
}
