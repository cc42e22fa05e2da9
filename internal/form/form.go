// Package form draws the inventory configuration form on a tcell screen and
// collects the player's answers.
package form

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/Justash01/inventory-saver/internal/settings"
)

// MaxCarrierLength caps the storage entity field, in runes.
const MaxCarrierLength = 64

// field is one focusable row of the form.
type field int

const (
	fieldRetention field = iota
	fieldRemoveItems
	fieldRemoveSaved
	fieldCarrier
	fieldSubmit
	fieldCount
)

// state is the form being edited.
type state struct {
	values settings.Form
	focus  field
}

// Run shows the configuration form prefilled with initial and blocks until
// the player submits or cancels. eventCh supplies keyboard events from the
// session's input goroutine; a closed channel counts as a cancel.
//
// Keys: Up/Down/Tab move between rows, Left/Right cycle the dropdown, Space
// flips a toggle, Enter submits, Esc cancels.
func Run(screen tcell.Screen, eventCh <-chan tcell.Event, initial settings.Form) settings.Response {
	st := &state{values: initial}
	if st.values.Retention < 0 || st.values.Retention >= len(settings.RetentionOptions) {
		st.values.Retention = 0
	}

	for {
		draw(screen, st)

		ev, ok := <-eventCh
		if !ok || ev == nil {
			return settings.Response{Canceled: true}
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			if resp, done := st.handleKey(ev); done {
				return resp
			}
		}
	}
}

// handleKey applies one key press. done is true once the form is closed.
func (st *state) handleKey(ev *tcell.EventKey) (resp settings.Response, done bool) {
	switch ev.Key() {
	case tcell.KeyEscape:
		return settings.Response{Canceled: true}, true
	case tcell.KeyEnter:
		return settings.Response{Values: st.values}, true
	case tcell.KeyUp, tcell.KeyBacktab:
		st.focus = (st.focus - 1 + fieldCount) % fieldCount
	case tcell.KeyDown, tcell.KeyTab:
		st.focus = (st.focus + 1) % fieldCount
	case tcell.KeyLeft:
		if st.focus == fieldRetention {
			st.cycleRetention(-1)
		}
	case tcell.KeyRight:
		if st.focus == fieldRetention {
			st.cycleRetention(1)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if st.focus == fieldCarrier {
			r := []rune(st.values.CarrierType)
			if len(r) > 0 {
				st.values.CarrierType = string(r[:len(r)-1])
			}
		}
	case tcell.KeyCtrlU:
		if st.focus == fieldCarrier {
			st.values.CarrierType = ""
		}
	case tcell.KeyRune:
		st.handleRune(ev.Rune())
	}
	return settings.Response{}, false
}

func (st *state) handleRune(r rune) {
	if st.focus == fieldCarrier {
		if r != ' ' && len([]rune(st.values.CarrierType)) < MaxCarrierLength {
			st.values.CarrierType += string(r)
		}
		return
	}
	switch r {
	case ' ':
		switch st.focus {
		case fieldRetention:
			st.cycleRetention(1)
		case fieldRemoveItems:
			st.values.RemoveItems = !st.values.RemoveItems
		case fieldRemoveSaved:
			st.values.RemoveSaved = !st.values.RemoveSaved
		}
	case 'k', 'K':
		st.focus = (st.focus - 1 + fieldCount) % fieldCount
	case 'j', 'J':
		st.focus = (st.focus + 1) % fieldCount
	}
}

func (st *state) cycleRetention(delta int) {
	n := len(settings.RetentionOptions)
	st.values.Retention = (st.values.Retention + delta + n) % n
}

// draw renders the form centred in a bordered box.
func draw(screen tcell.Screen, st *state) {
	screen.Clear()
	sw, sh := screen.Size()

	border := tcell.StyleDefault.Foreground(tcell.ColorGray)
	title := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	label := tcell.StyleDefault.Foreground(tcell.ColorSilver)
	value := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	focused := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorAqua)
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)

	width := min(max(runewidth.StringWidth(settings.CarrierHint)+4, 60), sw)
	const height = 16
	x0 := max((sw-width)/2, 0)
	y0 := max((sh-height)/2, 0)

	drawBox(screen, x0, y0, width, height, border)
	header := " " + settings.FormTitle + " "
	PutText(screen, x0+(width-runewidth.StringWidth(header))/2, y0, header, title)

	style := func(f field) tcell.Style {
		if st.focus == f {
			return focused
		}
		return value
	}
	inner := x0 + 2
	fieldWidth := width - 4

	PutText(screen, inner, y0+2, settings.LabelRetention, label)
	PutText(screen, inner, y0+3, "< "+settings.RetentionOptions[st.values.Retention]+" >", style(fieldRetention))

	PutText(screen, inner, y0+5, checkbox(st.values.RemoveItems)+" "+settings.LabelRemoveItems, style(fieldRemoveItems))
	PutText(screen, inner, y0+7, checkbox(st.values.RemoveSaved)+" "+settings.LabelRemoveSaved, style(fieldRemoveSaved))

	PutText(screen, inner, y0+9, settings.LabelCarrier, label)
	text := st.values.CarrierType
	if st.focus == fieldCarrier {
		text += "_"
	}
	PutText(screen, inner, y0+10, "["+tail(text, fieldWidth-2)+"]", style(fieldCarrier))
	PutText(screen, inner, y0+11, settings.CarrierHint, dim)

	PutText(screen, inner, y0+13, "[ Submit ]", style(fieldSubmit))
	PutText(screen, inner, y0+height-1, " [↑↓] Move  [←→/Space] Change  [Enter] Submit  [Esc] Cancel ", dim)

	screen.Show()
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

// tail keeps the end of s that fits in width columns, so the cursor stays
// visible while typing long ids.
func tail(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && runewidth.StringWidth(string(r)) > width-1 {
		r = r[1:]
	}
	return "…" + string(r)
}

func drawBox(screen tcell.Screen, x0, y0, w, h int, st tcell.Style) {
	for col := x0; col < x0+w; col++ {
		screen.SetContent(col, y0, '─', nil, st)
		screen.SetContent(col, y0+h-1, '─', nil, st)
	}
	for row := y0; row < y0+h; row++ {
		screen.SetContent(x0, row, '│', nil, st)
		screen.SetContent(x0+w-1, row, '│', nil, st)
	}
	screen.SetContent(x0, y0, '┌', nil, st)
	screen.SetContent(x0+w-1, y0, '┐', nil, st)
	screen.SetContent(x0, y0+h-1, '└', nil, st)
	screen.SetContent(x0+w-1, y0+h-1, '┘', nil, st)
}

// PutText writes s starting at (x, y), advancing by each rune's display
// width. It stops at the right edge of the screen.
func PutText(scr tcell.Screen, x, y int, s string, st tcell.Style) {
	sw, _ := scr.Size()
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > sw {
			break
		}
		scr.SetContent(x, y, r, nil, st)
		x += w
	}
}
