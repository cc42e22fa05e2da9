package server

import (
	"context"

	"github.com/gdamore/tcell/v2"

	"github.com/Justash01/inventory-saver/internal/form"
)

// RunLoop is the per-session goroutine. It reads keys into the prompt, runs
// submitted lines and redraws. Blocks until the player quits, disconnects or
// ctx is done.
func (s *Server) RunLoop(ctx context.Context, sess *Session) {
	eventCh := make(chan tcell.Event, 32)
	go func() {
		for {
			ev := sess.Screen.PollEvent()
			if ev == nil {
				close(eventCh)
				return
			}
			eventCh <- ev
		}
	}()

	s.render(sess)
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-eventCh:
			if !ok {
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				sess.Screen.Sync()
			case *tcell.EventKey:
				line, submitted, quit := sess.edit(ev)
				if quit {
					return
				}
				if submitted {
					res := s.Execute(ctx, sess, line)
					if res.Quit {
						return
					}
					if res.Form != nil {
						resp := form.Run(sess.Screen, eventCh, *res.Form)
						s.ApplyConfig(ctx, sess, resp)
					}
				}
			}
			s.render(sess)

		case <-sess.RenderCh:
			s.render(sess)
		}
	}
}

func (s *Server) render(sess *Session) {
	s.mu.Lock()
	s.renderLocked(sess)
	s.mu.Unlock()
	sess.Screen.Show()
}

// edit applies one key to the prompt. submitted is set on Enter with the
// line that was typed; quit on Ctrl+C or Ctrl+D.
func (sess *Session) edit(ev *tcell.EventKey) (line string, submitted, quit bool) {
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyCtrlD:
		return "", false, true
	case tcell.KeyEnter:
		line = string(sess.input)
		sess.input = sess.input[:0]
		return line, line != "", false
	case tcell.KeyEscape, tcell.KeyCtrlU:
		sess.input = sess.input[:0]
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(sess.input) > 0 {
			sess.input = sess.input[:len(sess.input)-1]
		}
	case tcell.KeyRune:
		if len(sess.input) < MaxInputLength {
			sess.input = append(sess.input, ev.Rune())
		}
	}
	return "", false, false
}
