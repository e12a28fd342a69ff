package session

import (
	"fmt"
	"time"

	"github.com/danielfalbo/picturephone/capture"
	"github.com/danielfalbo/picturephone/render"
	"github.com/danielfalbo/picturephone/terminal"
)

// RunMirror shows the local capture full-screen with no network at all.
// It is the way to check camera, density ramp, and terminal behavior
// before bothering a peer.
func RunMirror(cfg Config) error {
	term := cfg.Term
	draw := terminal.NewDrawBuffer(0)
	view := cfg.View

	screenW, screenH := term.Size()

	var frame renderFrame
	ticker := time.NewTicker(cfg.sendInterval())
	defer ticker.Stop()

	redraw := func() error {
		if frame.have {
			render.Draw(draw, &frame.plane, render.Rect{W: screenW, H: screenH},
				view.MirrorLocal, view.Table)
		}
		return draw.Flush(term)
	}

	for {
		select {
		case ev := <-term.Events():
			switch ev.Type {
			case terminal.EventError:
				return fmt.Errorf("session: input: %w", ev.Err)
			case terminal.EventClosed:
				return nil
			case terminal.EventKey:
			default:
				continue
			}
			switch ev.Key {
			case terminal.KeyCtrlC, terminal.KeyCtrlD, terminal.KeyCtrlQ, terminal.KeyEscape:
				return nil
			case terminal.KeyCtrlL:
				draw.Clear()
				if err := redraw(); err != nil {
					return err
				}
			case terminal.KeyRune:
				switch ev.Rune {
				case 'q', 'Q':
					return nil
				case 'm', 'M':
					view.MirrorLocal = !view.MirrorLocal
				}
			}

		case rz := <-term.ResizeChan():
			screenW, screenH = rz.Width, rz.Height
			draw.Clear()
			if err := redraw(); err != nil {
				return err
			}

		case <-ticker.C:
			if w, h := term.Size(); w != screenW || h != screenH {
				screenW, screenH = w, h
				draw.Clear()
			}
			if cfg.Source != nil && cfg.Source.Frame(&frame.raw) {
				frame.plane = render.BGRA{W: frame.raw.W, H: frame.raw.H, Pix: frame.raw.Pix}
				frame.have = true
			}
			if err := redraw(); err != nil {
				return err
			}
		}
	}
}

// renderFrame bundles the capture staging for the mirror loop.
type renderFrame struct {
	raw   capture.Frame
	plane render.BGRA
	have  bool
}
