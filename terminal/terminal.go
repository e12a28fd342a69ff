// Package terminal provides raw-mode terminal access: alternate screen
// setup, buffered single-write output, keyboard input parsing, and resize
// notification.
package terminal

import (
	"io"
	"os"
	"sync"
)

// ResizeEvent represents a terminal resize.
type ResizeEvent struct {
	Width  int
	Height int
}

// Terminal provides low-level terminal access.
type Terminal interface {
	io.Writer

	// Init enters raw mode, alternate screen buffer, hides cursor.
	Init() error

	// Fini restores terminal state. Safe to call multiple times.
	Fini()

	// Size returns current terminal dimensions.
	Size() (width, height int)

	// Events returns the keyboard event channel.
	Events() <-chan Event

	// ResizeChan returns the channel receiving resize events.
	ResizeChan() <-chan ResizeEvent
}

type termImpl struct {
	backend  Backend
	input    *inputReader
	resizeCh chan ResizeEvent

	mu          sync.Mutex
	initialized bool
	finalized   bool
}

// New creates a Terminal for the current process's tty.
func New() Terminal {
	return &termImpl{
		backend:  newBackend(),
		resizeCh: make(chan ResizeEvent, 1),
	}
}

func (t *termImpl) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		return nil
	}

	if err := t.backend.Init(); err != nil {
		return err
	}

	t.input = newInputReader(t.backend)

	t.backend.SetResizeHandler(func(w, h int) {
		// Non-blocking send; drain and replace so the latest size wins
		select {
		case t.resizeCh <- ResizeEvent{Width: w, Height: h}:
		default:
			select {
			case <-t.resizeCh:
			default:
			}
			select {
			case t.resizeCh <- ResizeEvent{Width: w, Height: h}:
			default:
			}
		}
	})

	t.backend.Write(csiAltScreenEnter)
	t.backend.Write(csiCursorHide)
	t.backend.Write(csiAutoWrapOff)
	t.backend.Write(csiClear)

	t.input.start()
	t.initialized = true
	return nil
}

func (t *termImpl) Fini() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized || t.finalized {
		return
	}

	t.input.stop()

	t.backend.Write(csiCursorShow)
	t.backend.Write(csiAltScreenExit)
	// Re-enable auto-wrap after exiting the alternate screen so the main
	// buffer keeps wrapping
	t.backend.Write(csiAutoWrapOn)
	t.backend.Write(csiSGR0)

	t.backend.Fini()
	t.finalized = true
}

func (t *termImpl) Size() (int, int) {
	return t.backend.Size()
}

func (t *termImpl) Events() <-chan Event {
	return t.input.events()
}

func (t *termImpl) ResizeChan() <-chan ResizeEvent {
	return t.resizeCh
}

func (t *termImpl) Write(p []byte) (int, error) {
	return t.backend.Write(p)
}

// EmergencyReset attempts to restore the terminal to a sane state. Call
// this from panic recovery when Fini cannot run normally.
func EmergencyReset(w io.Writer) {
	w.Write(csiCursorShow)
	w.Write(csiAltScreenExit)
	w.Write(csiSGR0)
	w.Write(csiAutoWrapOn)
	w.Write(csiRIS)

	if f, ok := w.(*os.File); ok {
		f.Sync()
	}

	// Escape sequences alone don't restore termios
	resetTerminalMode()
}
