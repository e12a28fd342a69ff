package terminal

// Backend abstracts platform-specific terminal operations so the rest of
// the package stays portable.
type Backend interface {
	// Lifecycle
	Init() error
	Fini()

	// Size returns current terminal dimensions in cells.
	Size() (width, height int)

	// Write writes raw bytes to the terminal output.
	Write(p []byte) (int, error)

	// Read blocks until input is available, the stop channel is closed,
	// or an error occurs. A nil slice with nil error means timeout or stop.
	Read(stopCh <-chan struct{}) ([]byte, error)

	// SetResizeHandler registers a callback for terminal resize events.
	SetResizeHandler(handler func(width, height int))
}
