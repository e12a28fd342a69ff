package terminal

// Pre-allocated ANSI sequence fragments (avoid allocations during render)
var (
	csi     = []byte("\x1b[")
	csiSGR0 = []byte("\x1b[0m")

	csiClear     = []byte("\x1b[2J\x1b[H")
	csiHome      = []byte("\x1b[H")
	csiClearLine = []byte("\x1b[0K")
	csiRIS       = []byte("\x1bc") // Reset to Initial State (emergency)

	csiCursorHide = []byte("\x1b[?25l")
	csiCursorShow = []byte("\x1b[?25h")

	csiAltScreenEnter = []byte("\x1b[?1049h")
	csiAltScreenExit  = []byte("\x1b[?1049l")

	// DECAWM: Auto-Wrap Mode
	// ?7l disables wrapping (cursor sticks at right edge), preventing scroll
	// when writing to the bottom-right corner
	csiAutoWrapOn  = []byte("\x1b[?7h")
	csiAutoWrapOff = []byte("\x1b[?7l")
)

// appendInt appends a decimal integer without allocation.
// Optimized for terminal coordinates (0-999 typical).
func appendInt(dst []byte, n int) []byte {
	if n < 0 {
		n = 0
	}
	if n < 10 {
		return append(dst, byte(n)+'0')
	}
	if n < 100 {
		return append(dst, byte(n/10)+'0', byte(n%10)+'0')
	}
	if n < 1000 {
		return append(dst, byte(n/100)+'0', byte(n/10%10)+'0', byte(n%10)+'0')
	}
	// Fallback for >999 (rare)
	var buf [8]byte
	i := 7
	for n > 0 {
		buf[i] = byte(n%10) + '0'
		n /= 10
		i--
	}
	return append(dst, buf[i+1:]...)
}
