package terminal

import "io"

// DrawBuffer accumulates escape sequences and glyphs for one redraw pass.
// Everything is flushed to the terminal in a single write so a partially
// drawn frame is never visible. The backing array is retained across
// frames; steady-state redraws do not allocate.
type DrawBuffer struct {
	buf []byte
}

// NewDrawBuffer creates a buffer with capacity for a typical full redraw.
func NewDrawBuffer(capacity int) *DrawBuffer {
	if capacity <= 0 {
		capacity = 16 * 1024
	}
	return &DrawBuffer{buf: make([]byte, 0, capacity)}
}

// Len returns the number of pending bytes.
func (d *DrawBuffer) Len() int { return len(d.buf) }

// Bytes returns the pending bytes. Valid until the next append or Flush.
func (d *DrawBuffer) Bytes() []byte { return d.buf }

// Reset discards pending output without writing it.
func (d *DrawBuffer) Reset() { d.buf = d.buf[:0] }

// CursorTo appends a cursor-position sequence (0-indexed coordinates).
func (d *DrawBuffer) CursorTo(x, y int) {
	d.buf = append(d.buf, csi...)
	d.buf = appendInt(d.buf, y+1)
	d.buf = append(d.buf, ';')
	d.buf = appendInt(d.buf, x+1)
	d.buf = append(d.buf, 'H')
}

// Home appends a cursor-home sequence.
func (d *DrawBuffer) Home() { d.buf = append(d.buf, csiHome...) }

// HideCursor appends the hide-cursor sequence.
func (d *DrawBuffer) HideCursor() { d.buf = append(d.buf, csiCursorHide...) }

// ClearLine appends an erase-to-end-of-line sequence.
func (d *DrawBuffer) ClearLine() { d.buf = append(d.buf, csiClearLine...) }

// Clear appends a full-screen erase sequence.
func (d *DrawBuffer) Clear() { d.buf = append(d.buf, csiClear...) }

// Glyph appends a single byte glyph.
func (d *DrawBuffer) Glyph(b byte) { d.buf = append(d.buf, b) }

// Write appends raw bytes, implementing io.Writer. It never fails; a
// redraw is not worth aborting over an append.
func (d *DrawBuffer) Write(p []byte) (int, error) {
	d.buf = append(d.buf, p...)
	return len(p), nil
}

// WriteString appends a string.
func (d *DrawBuffer) WriteString(s string) { d.buf = append(d.buf, s...) }

// Flush performs exactly one write of the accumulated bytes and resets
// the buffer. The single write is what prevents visible tearing.
func (d *DrawBuffer) Flush(w io.Writer) error {
	if len(d.buf) == 0 {
		return nil
	}
	_, err := w.Write(d.buf)
	d.buf = d.buf[:0]
	return err
}
