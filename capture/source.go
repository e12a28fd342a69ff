// Package capture supplies video frames to the call loop. Real cameras
// sit behind a GStreamer pipeline; synthetic generators and still-image
// playback provide deterministic stand-ins for machines (and tests)
// without one.
package capture

import "sync"

// Frame is a captured video frame: 4-byte BGRA pixels, row-major. The
// pixel buffer is owned by whoever holds the struct; frames handed out
// by a Source are always copies, never live references into the capture
// path.
type Frame struct {
	W, H int
	Pix  []byte
}

// setSize resizes the frame, reusing the backing array when it fits.
func (f *Frame) setSize(w, h int) {
	f.W, f.H = w, h
	n := w * h * 4
	if cap(f.Pix) < n {
		f.Pix = make([]byte, n)
	} else {
		f.Pix = f.Pix[:n]
	}
}

// Source is a frame producer. Frame is non-blocking and safe to call
// from any goroutine; when queried faster than the native capture
// cadence it returns the most recent frame again, which is correct.
type Source interface {
	// Init prepares the device for the requested capture size. The
	// device may deliver a different size; frames carry their own.
	Init(w, h int) error

	// Start begins capturing.
	Start() error

	// Frame copies the latest captured frame into dst and reports
	// whether any frame was available.
	Frame(dst *Frame) bool

	// Stop releases the device. Safe to call multiple times.
	Stop()
}

// Mailbox is a single-slot frame handoff between the capture context and
// the call loop. The producer overwrites the slot under the lock; the
// consumer copies out under the same lock. The lock is held only across
// the memory copy, never across rendering or encoding, so a slow
// consumer cannot stall the producer for long.
type Mailbox struct {
	mu    sync.Mutex
	slot  Frame
	valid bool
}

// Publish copies one produced frame into the slot, replacing whatever
// was there.
func (m *Mailbox) Publish(w, h int, pix []byte) {
	m.mu.Lock()
	m.slot.setSize(w, h)
	copy(m.slot.Pix, pix)
	m.valid = true
	m.mu.Unlock()
}

// Take copies the current frame into dst. It returns false if nothing
// has been published yet.
func (m *Mailbox) Take(dst *Frame) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.valid {
		return false
	}
	dst.setSize(m.slot.W, m.slot.H)
	copy(dst.Pix, m.slot.Pix)
	return true
}
