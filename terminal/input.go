package terminal

import (
	"sync"
)

// EventType distinguishes input event categories.
type EventType uint8

const (
	EventKey EventType = iota
	EventResize
	EventError  // Read error
	EventClosed // Input closed
)

// Event represents a terminal input event.
type Event struct {
	Type   EventType
	Key    Key
	Rune   rune
	Width  int   // For EventResize
	Height int   // For EventResize
	Err    error // For EventError
}

// inputReader handles raw stdin parsing in its own goroutine.
type inputReader struct {
	backend Backend
	eventCh chan Event
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool

	// Persistent buffer for stream assembly; escape sequences may be
	// split across reads
	buf []byte
}

func newInputReader(backend Backend) *inputReader {
	return &inputReader{
		backend: backend,
		eventCh: make(chan Event, 64),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		buf:     make([]byte, 0, 256),
	}
}

func (r *inputReader) start() {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	go r.readLoop()
}

func (r *inputReader) stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	close(r.stopCh)
	<-r.doneCh
}

func (r *inputReader) events() <-chan Event {
	return r.eventCh
}

func (r *inputReader) readLoop() {
	defer close(r.doneCh)

	for {
		data, err := r.backend.Read(r.stopCh)
		if err != nil {
			r.sendEvent(Event{Type: EventError, Err: err})
			return
		}

		if len(data) == 0 {
			// Poll timeout: emit a pending standalone ESC if present
			if len(r.buf) == 1 && r.buf[0] == 0x1b {
				r.sendEvent(Event{Type: EventKey, Key: KeyEscape})
				r.buf = r.buf[:0]
			}
			select {
			case <-r.stopCh:
				r.sendEvent(Event{Type: EventClosed})
				return
			default:
				continue
			}
		}

		r.buf = append(r.buf, data...)
		consumed := r.parseInput(r.buf)
		if consumed > 0 {
			if consumed >= len(r.buf) {
				r.buf = r.buf[:0]
			} else {
				copy(r.buf, r.buf[consumed:])
				r.buf = r.buf[:len(r.buf)-consumed]
			}
		}
	}
}

// parseInput parses raw bytes into events and returns the count consumed,
// stopping at an incomplete trailing sequence.
func (r *inputReader) parseInput(data []byte) int {
	i := 0
	n := len(data)

	for i < n {
		b := data[i]

		// Fast path: printable ASCII
		if b >= 0x20 && b < 0x7f {
			r.sendEvent(Event{Type: EventKey, Key: KeyRune, Rune: rune(b)})
			i++
			continue
		}

		if b == 0x1b {
			if i+1 >= n {
				return i // Wait for more data
			}
			consumed, ev := parseEscape(data[i:])
			if consumed == 0 {
				return i
			}
			if ev.Key != KeyNone {
				r.sendEvent(ev)
			}
			i += consumed
			continue
		}

		if b < 0x20 {
			r.sendEvent(parseControl(b))
			i++
			continue
		}

		if b == 0x7f {
			r.sendEvent(Event{Type: EventKey, Key: KeyBackspace})
			i++
			continue
		}

		// Non-ASCII input is irrelevant to this application; skip the byte
		i++
	}
	return i
}

// parseEscape attempts to parse an escape sequence, returning 0 when the
// sequence is incomplete.
func parseEscape(data []byte) (int, Event) {
	if len(data) < 2 {
		return 0, Event{}
	}

	if data[1] == '[' {
		return parseCSI(data)
	}
	if data[1] == 'O' {
		if len(data) < 3 {
			return 0, Event{}
		}
		if key, ok := lookupSS3(data[2:3]); ok {
			return 3, Event{Type: EventKey, Key: key}
		}
		return 3, Event{Type: EventKey, Key: KeyNone}
	}

	// ESC followed by anything else: treat as standalone ESC
	return 1, Event{Type: EventKey, Key: KeyEscape}
}

// parseCSI parses a CSI sequence without allocation.
func parseCSI(data []byte) (int, Event) {
	if len(data) < 3 {
		return 0, Event{}
	}

	end := 2
	maxScan := len(data)
	if maxScan > 16 {
		maxScan = 16
	}

	for end < maxScan {
		b := data[end]
		if (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '~' {
			end++
			break
		}
		if b < 0x20 || b > 0x7e {
			return 0, Event{}
		}
		end++
	}

	if end <= 2 || end > maxScan {
		return 0, Event{}
	}

	last := data[end-1]
	if !((last >= 'A' && last <= 'Z') || (last >= 'a' && last <= 'z') || last == '~') {
		return 0, Event{} // No terminator yet
	}

	if key, ok := lookupCSI(data[2:end]); ok {
		return end, Event{Type: EventKey, Key: key}
	}

	// Unknown but syntactically valid CSI: consume and swallow
	return end, Event{Type: EventKey, Key: KeyNone}
}

// sendEvent sends an event without blocking; a full channel drops it.
func (r *inputReader) sendEvent(ev Event) {
	select {
	case r.eventCh <- ev:
	default:
	}
}
