package session

import (
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/danielfalbo/picturephone/capture"
	"github.com/danielfalbo/picturephone/render"
	"github.com/danielfalbo/picturephone/terminal"
	"github.com/danielfalbo/picturephone/wire"
)

// Session is one live call. Every field is owned by the Run goroutine;
// the capture source and the socket reader communicate with it only
// through channels and the frame mailbox, so no field needs a lock.
// All buffers are reused across iterations.
type Session struct {
	cfg  Config
	conn net.Conn

	dec  *wire.Decoder
	draw *terminal.DrawBuffer
	view render.View

	// Last decoded peer picture, kept for redraws between packets
	peer     render.Gray
	havePeer bool

	// Local capture staging
	frame     capture.Frame
	local     render.BGRA
	haveLocal bool

	// Outbound encode scratch
	encode  render.Gray
	sendBuf []byte

	// Peer's advertised geometry; outbound pictures are encoded at this
	// size so the peer never has to rescale
	remoteW, remoteH int

	// Our last advertised geometry, to suppress duplicate Configs
	sentW, sentH int

	screenW, screenH int

	status      string
	statusUntil time.Time
	statusShown bool

	// Counters for the post-call log line
	framesSent     uint64
	framesReceived uint64
}

// New creates a session over an established connection. The session
// takes ownership of conn and closes it when Run returns.
func New(cfg Config, conn net.Conn) *Session {
	return &Session{
		cfg:     cfg,
		conn:    conn,
		dec:     wire.NewDecoder(),
		draw:    terminal.NewDrawBuffer(0),
		view:    cfg.View,
		remoteW: DefaultRemoteW,
		remoteH: DefaultRemoteH,
		sendBuf: make([]byte, 0, wire.MaxPacketSize),
	}
}

// Run drives the call until the user quits, the peer hangs up, or the
// connection fails. It returns nil on a clean end of call.
func (s *Session) Run() error {
	defer s.conn.Close()

	rxCh := make(chan []byte, 8)
	go readLoop(s.conn, rxCh)

	s.screenW, s.screenH = s.cfg.Term.Size()
	if err := s.advertise(); err != nil {
		return s.endOnConnLoss(err)
	}
	s.setStatus("connected to " + s.conn.RemoteAddr().String())

	ticker := time.NewTicker(s.cfg.sendInterval())
	defer ticker.Stop()

	defer func() {
		log.Printf("session: call ended, sent %d frames, received %d, resync dropped %d bytes",
			s.framesSent, s.framesReceived, s.dec.Discarded)
	}()

	for {
		select {
		case ev := <-s.cfg.Term.Events():
			quit, err := s.handleKey(ev)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}

		case rz := <-s.cfg.Term.ResizeChan():
			if err := s.resize(rz.Width, rz.Height); err != nil {
				return s.endOnConnLoss(err)
			}

		case data, ok := <-rxCh:
			if !ok {
				// Peer closed the connection; a finished call is not an
				// error
				log.Printf("session: peer disconnected")
				return nil
			}
			gotPicture := false
			s.dec.Feed(data, func(p wire.Packet) {
				if s.handlePacket(p) {
					gotPicture = true
				}
			})
			if gotPicture {
				if err := s.redraw(); err != nil {
					return err
				}
			}

		case <-ticker.C:
			// The SIGWINCH handler can race a fast sequence of resizes;
			// polling each tick catches the final geometry
			if w, h := s.cfg.Term.Size(); w != s.screenW || h != s.screenH {
				if err := s.resize(w, h); err != nil {
					return s.endOnConnLoss(err)
				}
			}
			if err := s.tick(); err != nil {
				return s.endOnConnLoss(err)
			}
		}
	}
}

// handleKey processes one keyboard event. It reports whether the user
// asked to end the call.
func (s *Session) handleKey(ev terminal.Event) (bool, error) {
	switch ev.Type {
	case terminal.EventError:
		return false, fmt.Errorf("session: input: %w", ev.Err)
	case terminal.EventClosed:
		return true, nil
	case terminal.EventKey:
	default:
		return false, nil
	}

	switch ev.Key {
	case terminal.KeyCtrlC, terminal.KeyCtrlD, terminal.KeyCtrlQ, terminal.KeyEscape:
		return true, nil

	case terminal.KeyTab:
		s.view.Layout = s.view.Layout.Toggle()
		s.setStatus("layout: " + s.view.Layout.String())
		s.draw.Clear()
		return false, s.redraw()

	case terminal.KeyRune:
		switch ev.Rune {
		case 'q', 'Q':
			return true, nil
		case 'm', 'M':
			s.view.MirrorLocal = !s.view.MirrorLocal
			return false, s.redraw()
		}

	case terminal.KeyCtrlL:
		s.draw.Clear()
		return false, s.redraw()
	}
	return false, nil
}

// handlePacket applies one decoded packet and reports whether it was a
// picture, i.e. whether the screen content changed. Pix aliases the
// decoder's accumulator, so the payload is copied out here.
func (s *Session) handlePacket(p wire.Packet) bool {
	switch p.Kind {
	case wire.KindConfig:
		w, h := int(p.W), int(p.H)
		if w != s.remoteW || h != s.remoteH {
			s.remoteW, s.remoteH = w, h
			log.Printf("session: peer window now %dx%d", w, h)
		}
		return false

	case wire.KindPicture:
		s.peer.SetSize(int(p.W), int(p.H))
		copy(s.peer.Pix, p.Pix)
		s.havePeer = true
		s.framesReceived++
		return true
	}
	return false
}

// resize adopts a new terminal geometry: clear the screen, repaint, and
// tell the peer so it re-encodes at our new size.
func (s *Session) resize(w, h int) error {
	s.screenW, s.screenH = w, h
	s.draw.Clear()
	if err := s.redraw(); err != nil {
		return err
	}
	return s.advertise()
}

// tick runs once per send interval: pick up the latest captured frame,
// repaint, and ship one encoded picture to the peer.
func (s *Session) tick() error {
	if s.cfg.Source != nil && s.cfg.Source.Frame(&s.frame) {
		s.local = render.BGRA{W: s.frame.W, H: s.frame.H, Pix: s.frame.Pix}
		s.haveLocal = true
	}

	if err := s.redraw(); err != nil {
		return err
	}
	if !s.haveLocal {
		return nil
	}

	s.encode.SetSize(s.remoteW, s.remoteH)
	render.Grayscale(&s.encode, &s.local)

	var err error
	s.sendBuf, err = wire.AppendPicture(s.sendBuf[:0], s.encode.W, s.encode.H, s.encode.Pix)
	if err != nil {
		return err
	}
	if _, err := s.conn.Write(s.sendBuf); err != nil {
		return &connLostError{err}
	}
	s.framesSent++
	return nil
}

// advertise sends our terminal geometry when it changed since the last
// send. Dimensions are clamped to the wire's 1..255 range; a terminal
// wider than 255 columns just gets a 255-wide picture.
func (s *Session) advertise() error {
	w := clampDim(s.screenW)
	h := clampDim(s.screenH)
	if w == 0 || h == 0 || (w == s.sentW && h == s.sentH) {
		return nil
	}

	var err error
	s.sendBuf, err = wire.AppendConfig(s.sendBuf[:0], w, h)
	if err != nil {
		return err
	}
	if _, err := s.conn.Write(s.sendBuf); err != nil {
		return &connLostError{err}
	}
	s.sentW, s.sentH = w, h
	return nil
}

// connLostError marks a write failure on the peer connection. A lost
// connection ends the call; it is reported, not propagated as failure.
type connLostError struct{ err error }

func (e *connLostError) Error() string { return "session: connection lost: " + e.err.Error() }
func (e *connLostError) Unwrap() error { return e.err }

// endOnConnLoss converts a connection-loss error into a clean call end;
// anything else passes through.
func (s *Session) endOnConnLoss(err error) error {
	var cl *connLostError
	if errors.As(err, &cl) {
		log.Printf("%v", cl)
		return nil
	}
	return err
}

// redraw composes both views and flushes the terminal in one write.
func (s *Session) redraw() error {
	var peer render.Plane
	if s.havePeer {
		peer = &s.peer
	}
	var local render.Plane
	if s.haveLocal {
		local = &s.local
	}

	s.view.Compose(s.draw, peer, local, s.screenW, s.screenH)
	s.drawStatus()
	return s.draw.Flush(s.cfg.Term)
}

// setStatus shows a transient message on the bottom row.
func (s *Session) setStatus(msg string) {
	s.status = msg
	s.statusUntil = time.Now().Add(statusDuration)
	log.Printf("session: %s", msg)
}

// drawStatus overlays the status message on the bottom row, or clears
// the screen once when an expired message would otherwise linger over
// rows the layout does not repaint.
func (s *Session) drawStatus() {
	if s.status == "" {
		return
	}
	if time.Now().After(s.statusUntil) {
		s.status = ""
		if s.statusShown {
			s.statusShown = false
			s.draw.Clear()
			var peer render.Plane
			if s.havePeer {
				peer = &s.peer
			}
			var local render.Plane
			if s.haveLocal {
				local = &s.local
			}
			s.view.Compose(s.draw, peer, local, s.screenW, s.screenH)
		}
		return
	}

	msg := s.status
	if len(msg) > s.screenW {
		msg = msg[:s.screenW]
	}
	s.draw.CursorTo(0, s.screenH-1)
	s.draw.ClearLine()
	s.draw.WriteString(msg)
	s.statusShown = true
}

// clampDim squeezes a terminal dimension into the wire's range.
func clampDim(v int) int {
	if v < 0 {
		return 0
	}
	if v > wire.MaxDim {
		return wire.MaxDim
	}
	return v
}
