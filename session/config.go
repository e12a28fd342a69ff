// Package session runs the call itself: one loop multiplexing keyboard
// input, inbound network bytes, and a frame-pacing timer over a single
// TCP connection to the peer.
package session

import (
	"time"

	"github.com/danielfalbo/picturephone/capture"
	"github.com/danielfalbo/picturephone/render"
	"github.com/danielfalbo/picturephone/terminal"
)

// Role distinguishes who established the connection. The protocol is
// symmetric once connected; the role only decides dial versus listen.
type Role uint8

const (
	Initiator Role = iota // Dials the peer
	Responder             // Listens for the peer
)

func (r Role) String() string {
	if r == Responder {
		return "responder"
	}
	return "initiator"
}

const (
	// DefaultSendInterval paces outbound frames at roughly 30 fps.
	DefaultSendInterval = 33 * time.Millisecond

	// DefaultRemoteW and DefaultRemoteH are the assumed peer picture
	// size until the peer advertises its real geometry.
	DefaultRemoteW = 80
	DefaultRemoteH = 60

	// statusDuration is how long a status message stays on screen.
	statusDuration = 5 * time.Second
)

// Config assembles everything a session needs. Term and Source must be
// initialized by the caller; the session owns neither.
type Config struct {
	Role Role
	Addr string

	Term   terminal.Terminal
	Source capture.Source
	View   render.View

	// SendInterval between outbound frames; zero means
	// DefaultSendInterval.
	SendInterval time.Duration
}

func (c *Config) sendInterval() time.Duration {
	if c.SendInterval <= 0 {
		return DefaultSendInterval
	}
	return c.SendInterval
}
