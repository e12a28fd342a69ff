package session

import (
	"errors"
	"fmt"
	"net"
)

// ErrCanceled is returned by Establish when the user aborts before the
// peer connects.
var ErrCanceled = errors.New("session: connection canceled")

// readChunk sizes one socket read; comfortably larger than a typical
// Picture so a full frame usually arrives in one or two reads.
const readChunk = 32 * 1024

// connResult carries the outcome of an asynchronous dial or accept.
type connResult struct {
	conn net.Conn
	err  error
}

// Establish produces the peer connection for the configured role:
// Initiator dials addr, Responder listens on addr and accepts exactly
// one peer. Blocking on the network happens in a goroutine so a close
// of cancel aborts the wait; the abandoned attempt is cleaned up when
// it eventually completes.
func Establish(role Role, addr string, cancel <-chan struct{}) (net.Conn, error) {
	resultCh := make(chan connResult, 1)

	switch role {
	case Responder:
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("session: listen %s: %w", addr, err)
		}
		go func() {
			conn, err := ln.Accept()
			ln.Close()
			resultCh <- connResult{conn, err}
		}()

		select {
		case r := <-resultCh:
			if r.err != nil {
				return nil, fmt.Errorf("session: accept: %w", r.err)
			}
			return r.conn, nil
		case <-cancel:
			// Unblocks the pending Accept
			ln.Close()
			if r := <-resultCh; r.conn != nil {
				r.conn.Close()
			}
			return nil, ErrCanceled
		}

	default:
		go func() {
			conn, err := net.Dial("tcp", addr)
			resultCh <- connResult{conn, err}
		}()

		select {
		case r := <-resultCh:
			if r.err != nil {
				return nil, fmt.Errorf("session: dial %s: %w", addr, r.err)
			}
			return r.conn, nil
		case <-cancel:
			go func() {
				if r := <-resultCh; r.conn != nil {
					r.conn.Close()
				}
			}()
			return nil, ErrCanceled
		}
	}
}

// readLoop pulls raw bytes from the connection and hands them to the
// session loop over rxCh. Each chunk is freshly allocated because the
// receiver consumes it asynchronously. The channel closes on EOF or
// read error, which the loop treats as the peer hanging up.
func readLoop(conn net.Conn, rxCh chan<- []byte) {
	defer close(rxCh)

	for {
		chunk := make([]byte, readChunk)
		n, err := conn.Read(chunk)
		if n > 0 {
			rxCh <- chunk[:n]
		}
		if err != nil {
			return
		}
	}
}
