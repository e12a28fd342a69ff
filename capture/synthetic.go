package capture

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// syntheticInterval approximates a webcam's native cadence.
const syntheticInterval = 33 * time.Millisecond

// paintFunc fills one BGRA frame for the given tick number.
type paintFunc func(pix []byte, w, h, tick int)

// synthetic drives a paint function on a capture-cadence ticker,
// publishing into a mailbox exactly like a real device callback would.
type synthetic struct {
	paint paintFunc

	w, h int
	box  Mailbox
	pix  []byte

	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

func (s *synthetic) Init(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("capture: invalid synthetic size %dx%d", w, h)
	}
	s.w, s.h = w, h
	s.pix = make([]byte, w*h*4)
	return nil
}

func (s *synthetic) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go func() {
		defer close(s.doneCh)
		ticker := time.NewTicker(syntheticInterval)
		defer ticker.Stop()

		tick := 0
		for {
			s.paint(s.pix, s.w, s.h, tick)
			s.box.Publish(s.w, s.h, s.pix)
			tick++
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
			}
		}
	}()
	return nil
}

func (s *synthetic) Frame(dst *Frame) bool {
	return s.box.Take(dst)
}

func (s *synthetic) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
	<-s.doneCh
}

func setBGRA(pix []byte, w, x, y int, v byte) {
	off := (y*w + x) * 4
	pix[off], pix[off+1], pix[off+2], pix[off+3] = v, v, v, 0xff
}

// NewGradient returns a source producing a slowly drifting diagonal
// gradient. Fully deterministic per tick.
func NewGradient() Source {
	return &synthetic{paint: func(pix []byte, w, h, tick int) {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				v := byte((x*255/w + y*255/h + tick*3) % 256)
				setBGRA(pix, w, x, y, v)
			}
		}
	}}
}

// NewNoise returns a source producing seeded random static.
func NewNoise(seed int64) Source {
	rng := rand.New(rand.NewSource(seed))
	return &synthetic{paint: func(pix []byte, w, h, tick int) {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				setBGRA(pix, w, x, y, byte(rng.Intn(256)))
			}
		}
	}}
}

// NewBouncer returns a source with a bright block bouncing over a dark
// field, handy for eyeballing latency and mirroring.
func NewBouncer() Source {
	return &synthetic{paint: func(pix []byte, w, h, tick int) {
		for i := range pix {
			pix[i] = 0
		}
		bw, bh := w/5+1, h/5+1
		// Triangle-wave position
		bx := bounce(tick*2, w-bw)
		by := bounce(tick, h-bh)
		for y := by; y < by+bh && y < h; y++ {
			for x := bx; x < bx+bw && x < w; x++ {
				setBGRA(pix, w, x, y, 0xff)
			}
		}
	}}
}

// bounce maps a monotonically increasing tick onto 0..limit and back.
func bounce(tick, limit int) int {
	if limit <= 0 {
		return 0
	}
	period := 2 * limit
	p := tick % period
	if p > limit {
		p = period - p
	}
	return p
}
