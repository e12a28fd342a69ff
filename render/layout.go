package render

import (
	"github.com/danielfalbo/picturephone/terminal"
)

// Layout selects how the two views share the screen.
type Layout uint8

const (
	// PictureInPicture shows the peer full-screen with the local view as
	// a small inset anchored bottom-right.
	PictureInPicture Layout = iota
	// SplitScreen divides the terminal into side-by-side halves, peer
	// on the left.
	SplitScreen
)

// Toggle returns the other layout.
func (l Layout) Toggle() Layout {
	if l == PictureInPicture {
		return SplitScreen
	}
	return PictureInPicture
}

func (l Layout) String() string {
	if l == SplitScreen {
		return "split"
	}
	return "pip"
}

// Inset floor: below this the local preview is useless.
const (
	minInsetW = 10
	minInsetH = 5
)

// InsetRect computes the picture-in-picture local view rectangle:
// roughly a quarter of the screen in each dimension, floored at 10x5,
// anchored bottom-right.
func InsetRect(screenW, screenH int) Rect {
	w := screenW / 4
	h := screenH / 4
	if w < minInsetW {
		w = minInsetW
	}
	if h < minInsetH {
		h = minInsetH
	}
	if w > screenW {
		w = screenW
	}
	if h > screenH {
		h = screenH
	}
	return Rect{X: screenW - w, Y: screenH - h, W: w, H: h}
}

// SplitRects computes the side-by-side rectangles: peer takes the left
// half-width column, local the remaining right columns, both full
// height.
func SplitRects(screenW, screenH int) (peer, local Rect) {
	half := screenW / 2
	peer = Rect{X: 0, Y: 0, W: half, H: screenH}
	local = Rect{X: half, Y: 0, W: screenW - half, H: screenH}
	return peer, local
}

// View draws one frame of the call UI. peer may be nil (nothing
// received yet); local may be nil (no capture frame yet). mirrorLocal
// is the selfie convention; mirrorRemote is a configurable policy.
type View struct {
	Table        DensityTable
	Layout       Layout
	MirrorLocal  bool
	MirrorRemote bool
}

// Compose renders the peer and local planes into buf according to the
// current layout. It draws only; the caller owns the single flush.
func (v *View) Compose(buf *terminal.DrawBuffer, peer, local Plane, screenW, screenH int) {
	switch v.Layout {
	case SplitScreen:
		peerRect, localRect := SplitRects(screenW, screenH)
		if peer != nil {
			Draw(buf, peer, peerRect, v.MirrorRemote, v.Table)
		}
		if local != nil {
			Draw(buf, local, localRect, v.MirrorLocal, v.Table)
		}
	default:
		if peer != nil {
			Draw(buf, peer, Rect{X: 0, Y: 0, W: screenW, H: screenH}, v.MirrorRemote, v.Table)
		}
		if local != nil {
			Draw(buf, local, InsetRect(screenW, screenH), v.MirrorLocal, v.Table)
		}
	}
}
