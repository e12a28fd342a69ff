package render

import (
	"github.com/danielfalbo/picturephone/terminal"
)

// Luma converts a color sample to luminance with integer BT.601-style
// weights: (77R + 150G + 29B) >> 8.
func Luma(r, g, b byte) byte {
	return byte((77*int(r) + 150*int(g) + 29*int(b)) >> 8)
}

// Plane is a readable luminance image. Both raw captured frames and
// decoded peer frames satisfy it.
type Plane interface {
	Size() (w, h int)
	LumaAt(x, y int) byte
}

// Gray is a row-major 1-byte-per-pixel luminance frame, the transport
// format. The pixel slice is reused across frames.
type Gray struct {
	W, H int
	Pix  []byte
}

func (g *Gray) Size() (int, int)     { return g.W, g.H }
func (g *Gray) LumaAt(x, y int) byte { return g.Pix[y*g.W+x] }

// SetSize resizes the frame, reusing the backing array when it fits.
func (g *Gray) SetSize(w, h int) {
	g.W, g.H = w, h
	n := w * h
	if cap(g.Pix) < n {
		g.Pix = make([]byte, n)
	} else {
		g.Pix = g.Pix[:n]
	}
}

// BGRA wraps a 4-byte-per-pixel captured frame as a luminance plane.
// AVFoundation and GStreamer both hand us BGRA/BGRx ordering.
type BGRA struct {
	W, H int
	Pix  []byte
}

func (f *BGRA) Size() (int, int) { return f.W, f.H }

func (f *BGRA) LumaAt(x, y int) byte {
	off := (y*f.W + x) * 4
	return Luma(f.Pix[off+2], f.Pix[off+1], f.Pix[off+0])
}

// Rect is a target region in terminal cells.
type Rect struct {
	X, Y, W, H int
}

// srcCoord maps a target cell column to a source column, mirrored or not.
func srcCoord(x, targetW, srcW int, mirror bool) int {
	if mirror {
		x = targetW - 1 - x
	}
	sx := (x * srcW) / targetW
	if sx >= srcW {
		sx = srcW - 1
	}
	if sx < 0 {
		sx = 0
	}
	return sx
}

// Draw renders src onto the target rectangle of buf: one cursor-position
// sequence per row followed by that row's glyphs, so a sub-region can be
// painted at any offset without touching the rest of the screen.
//
// Contrast is normalized per call: the first pass finds the sampled
// min/max, the second quantizes into the density ramp. Normalizing over
// the drawn rectangle only keeps insets readable when the main picture
// has a very different brightness range.
func Draw(buf *terminal.DrawBuffer, src Plane, rect Rect, mirror bool, table DensityTable) {
	srcW, srcH := src.Size()
	if rect.W <= 0 || rect.H <= 0 || srcW <= 0 || srcH <= 0 {
		return
	}

	// Pass 1: luminance range over the target rectangle's samples
	min, max := byte(0xff), byte(0)
	for y := 0; y < rect.H; y++ {
		sy := (y * srcH) / rect.H
		if sy >= srcH {
			sy = srcH - 1
		}
		for x := 0; x < rect.W; x++ {
			v := src.LumaAt(srcCoord(x, rect.W, srcW, mirror), sy)
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}

	// Pass 2: quantize and emit
	for y := 0; y < rect.H; y++ {
		sy := (y * srcH) / rect.H
		if sy >= srcH {
			sy = srcH - 1
		}
		buf.CursorTo(rect.X, rect.Y+y)
		for x := 0; x < rect.W; x++ {
			v := src.LumaAt(srcCoord(x, rect.W, srcW, mirror), sy)
			buf.Glyph(table.Glyph(table.Index(v, min, max)))
		}
	}
}

// Grayscale downsamples src into dst at dst's dimensions. This is the
// encode path: the result is sent on the wire, so no mirroring is
// applied; the receiving side decides its own view policy.
func Grayscale(dst *Gray, src Plane) {
	srcW, srcH := src.Size()
	if dst.W <= 0 || dst.H <= 0 || srcW <= 0 || srcH <= 0 {
		return
	}
	for y := 0; y < dst.H; y++ {
		sy := (y * srcH) / dst.H
		if sy >= srcH {
			sy = srcH - 1
		}
		row := dst.Pix[y*dst.W:]
		for x := 0; x < dst.W; x++ {
			sx := (x * srcW) / dst.W
			if sx >= srcW {
				sx = srcW - 1
			}
			row[x] = src.LumaAt(sx, sy)
		}
	}
}
