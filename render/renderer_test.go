package render

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/danielfalbo/picturephone/terminal"
)

func mustTable(t *testing.T, ramp string) DensityTable {
	t.Helper()
	tbl, err := NewDensityTable(ramp)
	if err != nil {
		t.Fatalf("NewDensityTable(%q): %v", ramp, err)
	}
	return tbl
}

// parseRows splits drawn output into per-row glyph strings, checking
// that each row starts with its cursor-position sequence.
func parseRows(t *testing.T, out []byte, rect Rect) []string {
	t.Helper()
	rows := make([]string, 0, rect.H)
	rest := out
	for y := 0; y < rect.H; y++ {
		prefix := fmt.Sprintf("\x1b[%d;%dH", rect.Y+y+1, rect.X+1)
		if !bytes.HasPrefix(rest, []byte(prefix)) {
			t.Fatalf("row %d: output %q does not start with cursor sequence %q", y, rest, prefix)
		}
		rest = rest[len(prefix):]
		if len(rest) < rect.W {
			t.Fatalf("row %d: only %d bytes left, want %d glyphs", y, len(rest), rect.W)
		}
		rows = append(rows, string(rest[:rect.W]))
		rest = rest[rect.W:]
	}
	if len(rest) != 0 {
		t.Fatalf("%d trailing bytes after last row: %q", len(rest), rest)
	}
	return rows
}

func drawToRows(t *testing.T, src Plane, rect Rect, mirror bool, tbl DensityTable) []string {
	t.Helper()
	buf := terminal.NewDrawBuffer(0)
	Draw(buf, src, rect, mirror, tbl)
	return parseRows(t, buf.Bytes(), rect)
}

func gradientGray(w, h int) *Gray {
	g := &Gray{}
	g.SetSize(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.Pix[y*w+x] = byte((x * 255) / max(w-1, 1))
		}
	}
	return g
}

func TestDrawExactDimensions(t *testing.T) {
	tbl := mustTable(t, DefaultDensity)
	sizes := []struct{ w, h int }{{1, 1}, {5, 3}, {80, 24}, {13, 7}}
	for _, s := range sizes {
		rect := Rect{X: 2, Y: 1, W: s.w, H: s.h}
		rows := drawToRows(t, gradientGray(64, 48), rect, false, tbl)
		if len(rows) != s.h {
			t.Fatalf("%dx%d: got %d rows", s.w, s.h, len(rows))
		}
		for y, row := range rows {
			if len(row) != s.w {
				t.Errorf("%dx%d row %d: %d glyphs, want %d", s.w, s.h, y, len(row), s.w)
			}
			for i := 0; i < len(row); i++ {
				if !bytes.ContainsRune([]byte(DefaultDensity), rune(row[i])) {
					t.Errorf("row %d glyph %q not in density table", y, row[i])
				}
			}
		}
	}
}

func TestDrawUniformSourceIsDarkestGlyph(t *testing.T) {
	tbl := mustTable(t, DefaultDensity)
	g := &Gray{}
	g.SetSize(16, 16)
	for i := range g.Pix {
		g.Pix[i] = 200 // Any uniform value
	}

	rows := drawToRows(t, g, Rect{W: 8, H: 4}, false, tbl)
	for _, row := range rows {
		for i := 0; i < len(row); i++ {
			if row[i] != tbl.Glyph(0) {
				t.Fatalf("uniform frame produced glyph %q, want %q", row[i], tbl.Glyph(0))
			}
		}
	}
}

func TestQuantizationMonotonic(t *testing.T) {
	tbl := mustTable(t, DefaultDensity)
	const min, max = 10, 240
	last := 0
	for v := min; v <= max; v++ {
		idx := tbl.Index(byte(v), min, max)
		if idx < last {
			t.Fatalf("index decreased: v=%d idx=%d, previous %d", v, idx, last)
		}
		last = idx
	}
	if tbl.Index(min, min, max) != 0 {
		t.Error("minimum luminance should map to darkest glyph")
	}
	if tbl.Index(max, min, max) != tbl.Len()-1 {
		t.Error("maximum luminance should map to lightest glyph")
	}
}

func TestDrawMirror(t *testing.T) {
	tbl := mustTable(t, " @") // 2 glyphs: dark, bright
	const w = 16
	g := &Gray{}
	g.SetSize(w, 1)
	g.Pix[0] = 0       // Leftmost black
	g.Pix[w-1] = 255   // Rightmost white
	for i := 1; i < w-1; i++ {
		g.Pix[i] = 0
	}

	rect := Rect{W: w, H: 1}
	plain := drawToRows(t, g, rect, false, tbl)[0]
	mirrored := drawToRows(t, g, rect, true, tbl)[0]

	if plain[0] != ' ' || plain[w-1] != '@' {
		t.Fatalf("unmirrored row %q: want black left, white right", plain)
	}
	// Mirrored target cell (0,0) samples source column w-1 (white)
	if mirrored[0] != '@' || mirrored[w-1] != ' ' {
		t.Fatalf("mirrored row %q: want white left, black right", mirrored)
	}
}

func TestLuma(t *testing.T) {
	tests := []struct {
		r, g, b byte
		want    byte
	}{
		{0, 0, 0, 0},
		{255, 255, 255, 255},
		{255, 0, 0, 77 * 255 >> 8},
		{0, 255, 0, 150 * 255 >> 8},
		{0, 0, 255, 29 * 255 >> 8},
	}
	for _, tt := range tests {
		if got := Luma(tt.r, tt.g, tt.b); got != tt.want {
			t.Errorf("Luma(%d,%d,%d) = %d, want %d", tt.r, tt.g, tt.b, got, tt.want)
		}
	}
}

func TestBGRAPlaneChannelOrder(t *testing.T) {
	// One pixel: B=0, G=0, R=255 must read as red
	f := &BGRA{W: 1, H: 1, Pix: []byte{0, 0, 255, 0}}
	if got := f.LumaAt(0, 0); got != Luma(255, 0, 0) {
		t.Errorf("LumaAt = %d, want red luminance %d", got, Luma(255, 0, 0))
	}
}

func TestGrayscaleDownsample(t *testing.T) {
	// 4x4 BGRA source, left half black, right half white
	src := &BGRA{W: 4, H: 4, Pix: make([]byte, 4*4*4)}
	for y := 0; y < 4; y++ {
		for x := 2; x < 4; x++ {
			off := (y*4 + x) * 4
			src.Pix[off], src.Pix[off+1], src.Pix[off+2] = 255, 255, 255
		}
	}

	dst := &Gray{}
	dst.SetSize(2, 2)
	Grayscale(dst, src)

	for y := 0; y < 2; y++ {
		if dst.Pix[y*2] != 0 {
			t.Errorf("left column = %d, want 0", dst.Pix[y*2])
		}
		if dst.Pix[y*2+1] != 255 {
			t.Errorf("right column = %d, want 255", dst.Pix[y*2+1])
		}
	}
}

func TestGraySetSizeReusesBuffer(t *testing.T) {
	g := &Gray{}
	g.SetSize(100, 100)
	p := &g.Pix[0]
	g.SetSize(50, 50)
	if &g.Pix[0] != p {
		t.Error("shrinking reallocated the pixel buffer")
	}
}

func TestNewDensityTableRejectsEmpty(t *testing.T) {
	if _, err := NewDensityTable(""); err == nil {
		t.Error("empty ramp accepted")
	}
	if _, err := NewDensityTable("a\x01b"); err == nil {
		t.Error("non-printable ramp accepted")
	}
}
