// Package render converts luminance frames into character-cell output:
// glyph quantization through a density ramp, per-frame contrast
// normalization, and the picture-in-picture / split-screen layouts.
package render

import "errors"

// DefaultDensity is the built-in glyph ramp, darkest to lightest.
const DefaultDensity = " .x?A@"

// DensityTable is an ordered glyph palette used to quantize luminance.
// It is resolved once at startup and never mutated afterward.
type DensityTable struct {
	glyphs []byte
}

// NewDensityTable builds a table from a ramp string. Glyphs must be
// single-byte characters; the terminal writes them without width logic.
func NewDensityTable(ramp string) (DensityTable, error) {
	if len(ramp) == 0 {
		return DensityTable{}, errors.New("render: density ramp is empty")
	}
	for i := 0; i < len(ramp); i++ {
		if ramp[i] < 0x20 || ramp[i] > 0x7e {
			return DensityTable{}, errors.New("render: density ramp must be printable ASCII")
		}
	}
	return DensityTable{glyphs: []byte(ramp)}, nil
}

// Len returns the number of glyphs in the ramp.
func (t DensityTable) Len() int { return len(t.glyphs) }

// Glyph returns the glyph at index i.
func (t DensityTable) Glyph(i int) byte { return t.glyphs[i] }

// Index quantizes a luminance value into the ramp given the frame's
// observed min/max. A flat frame (max==min) maps everything to the
// darkest glyph: the range clamps to 1 and v-min is zero.
func (t DensityTable) Index(v, min, max byte) int {
	span := int(max) - int(min)
	if span < 1 {
		span = 1
	}
	n := len(t.glyphs)
	// Rounded scaling keeps quantization monotonic in v
	idx := (int(v-min)*(n-1)*2 + span) / (span * 2)
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return idx
}
