// Package wire implements the picturephone stream protocol: a minimal
// tagged binary framing carried over a reliable byte stream.
//
//	Config  : 'C' | width | height
//	Picture : 'P' | width | height | width*height luminance bytes
//
// Width and height are single bytes constrained to 1..255. The framing is
// length-implicit: a Picture's size is derived from its dimension bytes.
package wire

import (
	"errors"
	"fmt"
)

// Packet tags.
const (
	TagConfig  = 'C'
	TagPicture = 'P'
)

const (
	// HeaderSize is the fixed prefix shared by both packet kinds.
	HeaderSize = 3

	// MaxDim is the largest legal width or height.
	MaxDim = 255

	// MaxPacketSize bounds any legal packet: header plus a full 255x255
	// payload. The decoder's accumulator is sized to this.
	MaxPacketSize = HeaderSize + MaxDim*MaxDim
)

// PacketKind identifies the decoded variant.
type PacketKind uint8

const (
	KindConfig PacketKind = iota
	KindPicture
)

// Packet is one decoded protocol message. For KindPicture, Pix holds
// W*H row-major luminance samples; for KindConfig, Pix is nil.
type Packet struct {
	Kind PacketKind
	W, H uint8
	Pix  []byte
}

var errDimensions = errors.New("wire: dimensions must be 1..255")

// AppendConfig appends an encoded Config packet to dst and returns the
// extended slice. The caller issues the single write.
func AppendConfig(dst []byte, w, h int) ([]byte, error) {
	if w < 1 || w > MaxDim || h < 1 || h > MaxDim {
		return dst, fmt.Errorf("%w: %dx%d", errDimensions, w, h)
	}
	return append(dst, TagConfig, byte(w), byte(h)), nil
}

// AppendPicture appends an encoded Picture packet to dst and returns the
// extended slice. pix must hold exactly w*h samples.
func AppendPicture(dst []byte, w, h int, pix []byte) ([]byte, error) {
	if w < 1 || w > MaxDim || h < 1 || h > MaxDim {
		return dst, fmt.Errorf("%w: %dx%d", errDimensions, w, h)
	}
	if len(pix) != w*h {
		return dst, fmt.Errorf("wire: payload is %d bytes, want %d", len(pix), w*h)
	}
	dst = append(dst, TagPicture, byte(w), byte(h))
	return append(dst, pix...), nil
}
