package wire

import (
	"bytes"
	"testing"
)

// collect decodes a stream, deep-copying payloads so they survive
// accumulator compaction.
func collect(d *Decoder, data []byte) []Packet {
	var out []Packet
	d.Feed(data, func(p Packet) {
		cp := p
		cp.Pix = append([]byte(nil), p.Pix...)
		out = append(out, cp)
	})
	return out
}

func makePicture(t *testing.T, w, h int, fill byte) []byte {
	t.Helper()
	pix := bytes.Repeat([]byte{fill}, w*h)
	b, err := AppendPicture(nil, w, h, pix)
	if err != nil {
		t.Fatalf("AppendPicture(%d,%d): %v", w, h, err)
	}
	return b
}

func TestDecodeConfig(t *testing.T) {
	d := NewDecoder()
	b, err := AppendConfig(nil, 40, 30)
	if err != nil {
		t.Fatalf("AppendConfig: %v", err)
	}
	pkts := collect(d, b)
	if len(pkts) != 1 {
		t.Fatalf("got %d packets, want 1", len(pkts))
	}
	p := pkts[0]
	if p.Kind != KindConfig || p.W != 40 || p.H != 30 {
		t.Errorf("decoded %+v, want Config 40x30", p)
	}
}

func TestDecodePictureSizes(t *testing.T) {
	// Dimension extremes, including the maximum legal payload
	sizes := []struct{ w, h int }{
		{1, 1}, {1, 255}, {255, 1}, {80, 60}, {255, 255},
	}
	for _, s := range sizes {
		d := NewDecoder()
		pkts := collect(d, makePicture(t, s.w, s.h, 0x7f))
		if len(pkts) != 1 {
			t.Fatalf("%dx%d: got %d packets, want 1", s.w, s.h, len(pkts))
		}
		p := pkts[0]
		if p.Kind != KindPicture || int(p.W) != s.w || int(p.H) != s.h {
			t.Fatalf("%dx%d: decoded %+v", s.w, s.h, p)
		}
		if len(p.Pix) != s.w*s.h {
			t.Errorf("%dx%d: payload %d bytes, want %d", s.w, s.h, len(p.Pix), s.w*s.h)
		}
		if d.Buffered() != 0 {
			t.Errorf("%dx%d: %d bytes left buffered", s.w, s.h, d.Buffered())
		}
	}
}

func TestDecodeSplitInvariant(t *testing.T) {
	var stream []byte
	stream, _ = AppendConfig(stream, 12, 34)
	stream = append(stream, makePicture(t, 3, 2, 0x10)...)
	stream = append(stream, makePicture(t, 255, 255, 0xee)...)
	stream, _ = AppendConfig(stream, 80, 60)

	whole := collect(NewDecoder(), stream)

	// Feed the identical bytes one at a time
	d := NewDecoder()
	var split []Packet
	for i := range stream {
		split = append(split, collect(d, stream[i:i+1])...)
	}

	if len(whole) != len(split) {
		t.Fatalf("whole decoded %d packets, split decoded %d", len(whole), len(split))
	}
	for i := range whole {
		a, b := whole[i], split[i]
		if a.Kind != b.Kind || a.W != b.W || a.H != b.H || !bytes.Equal(a.Pix, b.Pix) {
			t.Errorf("packet %d differs: %+v vs %+v", i, a, b)
		}
	}
}

func TestDecodeResyncSkipsGarbageByte(t *testing.T) {
	var stream []byte
	stream = append(stream, makePicture(t, 4, 4, 0x55)...)
	stream = append(stream, 0xff) // Garbage between packets
	stream, _ = AppendConfig(stream, 10, 20)

	d := NewDecoder()
	pkts := collect(d, stream)
	if len(pkts) != 2 {
		t.Fatalf("got %d packets, want 2", len(pkts))
	}
	if pkts[0].Kind != KindPicture || pkts[1].Kind != KindConfig {
		t.Errorf("kinds = %v, %v", pkts[0].Kind, pkts[1].Kind)
	}
	if pkts[1].W != 10 || pkts[1].H != 20 {
		t.Errorf("config after resync = %dx%d, want 10x20", pkts[1].W, pkts[1].H)
	}
	if d.Discarded != 1 {
		t.Errorf("Discarded = %d, want exactly 1", d.Discarded)
	}
}

func TestDecodeZeroConfigIgnored(t *testing.T) {
	d := NewDecoder()
	stream := []byte{TagConfig, 0, 15}
	stream, _ = AppendConfig(stream, 5, 5)

	pkts := collect(d, stream)
	if len(pkts) != 1 {
		t.Fatalf("got %d packets, want 1", len(pkts))
	}
	if pkts[0].W != 5 || pkts[0].H != 5 {
		t.Errorf("got %+v, want the 5x5 config only", pkts[0])
	}
	if d.Discarded != 0 {
		t.Errorf("zero config should be consumed, not resynced (Discarded=%d)", d.Discarded)
	}
}

func TestDecodePartialPictureWaits(t *testing.T) {
	full := makePicture(t, 16, 16, 0x33)
	d := NewDecoder()

	if pkts := collect(d, full[:100]); len(pkts) != 0 {
		t.Fatalf("partial payload emitted %d packets", len(pkts))
	}
	if d.Buffered() != 100 {
		t.Errorf("Buffered = %d, want 100", d.Buffered())
	}

	pkts := collect(d, full[100:])
	if len(pkts) != 1 || pkts[0].Kind != KindPicture {
		t.Fatalf("completion got %+v, want one Picture", pkts)
	}
}

func TestEncodeRejectsBadDimensions(t *testing.T) {
	if _, err := AppendConfig(nil, 0, 10); err == nil {
		t.Error("AppendConfig accepted zero width")
	}
	if _, err := AppendConfig(nil, 10, 256); err == nil {
		t.Error("AppendConfig accepted height 256")
	}
	if _, err := AppendPicture(nil, 2, 2, []byte{1, 2, 3}); err == nil {
		t.Error("AppendPicture accepted short payload")
	}
}
