package wire

// Decoder incrementally decodes a byte stream into packets. Bytes are
// accumulated across feeds, so packets split across arbitrary read
// boundaries decode identically to a single contiguous read.
//
// Stream desynchronization (an unrecognized tag byte) is recovered by
// discarding exactly one byte and rescanning. The heuristic can misfire:
// a Picture payload byte can coincidentally equal a valid tag, in which
// case garbage packets may be emitted until the stream realigns. Fixing
// this properly requires a framing change (length prefix or checksum),
// which would break wire compatibility with existing peers.
type Decoder struct {
	buf []byte

	// Discarded counts bytes dropped by resync, for diagnostics.
	Discarded uint64
}

// readChunk is the slack reserved beyond the largest legal packet so a
// full packet plus one socket read never regrows the accumulator.
const readChunk = 32 * 1024

// NewDecoder creates a decoder with a fully preallocated accumulator.
func NewDecoder() *Decoder {
	return &Decoder{buf: make([]byte, 0, MaxPacketSize+readChunk)}
}

// Buffered returns the number of bytes awaiting a complete packet.
func (d *Decoder) Buffered() int { return len(d.buf) }

// Feed appends data to the accumulator and invokes emit for every
// complete packet now available; a single feed may emit several packets.
// The emitted Packet's Pix aliases the accumulator and is only valid for
// the duration of the callback.
func (d *Decoder) Feed(data []byte, emit func(Packet)) {
	d.buf = append(d.buf, data...)

	pos := 0
	for {
		n, pkt, ok := d.scan(d.buf[pos:])
		if n == 0 {
			break // Need more bytes
		}
		pos += n
		if ok {
			emit(pkt)
		}
	}

	// Shift the unconsumed tail to the front
	if pos > 0 {
		remain := copy(d.buf, d.buf[pos:])
		d.buf = d.buf[:remain]
	}
}

// scan examines the front of b for one packet. It returns the number of
// bytes consumed (0 when more data is needed) and, when ok, the decoded
// packet.
func (d *Decoder) scan(b []byte) (int, Packet, bool) {
	if len(b) < HeaderSize {
		return 0, Packet{}, false
	}

	switch b[0] {
	case TagConfig:
		w, h := b[1], b[2]
		if w == 0 || h == 0 {
			// Zero-sized request carries no usable geometry; swallow it
			return HeaderSize, Packet{}, false
		}
		return HeaderSize, Packet{Kind: KindConfig, W: w, H: h}, true

	case TagPicture:
		w, h := b[1], b[2]
		if w == 0 || h == 0 {
			// Malformed dimensions; treat the tag byte as garbage
			d.Discarded++
			return 1, Packet{}, false
		}
		need := HeaderSize + int(w)*int(h)
		if len(b) < need {
			return 0, Packet{}, false // Partial payload, wait
		}
		return need, Packet{Kind: KindPicture, W: w, H: h, Pix: b[HeaderSize:need]}, true

	default:
		// Desync: skip one byte and retry at the new offset
		d.Discarded++
		return 1, Packet{}, false
	}
}

// Reset drops all buffered bytes.
func (d *Decoder) Reset() {
	d.buf = d.buf[:0]
}
