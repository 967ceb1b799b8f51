package protocol

import (
	"encoding/binary"
	"errors"
	"io"
)

// Limits on length prefixes read from the wire.
const (
	// MaxStringLen bounds a single decoded string.
	MaxStringLen = 1 << 20

	// MaxOpsPerFrame bounds the op count of one frame.
	MaxOpsPerFrame = 100_000
)

// Decoding errors.
var (
	ErrVarintOverflow     = errors.New("protocol: varint overflow")
	ErrAllocationTooLarge = errors.New("protocol: allocation size exceeds limit")
	ErrCollectionTooLarge = errors.New("protocol: collection count exceeds limit")
	ErrUnknownVersion     = errors.New("protocol: unknown frame version")
	ErrUnknownOp          = errors.New("protocol: unknown op kind")
	ErrTrailingData       = errors.New("protocol: trailing data after frame")
)

// Decoder reads one frame from a byte slice.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder returns a decoder positioned at the start of buf.
func NewDecoder(buf []byte) *Decoder { return &Decoder{buf: buf} }

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int { return len(d.buf) - d.pos }

// EOF reports whether the whole buffer has been consumed.
func (d *Decoder) EOF() bool { return d.pos >= len(d.buf) }

// ReadByte reads a single byte.
func (d *Decoder) ReadByte() (byte, error) {
	if d.EOF() {
		return 0, io.ErrUnexpectedEOF
	}
	d.pos++
	return d.buf[d.pos-1], nil
}

// ReadUvarint reads an unsigned LEB128 varint.
func (d *Decoder) ReadUvarint() (uint64, error) {
	v, n := binary.Uvarint(d.buf[d.pos:])
	switch {
	case n == 0:
		return 0, io.ErrUnexpectedEOF
	case n < 0:
		return 0, ErrVarintOverflow
	}
	d.pos += n
	return v, nil
}

// ReadString reads a length-prefixed string.
func (d *Decoder) ReadString() (string, error) {
	n, err := d.ReadUvarint()
	if err != nil {
		return "", err
	}
	if n > MaxStringLen {
		return "", ErrAllocationTooLarge
	}
	if n > uint64(d.Remaining()) {
		return "", io.ErrUnexpectedEOF
	}
	s := string(d.buf[d.pos : d.pos+int(n)])
	d.pos += int(n)
	return s, nil
}

// ReadCount reads a collection count. Every item takes at least minItem
// bytes, so a count the rest of the buffer cannot hold fails before
// anything is allocated.
func (d *Decoder) ReadCount(limit, minItem int) (int, error) {
	n, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if n > uint64(limit) {
		return 0, ErrCollectionTooLarge
	}
	if n*uint64(minItem) > uint64(d.Remaining()) {
		return 0, io.ErrUnexpectedEOF
	}
	return int(n), nil
}
