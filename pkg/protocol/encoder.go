package protocol

import (
	"encoding/binary"

	"github.com/vango-dev/patchwork/pkg/host"
)

// Encoder accumulates one frame. The zero value is ready to use.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an encoder with room for a typical ops frame.
func NewEncoder() *Encoder {
	return &Encoder{buf: make([]byte, 0, 256)}
}

// Reset empties the encoder and keeps its capacity.
func (e *Encoder) Reset() { e.buf = e.buf[:0] }

// Bytes returns the frame so far. It aliases the encoder's buffer until the
// next write or Reset.
func (e *Encoder) Bytes() []byte { return e.buf }

// Len returns the encoded size in bytes.
func (e *Encoder) Len() int { return len(e.buf) }

// WriteByte appends b.
func (e *Encoder) WriteByte(b byte) { e.buf = append(e.buf, b) }

// WriteUvarint appends v as an unsigned LEB128 varint.
func (e *Encoder) WriteUvarint(v uint64) { e.buf = binary.AppendUvarint(e.buf, v) }

// WriteHandle appends a host handle as a varint.
func (e *Encoder) WriteHandle(h host.Handle) { e.WriteUvarint(uint64(h)) }

// WriteString appends s prefixed with its byte length.
func (e *Encoder) WriteString(s string) {
	e.WriteUvarint(uint64(len(s)))
	e.buf = append(e.buf, s...)
}
