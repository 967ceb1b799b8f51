package protocol

import (
	"github.com/vango-dev/patchwork/pkg/host"
)

// Version is the ops frame encoding version.
const Version = 1

// Frame flags.
const (
	FlagPath byte = 1 << iota // frame carries a path
)

// Op field presence bits.
const (
	hasHandle byte = 1 << iota
	hasParent
	hasRef
	hasName
	hasValue
)

// minOpLen is the encoded size of an op with no fields.
const minOpLen = 2

// OpsFrame is one batch of host mutations.
type OpsFrame struct {
	Seq  uint64
	Path string // set when the route changed
	Ops  []host.Op
}

// EncodeOpsFrame appends f to e.
func EncodeOpsFrame(e *Encoder, f OpsFrame) {
	e.WriteByte(Version)
	var flags byte
	if f.Path != "" {
		flags |= FlagPath
	}
	e.WriteByte(flags)
	e.WriteUvarint(f.Seq)
	if f.Path != "" {
		e.WriteString(f.Path)
	}
	e.WriteUvarint(uint64(len(f.Ops)))
	for _, op := range f.Ops {
		encodeOp(e, op)
	}
}

// MarshalOpsFrame encodes f into a new buffer.
func MarshalOpsFrame(f OpsFrame) []byte {
	e := NewEncoder()
	EncodeOpsFrame(e, f)
	return e.Bytes()
}

func encodeOp(e *Encoder, op host.Op) {
	var mask byte
	if op.Handle != host.None {
		mask |= hasHandle
	}
	if op.Parent != host.None {
		mask |= hasParent
	}
	if op.Ref != host.None {
		mask |= hasRef
	}
	if op.Name != "" {
		mask |= hasName
	}
	if op.Value != "" {
		mask |= hasValue
	}

	e.WriteByte(byte(op.Kind))
	e.WriteByte(mask)
	if mask&hasHandle != 0 {
		e.WriteHandle(op.Handle)
	}
	if mask&hasParent != 0 {
		e.WriteHandle(op.Parent)
	}
	if mask&hasRef != 0 {
		e.WriteHandle(op.Ref)
	}
	if mask&hasName != 0 {
		e.WriteString(op.Name)
	}
	if mask&hasValue != 0 {
		e.WriteString(op.Value)
	}
}

// DecodeOpsFrame parses an ops frame. The whole buffer must be consumed.
func DecodeOpsFrame(data []byte) (OpsFrame, error) {
	var f OpsFrame
	d := NewDecoder(data)

	version, err := d.ReadByte()
	if err != nil {
		return f, err
	}
	if version != Version {
		return f, ErrUnknownVersion
	}
	flags, err := d.ReadByte()
	if err != nil {
		return f, err
	}
	if f.Seq, err = d.ReadUvarint(); err != nil {
		return f, err
	}
	if flags&FlagPath != 0 {
		if f.Path, err = d.ReadString(); err != nil {
			return f, err
		}
	}

	count, err := d.ReadCount(MaxOpsPerFrame, minOpLen)
	if err != nil {
		return f, err
	}
	f.Ops = make([]host.Op, count)
	for i := range f.Ops {
		if f.Ops[i], err = decodeOp(d); err != nil {
			return f, err
		}
	}
	if !d.EOF() {
		return f, ErrTrailingData
	}
	return f, nil
}

func decodeOp(d *Decoder) (host.Op, error) {
	var op host.Op
	kind, err := d.ReadByte()
	if err != nil {
		return op, err
	}
	op.Kind = host.OpKind(kind)
	if op.Kind.String() == "Unknown" {
		return op, ErrUnknownOp
	}
	mask, err := d.ReadByte()
	if err != nil {
		return op, err
	}

	handle := func(bit byte, dst *host.Handle) error {
		if mask&bit == 0 {
			return nil
		}
		v, err := d.ReadUvarint()
		if err != nil {
			return err
		}
		if v > uint64(^uint32(0)) {
			return ErrVarintOverflow
		}
		*dst = host.Handle(v)
		return nil
	}
	str := func(bit byte, dst *string) error {
		if mask&bit == 0 {
			return nil
		}
		s, err := d.ReadString()
		*dst = s
		return err
	}

	if err := handle(hasHandle, &op.Handle); err != nil {
		return op, err
	}
	if err := handle(hasParent, &op.Parent); err != nil {
		return op, err
	}
	if err := handle(hasRef, &op.Ref); err != nil {
		return op, err
	}
	if err := str(hasName, &op.Name); err != nil {
		return op, err
	}
	if err := str(hasValue, &op.Value); err != nil {
		return op, err
	}
	return op, nil
}
