package vango

import (
	"encoding"
	"encoding/binary"
	"math"
	"reflect"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"

	"github.com/vango-dev/patchwork/internal/errors"
)

// PropsHasher lets a props type, or any value inside one, feed its own
// identity into the placeholder hash instead of being walked field by field.
type PropsHasher interface {
	HashProps(d *xxhash.Digest)
}

var (
	propsHasherType   = reflect.TypeOf((*PropsHasher)(nil)).Elem()
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// Value tags keep differently shaped values from colliding.
const (
	tagNil byte = iota
	tagBool
	tagInt
	tagUint
	tagFloat
	tagComplex
	tagString
	tagSeq
	tagMap
	tagStruct
	tagPtr
	tagIface
	tagEncoded
)

// hashProps combines the component type id with its properties. Equal
// results mean a mounted instance may be adopted without re-rendering.
//
// Properties are hashed structurally: every field counts, exported or not.
// Values implementing PropsHasher, json.Marshaler or encoding.TextMarshaler
// contribute their own encoding. Functions, channels and cyclic values
// panic with E002.
func hashProps[P any](name string, typeID uint64, props P) uint64 {
	h := propsHash{d: xxhash.New(), name: name}
	h.uint(typeID)
	_, _ = h.d.WriteString(name)
	h.value(reflect.ValueOf(&props).Elem())
	return h.d.Sum64()
}

type propsHash struct {
	d       *xxhash.Digest
	name    string
	scratch [8]byte
	// pointers on the current path, for cycle detection
	visiting map[uintptr]bool
}

func (h *propsHash) fail(format string, args ...any) {
	errors.Panic(errors.New(errors.CodeUnhashableProps).
		WithDetail("%s props: "+format, append([]any{h.name}, args...)...).
		WithSuggestion("Implement vango.PropsHasher on the props type"))
}

func (h *propsHash) tag(t byte) { _, _ = h.d.Write([]byte{t}) }

func (h *propsHash) uint(v uint64) {
	binary.LittleEndian.PutUint64(h.scratch[:], v)
	_, _ = h.d.Write(h.scratch[:])
}

func (h *propsHash) str(s string) {
	h.uint(uint64(len(s)))
	_, _ = h.d.WriteString(s)
}

func (h *propsHash) value(v reflect.Value) {
	if h.encoded(v) {
		return
	}

	switch v.Kind() {
	case reflect.Bool:
		h.tag(tagBool)
		if v.Bool() {
			h.uint(1)
		} else {
			h.uint(0)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		h.tag(tagInt)
		h.uint(uint64(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		h.tag(tagUint)
		h.uint(v.Uint())
	case reflect.Float32, reflect.Float64:
		h.tag(tagFloat)
		h.uint(math.Float64bits(v.Float()))
	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		h.tag(tagComplex)
		h.uint(math.Float64bits(real(c)))
		h.uint(math.Float64bits(imag(c)))
	case reflect.String:
		h.tag(tagString)
		h.str(v.String())
	case reflect.Slice:
		if v.IsNil() {
			h.tag(tagNil)
			return
		}
		fallthrough
	case reflect.Array:
		h.tag(tagSeq)
		h.uint(uint64(v.Len()))
		for i := 0; i < v.Len(); i++ {
			h.value(v.Index(i))
		}
	case reflect.Map:
		if v.IsNil() {
			h.tag(tagNil)
			return
		}
		h.mapValue(v)
	case reflect.Struct:
		h.tag(tagStruct)
		for i := 0; i < v.NumField(); i++ {
			h.value(v.Field(i))
		}
	case reflect.Pointer:
		if v.IsNil() {
			h.tag(tagNil)
			return
		}
		p := v.Pointer()
		if h.visiting[p] {
			h.fail("cycle through %s", v.Type())
		}
		if h.visiting == nil {
			h.visiting = make(map[uintptr]bool)
		}
		h.visiting[p] = true
		h.tag(tagPtr)
		h.value(v.Elem())
		delete(h.visiting, p)
	case reflect.Interface:
		if v.IsNil() {
			h.tag(tagNil)
			return
		}
		h.tag(tagIface)
		h.str(v.Elem().Type().String())
		h.value(v.Elem())
	default:
		h.fail("%s values cannot be compared", v.Type())
	}
}

// mapValue hashes entries independently of iteration order.
func (h *propsHash) mapValue(v reflect.Value) {
	entries := make([]uint64, 0, v.Len())
	it := v.MapRange()
	for it.Next() {
		sub := propsHash{d: xxhash.New(), name: h.name, visiting: h.visiting}
		sub.value(it.Key())
		sub.value(it.Value())
		entries = append(entries, sub.d.Sum64())
	}
	slices.Sort(entries)
	h.tag(tagMap)
	h.uint(uint64(len(entries)))
	for _, e := range entries {
		h.uint(e)
	}
}

// encoded hashes v through its own encoding when it provides one. Values
// reached through unexported fields cannot be asked and are walked instead.
func (h *propsHash) encoded(v reflect.Value) bool {
	if !v.CanInterface() {
		return false
	}
	t := v.Type()
	if !t.Implements(propsHasherType) && !t.Implements(jsonMarshalerType) && !t.Implements(textMarshalerType) {
		return false
	}
	if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
		h.tag(tagNil)
		return true
	}

	switch x := v.Interface().(type) {
	case PropsHasher:
		h.tag(tagEncoded)
		x.HashProps(h.d)
	case json.Marshaler:
		data, err := x.MarshalJSON()
		if err != nil {
			errors.Panic(errors.New(errors.CodeUnhashableProps).
				WithDetail("%s props: encoding %s", h.name, t).
				Wrap(err))
		}
		h.tag(tagEncoded)
		h.str(string(data))
	case encoding.TextMarshaler:
		data, err := x.MarshalText()
		if err != nil {
			errors.Panic(errors.New(errors.CodeUnhashableProps).
				WithDetail("%s props: encoding %s", h.name, t).
				Wrap(err))
		}
		h.tag(tagEncoded)
		h.str(string(data))
	}
	return true
}
