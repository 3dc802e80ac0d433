package encoder

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
)

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// OrderedDicts makes the Decoder return dicts as Dict, keeping wire order and
// accepting keys that are not comparable, instead of map[any]any.
func OrderedDicts() DecoderOption {
	return func(d *Decoder) {
		d.ordered = true
	}
}

// Decoder turns encoded bytes back into values. It is safe for concurrent use.
//
// Integers decode to int64, or uint64 above math.MaxInt64, and bignums to *big.Int.
// Class instances decode to *Object.
//
// Dicts decode to map[any]any by default, which rejects keys that are not
// comparable in Go with ErrUnhashableKey. Bytes, bytearray, list, tuple, set,
// frozenset and dict keys all decode to slices or maps, so data written from a
// Dict with such keys must be read with OrderedDicts.
type Decoder struct {
	enc     *Encoder
	ordered bool
}

// Decoder returns a Decoder that resolves extensions registered on e.
func (e *Encoder) Decoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{enc: e}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode is a shorthand for e.Decoder().Decode(data).
func (e *Encoder) Decode(data []byte) (any, error) {
	return e.Decoder().Decode(data)
}

// Decode reads the protocol header and exactly one tagged value.
func (d *Decoder) Decode(data []byte) (any, error) {
	r := &reader{data: data, dec: d}
	major, err := r.uint8()
	if err != nil {
		return nil, err
	}
	minor, err := r.uint8()
	if err != nil {
		return nil, err
	}
	if major != ProtocolMajor {
		return nil, fmt.Errorf(
			"%w: got %d.%d, want %d.x", ErrVersionMismatch, major, minor, ProtocolMajor,
		)
	}
	return r.finish()
}

// DecodeValue reads exactly one tagged value without a protocol header,
// as written by Writer.WriteValue.
func (d *Decoder) DecodeValue(data []byte) (any, error) {
	r := &reader{data: data, dec: d}
	return r.finish()
}

type reader struct {
	data   []byte
	offset int
	depth  int
	dec    *Decoder
}

func (r *reader) finish() (any, error) {
	v, err := r.value()
	if err != nil {
		return nil, err
	}
	if n := len(r.data) - r.offset; n != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTrailingData, n)
	}
	return v, nil
}

// need checks that at least n bytes remain and returns the current offset.
func (r *reader) need(n int) (int, error) {
	if n < 0 || r.offset+n > len(r.data) {
		return 0, ErrShortBuffer
	}
	off := r.offset
	r.offset += n
	return off, nil
}

func (r *reader) uint8() (uint8, error) {
	off, err := r.need(1)
	if err != nil {
		return 0, err
	}
	return r.data[off], nil
}

func (r *reader) uint16() (uint16, error) {
	off, err := r.need(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(r.data[off:]), nil
}

func (r *reader) uint32() (uint32, error) {
	off, err := r.need(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.data[off:]), nil
}

func (r *reader) uint64() (uint64, error) {
	off, err := r.need(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(r.data[off:]), nil
}

func (r *reader) float64() (float64, error) {
	v, err := r.uint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

func (r *reader) bool() (bool, error) {
	b, err := r.uint8()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: bool byte 0x%02x", ErrMalformed, b)
	}
}

// count reads a uint32 element count. Every element takes at least one byte,
// so a count larger than the remaining input is rejected before allocating.
func (r *reader) count() (int, error) {
	n, err := r.uint32()
	if err != nil {
		return 0, err
	}
	if int(n) > len(r.data)-r.offset {
		return 0, ErrShortBuffer
	}
	return int(n), nil
}

// blob reads a length-prefixed byte sequence into a new slice.
func (r *reader) blob() ([]byte, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	off, err := r.need(int(n))
	if err != nil {
		return nil, err
	}
	p := make([]byte, n)
	copy(p, r.data[off:])
	return p, nil
}

func (r *reader) text() (string, error) {
	n, err := r.uint32()
	if err != nil {
		return "", err
	}
	off, err := r.need(int(n))
	if err != nil {
		return "", err
	}
	return string(r.data[off : off+int(n)]), nil
}

func (r *reader) value() (any, error) {
	r.depth++
	defer func() { r.depth-- }()
	if r.depth > r.dec.enc.maxDepth {
		return nil, ErrTooDeep
	}

	b, err := r.uint8()
	if err != nil {
		return nil, err
	}
	switch TypeTag(b) {
	case TagNone:
		return nil, nil
	case TagBool:
		return r.bool()
	case TagInt8:
		v, err := r.uint8()
		return int64(int8(v)), err
	case TagInt16:
		v, err := r.uint16()
		return int64(int16(v)), err
	case TagInt32:
		v, err := r.uint32()
		return int64(int32(v)), err
	case TagInt64:
		v, err := r.uint64()
		return int64(v), err
	case TagUint8:
		v, err := r.uint8()
		return int64(v), err
	case TagUint16:
		v, err := r.uint16()
		return int64(v), err
	case TagUint32:
		v, err := r.uint32()
		return int64(v), err
	case TagUint64:
		v, err := r.uint64()
		if err != nil {
			return nil, err
		}
		if v <= math.MaxInt64 {
			return int64(v), nil
		}
		return v, nil
	case TagBignum:
		return r.bignum()
	case TagFloat:
		return r.float64()
	case TagComplex:
		re, err := r.float64()
		if err != nil {
			return nil, err
		}
		im, err := r.float64()
		if err != nil {
			return nil, err
		}
		return complex(re, im), nil
	case TagBytes:
		return r.blob()
	case TagByteArray:
		p, err := r.blob()
		if err != nil {
			return nil, err
		}
		return ByteArray(p), nil
	case TagString:
		return r.text()
	case TagList:
		return r.sequence()
	case TagTuple:
		items, err := r.sequence()
		return Tuple(items), err
	case TagSet:
		items, err := r.sequence()
		return Set(items), err
	case TagFrozenSet:
		items, err := r.sequence()
		return FrozenSet(items), err
	case TagDict:
		return r.dict()
	case TagRange:
		return r.rangeValue()
	case TagClass:
		return r.class()
	case TagExtension:
		return r.extension()
	default:
		return nil, fmt.Errorf("%w: 0x%02x at offset %d", ErrUnknownTag, b, r.offset-1)
	}
}

func (r *reader) bignum() (any, error) {
	negative, err := r.bool()
	if err != nil {
		return nil, err
	}
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	if n == 0 || uint64(n)*8 > uint64(len(r.data)-r.offset) {
		return nil, fmt.Errorf("%w: bignum with %d chunks", ErrMalformed, n)
	}
	chunks := make([]uint64, n)
	for i := range chunks {
		if chunks[i], err = r.uint64(); err != nil {
			return nil, err
		}
	}
	return bignumFromChunks(negative, chunks), nil
}

func (r *reader) sequence() ([]any, error) {
	n, err := r.count()
	if err != nil {
		return nil, err
	}
	items := make([]any, n)
	for i := range items {
		if items[i], err = r.value(); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r *reader) dict() (any, error) {
	n, err := r.count()
	if err != nil {
		return nil, err
	}
	if r.dec.ordered {
		d := make(Dict, n)
		for i := range d {
			if d[i].Key, err = r.value(); err != nil {
				return nil, err
			}
			if d[i].Value, err = r.value(); err != nil {
				return nil, err
			}
		}
		return d, nil
	}
	m := make(map[any]any, n)
	for range n {
		k, err := r.value()
		if err != nil {
			return nil, err
		}
		if k != nil && !reflect.TypeOf(k).Comparable() {
			return nil, fmt.Errorf("%w: %T", ErrUnhashableKey, k)
		}
		v, err := r.value()
		if err != nil {
			return nil, err
		}
		m[k] = v
	}
	return m, nil
}

func (r *reader) rangeValue() (any, error) {
	var bounds [3]int64
	for i := range bounds {
		v, err := r.value()
		if err != nil {
			return nil, err
		}
		n, ok := v.(int64)
		if !ok {
			return nil, fmt.Errorf("%w: range bound of type %T", ErrMalformed, v)
		}
		bounds[i] = n
	}
	return Range{Start: bounds[0], Stop: bounds[1], Step: bounds[2]}, nil
}

func (r *reader) class() (any, error) {
	name, err := r.text()
	if err != nil {
		return nil, err
	}
	n, err := r.count()
	if err != nil {
		return nil, err
	}
	obj := &Object{Class: name, Attrs: make([]Attribute, n)}
	for i := range obj.Attrs {
		if obj.Attrs[i].Name, err = r.text(); err != nil {
			return nil, err
		}
		if obj.Attrs[i].Value, err = r.value(); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func (r *reader) extension() (any, error) {
	hash, err := r.uint32()
	if err != nil {
		return nil, err
	}
	payload, err := r.blob()
	if err != nil {
		return nil, err
	}
	reg, ok := r.dec.enc.registry.lookupHash(hash)
	if !ok {
		return nil, fmt.Errorf("%w: 0x%08x", ErrUnknownExtension, hash)
	}
	v, err := reg.ext.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("encoder: extension %q: %w", reg.name, err)
	}
	return v, nil
}
