package encoder

import (
	"encoding/binary"
	"math"
	"math/big"
)

func (w *Writer) WriteInt8(v int8, writeTag bool) {
	w.tag(TagInt8, writeTag)
	w.buf.writeUint8(uint8(v))
}

func (w *Writer) WriteInt16(v int16, writeTag bool) {
	w.tag(TagInt16, writeTag)
	w.buf.writeUint16(uint16(v))
}

func (w *Writer) WriteInt32(v int32, writeTag bool) {
	w.tag(TagInt32, writeTag)
	w.buf.writeUint32(uint32(v))
}

func (w *Writer) WriteInt64(v int64, writeTag bool) {
	w.tag(TagInt64, writeTag)
	w.buf.writeUint64(uint64(v))
}

func (w *Writer) WriteUint8(v uint8, writeTag bool) {
	w.tag(TagUint8, writeTag)
	w.buf.writeUint8(v)
}

func (w *Writer) WriteUint16(v uint16, writeTag bool) {
	w.tag(TagUint16, writeTag)
	w.buf.writeUint16(v)
}

func (w *Writer) WriteUint32(v uint32, writeTag bool) {
	w.tag(TagUint32, writeTag)
	w.buf.writeUint32(v)
}

func (w *Writer) WriteUint64(v uint64, writeTag bool) {
	w.tag(TagUint64, writeTag)
	w.buf.writeUint64(v)
}

// WriteInt writes v using the narrowest width that holds it.
// Non-negative values use the unsigned widths.
func (w *Writer) WriteInt(v int64, writeTag bool) {
	switch {
	case v >= 0:
		w.WriteUint(uint64(v), writeTag)
	case v >= math.MinInt8:
		w.WriteInt8(int8(v), writeTag)
	case v >= math.MinInt16:
		w.WriteInt16(int16(v), writeTag)
	case v >= math.MinInt32:
		w.WriteInt32(int32(v), writeTag)
	default:
		w.WriteInt64(v, writeTag)
	}
}

// WriteUint writes v using the narrowest unsigned width that holds it.
func (w *Writer) WriteUint(v uint64, writeTag bool) {
	switch {
	case v <= math.MaxUint8:
		w.WriteUint8(uint8(v), writeTag)
	case v <= math.MaxUint16:
		w.WriteUint16(uint16(v), writeTag)
	case v <= math.MaxUint32:
		w.WriteUint32(uint32(v), writeTag)
	default:
		w.WriteUint64(v, writeTag)
	}
}

// WriteBigInt writes v like WriteInt, falling back to a bignum outside the 64-bit ranges.
func (w *Writer) WriteBigInt(v *big.Int, writeTag bool) {
	switch {
	case v.IsUint64():
		w.WriteUint(v.Uint64(), writeTag)
	case v.IsInt64():
		w.WriteInt(v.Int64(), writeTag)
	default:
		w.WriteBignum(v, writeTag)
	}
}

// WriteBignum writes v as a sign flag, a uint32 chunk count and the
// 64-bit chunks of its magnitude, most significant first.
func (w *Writer) WriteBignum(v *big.Int, writeTag bool) {
	w.tag(TagBignum, writeTag)
	w.WriteBool(v.Sign() < 0, false)
	chunks := bignumChunks(v)
	w.buf.writeUint32(uint32(len(chunks)))
	for _, c := range chunks {
		w.buf.writeUint64(c)
	}
}

// bignumChunks splits |v| into 16 hex digit chunks counted from the least
// significant end, so the first chunk may be short. Zero is a single chunk.
func bignumChunks(v *big.Int) []uint64 {
	mag := new(big.Int).Abs(v).Bytes()
	n := (len(mag) + 7) / 8
	if n == 0 {
		return []uint64{0}
	}
	padded := make([]byte, n*8)
	copy(padded[len(padded)-len(mag):], mag)
	chunks := make([]uint64, n)
	for i := range chunks {
		chunks[i] = binary.BigEndian.Uint64(padded[i*8:])
	}
	return chunks
}

// bignumFromChunks is the inverse of bignumChunks.
func bignumFromChunks(negative bool, chunks []uint64) *big.Int {
	v := new(big.Int)
	c := new(big.Int)
	for _, chunk := range chunks {
		v.Lsh(v, 64)
		v.Or(v, c.SetUint64(chunk))
	}
	if negative {
		v.Neg(v)
	}
	return v
}
