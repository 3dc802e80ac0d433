package encoder

import (
	"encoding/binary"
	"math"
)

// buffer is an append-only byte buffer. Multi-byte values are little-endian.
type buffer struct {
	data []byte
}

func newBuffer(size int) *buffer {
	return &buffer{data: make([]byte, 0, size)}
}

func (b *buffer) bytes() []byte {
	return b.data
}

func (b *buffer) len() int {
	return len(b.data)
}

// truncate drops everything written after offset n.
func (b *buffer) truncate(n int) {
	b.data = b.data[:n]
}

func (b *buffer) writeUint8(v uint8) {
	b.data = append(b.data, v)
}

func (b *buffer) writeUint16(v uint16) {
	b.data = binary.LittleEndian.AppendUint16(b.data, v)
}

func (b *buffer) writeUint32(v uint32) {
	b.data = binary.LittleEndian.AppendUint32(b.data, v)
}

func (b *buffer) writeUint64(v uint64) {
	b.data = binary.LittleEndian.AppendUint64(b.data, v)
}

func (b *buffer) writeFloat64(v float64) {
	b.writeUint64(math.Float64bits(v))
}

// writeLength writes a uint32 length or count prefix.
func (b *buffer) writeLength(n int) error {
	if uint64(n) > math.MaxUint32 {
		return ErrTooLarge
	}
	b.writeUint32(uint32(n))
	return nil
}

func (b *buffer) writeRaw(p []byte) {
	b.data = append(b.data, p...)
}

func (b *buffer) writeRawString(s string) {
	b.data = append(b.data, s...)
}
