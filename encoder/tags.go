package encoder

import "fmt"

// Protocol version written at the start of every encoded buffer.
const (
	ProtocolMajor uint8 = 1
	ProtocolMinor uint8 = 0
)

// TypeTag identifies the wire representation of the payload that follows it.
//
// Tag values are frozen for a protocol version: adding tags is fine,
// changing an existing value breaks every decoder in the field.
type TypeTag uint8

const (
	TagInvalid TypeTag = iota // Reserved, never written.

	TagBool
	TagInt8
	TagInt16
	TagInt32
	TagInt64
	TagUint8
	TagUint16
	TagUint32
	TagUint64
	TagBignum
	TagFloat
	TagComplex
	TagBytes
	TagByteArray
	TagString
	TagList
	TagTuple
	TagSet
	TagFrozenSet
	TagDict
	TagRange
	TagClass
	TagExtension
	TagNone
)

var tagNames = [...]string{
	TagInvalid:   "invalid",
	TagBool:      "bool",
	TagInt8:      "int8",
	TagInt16:     "int16",
	TagInt32:     "int32",
	TagInt64:     "int64",
	TagUint8:     "uint8",
	TagUint16:    "uint16",
	TagUint32:    "uint32",
	TagUint64:    "uint64",
	TagBignum:    "bignum",
	TagFloat:     "float",
	TagComplex:   "complex",
	TagBytes:     "bytes",
	TagByteArray: "bytearray",
	TagString:    "string",
	TagList:      "list",
	TagTuple:     "tuple",
	TagSet:       "set",
	TagFrozenSet: "frozenset",
	TagDict:      "dict",
	TagRange:     "range",
	TagClass:     "class",
	TagExtension: "extension",
	TagNone:      "none",
}

func (t TypeTag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return fmt.Sprintf("tag(%d)", uint8(t))
}

// Valid reports whether t is a tag that can appear on the wire.
func (t TypeTag) Valid() bool {
	return t > TagInvalid && t <= TagNone
}

// Tags returns every wire tag in ascending order.
func Tags() []TypeTag {
	tags := make([]TypeTag, 0, len(tagNames)-1)
	for t := TagBool; t <= TagNone; t++ {
		tags = append(tags, t)
	}
	return tags
}
