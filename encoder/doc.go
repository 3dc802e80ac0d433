// Package encoder implements a length-prefixed, type-tagged binary format for
// in-memory object graphs.
//
// Every encoded buffer starts with a two-byte protocol version followed by one
// tagged value. A value is a one-byte TypeTag and a tag specific payload.
// Multi-byte numbers are little-endian.
//
//	bool                 1 byte
//	int8..int64          1, 2, 4 or 8 bytes, two's complement
//	uint8..uint64        1, 2, 4 or 8 bytes
//	bignum               [negative: bool][chunks: uint32][chunk: uint64]... most significant first
//	float                8-byte IEEE-754 double
//	complex              real and imaginary doubles
//	bytes, bytearray     [length: uint32][raw bytes]
//	string               [length: uint32][UTF-8 bytes]
//	list, tuple, set,
//	frozenset            [count: uint32][value]...
//	dict                 [count: uint32]([key][value])...
//	range                start, stop and step as tagged integers
//	class                [name: string][count: uint32]([attr name: string][value])...
//	extension            [hash: uint32][length: uint32][payload]
//	none                 no payload
//
// Integers are written with the narrowest width that holds them: non-negative
// values use the unsigned widths, negative values the signed ones, and values
// outside the 64-bit ranges become bignums. Decoders must dispatch on the tag.
//
// Types the format does not know are handled by an Extension registered for
// their exact runtime type. The CRC32 of the extension name is written on the
// wire, so two extensions with colliding names cannot be registered together.
//
// Example:
//
//	enc := encoder.New()
//	if err := encoder.RegisterProto[*timestamppb.Timestamp](enc); err != nil {
//		log.Fatal(err)
//	}
//	data, err := enc.Encode([]any{1, "two", timestamppb.Now()})
//	v, err := enc.Decode(data)
package encoder
