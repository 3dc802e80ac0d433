package encoder

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X, Y int32
}

// pointExtension encodes a point as two little-endian int32 values.
type pointExtension struct{}

func (pointExtension) Name() string { return "test.point" }

func (pointExtension) Encode(v any) ([]byte, error) {
	p := v.(point)
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:], uint32(p.X))
	binary.LittleEndian.PutUint32(buf[4:], uint32(p.Y))
	return buf, nil
}

func (pointExtension) Decode(data []byte) (any, error) {
	if len(data) != 8 {
		return nil, errors.New("point: invalid length")
	}
	return point{
		X: int32(binary.LittleEndian.Uint32(data[0:])),
		Y: int32(binary.LittleEndian.Uint32(data[4:])),
	}, nil
}

// namedExtension encodes strings with a fixed prefix under a configurable name.
type namedExtension struct {
	name   string
	prefix string
}

func (e namedExtension) Name() string { return e.name }

func (e namedExtension) Encode(v any) ([]byte, error) {
	return []byte(e.prefix + reflect.ValueOf(v).String()), nil
}

func (e namedExtension) Decode(data []byte) (any, error) {
	return string(data), nil
}

type failingExtension struct{}

func (failingExtension) Name() string { return "test.failing" }

func (failingExtension) Encode(any) ([]byte, error) { return nil, errors.New("boom") }

func (failingExtension) Decode([]byte) (any, error) { return nil, errors.New("boom") }

type shout string

type whisper string

func TestRegisterExtension(t *testing.T) {
	t.Run("Encode registered extension", func(t *testing.T) {
		enc := New()
		require.NoError(t, Register[point](enc, pointExtension{}))

		got, err := enc.Encode(point{X: 1, Y: -1})
		require.NoError(t, err)

		hash := crc32.ChecksumIEEE([]byte("test.point"))
		want := withHeader(byte(TagExtension))
		want = binary.LittleEndian.AppendUint32(want, hash)
		want = append(want, 8, 0, 0, 0, 1, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF)
		assert.Equal(t, want, got)
	})

	t.Run("Extension takes priority over built-in encoding", func(t *testing.T) {
		enc := New()
		require.NoError(t, Register[shout](enc, namedExtension{name: "test.shout", prefix: "!"}))

		got, err := enc.Encode(shout("hi"))
		require.NoError(t, err)
		assert.Equal(t, TagExtension, TypeTag(got[2]))

		got, err = enc.Encode(whisper("hi"))
		require.NoError(t, err)
		assert.Equal(t, TagString, TypeTag(got[2]), "only the exact registered type uses the extension")
	})

	t.Run("Extension inside containers", func(t *testing.T) {
		enc := New()
		require.NoError(t, Register[point](enc, pointExtension{}))

		data, err := enc.Encode(Dict{{Key: "origin", Value: point{}}})
		require.NoError(t, err)
		got, err := enc.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, map[any]any{"origin": point{}}, got)
	})

	t.Run("Registering the same pair twice is a no-op", func(t *testing.T) {
		enc := New()
		require.NoError(t, Register[point](enc, pointExtension{}))
		before, err := enc.Encode(point{X: 3})
		require.NoError(t, err)

		require.NoError(t, Register[point](enc, pointExtension{}))
		after, err := enc.Encode(point{X: 3})
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("Registering an already registered type is ignored", func(t *testing.T) {
		enc := New()
		require.NoError(t, Register[shout](enc, namedExtension{name: "test.first", prefix: "1"}))
		require.NoError(t, Register[shout](enc, namedExtension{name: "test.second", prefix: "2"}))

		data, err := enc.Encode(shout("x"))
		require.NoError(t, err)
		got, err := enc.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, "1x", got, "the first registration should win")
	})

	t.Run("Registering an already registered extension is ignored", func(t *testing.T) {
		enc := New()
		ext := namedExtension{name: "test.shared", prefix: "!"}
		require.NoError(t, Register[shout](enc, ext))
		require.NoError(t, Register[whisper](enc, ext))

		got, err := enc.Encode(whisper("x"))
		require.NoError(t, err)
		assert.Equal(t, TagString, TypeTag(got[2]))
	})

	t.Run("Colliding extension hashes fail", func(t *testing.T) {
		enc := New()
		enc.registry.hashName = func(string) uint32 { return 0xC0FFEE }

		require.NoError(t, Register[shout](enc, namedExtension{name: "test.a"}))
		err := Register[whisper](enc, namedExtension{name: "test.b"})
		assert.ErrorIs(t, err, ErrDuplicateExtensionHash)

		got, err := enc.Encode(whisper("x"))
		require.NoError(t, err)
		assert.Equal(t, TagString, TypeTag(got[2]), "a failed registration should not be kept")
	})

	t.Run("Nil arguments", func(t *testing.T) {
		enc := New()
		assert.Error(t, enc.RegisterExtension(nil, pointExtension{}))
		assert.Error(t, enc.RegisterExtension(reflect.TypeFor[point](), nil))
	})
}

func TestExtensionErrors(t *testing.T) {
	t.Run("Encode error propagates", func(t *testing.T) {
		enc := New()
		require.NoError(t, Register[point](enc, failingExtension{}))
		got, err := enc.Encode([]any{point{}})
		assert.Nil(t, got)
		assert.ErrorContains(t, err, "boom")
	})

	t.Run("Decode with unknown extension hash", func(t *testing.T) {
		enc := New()
		require.NoError(t, Register[point](enc, pointExtension{}))
		data, err := enc.Encode(point{})
		require.NoError(t, err)

		_, err = New().Decode(data)
		assert.ErrorIs(t, err, ErrUnknownExtension)
	})

	t.Run("Decode error propagates", func(t *testing.T) {
		enc := New()
		require.NoError(t, Register[point](enc, pointExtension{}))
		w := enc.NewWriter()
		w.WriteHeader()
		require.NoError(t, w.WriteExtension(point{}, true))
		data := w.Bytes()
		// Shrink the payload length so the extension sees a truncated payload.
		data[7] = 4
		data = data[:len(data)-4]

		_, err := enc.Decode(data)
		assert.ErrorContains(t, err, "invalid length")
	})
}
