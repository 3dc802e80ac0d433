package encoder

import (
	"bytes"
	"fmt"
	"math/big"
	"reflect"
	"slices"
)

// Writer accumulates the encoding of one or more values.
//
// Every Write method takes a writeTag flag; when false only the payload is
// written, for callers that have already committed to the type.
// A Writer is not safe for concurrent use. If a Write method fails, nothing
// it wrote is kept.
type Writer struct {
	buf   *buffer
	enc   *Encoder
	depth int
}

// Bytes returns the bytes written so far.
func (w *Writer) Bytes() []byte {
	return w.buf.bytes()
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.buf.len()
}

// WriteHeader writes the two-byte protocol version.
func (w *Writer) WriteHeader() {
	w.buf.writeUint8(ProtocolMajor)
	w.buf.writeUint8(ProtocolMinor)
}

func (w *Writer) tag(t TypeTag, writeTag bool) {
	if writeTag {
		w.buf.writeUint8(uint8(t))
	}
}

// rollback drops everything written since start when err is set.
func (w *Writer) rollback(start int, err error) error {
	if err != nil {
		w.buf.truncate(start)
	}
	return err
}

// sub returns a scratch writer at the same nesting depth.
func (w *Writer) sub() *Writer {
	return &Writer{buf: newBuffer(16), enc: w.enc, depth: w.depth}
}

func (w *Writer) WriteNone(writeTag bool) {
	w.tag(TagNone, writeTag)
}

func (w *Writer) WriteBool(v bool, writeTag bool) {
	w.tag(TagBool, writeTag)
	if v {
		w.buf.writeUint8(1)
	} else {
		w.buf.writeUint8(0)
	}
}

func (w *Writer) WriteFloat(v float64, writeTag bool) {
	w.tag(TagFloat, writeTag)
	w.buf.writeFloat64(v)
}

// WriteComplex writes the real part followed by the imaginary part.
func (w *Writer) WriteComplex(v complex128, writeTag bool) {
	w.tag(TagComplex, writeTag)
	w.buf.writeFloat64(real(v))
	w.buf.writeFloat64(imag(v))
}

func (w *Writer) WriteBytes(p []byte, writeTag bool) error {
	return w.rollback(w.buf.len(), w.writeBlob(TagBytes, p, writeTag))
}

func (w *Writer) WriteByteArray(p []byte, writeTag bool) error {
	return w.rollback(w.buf.len(), w.writeBlob(TagByteArray, p, writeTag))
}

func (w *Writer) WriteString(s string, writeTag bool) error {
	return w.rollback(w.buf.len(), w.writeText(s, writeTag))
}

func (w *Writer) WriteList(items []any, writeTag bool) error {
	return w.rollback(w.buf.len(), w.writeSequence(TagList, items, writeTag))
}

func (w *Writer) WriteTuple(items Tuple, writeTag bool) error {
	return w.rollback(w.buf.len(), w.writeSequence(TagTuple, items, writeTag))
}

func (w *Writer) WriteSet(items Set, writeTag bool) error {
	return w.rollback(w.buf.len(), w.writeSequence(TagSet, items, writeTag))
}

func (w *Writer) WriteFrozenSet(items FrozenSet, writeTag bool) error {
	return w.rollback(w.buf.len(), w.writeSequence(TagFrozenSet, items, writeTag))
}

func (w *Writer) WriteDict(d Dict, writeTag bool) error {
	return w.rollback(w.buf.len(), w.writeDict(d, writeTag))
}

// WriteRange writes start, stop and step as tagged integers.
func (w *Writer) WriteRange(r Range, writeTag bool) {
	w.tag(TagRange, writeTag)
	w.WriteInt(r.Start, true)
	w.WriteInt(r.Stop, true)
	w.WriteInt(r.Step, true)
}

// WriteClass writes a Serializable or a struct (or pointer to struct) as a class instance.
func (w *Writer) WriteClass(v any, writeTag bool) error {
	return w.rollback(w.buf.len(), w.writeClass(v, writeTag))
}

// WriteExtension writes v with the extension registered for its exact type.
func (w *Writer) WriteExtension(v any, writeTag bool) error {
	reg, ok := w.enc.registry.lookupType(reflect.TypeOf(v))
	if !ok {
		return &UnsupportedTypeError{Type: reflect.TypeOf(v)}
	}
	return w.rollback(w.buf.len(), w.writeExtension(reg, v, writeTag))
}

// WriteValue writes v with its type tag, choosing the encoding from its runtime type.
func (w *Writer) WriteValue(v any) error {
	return w.rollback(w.buf.len(), w.writeValue(v))
}

func (w *Writer) writeBlob(t TypeTag, p []byte, writeTag bool) error {
	w.tag(t, writeTag)
	if err := w.buf.writeLength(len(p)); err != nil {
		return err
	}
	w.buf.writeRaw(p)
	return nil
}

func (w *Writer) writeText(s string, writeTag bool) error {
	w.tag(TagString, writeTag)
	if err := w.buf.writeLength(len(s)); err != nil {
		return err
	}
	w.buf.writeRawString(s)
	return nil
}

func (w *Writer) writeSequence(t TypeTag, items []any, writeTag bool) error {
	w.tag(t, writeTag)
	if err := w.buf.writeLength(len(items)); err != nil {
		return err
	}
	for _, item := range items {
		if err := w.writeValue(item); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeDict(d Dict, writeTag bool) error {
	w.tag(TagDict, writeTag)
	if err := w.buf.writeLength(len(d)); err != nil {
		return err
	}
	for _, item := range d {
		if err := w.writeValue(item.Key); err != nil {
			return err
		}
		if err := w.writeValue(item.Value); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeExtension(reg *registration, v any, writeTag bool) error {
	payload, err := reg.ext.Encode(v)
	if err != nil {
		return fmt.Errorf("encoder: extension %q: %w", reg.name, err)
	}
	w.tag(TagExtension, writeTag)
	w.buf.writeUint32(reg.hash)
	return w.writeBlob(TagExtension, payload, false)
}

func (w *Writer) hasExtension(t reflect.Type) bool {
	if w.enc.registry.empty() {
		return false
	}
	_, ok := w.enc.registry.lookupType(t)
	return ok
}

func (w *Writer) writeValue(v any) error {
	w.depth++
	defer func() { w.depth-- }()
	if w.depth > w.enc.maxDepth {
		return ErrTooDeep
	}

	if v == nil {
		w.WriteNone(true)
		return nil
	}
	if !w.enc.registry.empty() {
		if reg, ok := w.enc.registry.lookupType(reflect.TypeOf(v)); ok {
			return w.writeExtension(reg, v, true)
		}
	}

	switch x := v.(type) {
	case bool:
		w.WriteBool(x, true)
	case int:
		w.WriteInt(int64(x), true)
	case int8:
		w.WriteInt(int64(x), true)
	case int16:
		w.WriteInt(int64(x), true)
	case int32:
		w.WriteInt(int64(x), true)
	case int64:
		w.WriteInt(x, true)
	case uint:
		w.WriteUint(uint64(x), true)
	case uint8:
		w.WriteUint(uint64(x), true)
	case uint16:
		w.WriteUint(uint64(x), true)
	case uint32:
		w.WriteUint(uint64(x), true)
	case uint64:
		w.WriteUint(x, true)
	case float32:
		w.WriteFloat(float64(x), true)
	case float64:
		w.WriteFloat(x, true)
	case complex64:
		w.WriteComplex(complex128(x), true)
	case complex128:
		w.WriteComplex(x, true)
	case string:
		return w.writeText(x, true)
	case []byte:
		return w.writeBlob(TagBytes, x, true)
	case ByteArray:
		return w.writeBlob(TagByteArray, x, true)
	case *big.Int:
		if x == nil {
			w.WriteNone(true)
			return nil
		}
		w.WriteBigInt(x, true)
	case big.Int:
		w.WriteBigInt(&x, true)
	case []any:
		return w.writeSequence(TagList, x, true)
	case Tuple:
		return w.writeSequence(TagTuple, x, true)
	case Set:
		return w.writeSequence(TagSet, x, true)
	case FrozenSet:
		return w.writeSequence(TagFrozenSet, x, true)
	case Dict:
		return w.writeDict(x, true)
	case Range:
		w.WriteRange(x, true)
	case Serializable:
		if rv := reflect.ValueOf(x); rv.Kind() == reflect.Pointer && rv.IsNil() {
			w.WriteNone(true)
			return nil
		}
		return w.writeSerializable(x, true)
	default:
		return w.writeReflect(reflect.ValueOf(v))
	}
	return nil
}

// writeReflect handles named and composite types by their kind.
func (w *Writer) writeReflect(rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Bool:
		w.WriteBool(rv.Bool(), true)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		w.WriteInt(rv.Int(), true)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		w.WriteUint(rv.Uint(), true)
	case reflect.Float32, reflect.Float64:
		w.WriteFloat(rv.Float(), true)
	case reflect.Complex64, reflect.Complex128:
		w.WriteComplex(rv.Complex(), true)
	case reflect.String:
		return w.writeText(rv.String(), true)
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return w.writeBlob(TagBytes, rv.Bytes(), true)
		}
		return w.writeElements(TagList, rv)
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			// Named byte types can't be copied with reflect.Copy.
			p := make([]byte, rv.Len())
			for i := range p {
				p[i] = uint8(rv.Index(i).Uint())
			}
			return w.writeBlob(TagBytes, p, true)
		}
		return w.writeElements(TagTuple, rv)
	case reflect.Map:
		return w.writeMap(rv)
	case reflect.Struct:
		return w.writeClass(rv.Interface(), true)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			w.WriteNone(true)
			return nil
		}
		if rv.Kind() == reflect.Pointer && rv.Elem().Kind() == reflect.Struct && !w.hasExtension(rv.Elem().Type()) {
			return w.writeClass(rv.Interface(), true)
		}
		return w.writeValue(rv.Elem().Interface())
	default:
		return &UnsupportedTypeError{Type: rv.Type()}
	}
	return nil
}

func (w *Writer) writeElements(t TypeTag, rv reflect.Value) error {
	w.tag(t, true)
	if err := w.buf.writeLength(rv.Len()); err != nil {
		return err
	}
	for i := range rv.Len() {
		if err := w.writeValue(rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

type mapEntry struct {
	key   []byte
	value reflect.Value
}

// writeMap writes a Go map as a dict, or as a set when the element type is empty.
// Entries are sorted by their encoded key so equal maps encode identically.
func (w *Writer) writeMap(rv reflect.Value) error {
	elem := rv.Type().Elem()
	isSet := elem.Kind() == reflect.Struct && elem.Size() == 0

	entries := make([]mapEntry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		kw := w.sub()
		if err := kw.writeValue(iter.Key().Interface()); err != nil {
			return err
		}
		entries = append(entries, mapEntry{key: kw.Bytes(), value: iter.Value()})
	}
	slices.SortFunc(entries, func(a, b mapEntry) int {
		return bytes.Compare(a.key, b.key)
	})

	if isSet {
		w.tag(TagSet, true)
	} else {
		w.tag(TagDict, true)
	}
	if err := w.buf.writeLength(len(entries)); err != nil {
		return err
	}
	for _, e := range entries {
		w.buf.writeRaw(e.key)
		if isSet {
			continue
		}
		if err := w.writeValue(e.value.Interface()); err != nil {
			return err
		}
	}
	return nil
}
