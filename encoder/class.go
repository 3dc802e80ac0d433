package encoder

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// structTag is the struct field tag that renames ("name") or skips ("-") a field.
const structTag = "urine"

type structField struct {
	name  string
	index int
}

// structInfo describes how a struct type is encoded.
type structInfo struct {
	fields []structField
	// opaque is set when the type keeps all of its state in unexported fields,
	// so an attribute dump would carry no data (time.Time, sync.Mutex).
	opaque bool
}

// structCache holds the encoding info of each struct type (reflect.Type => *structInfo).
var structCache sync.Map

// structInfoOf returns the exported, non-callable fields of t in declaration order.
func structInfoOf(t reflect.Type) *structInfo {
	if cached, ok := structCache.Load(t); ok {
		return cached.(*structInfo)
	}
	info := &structInfo{fields: make([]structField, 0, t.NumField())}
	exported := 0
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		exported++
		if k := f.Type.Kind(); k == reflect.Func || k == reflect.Chan {
			continue // Callables are not state.
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup(structTag); ok {
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		info.fields = append(info.fields, structField{name: name, index: i})
	}
	info.opaque = t.NumField() > 0 && exported == 0
	cached, _ := structCache.LoadOrStore(t, info)
	return cached.(*structInfo)
}

func (w *Writer) writeClass(v any, writeTag bool) error {
	if s, ok := v.(Serializable); ok {
		return w.writeSerializable(s, writeTag)
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return fmt.Errorf("encoder: class: nil %s", rv.Type())
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return &UnsupportedTypeError{Type: reflect.TypeOf(v)}
	}
	attrs, err := structAttributes(v, rv)
	if err != nil {
		return err
	}
	return w.writeAttributes(rv.Type().Name(), attrs, writeTag)
}

func (w *Writer) writeSerializable(s Serializable, writeTag bool) error {
	return w.writeAttributes(s.ClassName(), s.Attributes(), writeTag)
}

func (w *Writer) writeAttributes(class string, attrs []Attribute, writeTag bool) error {
	w.tag(TagClass, writeTag)
	if err := w.writeText(class, false); err != nil {
		return err
	}
	if err := w.buf.writeLength(len(attrs)); err != nil {
		return err
	}
	for _, a := range attrs {
		if err := w.writeText(a.Name, false); err != nil {
			return err
		}
		if err := w.writeValue(a.Value); err != nil {
			return err
		}
	}
	return nil
}

// structAttributes collects the attributes of the struct rv, honouring
// IncludeAttributes or ExcludeAttributes when v implements them.
func structAttributes(v any, rv reflect.Value) ([]Attribute, error) {
	info := structInfoOf(rv.Type())
	if info.opaque {
		return nil, &UnsupportedTypeError{Type: rv.Type()}
	}
	fields := info.fields

	if inc, ok := v.(AttributeIncluder); ok {
		names := inc.IncludeAttributes()
		attrs := make([]Attribute, 0, len(names))
		for _, name := range names {
			i := slices.IndexFunc(fields, func(f structField) bool { return f.name == name })
			if i < 0 {
				return nil, fmt.Errorf("encoder: class %s has no attribute %q", rv.Type().Name(), name)
			}
			attrs = append(attrs, Attribute{Name: name, Value: rv.Field(fields[i].index).Interface()})
		}
		return attrs, nil
	}

	var exclude []string
	if exc, ok := v.(AttributeExcluder); ok {
		exclude = exc.ExcludeAttributes()
	}
	attrs := make([]Attribute, 0, len(fields))
	for _, f := range fields {
		if slices.Contains(exclude, f.name) {
			continue
		}
		attrs = append(attrs, Attribute{Name: f.name, Value: rv.Field(f.index).Interface()})
	}
	return attrs, nil
}
