package encoder

// ByteArray is a mutable byte sequence. It is written with the bytearray tag
// to keep it distinct from immutable []byte values.
type ByteArray []byte

// Tuple is a fixed, ordered sequence of values.
type Tuple []any

// Set is an unordered collection of distinct values, written in slice order.
type Set []any

// FrozenSet is an immutable Set.
type FrozenSet []any

// Item is a single key-value pair of a Dict.
type Item struct {
	Key   any
	Value any
}

// Dict is a mapping that keeps its insertion order on the wire.
// Unlike map[any]any it allows keys that are not comparable in Go.
type Dict []Item

// Range is an arithmetic progression described by start, stop and step.
type Range struct {
	Start int64
	Stop  int64
	Step  int64
}

// Attribute is a named attribute value of a class instance.
type Attribute struct {
	Name  string
	Value any
}

// Serializable is implemented by types that describe their own class encoding.
// Attributes are written in the order returned.
type Serializable interface {
	ClassName() string
	Attributes() []Attribute
}

// AttributeIncluder limits reflective struct encoding to the named attributes.
type AttributeIncluder interface {
	IncludeAttributes() []string
}

// AttributeExcluder drops the named attributes from reflective struct encoding.
type AttributeExcluder interface {
	ExcludeAttributes() []string
}

// Object is a decoded class instance.
type Object struct {
	Class string
	Attrs []Attribute
}

func (o *Object) ClassName() string { return o.Class }

func (o *Object) Attributes() []Attribute { return o.Attrs }

// Attr returns the value of the named attribute.
func (o *Object) Attr(name string) (any, bool) {
	for _, a := range o.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}
