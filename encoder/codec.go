package encoder

import (
	"fmt"
	"reflect"
)

type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, out any) error
}

var _ Codec = (*Encoder)(nil)

// Marshal implements Codec. It is equivalent to Encode.
func (e *Encoder) Marshal(v any) ([]byte, error) {
	return e.Encode(v)
}

// Unmarshal implements Codec. It decodes data and stores the result in the value pointed to by out.
//
// The decoded value must be assignable to the element type of out. Integers and
// floats are also converted to other numeric types when no precision is lost.
// A decoded none sets out to its zero value.
func (e *Encoder) Unmarshal(data []byte, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("encoder: unmarshal target must be a non-nil pointer (got %T)", out)
	}
	v, err := e.Decode(data)
	if err != nil {
		return err
	}
	elem := rv.Elem()
	if v == nil {
		elem.SetZero()
		return nil
	}
	dv := reflect.ValueOf(v)
	switch {
	case dv.Type().AssignableTo(elem.Type()):
		elem.Set(dv)
	case isNumeric(dv.Kind()) && isNumeric(elem.Kind()):
		cv := dv.Convert(elem.Type())
		if !cv.Convert(dv.Type()).Equal(dv) {
			return fmt.Errorf("encoder: value %v overflows %s", v, elem.Type())
		}
		elem.Set(cv)
	default:
		return fmt.Errorf("encoder: cannot unmarshal %T into %s", v, elem.Type())
	}
	return nil
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
