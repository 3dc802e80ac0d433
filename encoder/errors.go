package encoder

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrDuplicateExtensionHash = errors.New("encoder: duplicate extension hash")
	ErrUnsupportedType        = errors.New("encoder: unsupported type")
	ErrTooDeep                = errors.New("encoder: structure too deep")
	ErrTooLarge               = errors.New("encoder: length exceeds uint32 range")

	ErrShortBuffer      = errors.New("encoder: insufficient data in buffer")
	ErrTrailingData     = errors.New("encoder: trailing data after value")
	ErrUnknownTag       = errors.New("encoder: unknown type tag")
	ErrUnknownExtension = errors.New("encoder: unknown extension hash")
	ErrUnhashableKey    = errors.New("encoder: unhashable dict key")
	ErrVersionMismatch  = errors.New("encoder: protocol version mismatch")
	ErrMalformed        = errors.New("encoder: malformed payload")
)

// UnsupportedTypeError is returned when a value has no built-in encoding
// and no registered extension.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	if e.Type == nil {
		return ErrUnsupportedType.Error()
	}
	return fmt.Sprintf("%s: %s", ErrUnsupportedType, e.Type)
}

func (e *UnsupportedTypeError) Unwrap() error { return ErrUnsupportedType }
