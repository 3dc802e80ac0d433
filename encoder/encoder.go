package encoder

import (
	"reflect"

	"go.uber.org/zap"
)

const (
	DefaultMaxDepth   = 512
	defaultBufferSize = 256
)

// Option configures an Encoder.
type Option func(*Encoder)

// WithMaxDepth sets the maximum container nesting accepted by Encode and Decode.
func WithMaxDepth(depth int) Option {
	return func(e *Encoder) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// WithLogger sets the logger used for registration events.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Encoder) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithBufferSize sets the initial capacity of each per-call buffer.
func WithBufferSize(size int) Option {
	return func(e *Encoder) {
		if size > 0 {
			e.bufferSize = size
		}
	}
}

// Encoder converts in-memory values into self-describing byte sequences.
//
// Extensions should be registered before encoding starts. Once configured,
// an Encoder is safe for concurrent use: every call owns its own buffer.
type Encoder struct {
	registry   *registry
	maxDepth   int
	bufferSize int
	logger     *zap.Logger
}

// New creates a new Encoder.
func New(opts ...Option) *Encoder {
	e := &Encoder{
		maxDepth:   DefaultMaxDepth,
		bufferSize: defaultBufferSize,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.registry = newRegistry(e.logger)
	return e
}

// RegisterExtension associates ext with values whose runtime type is exactly sourceType.
//
// Registering a type or an extension that is already registered is a no-op.
// ErrDuplicateExtensionHash is returned if the name of ext hashes to the same
// value as a different registered extension.
func (e *Encoder) RegisterExtension(sourceType reflect.Type, ext Extension) error {
	return e.registry.register(sourceType, ext)
}

// Register is a typed form of RegisterExtension for values of type T.
func Register[T any](e *Encoder, ext Extension) error {
	return e.RegisterExtension(reflect.TypeFor[T](), ext)
}

// Encode writes the protocol header followed by the tagged encoding of v.
// The returned slice is owned by the caller.
func (e *Encoder) Encode(v any) ([]byte, error) {
	w := e.NewWriter()
	w.WriteHeader()
	if err := w.WriteValue(v); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// NewWriter returns an empty Writer that shares the encoder's extensions and limits.
// No protocol header is written.
func (e *Encoder) NewWriter() *Writer {
	return &Writer{
		buf: newBuffer(e.bufferSize),
		enc: e,
	}
}
