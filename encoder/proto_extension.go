package encoder

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// ProtoExtension encodes protobuf messages of type M with their Protobuf wire format.
// The extension is named after the message's full protobuf name.
type ProtoExtension[M proto.Message] struct{}

func (ProtoExtension[M]) Name() string {
	var m M
	return string(m.ProtoReflect().Descriptor().FullName())
}

func (ProtoExtension[M]) Encode(v any) ([]byte, error) {
	m, ok := v.(M)
	if !ok {
		return nil, fmt.Errorf("encoder: value of type %T is not a %T", v, *new(M))
	}
	return proto.Marshal(m)
}

func (ProtoExtension[M]) Decode(data []byte) (any, error) {
	var zero M
	m := zero.ProtoReflect().New().Interface().(M)
	if err := proto.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("encoder: failed to unmarshal %s: %w", m.ProtoReflect().Descriptor().FullName(), err)
	}
	return m, nil
}

// RegisterProto registers a ProtoExtension for the message type M, usually a pointer
// to a generated struct such as *timestamppb.Timestamp.
func RegisterProto[M proto.Message](e *Encoder) error {
	return Register[M](e, ProtoExtension[M]{})
}

// TimeExtension encodes time.Time values as google.protobuf.Timestamp payloads.
// Decoded times are in UTC; the location and monotonic reading are not kept.
type TimeExtension struct{}

func (TimeExtension) Name() string { return "time.Time" }

func (TimeExtension) Encode(v any) ([]byte, error) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, fmt.Errorf("encoder: value of type %T is not a time.Time", v)
	}
	return proto.Marshal(timestamppb.New(t))
}

func (TimeExtension) Decode(data []byte) (any, error) {
	var ts timestamppb.Timestamp
	if err := proto.Unmarshal(data, &ts); err != nil {
		return nil, fmt.Errorf("encoder: failed to unmarshal time: %w", err)
	}
	if err := ts.CheckValid(); err != nil {
		return nil, fmt.Errorf("encoder: invalid time: %w", err)
	}
	return ts.AsTime(), nil
}
