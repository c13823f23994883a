// Package optionval renders descriptor options as expressions that the
// consuming runtime parses lazily. Options are never expanded into literal
// fields: the options schema may be newer than the runtime reading it, so the
// serialized bytes are embedded as-is together with the name of their type.
package optionval

import (
	"fmt"

	"google.golang.org/protobuf/proto"

	"github.com/protobsv/protobsv/internal"
)

// Serialize returns the deterministic binary encoding of opts. A nil or empty
// options message yields no bytes.
//
// It panics if the options cannot be marshalled, since that means the
// descriptor itself is invalid.
func Serialize(opts proto.Message) []byte {
	if opts == nil || proto.Size(opts) == 0 {
		return nil
	}
	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(opts)
	if err != nil {
		panic(fmt.Sprintf("optionval: failed to marshal %T: %v", opts, err))
	}
	return data
}

// Value returns an expression that parses the given serialized options as a
// message of type className at runtime, or None if there are no options. The
// file that defines descriptors themselves (selfDescribing) never carries
// options, which would otherwise describe themselves circularly.
func Value(className string, serialized []byte, selfDescribing bool) string {
	if len(serialized) == 0 || selfDescribing {
		return internal.None
	}
	return "_descriptor._ParseOptions(descriptor_pb2." + className + "(), " +
		internal.BytesLiteral(serialized, '\'') + ")"
}

// Of serializes opts and returns the corresponding expression, naming the
// options message type after its descriptor (FieldOptions, MessageOptions,
// and so on).
func Of(opts proto.Message, selfDescribing bool) string {
	serialized := Serialize(opts)
	if len(serialized) == 0 {
		return internal.None
	}
	return Value(string(opts.ProtoReflect().Descriptor().Name()), serialized, selfDescribing)
}
