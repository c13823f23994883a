// Package protodescs contains helpers that inspect linked descriptors on behalf
// of the generator: the syntax a file is declared with and the location of a
// descriptor's encoding within the encoding of its file.
package protodescs

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// SyntaxName returns "proto2" or "proto3" for the given file.
//
// It panics for any other syntax, including editions. Generated modules have
// no representation for edition features, so such files must be rejected
// before generation starts.
func SyntaxName(fd protoreflect.FileDescriptor) string {
	switch fd.Syntax() {
	case protoreflect.Proto2:
		return "proto2"
	case protoreflect.Proto3:
		return "proto3"
	}
	panic(fmt.Sprintf("protodescs: %s: unsupported syntax %v; only proto2 and proto3 are supported", fd.Path(), fd.Syntax()))
}

// IsSupported reports whether SyntaxName accepts the given file.
func IsSupported(fd protoreflect.FileDescriptor) bool {
	syn := fd.Syntax()
	return syn == protoreflect.Proto2 || syn == protoreflect.Proto3
}
