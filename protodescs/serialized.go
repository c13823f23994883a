package protodescs

import (
	"bytes"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
)

var deterministic = proto.MarshalOptions{Deterministic: true}

// FileBytes returns the deterministic encoding of the given file's descriptor
// proto, without source code info.
func FileBytes(fd protoreflect.FileDescriptor) []byte {
	fdp := protodesc.ToFileDescriptorProto(fd)
	fdp.SourceCodeInfo = nil
	data, err := deterministic.Marshal(fdp)
	if err != nil {
		panic(fmt.Sprintf("protodescs: failed to marshal %s: %v", fd.Path(), err))
	}
	return data
}

// MessageInterval returns the offsets, within fileBytes, of the encoding of
// the given message's descriptor proto. The end offset is exclusive. If the
// same encoding occurs more than once, the first occurrence is reported.
//
// fileBytes must have been produced by FileBytes for the file that declares
// md. It panics if the message's encoding cannot be found, since that means
// the two encodings disagree.
func MessageInterval(fileBytes []byte, md protoreflect.MessageDescriptor) (start, end int) {
	data, err := deterministic.Marshal(protodesc.ToDescriptorProto(md))
	if err != nil {
		panic(fmt.Sprintf("protodescs: failed to marshal %s: %v", md.FullName(), err))
	}
	offset := bytes.Index(fileBytes, data)
	if offset < 0 {
		panic(fmt.Sprintf("protodescs: encoding of %s not found in encoding of %s", md.FullName(), md.ParentFile().Path()))
	}
	return offset, offset + len(data)
}
