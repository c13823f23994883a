// Package internal contains some code that should not be exported but needs to
// be shared across more than one of the protobsv sub-packages.
package internal

const (
	// DescriptorProtoPath is the path of the file that describes descriptors
	// themselves. Generating it must not embed its own options.
	DescriptorProtoPath = "google/protobuf/descriptor.proto"

	// DefaultSentinelName is the name of the well-known "no payload" message
	// that is left out of generated output.
	DefaultSentinelName = "Empty"

	// DescriptorKey is the name bound to the file-level descriptor in the
	// generated module.
	DescriptorKey = "DESCRIPTOR"

	// None is the absence marker understood by the consuming runtime.
	None = "None"
)
