// Package bsvprint generates BSV descriptor modules from protobuf descriptors.
//
// A generated module is a JSON document that describes the messages, enums,
// extensions, and services of one proto file so that a BSV runtime can
// reconstruct the descriptors without parsing proto source. Every name that a
// definition refers to is defined earlier in the document, so nested types
// always appear before the types that enclose them.
//
// Descriptor options are not expanded. They are embedded in their serialized
// form and applied in a final fix-up section, after every descriptor they
// refer to has been defined.
package bsvprint
