package bsvprint

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/protobsv/protobsv/internal"
)

// optionFixes returns the assignments that attach options to descriptors, in
// this order: the file, top-level enums (each followed by its values),
// top-level extensions, then messages. Descriptors without options are
// skipped.
func (c *genContext) optionFixes() []optionFix {
	fixes := []optionFix{}
	fixes = c.appendFix(fixes, internal.DescriptorKey, c.file.Options())

	enums := c.file.Enums()
	for i, length := 0, enums.Len(); i < length; i++ {
		fixes = c.appendEnumFixes(fixes, enums.Get(i))
	}
	exts := c.file.Extensions()
	for i, length := 0, exts.Len(); i < length; i++ {
		fixes = c.appendFieldFix(fixes, exts.Get(i))
	}
	msgs := c.file.Messages()
	for i, length := 0, msgs.Len(); i < length; i++ {
		fixes = c.appendMessageFixes(fixes, msgs.Get(i))
	}
	return fixes
}

func (c *genContext) appendFix(fixes []optionFix, target string, opts protoreflect.ProtoMessage) []optionFix {
	val := c.options(opts)
	if val == internal.None {
		return fixes
	}
	return append(fixes, optionFix{Target: target, Value: val})
}

func (c *genContext) appendEnumFixes(fixes []optionFix, ed protoreflect.EnumDescriptor) []optionFix {
	name := c.names.DescriptorName(ed)
	fixes = c.appendFix(fixes, name, ed.Options())
	vals := ed.Values()
	for i, length := 0, vals.Len(); i < length; i++ {
		v := vals.Get(i)
		fixes = c.appendFix(fixes, fmt.Sprintf("%s.values_by_name[%q]", name, v.Name()), v.Options())
	}
	return fixes
}

func (c *genContext) appendFieldFix(fixes []optionFix, fld protoreflect.FieldDescriptor) []optionFix {
	return c.appendFix(fixes, c.fieldReference(fld), fld.Options())
}

// fieldReference returns the expression that refers to the given field's
// descriptor. Top-level extensions are bound by name; other fields are
// looked up in the message that declares them.
func (c *genContext) fieldReference(fld protoreflect.FieldDescriptor) string {
	if fld.IsExtension() {
		scope, ok := fld.Parent().(protoreflect.MessageDescriptor)
		if !ok {
			return string(fld.Name())
		}
		return fmt.Sprintf("%s.extensions_by_name['%s']", c.names.DescriptorName(scope), fld.Name())
	}
	return fmt.Sprintf("%s.fields_by_name['%s']", c.names.DescriptorName(fld.ContainingMessage()), fld.Name())
}

// appendMessageFixes handles nested messages, then enums, fields, and
// extensions declared in md, and finally md itself. Sentinel messages only
// contribute the enums declared inside them, since those are still defined.
func (c *genContext) appendMessageFixes(fixes []optionFix, md protoreflect.MessageDescriptor) []optionFix {
	msgs := md.Messages()
	for i, length := 0, msgs.Len(); i < length; i++ {
		fixes = c.appendMessageFixes(fixes, msgs.Get(i))
	}
	enums := md.Enums()
	for i, length := 0, enums.Len(); i < length; i++ {
		fixes = c.appendEnumFixes(fixes, enums.Get(i))
	}
	if c.isElided(md) {
		return fixes
	}
	fields := md.Fields()
	for i, length := 0, fields.Len(); i < length; i++ {
		fixes = c.appendFieldFix(fixes, fields.Get(i))
	}
	exts := md.Extensions()
	for i, length := 0, exts.Len(); i < length; i++ {
		fixes = c.appendFieldFix(fixes, exts.Get(i))
	}
	return c.appendFix(fixes, c.names.DescriptorName(md), md.Options())
}
