// Package bsvname derives the names used in generated BSV descriptor modules:
// module names and aliases for proto files, import statements, and the
// module-level identifiers bound to descriptors.
//
// Every function here is pure. A [Resolver] only remembers which file is being
// generated so it can decide when a name must be qualified by the alias of
// the file that declares it.
package bsvname

import (
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"
)

const (
	// ModuleSuffix is appended to every module name.
	ModuleSuffix = "_pb"
	// OutputExtension is the extension of generated artifacts.
	OutputExtension = ".json"
	// FieldNumberSuffix is appended to extension field-number constants.
	FieldNumberSuffix = "_FIELD_NUMBER"

	aliasDot = "_dot_"
)

// StripProto returns filename with any trailing ".protodevel" or ".proto"
// suffix removed.
func StripProto(filename string) string {
	if strings.HasSuffix(filename, ".protodevel") {
		return strings.TrimSuffix(filename, ".protodevel")
	}
	return strings.TrimSuffix(filename, ".proto")
}

// ModuleName returns the module name for the given proto file name. Dashes
// become underscores and path separators become dots, so "foo/bar-baz.proto"
// is "foo.bar_baz_pb".
func ModuleName(filename string) string {
	basename := StripProto(filename)
	basename = strings.ReplaceAll(basename, "-", "_")
	basename = strings.ReplaceAll(basename, "/", ".")
	return basename + ModuleSuffix
}

// ModuleAlias returns the identifier under which the module for the given
// proto file is imported. Dots are not allowed in the alias, so each becomes
// "_dot_". Underscores already present are doubled first, which keeps "a.b"
// and "a_dot_b" from colliding.
func ModuleAlias(filename string) string {
	moduleName := ModuleName(filename)
	moduleName = strings.ReplaceAll(moduleName, "_", "__")
	return strings.ReplaceAll(moduleName, ".", aliasDot)
}

// ModuleImportStatement returns an import statement of the form
// "from X.Y import Z" for the given proto file name, or "import Z" if the
// module is not inside a package.
func ModuleImportStatement(filename string) string {
	moduleName := ModuleName(filename)
	pos := strings.LastIndexByte(moduleName, '.')
	if pos < 0 {
		return "import " + moduleName
	}
	return "from " + moduleName[:pos] + " import " + moduleName[pos+1:]
}

// WildcardImportStatement returns a statement that makes every symbol of the
// module for the given proto file visible unqualified.
func WildcardImportStatement(filename string) string {
	return "from " + ModuleName(filename) + " import *"
}

// OutputFilename returns the name of the artifact generated for the given
// proto file: "foo/bar.proto" is written to "foo/bar_pb.json".
func OutputFilename(filename string) string {
	return strings.ReplaceAll(ModuleName(filename), ".", "/") + OutputExtension
}

// FieldNumberConstant returns the name of the constant bound to the number of
// the given extension field.
func FieldNumberConstant(fld protoreflect.FieldDescriptor) string {
	return strings.ToUpper(string(fld.Name()) + FieldNumberSuffix)
}

// NestedName returns the names of all messages enclosing d, from outermost to
// innermost, followed by d's own name, each separated by sep.
func NestedName(d protoreflect.Descriptor, sep string) string {
	name := string(d.Name())
	for parent := d.Parent(); parent != nil; parent = parent.Parent() {
		md, ok := parent.(protoreflect.MessageDescriptor)
		if !ok {
			break
		}
		name = string(md.Name()) + sep + name
	}
	return name
}

// Resolver computes module-level identifiers relative to the file currently
// being generated.
type Resolver struct {
	file string
}

// NewResolver returns a resolver for names referenced from the given file.
func NewResolver(file protoreflect.FileDescriptor) Resolver {
	return Resolver{file: file.Path()}
}

// IsLocal reports whether d is declared in the file being generated.
func (r Resolver) IsLocal(d protoreflect.Descriptor) bool {
	return d.ParentFile().Path() == r.file
}

// DescriptorName returns the module-level identifier bound to the given
// message, enum, or service descriptor. It is qualified with the alias of the
// declaring module if d comes from a different file.
//
// Nested names are flattened with underscores, so "Outer.Inner" and a
// top-level "Outer_Inner" produce the same identifier. Callers that need
// unique identifiers must check for that themselves.
func (r Resolver) DescriptorName(d protoreflect.Descriptor) string {
	name := "_" + strings.ToUpper(NestedName(d, "_"))
	return r.qualify(d, name)
}

func (r Resolver) qualify(d protoreflect.Descriptor, name string) string {
	if r.IsLocal(d) {
		return name
	}
	return ModuleAlias(d.ParentFile().Path()) + "." + name
}
