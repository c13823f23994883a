package bsvname

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protobsv/protobsv/internal/protoset"
)

func TestModuleName(t *testing.T) {
	testCases := map[string]string{
		"foo.proto":                        "foo_pb",
		"foo/bar.proto":                    "foo.bar_pb",
		"foo/bar-baz.proto":                "foo.bar_baz_pb",
		"foo/bar.protodevel":               "foo.bar_pb",
		"google/protobuf/descriptor.proto": "google.protobuf.descriptor_pb",
		"noext":                            "noext_pb",
	}
	for in, out := range testCases {
		require.Equal(t, out, ModuleName(in), "input %q", in)
	}
}

func TestModuleAlias(t *testing.T) {
	require.Equal(t, "foo__pb", ModuleAlias("foo.proto"))
	require.Equal(t, "foo_dot_bar__pb", ModuleAlias("foo/bar.proto"))
	require.Equal(t, "foo_dot_bar__baz__pb", ModuleAlias("foo/bar_baz.proto"))
	require.Equal(t, "a__dot__b__pb", ModuleAlias("a_dot_b.proto"))
}

func TestModuleAlias_Injective(t *testing.T) {
	files := []string{
		"a/b.proto",
		"a_dot_b.proto",
		"a__dot__b.proto",
		"a/b/c.proto",
		"a/b_c.proto",
		"a_b/c.proto",
		"a_/b.proto",
		"a/_b.proto",
		"a.proto",
		"a_.proto",
		"_a.proto",
		"a__pb.proto",
		"a/dot/b.proto",
		"a_dot/b.proto",
	}
	aliases := map[string]string{}
	for _, f := range files {
		mod := ModuleName(f)
		alias := ModuleAlias(f)
		if prev, ok := aliases[alias]; ok {
			require.Equal(t, ModuleName(prev), mod, "%q and %q share alias %q", prev, f, alias)
		}
		aliases[alias] = f
	}
	require.Len(t, aliases, len(files))
}

func TestModuleImportStatement(t *testing.T) {
	require.Equal(t, "import foo_pb", ModuleImportStatement("foo.proto"))
	require.Equal(t, "from foo import bar_pb", ModuleImportStatement("foo/bar.proto"))
	require.Equal(t, "from a.b import c_d_pb", ModuleImportStatement("a/b/c-d.proto"))
	require.Equal(t, "from a.b.c_pb import *", WildcardImportStatement("a/b/c.proto"))
}

func TestOutputFilename(t *testing.T) {
	require.Equal(t, "foo_pb.json", OutputFilename("foo.proto"))
	require.Equal(t, "foo/bar_pb.json", OutputFilename("foo/bar.proto"))
	require.Equal(t, "foo/bar_baz_pb.json", OutputFilename("foo/bar-baz.proto"))
}

func TestDescriptorNames(t *testing.T) {
	sources := map[string]string{
		"dep/other.proto": `
syntax = "proto2";
package dep;
message Remote {
  message Inner {}
  enum Kind { K = 0; }
}
`,
		"test.proto": `
syntax = "proto2";
package test;
import "dep/other.proto";
message Outer {
  message Middle {
    message Inner {
      enum Color { RED = 0; }
    }
  }
  optional dep.Remote.Inner remote = 1;
  optional dep.Remote.Kind kind = 2;
  extend Outer { optional int32 ext_num = 100; }
  extensions 100 to 200;
}
service Svc {
  rpc Do (Outer) returns (Outer);
}
`,
	}
	fds, err := protoset.CompileSources(context.Background(), sources, "test.proto")
	require.NoError(t, err)
	fd := fds[0]
	r := NewResolver(fd)

	outer := fd.Messages().ByName("Outer")
	middle := outer.Messages().ByName("Middle")
	inner := middle.Messages().ByName("Inner")
	color := inner.Enums().ByName("Color")

	require.Equal(t, "Outer.Middle.Inner", NestedName(inner, "."))
	require.Equal(t, "_OUTER", r.DescriptorName(outer))
	require.Equal(t, "_OUTER_MIDDLE_INNER", r.DescriptorName(inner))
	require.Equal(t, "_OUTER_MIDDLE_INNER_COLOR", r.DescriptorName(color))
	require.Equal(t, "_SVC", r.DescriptorName(fd.Services().ByName("Svc")))
	require.True(t, r.IsLocal(inner))

	remote := outer.Fields().ByName("remote").Message()
	require.False(t, r.IsLocal(remote))
	require.Equal(t, "dep_dot_other__pb._REMOTE_INNER", r.DescriptorName(remote))
	kind := outer.Fields().ByName("kind").Enum()
	require.Equal(t, "dep_dot_other__pb._REMOTE_KIND", r.DescriptorName(kind))

	// resolving from the declaring file drops the qualifier
	depResolver := NewResolver(remote.ParentFile())
	require.Equal(t, "_REMOTE_INNER", depResolver.DescriptorName(remote))

	ext := outer.Extensions().ByName("ext_num")
	require.Equal(t, "EXT_NUM_FIELD_NUMBER", FieldNumberConstant(ext))
}

func TestDescriptorName_FlattenedCollision(t *testing.T) {
	// Nested names are flattened with underscores, so these two distinct
	// messages map to the same identifier.
	sources := map[string]string{"test.proto": `
syntax = "proto3";
message A { message B {} }
message A_B {}
`}
	fds, err := protoset.CompileSources(context.Background(), sources, "test.proto")
	require.NoError(t, err)
	r := NewResolver(fds[0])
	nested := fds[0].Messages().ByName("A").Messages().ByName("B")
	flat := fds[0].Messages().ByName("A_B")
	require.NotEqual(t, nested.FullName(), flat.FullName())
	require.Equal(t, r.DescriptorName(nested), r.DescriptorName(flat))
}
