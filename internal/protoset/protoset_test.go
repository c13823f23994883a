package protoset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

var testSources = map[string]string{
	"a.proto": `
syntax = "proto3";
package a;
message A { string name = 1; }
`,
	"b.proto": `
syntax = "proto3";
package b;
import "a.proto";
message B { a.A a = 1; }
`,
}

func TestCompileSources(t *testing.T) {
	fds, err := CompileSources(context.Background(), testSources, "b.proto")
	require.NoError(t, err)
	require.Len(t, fds, 1)
	require.Equal(t, "b.proto", fds[0].Path())
	require.Equal(t, "a.proto", fds[0].Imports().Get(0).Path())
}

func TestCompileFromDisk(t *testing.T) {
	dir := t.TempDir()
	for name, src := range testSources {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0644))
	}
	fds, err := Compile(context.Background(), []string{dir}, "a.proto", "b.proto")
	require.NoError(t, err)
	require.Len(t, fds, 2)
	require.Equal(t, "a.A", string(fds[0].Messages().Get(0).FullName()))

	_, err = Compile(context.Background(), []string{dir}, "missing.proto")
	require.Error(t, err)
}

func TestLoadFiles(t *testing.T) {
	fds, err := CompileSources(context.Background(), testSources, "b.proto")
	require.NoError(t, err)
	set := ToFileDescriptorSet(fds...)
	require.Len(t, set.File, 2)
	require.Equal(t, "a.proto", set.File[0].GetName())
	require.Equal(t, "b.proto", set.File[1].GetName())

	data, err := proto.Marshal(set)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "test.protoset")
	require.NoError(t, os.WriteFile(path, data, 0644))

	loaded, reg, err := LoadFiles(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.Equal(t, "b.proto", loaded[1].Path())

	selected, err := Select(loaded, reg, []string{"b.proto"})
	require.NoError(t, err)
	require.Len(t, selected, 1)
	require.Equal(t, "b.B", string(selected[0].Messages().Get(0).FullName()))

	all, err := Select(loaded, reg, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, err = Select(loaded, reg, []string{"c.proto"})
	require.Error(t, err)
}
