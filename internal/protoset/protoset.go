// Package protoset turns the inputs accepted by the command-line tools into
// linked file descriptors: serialized descriptor sets, proto sources, and
// servers that support gRPC reflection.
package protoset

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/bufbuild/protocompile"
	"github.com/bufbuild/protocompile/linker"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

// LoadFiles loads the compiled protoset file at the given path. It returns the
// file descriptors in the order they appear in the set, along with the
// registry that was used to link them.
func LoadFiles(path string) ([]protoreflect.FileDescriptor, *protoregistry.Files, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	bb, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, err
	}
	return ParseFiles(bb)
}

// ParseFiles is like LoadFiles but takes the serialized set directly.
func ParseFiles(data []byte) ([]protoreflect.FileDescriptor, *protoregistry.Files, error) {
	var fds descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(data, &fds); err != nil {
		return nil, nil, err
	}
	res, err := protodesc.NewFiles(&fds)
	if err != nil {
		return nil, nil, err
	}
	files := make([]protoreflect.FileDescriptor, 0, len(fds.File))
	for _, fdp := range fds.File {
		fd, err := res.FindFileByPath(fdp.GetName())
		if err != nil {
			return nil, nil, fmt.Errorf("descriptor set entry %q: %w", fdp.GetName(), err)
		}
		files = append(files, fd)
	}
	return files, res, nil
}

// Select returns the named files from the given registry, in the order given.
// If no names are given, all of fds is returned.
func Select(fds []protoreflect.FileDescriptor, reg *protoregistry.Files, names []string) ([]protoreflect.FileDescriptor, error) {
	if len(names) == 0 {
		return fds, nil
	}
	selected := make([]protoreflect.FileDescriptor, 0, len(names))
	for _, name := range names {
		fd, err := reg.FindFileByPath(name)
		if err != nil {
			return nil, fmt.Errorf("no descriptor for %q in descriptor set: %w", name, err)
		}
		selected = append(selected, fd)
	}
	return selected, nil
}

// Compile parses and links the given proto source files, which are resolved
// relative to importPaths. Standard imports (such as descriptor.proto) are
// always available.
func Compile(ctx context.Context, importPaths []string, files ...string) ([]protoreflect.FileDescriptor, error) {
	return compile(ctx, &protocompile.SourceResolver{ImportPaths: importPaths}, files)
}

// CompileSources is like Compile, but sources are provided in memory, keyed
// by path.
func CompileSources(ctx context.Context, sources map[string]string, files ...string) ([]protoreflect.FileDescriptor, error) {
	return compile(ctx, &protocompile.SourceResolver{
		Accessor: protocompile.SourceAccessorFromMap(sources),
	}, files)
}

func compile(ctx context.Context, resolver protocompile.Resolver, files []string) ([]protoreflect.FileDescriptor, error) {
	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(resolver),
	}
	res, err := compiler.Compile(ctx, files...)
	if err != nil {
		return nil, err
	}
	return asDescriptors(res), nil
}

func asDescriptors(files linker.Files) []protoreflect.FileDescriptor {
	fds := make([]protoreflect.FileDescriptor, len(files))
	for i, f := range files {
		fds[i] = f
	}
	return fds
}

// ToFileDescriptorSet returns a set containing the given files and all of
// their transitive dependencies, dependencies first.
func ToFileDescriptorSet(fds ...protoreflect.FileDescriptor) *descriptorpb.FileDescriptorSet {
	var set descriptorpb.FileDescriptorSet
	seen := map[string]bool{}
	var add func(fd protoreflect.FileDescriptor)
	add = func(fd protoreflect.FileDescriptor) {
		if seen[fd.Path()] {
			return
		}
		seen[fd.Path()] = true
		imps := fd.Imports()
		for i, length := 0, imps.Len(); i < length; i++ {
			add(imps.Get(i).FileDescriptor)
		}
		set.File = append(set.File, protodesc.ToFileDescriptorProto(fd))
	}
	for _, fd := range fds {
		add(fd)
	}
	return &set
}
