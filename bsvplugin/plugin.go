// Package bsvplugin implements the protoc plugin protocol for the BSV
// descriptor generator. A request names the files to generate and carries the
// descriptors of those files and all of their dependencies; the response holds
// one artifact per generated file.
//
// The request parameter is a comma-separated list of options:
//
//	indent=<n>       indent nested values with n > 0 spaces (default 4)
//	compact          write each module on a single line
//	sentinel=<Name>  name of the sentinel message to leave out (default Empty)
//	omit_serialized  leave out the serialized file descriptor
package bsvplugin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"

	"github.com/protobsv/protobsv/bsvname"
	"github.com/protobsv/protobsv/bsvprint"
	"github.com/protobsv/protobsv/protodescs"
)

// ErrUnsupportedSyntax is reported for files that use neither proto2 nor
// proto3 syntax.
var ErrUnsupportedSyntax = errors.New("unsupported syntax")

// Option configures how Generate works.
type Option func(*generator)

// WithPrinter sets the printer used for generation. Options given in the
// request parameter are applied on top of it.
func WithPrinter(p bsvprint.Printer) Option {
	return func(g *generator) {
		g.printer = p
	}
}

// WithParallelism limits how many files are generated at the same time. A
// value less than one means no limit.
func WithParallelism(n int) Option {
	return func(g *generator) {
		g.parallelism = n
	}
}

type generator struct {
	printer     bsvprint.Printer
	parallelism int
}

// Generate processes the given request and returns the response to send back
// to protoc. Problems with the request or with generating code are reported
// via the response's error field, in which case it contains no files.
func Generate(ctx context.Context, req *pluginpb.CodeGeneratorRequest, opts ...Option) *pluginpb.CodeGeneratorResponse {
	var g generator
	for _, opt := range opts {
		opt(&g)
	}
	files, err := g.generate(ctx, req)
	if err != nil {
		return &pluginpb.CodeGeneratorResponse{
			Error: proto.String(err.Error()),
		}
	}
	return &pluginpb.CodeGeneratorResponse{
		SupportedFeatures: proto.Uint64(uint64(pluginpb.CodeGeneratorResponse_FEATURE_PROTO3_OPTIONAL)),
		File:              files,
	}
}

func (g *generator) generate(ctx context.Context, req *pluginpb.CodeGeneratorRequest) ([]*pluginpb.CodeGeneratorResponse_File, error) {
	printer := g.printer
	if err := ParseParameter(req.GetParameter(), &printer); err != nil {
		return nil, err
	}

	reg, err := protodesc.NewFiles(&descriptorpb.FileDescriptorSet{File: req.GetProtoFile()})
	if err != nil {
		return nil, err
	}
	fds := make([]protoreflect.FileDescriptor, len(req.GetFileToGenerate()))
	for i, name := range req.GetFileToGenerate() {
		fd, err := reg.FindFileByPath(name)
		if err != nil {
			if errors.Is(err, protoregistry.NotFound) {
				return nil, fmt.Errorf("no descriptor for generated file: %v", name)
			}
			return nil, err
		}
		if !protodescs.IsSupported(fd) {
			return nil, fmt.Errorf("%s: %w %v", name, ErrUnsupportedSyntax, fd.Syntax())
		}
		fds[i] = fd
	}

	results := make([]*pluginpb.CodeGeneratorResponse_File, len(fds))
	grp, ctx := errgroup.WithContext(ctx)
	if g.parallelism > 0 {
		grp.SetLimit(g.parallelism)
	}
	for i, fd := range fds {
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := printer.PrintBSVFile(fd, &buf); err != nil {
				return fmt.Errorf("%s: %w", fd.Path(), err)
			}
			results[i] = &pluginpb.CodeGeneratorResponse_File{
				Name:    proto.String(bsvname.OutputFilename(fd.Path())),
				Content: proto.String(buf.String()),
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ParseParameter applies the options in the given plugin parameter string to
// p. Unknown options are an error.
func ParseParameter(param string, p *bsvprint.Printer) error {
	if param == "" {
		return nil
	}
	for _, opt := range strings.Split(param, ",") {
		key, val, hasVal := strings.Cut(strings.TrimSpace(opt), "=")
		switch key {
		case "indent":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 {
				return fmt.Errorf("invalid value for indent: %q", val)
			}
			p.Indent = strings.Repeat(" ", n)
		case "compact":
			if hasVal {
				return fmt.Errorf("option compact does not take a value")
			}
			p.Compact = true
		case "sentinel":
			if !protoreflect.Name(val).IsValid() {
				return fmt.Errorf("invalid value for sentinel: %q", val)
			}
			p.SentinelName = protoreflect.Name(val)
		case "omit_serialized":
			if hasVal {
				return fmt.Errorf("option omit_serialized does not take a value")
			}
			p.OmitSerialized = true
		case "":
			// tolerate stray commas
		default:
			return fmt.Errorf("unknown option: %q", key)
		}
	}
	return nil
}
