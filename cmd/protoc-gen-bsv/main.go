// Command protoc-gen-bsv is a protoc plugin that generates BSV descriptor
// modules. Run protoc with --bsv_out=<dir> (and optionally
// --bsv_opt=compact,sentinel=Nothing) to use it; see package bsvplugin for the
// accepted options.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/pluginpb"

	"github.com/protobsv/protobsv/bsvplugin"
)

func main() {
	if err := run(context.Background(), os.Stdin, os.Stdout); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "protoc-gen-bsv: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, in io.Reader, out io.Writer) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	var req pluginpb.CodeGeneratorRequest
	if err := proto.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("parsing input proto: %w", err)
	}

	resp := bsvplugin.Generate(ctx, &req)

	data, err = proto.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal output proto: %w", err)
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("failed to write output proto: %w", err)
	}
	return nil
}
