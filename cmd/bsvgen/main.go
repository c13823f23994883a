// Command bsvgen generates BSV descriptor modules without protoc. Inputs are
// proto sources, a serialized FileDescriptorSet, or a running gRPC server that
// supports reflection.
//
//	bsvgen -I protos -o out foo/bar.proto
//	bsvgen --descriptor_set_in=all.protoset -o out foo/bar.proto
//	bsvgen --reflect=localhost:8080 -o out
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/protobsv/protobsv/bsvname"
	"github.com/protobsv/protobsv/bsvprint"
	"github.com/protobsv/protobsv/internal/protoset"
	"github.com/protobsv/protobsv/protodescs"
)

var errNoInputs = errors.New("no input files; name at least one file or use --reflect")

type options struct {
	protoPaths     []string
	descriptorSet  string
	reflectAddr    string
	outDir         string
	compact        bool
	indent         int
	sentinel       string
	omitSerialized bool
	parallelism    int
	verbose        bool
}

func addFlags(fs *pflag.FlagSet, o *options) {
	fs.StringArrayVarP(&o.protoPaths, "proto_path", "I", nil,
		"directory in which to search for imports (may be repeated; default is the current directory)")
	fs.StringVar(&o.descriptorSet, "descriptor_set_in", "",
		"read descriptors from this serialized FileDescriptorSet instead of compiling sources")
	fs.StringVar(&o.reflectAddr, "reflect", "",
		"download descriptors from the gRPC server at this address using server reflection")
	fs.StringVarP(&o.outDir, "out", "o", ".", "directory in which to write generated modules")
	fs.BoolVar(&o.compact, "compact", false, "write each module on a single line")
	fs.IntVar(&o.indent, "indent", 4, "number of spaces to indent nested values with")
	fs.StringVar(&o.sentinel, "sentinel", "", "name of the sentinel message to leave out (default \"Empty\")")
	fs.BoolVar(&o.omitSerialized, "omit-serialized", false, "leave out the serialized file descriptor")
	fs.IntVarP(&o.parallelism, "jobs", "j", 0, "maximum number of files to generate at once (0 means no limit)")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "log each generated file")
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "bsvgen [flags] FILE...",
		Short: "generate BSV descriptor modules from proto files",
		Long: `bsvgen writes one BSV descriptor module per named proto file.

Files are compiled from sources found in the --proto_path directories,
unless --descriptor_set_in or --reflect is given. With --reflect and no
files, every file that declares a service the server exposes is generated.
`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return run(cmd.Context(), logger, &opts, args)
		},
	}
	addFlags(cmd.Flags(), &opts)
	return cmd
}

func run(ctx context.Context, logger *slog.Logger, opts *options, files []string) error {
	printer, err := opts.printer()
	if err != nil {
		return err
	}
	fds, err := loadFiles(ctx, logger, opts, files)
	if err != nil {
		return err
	}
	for _, fd := range fds {
		if !protodescs.IsSupported(fd) {
			return fmt.Errorf("%s: unsupported syntax %v", fd.Path(), fd.Syntax())
		}
	}

	grp, ctx := errgroup.WithContext(ctx)
	if opts.parallelism > 0 {
		grp.SetLimit(opts.parallelism)
	}
	for _, fd := range fds {
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := printer.PrintBSVToFileSystem([]protoreflect.FileDescriptor{fd}, opts.outDir); err != nil {
				return err
			}
			logger.Debug("generated module", "source", fd.Path(), "output", bsvname.OutputFilename(fd.Path()))
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return err
	}
	logger.Info("generation complete", "files", len(fds), "out", opts.outDir)
	return nil
}

func (o *options) printer() (*bsvprint.Printer, error) {
	if o.indent < 1 {
		return nil, fmt.Errorf("invalid value for --indent: %d", o.indent)
	}
	p := &bsvprint.Printer{
		Indent:         strings.Repeat(" ", o.indent),
		Compact:        o.compact,
		OmitSerialized: o.omitSerialized,
	}
	if o.sentinel != "" {
		name := protoreflect.Name(o.sentinel)
		if !name.IsValid() {
			return nil, fmt.Errorf("invalid value for --sentinel: %q", o.sentinel)
		}
		p.SentinelName = name
	}
	return p, nil
}

func loadFiles(ctx context.Context, logger *slog.Logger, opts *options, files []string) ([]protoreflect.FileDescriptor, error) {
	switch {
	case opts.reflectAddr != "" && opts.descriptorSet != "":
		return nil, errors.New("--reflect and --descriptor_set_in cannot be used together")
	case opts.reflectAddr != "":
		return loadFromServer(ctx, logger, opts.reflectAddr, files)
	case len(files) == 0:
		return nil, errNoInputs
	case opts.descriptorSet != "":
		logger.Debug("loading descriptor set", "path", opts.descriptorSet)
		all, reg, err := protoset.LoadFiles(opts.descriptorSet)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", opts.descriptorSet, err)
		}
		return protoset.Select(all, reg, files)
	default:
		importPaths := opts.protoPaths
		if len(importPaths) == 0 {
			importPaths = []string{"."}
		}
		logger.Debug("compiling sources", "files", files, "proto_path", importPaths)
		return protoset.Compile(ctx, importPaths, files...)
	}
}

func loadFromServer(ctx context.Context, logger *slog.Logger, addr string, files []string) ([]protoreflect.FileDescriptor, error) {
	cc, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer func() {
		_ = cc.Close()
	}()
	logger.Debug("downloading descriptors", "server", addr)
	return protoset.Download(ctx, cc, files...)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
