package protoset

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	refv1 "google.golang.org/grpc/reflection/grpc_reflection_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

// ErrNotFound is returned by Download when the server does not know a
// requested file or one of its dependencies.
var ErrNotFound = errors.New("not found on server")

const reflectionServiceName = "grpc.reflection.v1.ServerReflection"

// Download fetches the named files, and everything they import, from a
// server that supports gRPC reflection (v1). If no names are given, it
// fetches the files that declare the services the server exposes, except the
// reflection service itself, in the order the server lists them.
//
// The returned files are linked against each other, so they are ready to be
// generated. All requests share a single stream, which is closed before
// Download returns.
func Download(ctx context.Context, cc grpc.ClientConnInterface, names ...string) ([]protoreflect.FileDescriptor, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stream, err := refv1.NewServerReflectionClient(cc).ServerReflectionInfo(ctx)
	if err != nil {
		return nil, err
	}
	d := &downloader{
		stream: stream,
		protos: map[string]*descriptorpb.FileDescriptorProto{},
	}
	defer func() {
		_ = stream.CloseSend()
	}()

	var roots []string
	if len(names) == 0 {
		roots, err = d.serviceFiles()
	} else {
		roots, err = d.files(names)
	}
	if err != nil {
		return nil, err
	}
	if err := d.closeOver(); err != nil {
		return nil, err
	}
	return d.link(roots)
}

// downloader accumulates the file descriptor protos sent on one reflection
// stream.
type downloader struct {
	stream refv1.ServerReflection_ServerReflectionInfoClient
	protos map[string]*descriptorpb.FileDescriptorProto
	// order in which protos arrived, for a stable set
	order []string
}

func (d *downloader) roundTrip(req *refv1.ServerReflectionRequest) (*refv1.ServerReflectionResponse, error) {
	if err := d.stream.Send(req); err != nil {
		return nil, err
	}
	resp, err := d.stream.Recv()
	if err != nil {
		return nil, err
	}
	if errResp := resp.GetErrorResponse(); errResp != nil {
		return nil, status.Error(codes.Code(errResp.ErrorCode), errResp.ErrorMessage)
	}
	return resp, nil
}

// fetch sends a request for file descriptors and records every file in the
// response. The server puts the file that answers the request first.
func (d *downloader) fetch(req *refv1.ServerReflectionRequest, what string) (string, error) {
	resp, err := d.roundTrip(req)
	if status.Code(err) == codes.NotFound {
		return "", fmt.Errorf("%s: %w", what, ErrNotFound)
	} else if err != nil {
		return "", fmt.Errorf("%s: %w", what, err)
	}
	fdResp := resp.GetFileDescriptorResponse()
	if fdResp == nil || len(fdResp.FileDescriptorProto) == 0 {
		return "", fmt.Errorf("%s: server sent no file descriptors", what)
	}
	var answer string
	for i, data := range fdResp.FileDescriptorProto {
		fdp := &descriptorpb.FileDescriptorProto{}
		if err := proto.Unmarshal(data, fdp); err != nil {
			return "", fmt.Errorf("%s: %w", what, err)
		}
		if i == 0 {
			answer = fdp.GetName()
		}
		if _, ok := d.protos[fdp.GetName()]; !ok {
			d.protos[fdp.GetName()] = fdp
			d.order = append(d.order, fdp.GetName())
		}
	}
	return answer, nil
}

func (d *downloader) fetchFile(name string) error {
	if _, ok := d.protos[name]; ok {
		return nil
	}
	_, err := d.fetch(&refv1.ServerReflectionRequest{
		MessageRequest: &refv1.ServerReflectionRequest_FileByFilename{FileByFilename: name},
	}, "file "+name)
	return err
}

func (d *downloader) files(names []string) ([]string, error) {
	for _, name := range names {
		if err := d.fetchFile(name); err != nil {
			return nil, err
		}
	}
	return names, nil
}

func (d *downloader) serviceFiles() ([]string, error) {
	resp, err := d.roundTrip(&refv1.ServerReflectionRequest{
		MessageRequest: &refv1.ServerReflectionRequest_ListServices{ListServices: "*"},
	})
	if err != nil {
		return nil, fmt.Errorf("listing services: %w", err)
	}
	listResp := resp.GetListServicesResponse()
	if listResp == nil {
		return nil, errors.New("listing services: server sent no service list")
	}
	var roots []string
	seen := map[string]bool{}
	for _, svc := range listResp.Service {
		if svc.Name == reflectionServiceName {
			continue
		}
		file, err := d.fetch(&refv1.ServerReflectionRequest{
			MessageRequest: &refv1.ServerReflectionRequest_FileContainingSymbol{FileContainingSymbol: svc.Name},
		}, "service "+svc.Name)
		if err != nil {
			return nil, err
		}
		if !seen[file] {
			seen[file] = true
			roots = append(roots, file)
		}
	}
	return roots, nil
}

// closeOver fetches any dependency the server left out because it was sent
// earlier on the stream or because it was never asked for.
func (d *downloader) closeOver() error {
	for i := 0; i < len(d.order); i++ {
		for _, dep := range d.protos[d.order[i]].GetDependency() {
			if err := d.fetchFile(dep); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *downloader) link(roots []string) ([]protoreflect.FileDescriptor, error) {
	set := &descriptorpb.FileDescriptorSet{File: make([]*descriptorpb.FileDescriptorProto, 0, len(d.order))}
	for _, name := range d.order {
		set.File = append(set.File, d.protos[name])
	}
	reg, err := protodesc.NewFiles(set)
	if err != nil {
		return nil, err
	}
	fds := make([]protoreflect.FileDescriptor, len(roots))
	for i, name := range roots {
		if fds[i], err = reg.FindFileByPath(name); err != nil {
			return nil, err
		}
	}
	return fds, nil
}
