package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/pluginpb"

	"github.com/protobsv/protobsv/internal/protoset"
)

func TestRun(t *testing.T) {
	fds, err := protoset.CompileSources(context.Background(), map[string]string{
		"hello.proto": `syntax = "proto3"; package hello; message Hello { string name = 1; }`,
	}, "hello.proto")
	require.NoError(t, err)
	req := &pluginpb.CodeGeneratorRequest{
		FileToGenerate: []string{"hello.proto"},
		Parameter:      proto.String("compact"),
		ProtoFile:      protoset.ToFileDescriptorSet(fds...).File,
	}
	data, err := proto.Marshal(req)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), bytes.NewReader(data), &out))

	var resp pluginpb.CodeGeneratorResponse
	require.NoError(t, proto.Unmarshal(out.Bytes(), &resp))
	require.Empty(t, resp.GetError())
	require.Len(t, resp.File, 1)
	require.Equal(t, "hello_pb.json", resp.File[0].GetName())
	require.Contains(t, resp.File[0].GetContent(), `"descriptor":"_HELLO"`)
}

func TestRun_BadInput(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), bytes.NewReader([]byte{0xff, 0xff}), &out)
	require.ErrorContains(t, err, "parsing input proto")
	require.Zero(t, out.Len())
}
