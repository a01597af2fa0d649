package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/cal/internal/logging"
	pb "github.com/dmitrijs2005/cal/internal/proto"
	"github.com/dmitrijs2005/cal/internal/rowstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

func newPlainTestServer() *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", logging.Nop(), rowstore.NewMemory(rowstore.DefaultSchema), nil, "secret")
}

func TestRegister_ExposesRowStoreService(t *testing.T) {
	info := newPlainTestServer().Register().GetServiceInfo()

	svc, ok := info[pb.ServiceName]
	require.True(t, ok)

	var names []string
	for _, m := range svc.Methods {
		names = append(names, m.Name)
	}
	assert.ElementsMatch(t, []string{"Select", "Insert", "Upsert", "Update", "Delete", "Count", "Ping", "PresignPoster"}, names)
}

func TestServe_AnswersPingThenStopsOnCancel(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- newPlainTestServer().Serve(ctx, lis) }()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
	defer pingCancel()
	resp, err := pb.NewRowStoreClient(conn).Ping(pingCtx, &structpb.Struct{}, grpc.WaitForReady(true))
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.GetFields()["status"].GetStringValue())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestRun_BadAddress(t *testing.T) {
	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop(), rowstore.NewMemory(rowstore.DefaultSchema), nil, "secret")
	assert.Error(t, srv.Run(context.Background()))
}
