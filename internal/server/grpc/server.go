// Package grpc exposes a rowstore.Store and the poster presigner over the
// cal.rowstore.RowStore gRPC service.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/cal/internal/logging"
	pb "github.com/dmitrijs2005/cal/internal/proto"
	"github.com/dmitrijs2005/cal/internal/rowstore"
	"github.com/dmitrijs2005/cal/internal/server/posters"
	"google.golang.org/grpc"
)

// PosterPresigner issues poster uploads.
type PosterPresigner interface {
	PresignPoster(ctx context.Context, filename string) (*posters.Upload, error)
}

type GRPCServer struct {
	address   string
	store     rowstore.Store
	posters   PosterPresigner
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, store rowstore.Store, p PosterPresigner, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		store:     store,
		posters:   p,
		jwtSecret: []byte(secretKey),
	}
}

// Register attaches the row service and its interceptor chain to a new
// grpc.Server.
func (s *GRPCServer) Register(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.apiKeyInterceptor))
	srv := grpc.NewServer(opts...)
	pb.RegisterRowStoreServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.Register()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	<-stopped
	return nil
}
