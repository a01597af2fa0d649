package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/cal/internal/common"
	pb "github.com/dmitrijs2005/cal/internal/proto"
	"github.com/dmitrijs2005/cal/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

// RoleKey holds the caller's API key role in the handler context.
const RoleKey ctxKey = "role"

// apiKeyInterceptor rejects calls without a valid api_key. Ping stays open
// so clients can probe connectivity before they are configured.
func (s *GRPCServer) apiKeyInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if info.FullMethod == pb.RowStore_Ping_FullMethodName {
		return handler(ctx, req)
	}

	var apiKey string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.APIKeyHeaderName); len(values) > 0 {
			apiKey = values[0]
		}
	}
	if apiKey == "" {
		return nil, status.Error(codes.Unauthenticated, "missing api key")
	}

	role, err := auth.RoleFromAPIKey(apiKey, s.jwtSecret)
	if err != nil {
		s.logger.Warn(ctx, "rejected api key", "method", info.FullMethod, "error", err)
		return nil, status.Error(codes.Unauthenticated, "invalid api key")
	}

	return handler(context.WithValue(ctx, RoleKey, role), req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug(ctx, "rpc", "method", info.FullMethod, "code", status.Code(err).String(), "elapsed", time.Since(start))
	return resp, err
}
