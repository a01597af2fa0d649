package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cal/internal/common"
	pb "github.com/dmitrijs2005/cal/internal/proto"
	"github.com/dmitrijs2005/cal/internal/rowstore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// callTimeout bounds every remote call.
const callTimeout = 12 * time.Second

type GRPCClient struct {
	endpointURL string
	apiKey      string
	conn        *grpc.ClientConn
	client      pb.RowStoreClient
}

func withAPIKey(ctx context.Context, key string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.APIKeyHeaderName, key)
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) apiKeyInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.apiKey != "" {
		ctx = withAPIKey(ctx, s.apiKey)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient connects lazily to endpointURL and authenticates every call
// with apiKey.
func NewGRPCClient(endpointURL, apiKey string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, apiKey: apiKey}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.apiKeyInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewRowStoreClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) call(ctx context.Context, fn func(context.Context, *structpb.Struct, ...grpc.CallOption) (*structpb.Struct, error), r rowstore.Request) (rowstore.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	in, err := rowstore.EncodeRequest(r)
	if err != nil {
		return rowstore.Response{}, err
	}
	out, err := fn(ctx, in)
	if err != nil {
		return rowstore.Response{}, s.mapError(err)
	}
	return rowstore.DecodeResponse(out), nil
}

func (s *GRPCClient) Select(ctx context.Context, table string, q rowstore.Query) ([]rowstore.Row, error) {
	resp, err := s.call(ctx, s.client.Select, rowstore.Request{Table: table, Query: q})
	if err != nil {
		return nil, err
	}
	return resp.Rows, nil
}

func (s *GRPCClient) Insert(ctx context.Context, table string, row rowstore.Row) (rowstore.Row, error) {
	resp, err := s.call(ctx, s.client.Insert, rowstore.Request{Table: table, Row: row})
	if err != nil {
		return nil, err
	}
	return resp.Row, nil
}

func (s *GRPCClient) Upsert(ctx context.Context, table string, row rowstore.Row, conflict ...string) error {
	_, err := s.call(ctx, s.client.Upsert, rowstore.Request{Table: table, Row: row, Conflict: conflict})
	return err
}

func (s *GRPCClient) Update(ctx context.Context, table string, patch rowstore.Row, where ...rowstore.Cond) error {
	_, err := s.call(ctx, s.client.Update, rowstore.Request{Table: table, Row: patch, Where: where})
	return err
}

func (s *GRPCClient) Delete(ctx context.Context, table string, where ...rowstore.Cond) error {
	_, err := s.call(ctx, s.client.Delete, rowstore.Request{Table: table, Where: where})
	return err
}

func (s *GRPCClient) Count(ctx context.Context, table string, where ...rowstore.Cond) (int64, error) {
	resp, err := s.call(ctx, s.client.Count, rowstore.Request{Table: table, Where: where})
	if err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := s.client.Ping(ctx, &structpb.Struct{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.GetFields()["status"].GetStringValue() != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) PresignPoster(ctx context.Context, filename string) (*PosterUpload, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	in, err := structpb.NewStruct(map[string]any{"filename": filename})
	if err != nil {
		return nil, err
	}
	resp, err := s.client.PresignPoster(ctx, in)
	if err != nil {
		return nil, s.mapError(err)
	}

	f := resp.GetFields()
	return &PosterUpload{
		Key:       f["key"].GetStringValue(),
		UploadURL: f["upload_url"].GetStringValue(),
		PublicURL: f["public_url"].GetStringValue(),
	}, nil
}

// mapError turns gRPC statuses back into the sentinel errors callers match on.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", rowstore.ErrTableMissing, st.Message())
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", rowstore.ErrConflict, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", rowstore.ErrInvalidQuery, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
