package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/cal/internal/rowstore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) Select(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	r, err := rowstore.DecodeRequest(in)
	if err != nil {
		return nil, s.toStatus(ctx, "select", err)
	}
	rows, err := s.store.Select(ctx, r.Table, r.Query)
	if err != nil {
		return nil, s.toStatus(ctx, "select", err)
	}
	return s.respond(ctx, rowstore.Response{Rows: rows})
}

func (s *GRPCServer) Insert(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	r, err := rowstore.DecodeRequest(in)
	if err != nil {
		return nil, s.toStatus(ctx, "insert", err)
	}
	row, err := s.store.Insert(ctx, r.Table, r.Row)
	if err != nil {
		return nil, s.toStatus(ctx, "insert", err)
	}
	return s.respond(ctx, rowstore.Response{Row: row})
}

func (s *GRPCServer) Upsert(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	r, err := rowstore.DecodeRequest(in)
	if err != nil {
		return nil, s.toStatus(ctx, "upsert", err)
	}
	if err := s.store.Upsert(ctx, r.Table, r.Row, r.Conflict...); err != nil {
		return nil, s.toStatus(ctx, "upsert", err)
	}
	return s.respond(ctx, rowstore.Response{})
}

func (s *GRPCServer) Update(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	r, err := rowstore.DecodeRequest(in)
	if err != nil {
		return nil, s.toStatus(ctx, "update", err)
	}
	if err := s.store.Update(ctx, r.Table, r.Row, r.Where...); err != nil {
		return nil, s.toStatus(ctx, "update", err)
	}
	return s.respond(ctx, rowstore.Response{})
}

func (s *GRPCServer) Delete(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	r, err := rowstore.DecodeRequest(in)
	if err != nil {
		return nil, s.toStatus(ctx, "delete", err)
	}
	if err := s.store.Delete(ctx, r.Table, r.Where...); err != nil {
		return nil, s.toStatus(ctx, "delete", err)
	}
	return s.respond(ctx, rowstore.Response{})
}

func (s *GRPCServer) Count(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	r, err := rowstore.DecodeRequest(in)
	if err != nil {
		return nil, s.toStatus(ctx, "count", err)
	}
	n, err := s.store.Count(ctx, r.Table, r.Where...)
	if err != nil {
		return nil, s.toStatus(ctx, "count", err)
	}
	return s.respond(ctx, rowstore.Response{Count: n})
}

func (s *GRPCServer) Ping(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"status": "OK"})
}

func (s *GRPCServer) PresignPoster(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	filename := in.GetFields()["filename"].GetStringValue()
	if filename == "" {
		return nil, status.Error(codes.InvalidArgument, "missing filename")
	}
	if s.posters == nil {
		return nil, status.Error(codes.Unimplemented, "poster storage not configured")
	}

	up, err := s.posters.PresignPoster(ctx, filename)
	if err != nil {
		s.logger.Error(ctx, "presign poster failed", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	return structpb.NewStruct(map[string]any{
		"key":        up.Key,
		"upload_url": up.UploadURL,
		"public_url": up.PublicURL,
	})
}

func (s *GRPCServer) respond(ctx context.Context, r rowstore.Response) (*structpb.Struct, error) {
	out, err := rowstore.EncodeResponse(r)
	if err != nil {
		return nil, s.toStatus(ctx, "encode", err)
	}
	return out, nil
}

// toStatus maps store errors to gRPC codes the client translates back.
func (s *GRPCServer) toStatus(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, rowstore.ErrTableMissing):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, rowstore.ErrConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, rowstore.ErrInvalidQuery), errors.Is(err, rowstore.ErrUnknownTable):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	s.logger.Error(ctx, "store operation failed", "op", op, "error", err)
	return status.Error(codes.Internal, "internal error")
}
