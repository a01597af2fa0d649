// Package proto declares the cal.rowstore.RowStore gRPC service. Every
// method exchanges google.protobuf.Struct messages whose layout is defined
// by rowstore.EncodeRequest and rowstore.EncodeResponse.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "cal.rowstore.RowStore"

const (
	RowStore_Select_FullMethodName        = "/cal.rowstore.RowStore/Select"
	RowStore_Insert_FullMethodName        = "/cal.rowstore.RowStore/Insert"
	RowStore_Upsert_FullMethodName        = "/cal.rowstore.RowStore/Upsert"
	RowStore_Update_FullMethodName        = "/cal.rowstore.RowStore/Update"
	RowStore_Delete_FullMethodName        = "/cal.rowstore.RowStore/Delete"
	RowStore_Count_FullMethodName         = "/cal.rowstore.RowStore/Count"
	RowStore_Ping_FullMethodName          = "/cal.rowstore.RowStore/Ping"
	RowStore_PresignPoster_FullMethodName = "/cal.rowstore.RowStore/PresignPoster"
)

// RowStoreServer is the server API for the RowStore service.
type RowStoreServer interface {
	Select(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Insert(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Upsert(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Update(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Delete(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Count(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ping(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PresignPoster(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RowStoreClient is the client API for the RowStore service.
type RowStoreClient interface {
	Select(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Insert(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Upsert(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Update(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Delete(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Count(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Ping(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	PresignPoster(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type rowStoreClient struct {
	cc grpc.ClientConnInterface
}

func NewRowStoreClient(cc grpc.ClientConnInterface) RowStoreClient {
	return &rowStoreClient{cc}
}

func (c *rowStoreClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *rowStoreClient) Select(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, RowStore_Select_FullMethodName, in, opts)
}

func (c *rowStoreClient) Insert(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, RowStore_Insert_FullMethodName, in, opts)
}

func (c *rowStoreClient) Upsert(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, RowStore_Upsert_FullMethodName, in, opts)
}

func (c *rowStoreClient) Update(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, RowStore_Update_FullMethodName, in, opts)
}

func (c *rowStoreClient) Delete(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, RowStore_Delete_FullMethodName, in, opts)
}

func (c *rowStoreClient) Count(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, RowStore_Count_FullMethodName, in, opts)
}

func (c *rowStoreClient) Ping(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, RowStore_Ping_FullMethodName, in, opts)
}

func (c *rowStoreClient) PresignPoster(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, RowStore_PresignPoster_FullMethodName, in, opts)
}

// RegisterRowStoreServer registers srv with s.
func RegisterRowStoreServer(s grpc.ServiceRegistrar, srv RowStoreServer) {
	s.RegisterService(&RowStore_ServiceDesc, srv)
}

// unaryHandler adapts one RowStoreServer method to a grpc.MethodDesc handler.
func unaryHandler(fullMethod string, call func(RowStoreServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RowStoreServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RowStoreServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// RowStore_ServiceDesc is the grpc.ServiceDesc for the RowStore service.
var RowStore_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RowStoreServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Select", Handler: unaryHandler(RowStore_Select_FullMethodName, RowStoreServer.Select)},
		{MethodName: "Insert", Handler: unaryHandler(RowStore_Insert_FullMethodName, RowStoreServer.Insert)},
		{MethodName: "Upsert", Handler: unaryHandler(RowStore_Upsert_FullMethodName, RowStoreServer.Upsert)},
		{MethodName: "Update", Handler: unaryHandler(RowStore_Update_FullMethodName, RowStoreServer.Update)},
		{MethodName: "Delete", Handler: unaryHandler(RowStore_Delete_FullMethodName, RowStoreServer.Delete)},
		{MethodName: "Count", Handler: unaryHandler(RowStore_Count_FullMethodName, RowStoreServer.Count)},
		{MethodName: "Ping", Handler: unaryHandler(RowStore_Ping_FullMethodName, RowStoreServer.Ping)},
		{MethodName: "PresignPoster", Handler: unaryHandler(RowStore_PresignPoster_FullMethodName, RowStoreServer.PresignPoster)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cal/rowstore.proto",
}
