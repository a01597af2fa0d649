package client

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/cal/internal/common"
	pb "github.com/dmitrijs2005/cal/internal/proto"
	"github.com/dmitrijs2005/cal/internal/rowstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// fakePB records the last request of each method and returns preset replies.
type fakePB struct {
	last map[string]*structpb.Struct
	resp map[string]*structpb.Struct
	errs map[string]error
}

func newFakePB() *fakePB {
	return &fakePB{
		last: map[string]*structpb.Struct{},
		resp: map[string]*structpb.Struct{},
		errs: map[string]error{},
	}
}

func (f *fakePB) do(name string, in *structpb.Struct) (*structpb.Struct, error) {
	f.last[name] = in
	if err := f.errs[name]; err != nil {
		return nil, err
	}
	if r, ok := f.resp[name]; ok {
		return r, nil
	}
	return &structpb.Struct{}, nil
}

func (f *fakePB) Select(ctx context.Context, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	return f.do("Select", in)
}
func (f *fakePB) Insert(ctx context.Context, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	return f.do("Insert", in)
}
func (f *fakePB) Upsert(ctx context.Context, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	return f.do("Upsert", in)
}
func (f *fakePB) Update(ctx context.Context, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	return f.do("Update", in)
}
func (f *fakePB) Delete(ctx context.Context, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	return f.do("Delete", in)
}
func (f *fakePB) Count(ctx context.Context, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	return f.do("Count", in)
}
func (f *fakePB) Ping(ctx context.Context, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	return f.do("Ping", in)
}
func (f *fakePB) PresignPoster(ctx context.Context, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	return f.do("PresignPoster", in)
}

var _ pb.RowStoreClient = (*fakePB)(nil)

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestInterceptor_InjectsAPIKey(t *testing.T) {
	c := &GRPCClient{apiKey: "K1"}

	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		assert.Equal(t, []string{"K1"}, md.Get(common.APIKeyHeaderName))
		return nil
	}

	ctx := metadata.AppendToOutgoingContext(context.Background(), common.APIKeyHeaderName, "stale")
	require.NoError(t, c.apiKeyInterceptor(ctx, "/svc/Method", nil, nil, nil, invoker))
}

func TestSelect_EncodesQueryAndDecodesRows(t *testing.T) {
	f := newFakePB()
	f.resp["Select"] = mustStruct(t, map[string]any{
		"rows": []any{map[string]any{"event_id": "e1", "notified": true}},
	})
	c := &GRPCClient{client: f}

	rows, err := c.Select(context.Background(), common.TableReminders, rowstore.Query{
		Where: []rowstore.Cond{rowstore.Eq("user_id", "u1")}, Limit: 3,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Bool("notified"))

	req, err := rowstore.DecodeRequest(f.last["Select"])
	require.NoError(t, err)
	assert.Equal(t, common.TableReminders, req.Table)
	assert.Equal(t, 3, req.Query.Limit)
	assert.Equal(t, []rowstore.Cond{rowstore.Eq("user_id", "u1")}, req.Where)
}

func TestInsertUpsertUpdateDeleteCount(t *testing.T) {
	f := newFakePB()
	f.resp["Insert"] = mustStruct(t, map[string]any{"row": map[string]any{"id": "new"}})
	f.resp["Count"] = mustStruct(t, map[string]any{"count": 4})
	c := &GRPCClient{client: f}
	ctx := context.Background()

	row, err := c.Insert(ctx, common.TableAdmins, rowstore.Row{"name": "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "new", row.String("id"))

	require.NoError(t, c.Upsert(ctx, common.TableReminders, rowstore.Row{"user_id": "u"}, "user_id", "event_id"))
	req, _ := rowstore.DecodeRequest(f.last["Upsert"])
	assert.Equal(t, []string{"user_id", "event_id"}, req.Conflict)

	require.NoError(t, c.Update(ctx, common.TableReminders, rowstore.Row{"notified": true}, rowstore.Eq("event_id", "e")))
	req, _ = rowstore.DecodeRequest(f.last["Update"])
	assert.Equal(t, rowstore.Row{"notified": true}, req.Row)

	require.NoError(t, c.Delete(ctx, common.TableReminders, rowstore.Eq("event_id", "e")))

	n, err := c.Count(ctx, common.TableUsers)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
}

func TestPing(t *testing.T) {
	f := newFakePB()
	c := &GRPCClient{client: f}

	f.resp["Ping"] = mustStruct(t, map[string]any{"status": "OK"})
	assert.NoError(t, c.Ping(context.Background()))

	f.resp["Ping"] = mustStruct(t, map[string]any{"status": "DEGRADED"})
	assert.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)

	f.errs["Ping"] = status.Error(codes.Unavailable, "down")
	assert.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestPresignPoster(t *testing.T) {
	f := newFakePB()
	f.resp["PresignPoster"] = mustStruct(t, map[string]any{"key": "k", "upload_url": "u", "public_url": "p"})
	c := &GRPCClient{client: f}

	up, err := c.PresignPoster(context.Background(), "flyer.png")
	require.NoError(t, err)
	assert.Equal(t, &PosterUpload{Key: "k", UploadURL: "u", PublicURL: "p"}, up)
	assert.Equal(t, "flyer.png", f.last["PresignPoster"].GetFields()["filename"].GetStringValue())
}

func TestMapError(t *testing.T) {
	c := &GRPCClient{}

	tests := []struct {
		code codes.Code
		want error
	}{
		{codes.Unauthenticated, ErrUnauthorized},
		{codes.PermissionDenied, ErrUnauthorized},
		{codes.Unavailable, ErrUnavailable},
		{codes.DeadlineExceeded, ErrUnavailable},
		{codes.FailedPrecondition, rowstore.ErrTableMissing},
		{codes.AlreadyExists, rowstore.ErrConflict},
		{codes.InvalidArgument, rowstore.ErrInvalidQuery},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			assert.ErrorIs(t, c.mapError(status.Error(tt.code, "x")), tt.want)
		})
	}

	err := c.mapError(status.Error(codes.Internal, "boom"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc error")
	assert.NoError(t, c.mapError(nil))
}

func TestSelect_MapsRemoteError(t *testing.T) {
	f := newFakePB()
	f.errs["Select"] = status.Error(codes.FailedPrecondition, "table does not exist: app_config")
	c := &GRPCClient{client: f}

	_, err := c.Select(context.Background(), common.TableAppConfig, rowstore.Query{})
	assert.ErrorIs(t, err, rowstore.ErrTableMissing)
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestClose_NilConn(t *testing.T) {
	assert.NoError(t, (&GRPCClient{}).Close())
}
