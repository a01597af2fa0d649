package rowstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestRequest_RoundTrip(t *testing.T) {
	in := Request{
		Table: "reminders",
		Query: Query{
			Where:   []Cond{Eq("user_id", "u1"), Eq("notified", true)},
			OrderBy: "event_time",
			Desc:    true,
			Limit:   10,
		},
		Row:      Row{"event_id": "e1", "notified": false},
		Conflict: []string{"user_id", "event_id"},
	}

	s, err := EncodeRequest(in)
	require.NoError(t, err)

	out, err := DecodeRequest(s)
	require.NoError(t, err)

	assert.Equal(t, in.Table, out.Table)
	assert.Equal(t, in.Query, out.Query)
	assert.Equal(t, in.Query.Where, out.Where)
	assert.Equal(t, in.Row, out.Row)
	assert.Equal(t, in.Conflict, out.Conflict)
}

func TestDecodeRequest_Invalid(t *testing.T) {
	_, err := DecodeRequest(nil)
	assert.ErrorIs(t, err, ErrInvalidQuery)

	s, _ := structpb.NewStruct(map[string]any{"where": []any{}})
	_, err = DecodeRequest(s)
	assert.ErrorIs(t, err, ErrInvalidQuery)

	s, _ = structpb.NewStruct(map[string]any{"table": "t", "where": "x"})
	_, err = DecodeRequest(s)
	assert.ErrorIs(t, err, ErrInvalidQuery)

	s, _ = structpb.NewStruct(map[string]any{"table": "t", "conflict": []any{1.0}})
	_, err = DecodeRequest(s)
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestResponse_RoundTrip(t *testing.T) {
	in := Response{
		Rows:  []Row{{"id": "a"}, {"id": "b", "notified": true}},
		Row:   Row{"id": "c"},
		Count: 7,
	}
	s, err := EncodeResponse(in)
	require.NoError(t, err)

	out := DecodeResponse(s)
	assert.Equal(t, in, out)
}

func TestDecodeResponse_Nil(t *testing.T) {
	out := DecodeResponse(nil)
	assert.NotNil(t, out.Rows)
	assert.Empty(t, out.Rows)
}
