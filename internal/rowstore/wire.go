package rowstore

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Request is the transport form of any Store call. Which fields matter
// depends on the method: Select uses Query, Update/Delete/Count use Where,
// Insert/Upsert/Update use Row, Upsert uses Conflict.
type Request struct {
	Table    string
	Query    Query
	Where    []Cond
	Row      Row
	Conflict []string
}

// Response is the transport form of any Store result.
type Response struct {
	Rows  []Row
	Row   Row
	Count int64
}

// EncodeRequest converts r to a protobuf Struct.
func EncodeRequest(r Request) (*structpb.Struct, error) {
	m := map[string]any{"table": r.Table}

	if len(r.Query.Where) > 0 {
		m["where"] = encodeConds(r.Query.Where)
	}
	if len(r.Where) > 0 {
		m["where"] = encodeConds(r.Where)
	}
	if r.Query.OrderBy != "" {
		m["order_by"] = r.Query.OrderBy
		m["desc"] = r.Query.Desc
	}
	if r.Query.Limit > 0 {
		m["limit"] = r.Query.Limit
	}
	if r.Row != nil {
		m["row"] = map[string]any(r.Row)
	}
	if len(r.Conflict) > 0 {
		c := make([]any, len(r.Conflict))
		for i, col := range r.Conflict {
			c[i] = col
		}
		m["conflict"] = c
	}

	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return s, nil
}

// DecodeRequest is the inverse of EncodeRequest. Where conditions are placed
// both in Query.Where and Where so the server can treat every method alike.
func DecodeRequest(s *structpb.Struct) (Request, error) {
	if s == nil {
		return Request{}, invalidf("empty request")
	}
	m := s.AsMap()

	r := Request{}
	r.Table, _ = m["table"].(string)
	if r.Table == "" {
		return Request{}, invalidf("missing table")
	}

	if raw, ok := m["where"]; ok {
		conds, err := decodeConds(raw)
		if err != nil {
			return Request{}, err
		}
		r.Where = conds
		r.Query.Where = conds
	}
	r.Query.OrderBy, _ = m["order_by"].(string)
	r.Query.Desc, _ = m["desc"].(bool)
	if l, ok := m["limit"].(float64); ok {
		r.Query.Limit = int(l)
	}
	if row, ok := m["row"].(map[string]any); ok {
		r.Row = Row(row)
	}
	if raw, ok := m["conflict"].([]any); ok {
		for _, c := range raw {
			col, ok := c.(string)
			if !ok {
				return Request{}, invalidf("conflict column must be a string")
			}
			r.Conflict = append(r.Conflict, col)
		}
	}
	return r, nil
}

// EncodeResponse converts r to a protobuf Struct.
func EncodeResponse(r Response) (*structpb.Struct, error) {
	m := map[string]any{"count": r.Count}
	if r.Rows != nil {
		rows := make([]any, len(r.Rows))
		for i, row := range r.Rows {
			rows[i] = map[string]any(row)
		}
		m["rows"] = rows
	}
	if r.Row != nil {
		m["row"] = map[string]any(r.Row)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return s, nil
}

// DecodeResponse is the inverse of EncodeResponse.
func DecodeResponse(s *structpb.Struct) Response {
	r := Response{Rows: []Row{}}
	if s == nil {
		return r
	}
	m := s.AsMap()
	if c, ok := m["count"].(float64); ok {
		r.Count = int64(c)
	}
	if rows, ok := m["rows"].([]any); ok {
		for _, raw := range rows {
			if row, ok := raw.(map[string]any); ok {
				r.Rows = append(r.Rows, Row(row))
			}
		}
	}
	if row, ok := m["row"].(map[string]any); ok {
		r.Row = Row(row)
	}
	return r
}

func encodeConds(conds []Cond) []any {
	out := make([]any, len(conds))
	for i, c := range conds {
		out[i] = map[string]any{"column": c.Column, "op": string(c.Op), "value": c.Value}
	}
	return out
}

func decodeConds(raw any) ([]Cond, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, invalidf("where must be a list")
	}
	conds := make([]Cond, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, invalidf("condition must be an object")
		}
		col, _ := m["column"].(string)
		op, _ := m["op"].(string)
		conds = append(conds, Cond{Column: col, Op: Op(op), Value: m["value"]})
	}
	return conds, nil
}
