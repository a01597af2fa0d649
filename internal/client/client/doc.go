// Package client contains the calendar client's transport and local
// persistence bootstrap.
//
// # Overview
//
//  1. Client: the remote row store contract (rowstore.Store) plus Ping and
//     poster presigning.
//  2. GRPCClient: the gRPC implementation. It injects the API key through a
//     unary interceptor, bounds each call with a timeout and maps gRPC status
//     codes back to sentinel errors (ErrUnavailable, ErrUnauthorized and the
//     rowstore errors).
//  3. InitDatabase / RunMigrations: open the local SQLite file and apply the
//     embedded goose migrations.
package client
