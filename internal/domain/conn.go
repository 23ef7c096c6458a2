package domain

import (
	"context"
	"encoding/json"
)

// Conn is a bidirectional JSON-RPC byte channel to a spawned server process.
type Conn interface {
	Send(ctx context.Context, msg json.RawMessage) error
	Recv(ctx context.Context) (json.RawMessage, error)
	Close() error
}

// StopFn tears down the process behind a Conn. Safe to call after Close.
type StopFn func(ctx context.Context) error

// Transport spawns a server process and wires its stdio as a Conn.
type Transport interface {
	Start(ctx context.Context, command ParsedCommand) (Conn, StopFn, error)
}
