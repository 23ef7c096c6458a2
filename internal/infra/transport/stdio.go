// Package transport spawns MCP server processes and exposes their stdio as a
// JSON-RPC byte channel.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mcpsync/internal/domain"
)

// StdioTransport launches a server process and connects to it over stdin and
// stdout. The process inherits the ambient environment; any secrets were
// already substituted into the command string before parsing.
type StdioTransport struct{}

func NewStdioTransport() *StdioTransport {
	return &StdioTransport{}
}

type processCleanup func()

func (t *StdioTransport) Start(ctx context.Context, command domain.ParsedCommand) (domain.Conn, domain.StopFn, error) {
	if command.Executable == "" {
		return nil, nil, errors.New("executable is required for stdio transport")
	}

	cmd := exec.CommandContext(ctx, command.Executable, command.Args...)
	cmd.Env = os.Environ()
	groupCleanup := setupProcessHandling(cmd)

	transport := &mcp.CommandTransport{
		Command: cmd,
	}

	mcpConn, err := transport.Connect(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("connect stdio: %w", err)
	}

	conn := &mcpConnAdapter{conn: mcpConn}
	stop := func(stopCtx context.Context) error {
		_ = mcpConn.Close()
		if groupCleanup != nil {
			groupCleanup()
		}
		return nil
	}

	return conn, stop, nil
}

type mcpConnAdapter struct {
	conn mcp.Connection
}

func (a *mcpConnAdapter) Send(ctx context.Context, msg json.RawMessage) error {
	if len(msg) == 0 {
		return errors.New("message is empty")
	}
	decoded, err := jsonrpc.DecodeMessage(msg)
	if err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	return a.conn.Write(ctx, decoded)
}

func (a *mcpConnAdapter) Recv(ctx context.Context) (json.RawMessage, error) {
	msg, err := a.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := jsonrpc.EncodeMessage(msg)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return json.RawMessage(raw), nil
}

func (a *mcpConnAdapter) Close() error {
	return a.conn.Close()
}
