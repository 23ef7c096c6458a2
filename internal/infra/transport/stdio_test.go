//go:build unix

package transport

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcpsync/internal/domain"
)

func TestStdioTransport_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	transport := NewStdioTransport()
	conn, stop, err := transport.Start(ctx, domain.ParsedCommand{Executable: "cat"})
	require.NoError(t, err)
	defer func() {
		_ = conn.Close()
		_ = stop(context.Background())
	}()

	// cat echoes every frame back, so the channel carries our own message.
	msg := json.RawMessage(`{"jsonrpc":"2.0","id":"req-1","method":"tools/list","params":{}}`)
	require.NoError(t, conn.Send(ctx, msg))

	got, err := conn.Recv(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, string(msg), string(got))
}

func TestStdioTransport_EmptyExecutable(t *testing.T) {
	transport := NewStdioTransport()
	_, _, err := transport.Start(context.Background(), domain.ParsedCommand{})
	require.Error(t, err)
}

func TestStdioTransport_MissingBinary(t *testing.T) {
	transport := NewStdioTransport()
	_, _, err := transport.Start(context.Background(), domain.ParsedCommand{
		Executable: "mcpsync-no-such-binary",
	})
	require.Error(t, err)
}

func TestStdioTransport_RejectsEmptyMessage(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	transport := NewStdioTransport()
	conn, stop, err := transport.Start(ctx, domain.ParsedCommand{Executable: "cat"})
	require.NoError(t, err)
	defer func() {
		_ = conn.Close()
		_ = stop(context.Background())
	}()

	require.Error(t, conn.Send(ctx, nil))
}
