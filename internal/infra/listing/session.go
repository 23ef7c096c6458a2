// Package listing speaks the MCP capability-listing protocol against a
// spawned server process: initialize, notifications/initialized, tools/list.
package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"mcpsync/internal/buildinfo"
	"mcpsync/internal/domain"
)

const op = "listing.ListTools"

// Lister runs one capability-listing session per call. The subprocess and its
// channel live only for the duration of ListTools; teardown is guaranteed on
// every exit path.
type Lister struct {
	transport domain.Transport
	timeout   time.Duration
	logger    *zap.Logger
}

func NewLister(transport domain.Transport, timeout time.Duration, logger *zap.Logger) *Lister {
	if transport == nil {
		panic("listing.Lister requires a transport")
	}
	if timeout <= 0 {
		timeout = time.Duration(domain.DefaultListTimeoutSeconds) * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lister{
		transport: transport,
		timeout:   timeout,
		logger:    logger.Named("listing"),
	}
}

// ListTools spawns the command, performs the initialize handshake and returns
// the tools the server reports, in protocol order. The whole session is
// bounded by the configured timeout so an unresponsive server cannot hang the
// batch.
func (l *Lister) ListTools(ctx context.Context, command domain.ParsedCommand) ([]*mcp.Tool, error) {
	sessionCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	started := time.Now()
	conn, stop, err := l.transport.Start(sessionCtx, command)
	if err != nil {
		return nil, domain.E(domain.CodeConnection, op, "", fmt.Errorf("start transport: %w", err))
	}
	defer func() {
		_ = conn.Close()
		if stop != nil {
			_ = stop(context.Background())
		}
	}()

	if err := l.initialize(sessionCtx, conn); err != nil {
		return nil, domain.Wrap(domain.CodeConnection, op, err)
	}

	tools, err := l.fetchTools(sessionCtx, conn)
	if err != nil {
		return nil, domain.Wrap(domain.CodeConnection, op, err)
	}

	l.logger.Debug("session completed",
		zap.String("executable", command.Executable),
		zap.Int("tools", len(tools)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return tools, nil
}

func (l *Lister) initialize(ctx context.Context, conn domain.Conn) error {
	initParams := &mcp.InitializeParams{
		ProtocolVersion: domain.ProtocolVersion,
		ClientInfo: &mcp.Implementation{
			Name:    "mcpsync",
			Version: buildinfo.Version,
		},
		Capabilities: &mcp.ClientCapabilities{},
	}

	resp, err := l.call(ctx, conn, "initialize", initParams)
	if err != nil {
		return err
	}
	if err := validateInitializeResult(resp); err != nil {
		return err
	}

	// The server must see notifications/initialized before any content
	// request.
	notification := &jsonrpc.Request{
		Method: "notifications/initialized",
		Params: json.RawMessage(`{}`),
	}
	wire, err := jsonrpc.EncodeMessage(notification)
	if err != nil {
		return domain.E(domain.CodeInternal, "", "encode initialized notification", err)
	}
	if err := conn.Send(ctx, wire); err != nil {
		return domain.E(domain.CodeConnection, "", "send initialized notification", err)
	}
	return nil
}

func (l *Lister) fetchTools(ctx context.Context, conn domain.Conn) ([]*mcp.Tool, error) {
	resp, err := l.call(ctx, conn, "tools/list", &mcp.ListToolsParams{})
	if err != nil {
		return nil, err
	}

	var result mcp.ListToolsResult
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, domain.E(domain.CodeProtocol, "", "decode tools/list result", err)
	}
	return result.Tools, nil
}

// call issues one request and awaits its synchronous reply, returning the raw
// result. Transport faults map to CONNECTION, well-formed-but-invalid replies
// to PROTOCOL.
func (l *Lister) call(ctx context.Context, conn domain.Conn, method string, params any) (json.RawMessage, error) {
	id, err := jsonrpc.MakeID(uuid.NewString())
	if err != nil {
		return nil, domain.E(domain.CodeInternal, "", "build request id", err)
	}
	rawParams, err := json.Marshal(params)
	if err != nil {
		return nil, domain.E(domain.CodeInternal, "", fmt.Sprintf("marshal %s params", method), err)
	}
	wire, err := jsonrpc.EncodeMessage(&jsonrpc.Request{
		ID:     id,
		Method: method,
		Params: rawParams,
	})
	if err != nil {
		return nil, domain.E(domain.CodeInternal, "", fmt.Sprintf("encode %s request", method), err)
	}

	if err := conn.Send(ctx, wire); err != nil {
		return nil, domain.E(domain.CodeConnection, "", fmt.Sprintf("send %s", method), err)
	}

	// Servers may interleave their own traffic (log notifications, sampling
	// requests) before the reply. Keep reading until the response carrying
	// our ID arrives; the session deadline bounds the wait.
	for {
		rawResp, err := conn.Recv(ctx)
		if err != nil {
			return nil, domain.E(domain.CodeConnection, "", fmt.Sprintf("recv %s", method), err)
		}

		respMsg, err := jsonrpc.DecodeMessage(rawResp)
		if err != nil {
			return nil, domain.E(domain.CodeConnection, "", fmt.Sprintf("decode %s response", method), err)
		}
		resp, ok := respMsg.(*jsonrpc.Response)
		if !ok {
			if req, isReq := respMsg.(*jsonrpc.Request); isReq {
				l.logger.Debug("discarding server-initiated message",
					zap.String("awaiting", method),
					zap.String("method", req.Method),
				)
			}
			continue
		}
		if !sameID(resp.ID, id) {
			l.logger.Debug("discarding response with unknown id",
				zap.String("awaiting", method),
			)
			continue
		}
		if resp.Error != nil {
			return nil, domain.E(domain.CodeProtocol, "", "", fmt.Errorf("%s error: %w", method, resp.Error))
		}
		if len(resp.Result) == 0 {
			return nil, domain.E(domain.CodeProtocol, "", fmt.Sprintf("%s response missing result", method), nil)
		}
		return resp.Result, nil
	}
}

func sameID(a, b jsonrpc.ID) bool {
	keyA, errA := idKey(a)
	keyB, errB := idKey(b)
	return errA == nil && errB == nil && keyA == keyB
}

func idKey(id jsonrpc.ID) (string, error) {
	if !id.IsValid() {
		return "", fmt.Errorf("missing request id")
	}
	switch typed := id.Raw().(type) {
	case string:
		return "s:" + typed, nil
	case float64:
		return fmt.Sprintf("n:%v", typed), nil
	case int:
		return fmt.Sprintf("n:%v", typed), nil
	case int64:
		return fmt.Sprintf("n:%v", typed), nil
	case json.Number:
		return "n:" + typed.String(), nil
	default:
		return "", fmt.Errorf("unsupported id type %T", id.Raw())
	}
}

func validateInitializeResult(raw json.RawMessage) error {
	var result mcp.InitializeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.E(domain.CodeProtocol, "", "decode initialize result", err)
	}
	if result.ProtocolVersion == "" {
		return domain.E(domain.CodeProtocol, "", "initialize result missing protocolVersion", nil)
	}
	if result.ServerInfo == nil || result.ServerInfo.Name == "" {
		return domain.E(domain.CodeProtocol, "", "initialize result missing serverInfo", nil)
	}
	return nil
}
