// Package sync orchestrates the discovery-and-extraction pipeline: resolve
// each server's launch command, run a capability-listing session against it,
// and publish the normalized tools back to the catalog.
package sync

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"mcpsync/internal/domain"
	"mcpsync/internal/infra/command"
	"mcpsync/internal/infra/mcpcodec"
)

// ToolLister runs one capability-listing session against a parsed command.
type ToolLister interface {
	ListTools(ctx context.Context, cmd domain.ParsedCommand) ([]*mcp.Tool, error)
}

// Extractor turns one server record into catalog-ready tool records. Every
// recoverable fault degrades to zero tools so batch processing stays uniform.
type Extractor struct {
	lister ToolLister
	logger *zap.Logger
}

func NewExtractor(lister ToolLister, logger *zap.Logger) *Extractor {
	if lister == nil {
		panic("sync.Extractor requires a lister")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		lister: lister,
		logger: logger.Named("extractor"),
	}
}

// ExtractToolsFromServer never fails: a missing command, a malformed command
// or a listing fault all yield an empty result. Tool order follows the
// protocol-reported order.
func (e *Extractor) ExtractToolsFromServer(ctx context.Context, server domain.ServerRecord) []domain.ToolRecord {
	if server.LaunchCommand == "" {
		return nil
	}

	resolved, missing := command.ResolveSecrets(server.LaunchCommand)
	if len(missing) > 0 {
		e.logger.Warn("secret placeholders left unresolved",
			zap.String("server", server.Identifier),
			zap.Strings("names", missing),
		)
	}

	parsed, err := command.Parse(resolved)
	if err != nil {
		e.logger.Warn("malformed launch command",
			zap.String("server", server.Identifier),
			zap.Error(err),
		)
		return nil
	}

	tools, err := e.lister.ListTools(ctx, parsed)
	if err != nil {
		e.logger.Warn("tool listing failed",
			zap.String("server", server.Identifier),
			zap.String("executable", parsed.Executable),
			zap.Error(err),
		)
		return nil
	}

	records := make([]domain.ToolRecord, 0, len(tools))
	for _, tool := range tools {
		if tool == nil || tool.Name == "" {
			continue
		}
		records = append(records, mcpcodec.ToolRecordFromMCP(tool, server.Identifier))
	}
	return records
}
