package domain

import "context"

// Registry fetches server records from the catalog.
type Registry interface {
	FetchServers(ctx context.Context) ([]ServerRecord, error)
}

// ToolPublisher writes tool entities back to the catalog.
type ToolPublisher interface {
	// UpsertTool creates or updates a tool entity keyed by its identifier,
	// merging fields and recording the server relation.
	UpsertTool(ctx context.Context, record ToolRecord) error
	// SetServerToolNames patches the server entity with its tool name list.
	// Best effort: callers log failures without failing the server.
	SetServerToolNames(ctx context.Context, serverID string, names []string) error
}
