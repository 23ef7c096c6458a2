package domain

import "encoding/json"

// ServerRecord is one MCP server entry fetched from the catalog registry.
// LaunchCommand is empty when the record carries no command.
type ServerRecord struct {
	Identifier    string
	Title         string
	LaunchCommand string
}

// DisplayTitle returns the record title, falling back to the identifier.
func (r ServerRecord) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Identifier
}

// ParsedCommand is a launch command split into executable and arguments.
type ParsedCommand struct {
	Executable string
	Args       []string
}

// ToolProperties carries the catalog-facing property block of a tool entity.
type ToolProperties struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ToolRecord is a catalog-ready tool entity. Identifier is the slug derived
// from the tool name; ServerID links the tool to its originating server.
// Slug collisions across differently-named tools are not deduplicated here;
// the publisher's upsert semantics decide (last write wins).
type ToolRecord struct {
	Identifier string
	Title      string
	Properties ToolProperties
	ServerID   string
}

// SyncOutcome accumulates batch counters across one sync run.
type SyncOutcome struct {
	ServersTotal int
	Processed    int
	Skipped      int
	Failed       int
	ToolsSynced  int
}
