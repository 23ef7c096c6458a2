// Package mcpcodec converts MCP tool descriptors into catalog-ready records.
package mcpcodec

import (
	"encoding/json"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mcpsync/internal/domain"
)

var emptyDocument = json.RawMessage(`{}`)

// Slug derives a catalog identifier from a tool name: lowercase, with each
// space and hyphen mapped to an underscore. Differently-named tools can slug
// to the same identifier; the publisher's upsert decides that case.
func Slug(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "_")
	slug = strings.ReplaceAll(slug, "-", "_")
	return slug
}

// ToolRecordFromMCP normalizes one MCP tool descriptor. Total and pure:
// description defaults to the empty string, the input schema to an empty
// document, and a nil tool yields a zero record.
func ToolRecordFromMCP(tool *mcp.Tool, serverID string) domain.ToolRecord {
	if tool == nil {
		return domain.ToolRecord{}
	}
	return domain.ToolRecord{
		Identifier: Slug(tool.Name),
		Title:      tool.Name,
		Properties: domain.ToolProperties{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  schemaDocument(tool.InputSchema),
		},
		ServerID: serverID,
	}
}

func schemaDocument(schema any) json.RawMessage {
	if schema == nil {
		return emptyDocument
	}
	raw, err := json.Marshal(schema)
	if err != nil || len(raw) == 0 || string(raw) == "null" {
		return emptyDocument
	}
	return raw
}
