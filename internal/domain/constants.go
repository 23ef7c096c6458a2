package domain

const (
	ProtocolVersion = "2025-11-25"

	DefaultAPIBaseURL = "https://api.getport.io/v1"

	DefaultListTimeoutSeconds = 30
	DefaultHTTPTimeoutSeconds = 30
)

const (
	ServerBlueprint = "mcpRegistry"
	ToolBlueprint   = "mcpToolSpecification"
)
