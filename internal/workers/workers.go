package workers

// ToolDef describes one tool a worker exposes over the gateway and MCP.
type ToolDef struct {
	Name        string
	Description string
}
