package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ericksa/contractreview/internal/workers"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type Worker interface {
	GetTools() []workers.ToolDef
	Execute(ctx context.Context, name string, input json.RawMessage) ([]byte, error)
}

type Handler struct {
	workers map[string]Worker
	server  *mcp.Server
}

// NewHandler wires the review worker into an MCP server. Tool names are
// prefixed with the worker name, matching the gateway's tool routing.
func NewHandler(reviewWorker Worker) *Handler {
	h := &Handler{
		workers: make(map[string]Worker),
	}
	h.workers["contract"] = reviewWorker
	h.initMCPServer()
	return h
}

func (h *Handler) initMCPServer() {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "Contract Review Gateway",
		Version: "1.0.0",
	}, nil)

	for name, worker := range h.workers {
		for _, tool := range worker.GetTools() {
			toolName := fmt.Sprintf("%s_%s", name, tool.Name)
			toolDesc := tool.Description
			w := worker
			mcp.AddTool(server, &mcp.Tool{
				Name:        toolName,
				Description: toolDesc,
			}, h.wrapTool(w, toolName))
		}
	}

	h.server = server
}

func (h *Handler) wrapTool(w Worker, toolName string) func(ctx context.Context, req *mcp.CallToolRequest, input any) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input any) (*mcp.CallToolResult, any, error) {
		inputBytes, _ := json.Marshal(input)
		result, err := w.Execute(ctx, toolName, inputBytes)
		if err != nil {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{
					&mcp.TextContent{Text: err.Error()},
				},
			}, nil, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: string(result)},
			},
		}, nil, nil
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.server == nil {
		http.Error(w, "MCP server not initialized", http.StatusInternalServerError)
		return
	}
	h.server.Run(r.Context(), &mcp.StdioTransport{})
}

func (h *Handler) ExecuteTool(ctx context.Context, toolName string, args json.RawMessage) ([]byte, error) {
	for name, worker := range h.workers {
		fullPrefix := name + "_"
		if len(toolName) > len(fullPrefix) && toolName[:len(fullPrefix)] == fullPrefix {
			shortName := toolName[len(fullPrefix):]
			return worker.Execute(ctx, shortName, args)
		}
	}
	return nil, fmt.Errorf("tool not found: %s", toolName)
}

// Tools lists every registered tool with its full routed name.
func (h *Handler) Tools() []workers.ToolDef {
	var out []workers.ToolDef
	for name, worker := range h.workers {
		for _, tool := range worker.GetTools() {
			out = append(out, workers.ToolDef{
				Name:        fmt.Sprintf("%s_%s", name, tool.Name),
				Description: tool.Description,
			})
		}
	}
	return out
}
