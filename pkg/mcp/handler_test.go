package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericksa/contractreview/internal/workers"
)

type fakeWorker struct {
	lastName string
}

func (f *fakeWorker) GetTools() []workers.ToolDef {
	return []workers.ToolDef{
		{Name: "review", Description: "Review a contract"},
		{Name: "classify", Description: "Identify the contract type"},
	}
}

func (f *fakeWorker) Execute(ctx context.Context, name string, input json.RawMessage) ([]byte, error) {
	f.lastName = name
	return []byte(`{"ok":true}`), nil
}

func TestHandler_ToolsArePrefixed(t *testing.T) {
	h := NewHandler(&fakeWorker{})

	tools := h.Tools()
	require.Len(t, tools, 2)

	names := []string{tools[0].Name, tools[1].Name}
	assert.Contains(t, names, "contract_review")
	assert.Contains(t, names, "contract_classify")
}

func TestHandler_ExecuteToolRoutesByPrefix(t *testing.T) {
	w := &fakeWorker{}
	h := NewHandler(w)

	out, err := h.ExecuteTool(context.Background(), "contract_review", []byte(`{}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(out))
	assert.Equal(t, "review", w.lastName)

	_, err = h.ExecuteTool(context.Background(), "unknown_tool", []byte(`{}`))
	assert.Error(t, err)
}
