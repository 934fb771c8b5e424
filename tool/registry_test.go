package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTool struct {
	name   string
	result string
	err    error
}

func (t *staticTool) Name() string        { return t.name }
func (t *staticTool) Description() string { return "static test tool" }

func (t *staticTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string"},
		},
		"required": []string{"query"},
	}
}

func (t *staticTool) Execute(_ *Context, _ map[string]any) (string, error) {
	return t.result, t.err
}

func TestRegistryRegisterAndDefinitions(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&staticTool{name: "beta"}))
	require.NoError(t, r.Register(&staticTool{name: "alpha"}))

	defs := r.Definitions()
	require.Len(t, defs, 2)
	// Registration order, not lexical order.
	assert.Equal(t, "beta", defs[0].Name)
	assert.Equal(t, "alpha", defs[1].Name)
	assert.NotNil(t, defs[0].Parameters)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&staticTool{name: "dup"}))
	assert.Error(t, r.Register(&staticTool{name: "dup"}))
}

func TestRegistryExecuteUnknownTool(t *testing.T) {
	r := NewRegistry()

	_, err := r.Execute(newToolContext(), "ghost", map[string]any{})
	require.Error(t, err)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "UNKNOWN_TOOL", toolErr.Code)
}

func TestRegistryExecuteValidation(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&staticTool{name: "echo", result: "ok"}))

	_, err := r.Execute(newToolContext(), "echo", map[string]any{})
	require.Error(t, err)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)

	out, err := r.Execute(newToolContext(), "echo", map[string]any{"query": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}
