package tool

import (
	"fmt"
	"time"

	"github.com/coursechat/coursechat/internal/util"
	"github.com/coursechat/coursechat/model"
)

// Registry dispatches tool executions by name. Registration happens once at
// startup; afterwards the registry is read-only and safe for concurrent use.
// The name-keyed lookup keeps the orchestration loop open to additional tools
// without modification.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: map[string]Tool{}}
}

// Register adds a tool. Registering a duplicate name is a programming error.
func (r *Registry) Register(t Tool) error {
	name := t.Name()
	if name == "" {
		return fmt.Errorf("tool must have a name")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	r.tools[name] = t
	r.order = append(r.order, name)
	return nil
}

// Definitions returns the declarative schemas of all registered tools in
// registration order, for advertising to the model.
func (r *Registry) Definitions() []model.ToolDefinition {
	defs := make([]model.ToolDefinition, 0, len(r.tools))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}

// Execute validates the arguments against the tool's schema and runs the
// tool. Unknown tool names and validation failures are returned as *ToolError
// so the caller can surface them to the model as result text.
func (r *Registry) Execute(toolCtx *Context, name string, args map[string]any) (string, error) {
	t, ok := r.tools[name]
	if !ok {
		return "", NewToolError(name, "tool not found", "UNKNOWN_TOOL")
	}

	logger := toolCtx.Logger()
	start := time.Now()

	if err := util.ValidateParameters(args, t.Parameters()); err != nil {
		logger.Warn("tool argument validation failed", "tool", name, "error", err.Error())
		return "", &ToolError{
			Tool:    name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    "VALIDATION_ERROR",
		}
	}

	result, err := t.Execute(toolCtx, args)
	if err != nil {
		logger.Error("tool execution error", "tool", name, "error", err.Error())
		return "", err
	}

	logger.Info("tool executed", "tool", name, "duration_ms", time.Since(start).Milliseconds())
	return result, nil
}
