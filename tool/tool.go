// Package tool implements the function calling subsystem that lets the model
// invoke structured capabilities with schema validated arguments, consistent
// error handling and per-query source tracking.
package tool

import (
	"context"
	"fmt"

	"github.com/coursechat/coursechat/core"
	"github.com/coursechat/coursechat/internal/util"
	"github.com/coursechat/coursechat/logging"
)

// Tool defines the interface for capabilities exposed to the model.
//
// Tool implementations should:
//   - Provide clear, descriptive names (snake_case) and descriptions
//   - Define a proper JSON schema for parameters
//   - Return user-presentable text: the result string is fed back to the
//     model verbatim as the tool result
//   - Be safe for concurrent use; per-query state belongs on the Context
type Tool interface {
	// Name returns the unique identifier used in function call dispatch.
	Name() string

	// Description returns a description provided to the model so it can
	// decide when to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Execute runs the tool with already-validated arguments. The returned
	// string is the ToolCallResult text. Recoverable conditions (no matching
	// course, empty search) must be expressed as normal result text, not
	// errors; returned errors abort or degrade the enclosing turn depending
	// on their kind.
	Execute(toolCtx *Context, args map[string]any) (string, error)
}

// Context is the per-query execution context handed to tools. It accumulates
// the sources surfaced by tool executions during one orchestration cycle;
// the orchestrator reads them after the response generator completes. A fresh
// Context per query is what keeps concurrent queries from sharing source
// state.
type Context struct {
	ctx       context.Context
	sessionID string
	logger    logging.Logger
	sources   []core.Source
}

// NewContext constructs a tool context bound to one query.
func NewContext(ctx context.Context, sessionID string, logger logging.Logger) *Context {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Context{ctx: ctx, sessionID: sessionID, logger: logger}
}

// Context returns the context associated with the enclosing query.
func (tc *Context) Context() context.Context { return tc.ctx }

// SessionID returns the session the query belongs to ("" for sessionless).
func (tc *Context) SessionID() string { return tc.sessionID }

// Logger returns the logger associated with the query.
func (tc *Context) Logger() logging.Logger { return tc.logger }

// AddSource records a citation surfaced by a tool execution.
func (tc *Context) AddSource(s core.Source) { tc.sources = append(tc.sources, s) }

// Sources returns the recorded citations deduplicated by (course, lesson) in
// first-seen order.
func (tc *Context) Sources() []core.Source { return core.DedupSources(tc.sources) }

// ValidationError represents parameter validation errors.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}
