// Package flow implements the response generation loop: a single reasoning
// turn of the model, with bounded tool rounds in between. The loop is the
// only place where model output and tool results meet; retrieved evidence
// reaches the model exclusively through function response parts.
package flow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coursechat/coursechat/core"
	"github.com/coursechat/coursechat/logging"
	"github.com/coursechat/coursechat/model"
	"github.com/coursechat/coursechat/observability"
	"github.com/coursechat/coursechat/tool"
)

// DefaultSystemPrompt is the instruction set used when no override is
// configured: persona plus tool usage policy.
const DefaultSystemPrompt = `You are an educational AI assistant answering questions about course materials.

Tool usage:
- Use search_course_content for questions about specific course content or detailed educational materials.
- Use get_course_outline for questions about course structure, lesson lists, or course overviews.
- Answer general knowledge questions from existing knowledge without using tools.

All responses must be brief, focused, clear and free of meta-commentary about your process.`

// fallbackAnswer is returned when the model produced no usable text by the
// time the loop must terminate.
const fallbackAnswer = "I wasn't able to produce an answer to that question. Please try rephrasing it."

// Options configures a Generator.
type Options struct {
	// MaxToolRounds bounds the number of tool execution rounds per query.
	// The bound is structural: on the final model call the tool schemas are
	// withheld, forcing a direct answer. Tunable; 1 means a single follow-up
	// call after tool use.
	MaxToolRounds int

	// SystemPrompt overrides DefaultSystemPrompt when non-empty.
	SystemPrompt string

	// Metrics enables model latency and tool call instrumentation when
	// non-nil.
	Metrics *observability.Metrics

	Logger logging.Logger
}

// Generator manages a single turn of model reasoning: it composes the model
// request from system instructions, history window, current query and tool
// schemas, executes requested tool calls through the registry and re-invokes
// the model with the tool round appended.
type Generator struct {
	model    model.Model
	registry *tool.Registry
	opts     Options
}

// NewGenerator constructs a Generator over the given model and tool registry.
func NewGenerator(m model.Model, registry *tool.Registry, optFns ...func(o *Options)) *Generator {
	opts := Options{
		MaxToolRounds: 1,
		SystemPrompt:  DefaultSystemPrompt,
		Logger:        logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}

	return &Generator{model: m, registry: registry, opts: opts}
}

// Generate runs one reasoning turn and returns the final answer text.
//
// Model transport failures are fatal for the turn and returned as errors, as
// is core.ErrStoreUnavailable raised by a tool. Any other tool failure is
// converted into formatted tool result text so the model can react to it.
// The tool-round bound guarantees termination with a non-empty answer.
func (g *Generator) Generate(ctx context.Context, query string, history []core.Turn, toolCtx *tool.Context) (string, error) {
	contents := make([]core.Content, 0, 2*len(history)+1)
	for _, t := range history {
		contents = append(contents, core.NewUserText(t.UserMessage), core.NewAssistantText(t.AssistantMessage))
	}
	contents = append(contents, core.NewUserText(query))

	var lastText string
	for round := 0; ; round++ {
		req := model.Request{System: g.opts.SystemPrompt, Contents: contents}
		if round < g.opts.MaxToolRounds {
			req.Tools = g.registry.Definitions()
		}

		start := time.Now()
		resp, err := g.model.Complete(ctx, req)
		if g.opts.Metrics != nil {
			g.opts.Metrics.ObserveModelLatency(time.Since(start))
		}
		g.logLLMCall(start, resp, err)
		if err != nil {
			return "", fmt.Errorf("llm call: %w", err)
		}

		if text := resp.Text(); text != "" {
			lastText = text
		}

		calls := resp.FunctionCalls()
		if len(calls) == 0 || round >= g.opts.MaxToolRounds {
			if lastText == "" {
				lastText = fallbackAnswer
			}
			return lastText, nil
		}

		contents = append(contents, resp.Content)

		toolParts := make([]core.Part, 0, len(calls))
		for _, call := range calls {
			result, err := g.executeCall(toolCtx, call)
			if err != nil {
				return "", err
			}
			toolParts = append(toolParts, core.FunctionResponsePart{
				FunctionResponse: core.FunctionResponse{ID: call.ID, Name: call.Name, Response: result},
			})
		}
		contents = append(contents, core.Content{Role: "tool", Parts: toolParts})
	}
}

// executeCall runs one requested tool call. Recoverable failures come back as
// result text; only store unavailability propagates as an error.
func (g *Generator) executeCall(toolCtx *tool.Context, call core.FunctionCall) (string, error) {
	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			g.opts.Logger.Warn("malformed tool arguments", "tool", call.Name, "error", err.Error())
			return fmt.Sprintf("Tool call failed: malformed arguments for %s.", call.Name), nil
		}
	}

	result, err := g.registry.Execute(toolCtx, call.Name, args)
	if err != nil {
		g.countToolCall(call.Name, "error")
		if errors.Is(err, core.ErrStoreUnavailable) {
			return "", fmt.Errorf("tool %s: %w", call.Name, err)
		}
		return fmt.Sprintf("Tool execution failed: %v", err), nil
	}
	g.countToolCall(call.Name, "ok")
	return result, nil
}

func (g *Generator) countToolCall(name, status string) {
	if g.opts.Metrics != nil {
		g.opts.Metrics.CountToolCall(name, status)
	}
}

func (g *Generator) logLLMCall(start time.Time, resp *model.Response, err error) {
	dur := time.Since(start)
	if cl, ok := g.opts.Logger.(*logging.ChatLogger); ok {
		tokens := 0
		if err == nil && resp.Usage != nil {
			tokens = resp.Usage.TotalTokens
		}
		cl.LogLLMCall(g.model.Info().Name, tokens, dur, err == nil, err)
		return
	}
	if err != nil {
		g.opts.Logger.Error("LLM call failed", "model", g.model.Info().Name, "duration", dur, "error", err.Error())
		return
	}
	g.opts.Logger.Info("LLM call completed", "model", g.model.Info().Name, "duration", dur)
}
