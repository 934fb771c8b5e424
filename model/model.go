// Package model defines the provider-neutral LLM contract used by the
// response generation flow. A model receives system instructions, the
// conversation contents and the advertised tool schemas, and replies with
// either a direct answer or one or more function call requests. Provider
// adapters (model/anthropic) translate this contract to vendor wire formats.
package model

import (
	"context"
	"fmt"

	"github.com/coursechat/coursechat/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema (minimal subset)
}

// Request captures the normalized model input produced by the flow.
type Request struct {
	System   string           `json:"system"` // System instructions (persona + tool policy)
	Contents []core.Content   `json:"contents"`
	Tools    []ToolDefinition `json:"tools,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the model's reply to a single request. Content carries text
// parts and/or function call parts; a response with function calls represents
// the model's structured intent to invoke tools before answering.
type Response struct {
	Content      core.Content `json:"content"`
	FinishReason string       `json:"finish_reason"` // "stop", "tool_use", "max_tokens", ...
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Text concatenates the text parts of the response.
func (r *Response) Text() string { return r.Content.Text() }

// FunctionCalls returns the function call parts of the response in order.
func (r *Response) FunctionCalls() []core.FunctionCall { return r.Content.FunctionCalls() }

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"`
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by the flow to drive generation.
// Complete is a single blocking remote call; retry policy, if any, belongs to
// the implementation, not to callers.
type Model interface {
	Complete(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// ScriptedModel is a lightweight in-memory Model useful for tests. It replays
// a fixed sequence of responses (or errors) regardless of input, recording
// every request it receives.
type ScriptedModel struct {
	info     Info
	script   []scriptStep
	pos      int
	Requests []Request
}

type scriptStep struct {
	resp *Response
	err  error
}

// NewScriptedModel constructs a ScriptedModel with tool support enabled.
func NewScriptedModel(name string) *ScriptedModel {
	return &ScriptedModel{info: Info{Name: name, Provider: "scripted", SupportsTools: true}}
}

// AddText enqueues a direct text answer.
func (m *ScriptedModel) AddText(text string) *ScriptedModel {
	m.script = append(m.script, scriptStep{resp: &Response{
		Content:      core.NewAssistantText(text),
		FinishReason: "stop",
	}})
	return m
}

// AddToolCall enqueues a response requesting a single tool invocation.
func (m *ScriptedModel) AddToolCall(id, name, argsJSON string) *ScriptedModel {
	m.script = append(m.script, scriptStep{resp: &Response{
		Content: core.Content{Role: "assistant", Parts: []core.Part{
			core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: id, Name: name, Arguments: argsJSON}},
		}},
		FinishReason: "tool_use",
	}})
	return m
}

// AddResponse enqueues an arbitrary prebuilt response.
func (m *ScriptedModel) AddResponse(resp *Response) *ScriptedModel {
	m.script = append(m.script, scriptStep{resp: resp})
	return m
}

// AddError enqueues a transport failure.
func (m *ScriptedModel) AddError(err error) *ScriptedModel {
	m.script = append(m.script, scriptStep{err: err})
	return m
}

// Complete implements Model by replaying the next scripted step.
func (m *ScriptedModel) Complete(_ context.Context, req Request) (*Response, error) {
	m.Requests = append(m.Requests, req)
	if m.pos >= len(m.script) {
		return nil, fmt.Errorf("scripted model exhausted after %d calls", len(m.script))
	}
	step := m.script[m.pos]
	m.pos++
	if step.err != nil {
		return nil, step.err
	}
	return step.resp, nil
}

// Info implements the Model interface.
func (m *ScriptedModel) Info() Info { return m.info }
