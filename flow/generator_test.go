package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursechat/coursechat/core"
	"github.com/coursechat/coursechat/model"
	"github.com/coursechat/coursechat/tool"
)

// echoTool replays a canned result and records its invocations.
type echoTool struct {
	result string
	err    error
	calls  []map[string]any
}

func (t *echoTool) Name() string        { return "search_course_content" }
func (t *echoTool) Description() string { return "canned search" }

func (t *echoTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string"},
		},
		"required": []string{"query"},
	}
}

func (t *echoTool) Execute(_ *tool.Context, args map[string]any) (string, error) {
	t.calls = append(t.calls, args)
	return t.result, t.err
}

func newRegistry(t *testing.T, tl tool.Tool) *tool.Registry {
	t.Helper()
	r := tool.NewRegistry()
	require.NoError(t, r.Register(tl))
	return r
}

func newToolContext() *tool.Context {
	return tool.NewContext(context.Background(), "s-1", nil)
}

func TestGenerateDirectAnswer(t *testing.T) {
	m := model.NewScriptedModel("scripted").AddText("General knowledge answer.")
	g := NewGenerator(m, newRegistry(t, &echoTool{}))

	answer, err := g.Generate(context.Background(), "What is 2+2?", nil, newToolContext())
	require.NoError(t, err)
	assert.Equal(t, "General knowledge answer.", answer)

	// One model call, with tool schemas advertised.
	require.Len(t, m.Requests, 1)
	assert.NotEmpty(t, m.Requests[0].Tools)
	assert.NotEmpty(t, m.Requests[0].System)
}

func TestGenerateWithToolRound(t *testing.T) {
	m := model.NewScriptedModel("scripted").
		AddToolCall("c1", "search_course_content", `{"query": "mcp basics"}`).
		AddText("MCP is a protocol for tool integration.")
	echo := &echoTool{result: "[Intro to MCP - Lesson 1]\nMCP is a protocol."}
	g := NewGenerator(m, newRegistry(t, echo))

	answer, err := g.Generate(context.Background(), "What is MCP?", nil, newToolContext())
	require.NoError(t, err)
	assert.Equal(t, "MCP is a protocol for tool integration.", answer)

	require.Len(t, echo.calls, 1)
	assert.Equal(t, "mcp basics", echo.calls[0]["query"])

	require.Len(t, m.Requests, 2)
	// Follow-up call carries the tool round but no tool schemas.
	assert.Empty(t, m.Requests[1].Tools)

	last := m.Requests[1].Contents
	require.GreaterOrEqual(t, len(last), 3)
	assert.Equal(t, "tool", last[len(last)-1].Role)
}

func TestGenerateHistoryPrecedesQuery(t *testing.T) {
	m := model.NewScriptedModel("scripted").AddText("ok")
	g := NewGenerator(m, newRegistry(t, &echoTool{}))

	history := []core.Turn{
		{UserMessage: "first question", AssistantMessage: "first answer"},
		{UserMessage: "second question", AssistantMessage: "second answer"},
	}
	_, err := g.Generate(context.Background(), "third question", history, newToolContext())
	require.NoError(t, err)

	contents := m.Requests[0].Contents
	require.Len(t, contents, 5)
	assert.Equal(t, "first question", contents[0].Text())
	assert.Equal(t, "first answer", contents[1].Text())
	assert.Equal(t, "assistant", contents[1].Role)
	assert.Equal(t, "third question", contents[4].Text())
}

func TestGenerateToolRoundBound(t *testing.T) {
	// The model keeps asking for tools; the second round must not offer them,
	// and text from the final response wins.
	m := model.NewScriptedModel("scripted").
		AddToolCall("c1", "search_course_content", `{"query": "a"}`).
		AddText("final answer")
	echo := &echoTool{result: "result"}
	g := NewGenerator(m, newRegistry(t, echo), func(o *Options) { o.MaxToolRounds = 1 })

	answer, err := g.Generate(context.Background(), "q", nil, newToolContext())
	require.NoError(t, err)
	assert.Equal(t, "final answer", answer)
	require.Len(t, m.Requests, 2)
	assert.NotEmpty(t, m.Requests[0].Tools)
	assert.Empty(t, m.Requests[1].Tools)
}

func TestGenerateFallbackWhenNoText(t *testing.T) {
	m := model.NewScriptedModel("scripted").
		AddResponse(&model.Response{Content: core.Content{Role: "assistant"}, FinishReason: "stop"})
	g := NewGenerator(m, newRegistry(t, &echoTool{}))

	answer, err := g.Generate(context.Background(), "q", nil, newToolContext())
	require.NoError(t, err)
	assert.NotEmpty(t, answer)
}

func TestGenerateToolFailureBecomesResultText(t *testing.T) {
	m := model.NewScriptedModel("scripted").
		AddToolCall("c1", "search_course_content", `{"query": "a"}`).
		AddText("degraded but present answer")
	echo := &echoTool{err: errors.New("index corrupted")}
	g := NewGenerator(m, newRegistry(t, echo))

	answer, err := g.Generate(context.Background(), "q", nil, newToolContext())
	require.NoError(t, err)
	assert.Equal(t, "degraded but present answer", answer)

	// The failure text reached the model as the tool result.
	last := m.Requests[1].Contents
	toolContent := last[len(last)-1]
	require.Equal(t, "tool", toolContent.Role)
	part, ok := toolContent.Parts[0].(core.FunctionResponsePart)
	require.True(t, ok)
	assert.Contains(t, part.FunctionResponse.Response, "Tool execution failed")
}

func TestGenerateStoreUnavailableIsFatal(t *testing.T) {
	m := model.NewScriptedModel("scripted").
		AddToolCall("c1", "search_course_content", `{"query": "a"}`)
	echo := &echoTool{err: core.ErrStoreUnavailable}
	g := NewGenerator(m, newRegistry(t, echo))

	_, err := g.Generate(context.Background(), "q", nil, newToolContext())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)
	// No follow-up model call after the fatal tool failure.
	assert.Len(t, m.Requests, 1)
}

func TestGenerateModelFailureIsFatal(t *testing.T) {
	m := model.NewScriptedModel("scripted").AddError(errors.New("connection refused"))
	g := NewGenerator(m, newRegistry(t, &echoTool{}))

	_, err := g.Generate(context.Background(), "q", nil, newToolContext())
	require.Error(t, err)
}

func TestGenerateMalformedArgumentsBecomeResultText(t *testing.T) {
	m := model.NewScriptedModel("scripted").
		AddToolCall("c1", "search_course_content", `{"query": `).
		AddText("answer anyway")
	echo := &echoTool{result: "unused"}
	g := NewGenerator(m, newRegistry(t, echo))

	answer, err := g.Generate(context.Background(), "q", nil, newToolContext())
	require.NoError(t, err)
	assert.Equal(t, "answer anyway", answer)
	assert.Empty(t, echo.calls)
}
