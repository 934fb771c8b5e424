package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursechat/coursechat/core"
)

func intPtr(n int) *int { return &n }

// fakeStore is a scriptable CourseStore for tool tests.
type fakeStore struct {
	courses    map[string]core.Course
	titles     []string
	resolved   map[string]string
	results    core.SearchResult
	resolveErr error
	searchErr  error

	gotQuery  string
	gotFilter core.Filter
	gotTopK   int
}

func (f *fakeStore) ResolveCourseName(_ context.Context, name string) (string, bool, error) {
	if f.resolveErr != nil {
		return "", false, f.resolveErr
	}
	title, ok := f.resolved[name]
	return title, ok, nil
}

func (f *fakeStore) Search(_ context.Context, query string, filter core.Filter, topK int) (core.SearchResult, error) {
	f.gotQuery = query
	f.gotFilter = filter
	f.gotTopK = topK
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

func (f *fakeStore) Course(title string) (core.Course, bool) {
	c, ok := f.courses[title]
	return c, ok
}

func (f *fakeStore) LessonLink(courseTitle string, lesson int) string {
	if c, ok := f.courses[courseTitle]; ok {
		return c.LessonLink(lesson)
	}
	return ""
}

func (f *fakeStore) CourseTitles() []string { return f.titles }

func newToolContext() *Context {
	return NewContext(context.Background(), "s-1", nil)
}

func TestSearchToolExecute(t *testing.T) {
	store := &fakeStore{
		resolved: map[string]string{"MCP": "Intro to MCP"},
		courses: map[string]core.Course{
			"Intro to MCP": {
				Title:   "Intro to MCP",
				Lessons: []core.Lesson{{Number: 1, Title: "Basics", Link: "https://example.com/1"}},
			},
		},
		results: core.SearchResult{
			{Chunk: core.Chunk{Text: "MCP is a protocol.", CourseTitle: "Intro to MCP", Lesson: intPtr(1)}, Score: 0.9},
			{Chunk: core.Chunk{Text: "Servers expose tools.", CourseTitle: "Intro to MCP", Lesson: intPtr(1)}, Score: 0.8},
		},
	}
	searchTool := NewSearchTool(store)
	toolCtx := newToolContext()

	out, err := searchTool.Execute(toolCtx, map[string]any{
		"query":         "what is MCP",
		"course_name":   "MCP",
		"lesson_number": float64(1),
	})
	require.NoError(t, err)

	assert.Equal(t, "what is MCP", store.gotQuery)
	assert.Equal(t, "Intro to MCP", store.gotFilter.CourseTitle)
	require.NotNil(t, store.gotFilter.Lesson)
	assert.Equal(t, 1, *store.gotFilter.Lesson)
	assert.Equal(t, 5, store.gotTopK)

	assert.Contains(t, out, "[Intro to MCP - Lesson 1]")
	assert.Contains(t, out, "MCP is a protocol.")
	assert.Contains(t, out, "Servers expose tools.")

	// Both hits share (course, lesson); one deduplicated source with link.
	sources := toolCtx.Sources()
	require.Len(t, sources, 1)
	assert.Equal(t, "Intro to MCP", sources[0].CourseTitle)
	assert.Equal(t, "https://example.com/1", sources[0].Link)
}

func TestSearchToolUnresolvedCourse(t *testing.T) {
	store := &fakeStore{titles: []string{"Intro to MCP", "Advanced Retrieval"}}
	searchTool := NewSearchTool(store)
	toolCtx := newToolContext()

	out, err := searchTool.Execute(toolCtx, map[string]any{
		"query":       "anything",
		"course_name": "gardening",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "No course found matching 'gardening'")
	assert.Contains(t, out, "Intro to MCP")
	assert.Empty(t, toolCtx.Sources())
}

func TestSearchToolEmptyResults(t *testing.T) {
	store := &fakeStore{resolved: map[string]string{"MCP": "Intro to MCP"}}
	searchTool := NewSearchTool(store)
	toolCtx := newToolContext()

	out, err := searchTool.Execute(toolCtx, map[string]any{
		"query":         "nothing here",
		"course_name":   "MCP",
		"lesson_number": float64(3),
	})
	require.NoError(t, err)
	assert.Equal(t, "No relevant content found in course 'Intro to MCP' in lesson 3.", out)
	assert.Empty(t, toolCtx.Sources())

	// Identical call yields identical text.
	again, err := searchTool.Execute(newToolContext(), map[string]any{
		"query":         "nothing here",
		"course_name":   "MCP",
		"lesson_number": float64(3),
	})
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestSearchToolStoreError(t *testing.T) {
	store := &fakeStore{searchErr: core.ErrStoreUnavailable}
	searchTool := NewSearchTool(store)

	_, err := searchTool.Execute(newToolContext(), map[string]any{"query": "q"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)
}

func TestSearchToolMaxResultsOption(t *testing.T) {
	store := &fakeStore{}
	searchTool := NewSearchTool(store, func(o *SearchOptions) { o.MaxResults = 2 })

	_, err := searchTool.Execute(newToolContext(), map[string]any{"query": "q"})
	require.NoError(t, err)
	assert.Equal(t, 2, store.gotTopK)
}

func TestOutlineToolExecute(t *testing.T) {
	store := &fakeStore{
		resolved: map[string]string{"MCP": "Intro to MCP"},
		courses: map[string]core.Course{
			"Intro to MCP": {
				Title:      "Intro to MCP",
				Link:       "https://example.com/mcp",
				Instructor: "Ada",
				Lessons: []core.Lesson{
					{Number: 1, Title: "Basics", Link: "https://example.com/mcp/1"},
					{Number: 2, Title: "Servers"},
				},
			},
		},
	}
	outlineTool := NewOutlineTool(store)
	toolCtx := newToolContext()

	out, err := outlineTool.Execute(toolCtx, map[string]any{"course_name": "MCP"})
	require.NoError(t, err)

	assert.Contains(t, out, "[Intro to MCP](https://example.com/mcp)")
	assert.Contains(t, out, "**Instructor:** Ada")
	assert.Contains(t, out, "**Lessons (2 total):**")
	assert.Contains(t, out, "Lesson 1: [Basics](https://example.com/mcp/1)")
	assert.Contains(t, out, "Lesson 2: Servers")

	sources := toolCtx.Sources()
	require.Len(t, sources, 1)
	assert.Equal(t, "Intro to MCP", sources[0].CourseTitle)
	assert.Equal(t, "https://example.com/mcp", sources[0].Link)
}

func TestOutlineToolUnresolvedCourse(t *testing.T) {
	store := &fakeStore{titles: []string{"Intro to MCP"}}
	outlineTool := NewOutlineTool(store)

	out, err := outlineTool.Execute(newToolContext(), map[string]any{"course_name": "gardening"})
	require.NoError(t, err)
	assert.Contains(t, out, "No course found matching 'gardening'")
}

func TestOutlineToolResolveError(t *testing.T) {
	store := &fakeStore{resolveErr: errors.New("down")}
	outlineTool := NewOutlineTool(store)

	_, err := outlineTool.Execute(newToolContext(), map[string]any{"course_name": "MCP"})
	require.Error(t, err)
}
