package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/coursechat/coursechat/core"
)

// CourseStore is the slice of the vector store contract the tools consume.
type CourseStore interface {
	ResolveCourseName(ctx context.Context, name string) (string, bool, error)
	Search(ctx context.Context, query string, filter core.Filter, topK int) (core.SearchResult, error)
	Course(title string) (core.Course, bool)
	LessonLink(courseTitle string, lesson int) string
	CourseTitles() []string
}

// SearchOptions configures the course content search tool.
type SearchOptions struct {
	// MaxResults bounds the number of chunks returned per search. Tunable.
	MaxResults int
}

// SearchTool searches course content with fuzzy course name matching and
// optional lesson filtering. It records one Source per unique (course,
// lesson) pair on the query's tool context, in ranked order.
type SearchTool struct {
	store CourseStore
	opts  SearchOptions
}

// NewSearchTool constructs the search tool over the given store.
func NewSearchTool(store CourseStore, optFns ...func(o *SearchOptions)) *SearchTool {
	opts := SearchOptions{MaxResults: 5}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &SearchTool{store: store, opts: opts}
}

// Name returns the tool identifier used in function call dispatch.
func (t *SearchTool) Name() string { return "search_course_content" }

// Description returns the usage guidance shown to the model.
func (t *SearchTool) Description() string {
	return "Search course materials with smart course name matching and lesson filtering"
}

// Parameters returns the JSON schema of the tool arguments.
func (t *SearchTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "What to search for in the course content",
			},
			"course_name": map[string]any{
				"type":        "string",
				"description": "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
			},
			"lesson_number": map[string]any{
				"type":        "integer",
				"description": "Specific lesson number to search within (e.g. 1, 2, 3)",
			},
		},
		"required": []string{"query"},
	}
}

// Execute resolves the optional course reference, builds the metadata filter,
// runs the search and formats the ranked results. Resolution misses and
// empty results are normal tool result text so the model can inform the user
// or retry; only store unavailability surfaces as an error.
func (t *SearchTool) Execute(toolCtx *Context, args map[string]any) (string, error) {
	query, _ := args["query"].(string)

	var filter core.Filter

	if name, ok := stringArg(args, "course_name"); ok {
		title, found, err := t.store.ResolveCourseName(toolCtx.Context(), name)
		if err != nil {
			return "", err
		}
		if !found {
			return noCourseMessage(name, t.store.CourseTitles()), nil
		}
		filter.CourseTitle = title
	}

	if lesson, ok := intArg(args, "lesson_number"); ok {
		filter.Lesson = &lesson
	}

	results, err := t.store.Search(toolCtx.Context(), query, filter, t.opts.MaxResults)
	if err != nil {
		return "", err
	}

	if results.IsEmpty() {
		return noContentMessage(filter), nil
	}

	return t.formatResults(toolCtx, results), nil
}

// formatResults renders each hit as a labeled block in ranked order and
// records the corresponding sources on the tool context.
func (t *SearchTool) formatResults(toolCtx *Context, results core.SearchResult) string {
	blocks := make([]string, 0, len(results))

	for _, hit := range results {
		chunk := hit.Chunk
		src := core.Source{CourseTitle: chunk.CourseTitle, Lesson: chunk.Lesson}
		if chunk.Lesson != nil {
			src.Link = t.store.LessonLink(chunk.CourseTitle, *chunk.Lesson)
		}
		toolCtx.AddSource(src)

		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", src.Label(), chunk.Text))
	}

	return strings.Join(blocks, "\n\n")
}

// noCourseMessage lists the known courses so the model can help the user
// pick one.
func noCourseMessage(name string, titles []string) string {
	if len(titles) == 0 {
		return fmt.Sprintf("No course found matching '%s'.", name)
	}
	return fmt.Sprintf("No course found matching '%s'. Available courses: %s", name, strings.Join(titles, ", "))
}

// noContentMessage mirrors the applied constraints back so repeated identical
// calls produce identical text.
func noContentMessage(filter core.Filter) string {
	var b strings.Builder
	b.WriteString("No relevant content found")
	if filter.CourseTitle != "" {
		fmt.Fprintf(&b, " in course '%s'", filter.CourseTitle)
	}
	if filter.Lesson != nil {
		fmt.Fprintf(&b, " in lesson %d", *filter.Lesson)
	}
	b.WriteString(".")
	return b.String()
}

// stringArg extracts a non-empty string argument.
func stringArg(args map[string]any, key string) (string, bool) {
	s, ok := args[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// intArg extracts an integer argument, tolerating the float64 shape produced
// by JSON decoding.
func intArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
