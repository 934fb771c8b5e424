package tool

import (
	"fmt"
	"strings"

	"github.com/coursechat/coursechat/core"
)

// OutlineTool returns the structure of a course: title, link, instructor and
// the complete lesson list. It lets the model answer "what does this course
// cover" questions without a content search.
type OutlineTool struct {
	store CourseStore
}

// NewOutlineTool constructs the outline tool over the given store.
func NewOutlineTool(store CourseStore) *OutlineTool {
	return &OutlineTool{store: store}
}

// Name returns the tool identifier used in function call dispatch.
func (t *OutlineTool) Name() string { return "get_course_outline" }

// Description returns the usage guidance shown to the model.
func (t *OutlineTool) Description() string {
	return "Get course structure including title, link, and complete lesson list"
}

// Parameters returns the JSON schema of the tool arguments.
func (t *OutlineTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"course_name": map[string]any{
				"type":        "string",
				"description": "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
			},
		},
		"required": []string{"course_name"},
	}
}

// Execute resolves the course reference and formats its outline. A failed
// resolution is a normal tool result listing the available courses.
func (t *OutlineTool) Execute(toolCtx *Context, args map[string]any) (string, error) {
	name, _ := args["course_name"].(string)

	title, found, err := t.store.ResolveCourseName(toolCtx.Context(), name)
	if err != nil {
		return "", err
	}
	if !found {
		return noCourseMessage(name, t.store.CourseTitles()), nil
	}

	course, ok := t.store.Course(title)
	if !ok {
		// Resolution is derived from the catalog, so this indicates a bug.
		return "", NewToolError(t.Name(), fmt.Sprintf("resolved course %q missing from catalog", title), "EXECUTION_ERROR")
	}

	toolCtx.AddSource(core.Source{CourseTitle: course.Title, Link: course.Link})

	var b strings.Builder
	if course.Link != "" {
		fmt.Fprintf(&b, "# [%s](%s)\n", course.Title, course.Link)
	} else {
		fmt.Fprintf(&b, "# %s\n", course.Title)
	}
	if course.Instructor != "" {
		fmt.Fprintf(&b, "**Instructor:** %s\n", course.Instructor)
	}

	if len(course.Lessons) == 0 {
		b.WriteString("\n**No lessons found**\n")
		return b.String(), nil
	}

	fmt.Fprintf(&b, "\n**Lessons (%d total):**\n", len(course.Lessons))
	for _, lesson := range course.Lessons {
		if lesson.Link != "" {
			fmt.Fprintf(&b, "- Lesson %d: [%s](%s)\n", lesson.Number, lesson.Title, lesson.Link)
		} else {
			fmt.Fprintf(&b, "- Lesson %d: %s\n", lesson.Number, lesson.Title)
		}
	}

	return b.String(), nil
}
