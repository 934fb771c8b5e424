package core

import (
	"fmt"
	"strings"
)

// Lesson is one entry of a course outline.
type Lesson struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Link   string `json:"link,omitempty"`
}

// Course holds the catalog metadata of a single course. The title is the
// canonical identifier; chunk metadata references it verbatim.
type Course struct {
	Title      string   `json:"title"`
	Link       string   `json:"link,omitempty"`
	Instructor string   `json:"instructor,omitempty"`
	Lessons    []Lesson `json:"lessons,omitempty"`
}

// LessonLink returns the link of the lesson with the given number, or "".
func (c Course) LessonLink(number int) string {
	for _, l := range c.Lessons {
		if l.Number == number {
			return l.Link
		}
	}
	return ""
}

// Chunk is a unit of retrievable text produced by the ingestion pipeline.
// Chunks are immutable once indexed; this core only reads them.
type Chunk struct {
	Text        string    `json:"text"`
	CourseTitle string    `json:"course_title"`
	Lesson      *int      `json:"lesson,omitempty"` // nil when not lesson-scoped
	Index       int       `json:"index"`            // sequence position within the course
	Embedding   []float32 `json:"embedding,omitempty"`
}

// Filter is a conjunction of metadata constraints narrowing a vector search.
// A zero field means unconstrained on that dimension.
type Filter struct {
	CourseTitle string
	Lesson      *int
}

// Matches reports whether the chunk satisfies every constraint of the filter.
func (f Filter) Matches(c Chunk) bool {
	if f.CourseTitle != "" && c.CourseTitle != f.CourseTitle {
		return false
	}
	if f.Lesson != nil && (c.Lesson == nil || *c.Lesson != *f.Lesson) {
		return false
	}
	return true
}

// IsZero reports whether the filter constrains nothing.
func (f Filter) IsZero() bool { return f.CourseTitle == "" && f.Lesson == nil }

// ScoredChunk is a single ranked search hit.
type ScoredChunk struct {
	Chunk Chunk
	Score float64 // cosine similarity of normalized embeddings
}

// SearchResult is an ordered sequence of hits ranked by descending score,
// bounded to the requested top-K. An empty result is a valid outcome.
type SearchResult []ScoredChunk

// IsEmpty reports whether the search produced no hits.
func (r SearchResult) IsEmpty() bool { return len(r) == 0 }

// Source is a citation attached to an answer, traceable to a retrieved chunk.
type Source struct {
	CourseTitle string `json:"course_title"`
	Lesson      *int   `json:"lesson,omitempty"`
	Link        string `json:"link,omitempty"`
}

// Label renders the source as "Course - Lesson N" (or just the course title).
func (s Source) Label() string {
	if s.Lesson == nil {
		return s.CourseTitle
	}
	return fmt.Sprintf("%s - Lesson %d", s.CourseTitle, *s.Lesson)
}

// Key returns the dedup identity of the source: its (course, lesson) pair.
func (s Source) Key() string {
	if s.Lesson == nil {
		return s.CourseTitle
	}
	return fmt.Sprintf("%s\x00%d", s.CourseTitle, *s.Lesson)
}

// DedupSources removes duplicate (course, lesson) pairs preserving first-seen
// order.
func DedupSources(sources []Source) []Source {
	seen := make(map[string]struct{}, len(sources))
	out := make([]Source, 0, len(sources))
	for _, s := range sources {
		k := s.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

// JoinSourceLabels renders sources as a comma separated list, mostly for logs.
func JoinSourceLabels(sources []Source) string {
	labels := make([]string, len(sources))
	for i, s := range sources {
		labels[i] = s.Label()
	}
	return strings.Join(labels, ", ")
}
