// Package store implements the vector store: an in-process index of embedded
// course chunks plus a course catalog used for fuzzy course-name resolution.
// The index is read-only from the query path; the ingestion pipeline writes
// through AddCourse/AddChunks before serving starts. Search is a brute-force
// cosine scan, which is exact and more than fast enough for a course corpus;
// swapping in an ANN index only requires honoring the same contract.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/coursechat/coursechat/core"
	"github.com/coursechat/coursechat/embedding"
	"github.com/coursechat/coursechat/logging"
)

// Options configures a VectorStore.
type Options struct {
	// MatchThreshold is the minimum cosine similarity for a course-name
	// resolution to be accepted. Below it the lookup reports no match rather
	// than silently returning the nearest wrong course. Tunable.
	MatchThreshold float64

	Logger logging.Logger
}

// VectorStore holds embedded chunks with course/lesson metadata and a course
// catalog for name resolution. Safe for concurrent read-only queries; writes
// (ingestion) must complete before serving.
type VectorStore struct {
	embedder embedding.Embedder
	opts     Options

	mu      sync.RWMutex
	catalog []catalogEntry
	byTitle map[string]core.Course
	chunks  []core.Chunk
}

type catalogEntry struct {
	course    core.Course
	embedding []float32
}

// New constructs an empty VectorStore over the given embedder.
func New(embedder embedding.Embedder, optFns ...func(o *Options)) *VectorStore {
	opts := Options{
		MatchThreshold: 0.55,
		Logger:         logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &VectorStore{
		embedder: embedder,
		opts:     opts,
		byTitle:  map[string]core.Course{},
	}
}

// AddCourse registers a course in the catalog, embedding its title for fuzzy
// resolution. Re-adding a title replaces its metadata.
func (s *VectorStore) AddCourse(ctx context.Context, course core.Course) error {
	if course.Title == "" {
		return fmt.Errorf("course title must not be empty")
	}

	vec, err := s.embedder.Embed(ctx, course.Title)
	if err != nil {
		return fmt.Errorf("embed course title: %w: %w", core.ErrStoreUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byTitle[course.Title]; exists {
		for i := range s.catalog {
			if s.catalog[i].course.Title == course.Title {
				s.catalog[i] = catalogEntry{course: course, embedding: vec}
				break
			}
		}
	} else {
		s.catalog = append(s.catalog, catalogEntry{course: course, embedding: vec})
	}
	s.byTitle[course.Title] = course
	return nil
}

// AddChunks indexes chunks, embedding any whose Embedding is unset. Chunks
// must reference a course already present in the catalog.
func (s *VectorStore) AddChunks(ctx context.Context, chunks []core.Chunk) error {
	var missing []int
	var texts []string
	for i, c := range chunks {
		if len(c.Embedding) == 0 {
			missing = append(missing, i)
			texts = append(texts, c.Text)
		}
	}

	if len(texts) > 0 {
		vecs, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks: %w: %w", core.ErrStoreUnavailable, err)
		}
		for j, i := range missing {
			chunks[i].Embedding = vecs[j]
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		if _, ok := s.byTitle[c.CourseTitle]; !ok {
			return fmt.Errorf("chunk references unknown course %q", c.CourseTitle)
		}
		s.chunks = append(s.chunks, c)
	}
	return nil
}

// ResolveCourseName finds the catalog course whose title embedding is nearest
// to the query text, above the configured similarity threshold. The boolean
// reports whether a confident match was found; a miss is a normal outcome,
// not an error. Errors indicate the store (or its embedding backend) is
// unavailable.
func (s *VectorStore) ResolveCourseName(ctx context.Context, name string) (string, bool, error) {
	vec, err := s.embedder.Embed(ctx, name)
	if err != nil {
		return "", false, fmt.Errorf("embed course name: %w: %w", core.ErrStoreUnavailable, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	best := -1.0
	title := ""
	for _, entry := range s.catalog {
		score := embedding.Cosine(vec, entry.embedding)
		if score > best {
			best = score
			title = entry.course.Title
		}
	}

	if title == "" || best < s.opts.MatchThreshold {
		s.opts.Logger.Debug("course resolution below threshold", "query", name, "best_score", best)
		return "", false, nil
	}

	s.opts.Logger.Debug("course resolved", "query", name, "title", title, "score", best)
	return title, true, nil
}

// Search embeds the query, scores chunks matching the filter and returns up
// to topK hits ranked by descending similarity. An empty result is a valid
// outcome, not an error.
func (s *VectorStore) Search(ctx context.Context, query string, filter core.Filter, topK int) (core.SearchResult, error) {
	if topK <= 0 {
		return core.SearchResult{}, nil
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w: %w", core.ErrStoreUnavailable, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make(core.SearchResult, 0, topK)
	for _, c := range s.chunks {
		if !filter.Matches(c) {
			continue
		}
		hits = append(hits, core.ScoredChunk{Chunk: c, Score: embedding.Cosine(vec, c.Embedding)})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Course returns the catalog metadata for an exact canonical title.
func (s *VectorStore) Course(title string) (core.Course, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byTitle[title]
	return c, ok
}

// LessonLink returns the link of a course lesson, or "" when unknown.
func (s *VectorStore) LessonLink(courseTitle string, lesson int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.byTitle[courseTitle]; ok {
		return c.LessonLink(lesson)
	}
	return ""
}

// CourseTitles returns all canonical course titles in catalog order.
func (s *VectorStore) CourseTitles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	titles := make([]string, len(s.catalog))
	for i, entry := range s.catalog {
		titles[i] = entry.course.Title
	}
	return titles
}

// CourseCount returns the number of cataloged courses.
func (s *VectorStore) CourseCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.catalog)
}

// ChunkCount returns the number of indexed chunks.
func (s *VectorStore) ChunkCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}
