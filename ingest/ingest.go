// Package ingest loads pre-chunked course documents from disk into the
// vector store. Documents are JSON files, one course per file, carrying the
// course metadata and its ordered content chunks.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/coursechat/coursechat/core"
	"github.com/coursechat/coursechat/logging"
	"github.com/coursechat/coursechat/store"
)

// Document is the on-disk shape of one course file.
type Document struct {
	Course core.Course `json:"course"`
	Chunks []Chunk     `json:"chunks"`
}

// Chunk is the on-disk shape of one content chunk.
type Chunk struct {
	Text   string `json:"text"`
	Lesson *int   `json:"lesson,omitempty"`
	Index  int    `json:"index"`
}

// LoadDir parses every .json file in dir, in lexical order.
func LoadDir(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read docs dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	docs := make([]Document, 0, len(names))
	for _, name := range names {
		doc, err := loadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func loadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read course file: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse course file %s: %w", filepath.Base(path), err)
	}
	if doc.Course.Title == "" {
		return Document{}, fmt.Errorf("course file %s: missing course title", filepath.Base(path))
	}
	return doc, nil
}

// Populate adds the documents to the store, skipping courses already present
// so repeated startups do not re-embed existing material.
func Populate(ctx context.Context, vs *store.VectorStore, docs []Document, logger logging.Logger) error {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	for _, doc := range docs {
		if _, exists := vs.Course(doc.Course.Title); exists {
			logger.Debug("course already loaded", "course", doc.Course.Title)
			continue
		}

		if err := vs.AddCourse(ctx, doc.Course); err != nil {
			return fmt.Errorf("add course %q: %w", doc.Course.Title, err)
		}

		chunks := make([]core.Chunk, 0, len(doc.Chunks))
		for _, c := range doc.Chunks {
			chunks = append(chunks, core.Chunk{
				Text:        c.Text,
				CourseTitle: doc.Course.Title,
				Lesson:      c.Lesson,
				Index:       c.Index,
			})
		}
		if err := vs.AddChunks(ctx, chunks); err != nil {
			return fmt.Errorf("add chunks for %q: %w", doc.Course.Title, err)
		}

		logger.Info("course loaded", "course", doc.Course.Title, "chunks", len(chunks))
	}
	return nil
}
