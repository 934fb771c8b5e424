package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursechat/coursechat/embedding"
	"github.com/coursechat/coursechat/store"
)

const courseJSON = `{
  "course": {
    "title": "Intro to MCP",
    "link": "https://example.com/mcp",
    "instructor": "Ada",
    "lessons": [
      {"number": 1, "title": "Basics", "link": "https://example.com/mcp/1"}
    ]
  },
  "chunks": [
    {"text": "MCP is a protocol.", "lesson": 1, "index": 0},
    {"text": "Servers expose tools.", "index": 1}
  ]
}`

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "mcp.json", courseJSON)
	writeDoc(t, dir, "notes.txt", "ignored")

	docs, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "Intro to MCP", doc.Course.Title)
	require.Len(t, doc.Chunks, 2)
	require.NotNil(t, doc.Chunks[0].Lesson)
	assert.Equal(t, 1, *doc.Chunks[0].Lesson)
	assert.Nil(t, doc.Chunks[1].Lesson)
}

func TestLoadDirRejectsMissingTitle(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "bad.json", `{"course": {}, "chunks": []}`)

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing course title")
}

func TestLoadDirRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "bad.json", `{`)

	_, err := LoadDir(dir)
	assert.Error(t, err)
}

func TestPopulate(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "mcp.json", courseJSON)

	docs, err := LoadDir(dir)
	require.NoError(t, err)

	vs := store.New(embedding.NewMockEmbedder(16))
	require.NoError(t, Populate(context.Background(), vs, docs, nil))

	assert.Equal(t, 1, vs.CourseCount())
	assert.Equal(t, 2, vs.ChunkCount())

	// Re-populating skips loaded courses instead of duplicating chunks.
	require.NoError(t, Populate(context.Background(), vs, docs, nil))
	assert.Equal(t, 2, vs.ChunkCount())
}
