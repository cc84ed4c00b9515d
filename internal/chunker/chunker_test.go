package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/qaforge/internal/model"
)

func TestSplitEmptyDocument(t *testing.T) {
	c := New(500, 50)
	chunks := c.Split(model.Document{Content: "", FileName: "empty.txt", FileType: model.FileTypeText})
	require.Empty(t, chunks)
}

func TestSplitShortDocument(t *testing.T) {
	c := New(500, 50)
	chunks := c.Split(model.Document{Content: "a tiny document", FileName: "tiny.txt", FileType: model.FileTypeText})
	require.Len(t, chunks, 1)
	require.Equal(t, "a tiny document", chunks[0].Content)
	require.Equal(t, "tiny.txt_0", chunks[0].ChunkID)
	require.Equal(t, 0, chunks[0].ChunkIndex)
	require.Equal(t, "tiny.txt", chunks[0].SourceFile)
}

func TestSplitDefaultsMissingFileName(t *testing.T) {
	c := New(500, 50)
	chunks := c.Split(model.Document{Content: "no provenance"})
	require.Len(t, chunks, 1)
	require.Equal(t, "unknown_0", chunks[0].ChunkID)
	require.Equal(t, "unknown", chunks[0].SourceFile)
	require.Equal(t, "unknown", chunks[0].FileType)
}

func TestSplitOverlapInvariant(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 60; i++ {
		sb.WriteString("the quick brown fox jumps over the lazy dog ")
	}
	doc := model.Document{Content: sb.String(), FileName: "doc.txt", FileType: model.FileTypeText}

	c := New(500, 50)
	chunks := c.Split(doc)
	require.GreaterOrEqual(t, len(chunks), 2)

	for i := 0; i < len(chunks)-1; i++ {
		prev := []rune(chunks[i].Content)
		next := []rune(chunks[i+1].Content)
		require.Greater(t, len(prev), c.Overlap())
		tail := string(prev[len(prev)-c.Overlap():])
		head := string(next[:c.Overlap()])
		require.Equal(t, tail, head, "chunk %d/%d overlap mismatch", i, i+1)
	}
	for i, chunk := range chunks {
		require.Equal(t, i, chunk.ChunkIndex)
		require.Equal(t, fmt.Sprintf("doc.txt_%d", i), chunk.ChunkID)
	}
}

func TestSplitPrefersParagraphBoundary(t *testing.T) {
	para := strings.Repeat("alpha ", 40)
	text := para + "\n\n" + para + "\n\n" + para + "\n\n" + para
	c := New(500, 50)
	chunks := c.Split(model.Document{Content: text, FileName: "p.md", FileType: model.FileTypeMarkdown})
	require.GreaterOrEqual(t, len(chunks), 2)
	require.True(t, strings.HasSuffix(chunks[0].Content, "\n\n"),
		"first chunk should end at a paragraph break, got %q", chunks[0].Content[len(chunks[0].Content)-10:])
	require.LessOrEqual(t, len([]rune(chunks[0].Content)), 500)
}

func TestSplitHardCutWithoutSeparators(t *testing.T) {
	text := strings.Repeat("a", 1200)
	c := New(500, 50)
	chunks := c.Split(model.Document{Content: text, FileName: "blob.txt", FileType: model.FileTypeText})
	require.Len(t, chunks, 3)
	require.Len(t, chunks[0].Content, 500)
	require.Len(t, chunks[1].Content, 500)
	require.Len(t, chunks[2].Content, 300)
}

func TestSplitDeterministic(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString("sentence number with a handful of words in it.\n")
	}
	doc := model.Document{Content: sb.String(), FileName: "d.txt", FileType: model.FileTypeText}
	c := New(500, 50)
	first := c.Split(doc)
	second := c.Split(doc)
	require.Equal(t, first, second)
}

func TestNewAppliesDefaults(t *testing.T) {
	c := New(0, -1)
	require.Equal(t, DefaultChunkSize, c.ChunkSize())
	require.Equal(t, DefaultChunkOverlap, c.Overlap())

	clamped := New(10, 50)
	require.Equal(t, 9, clamped.Overlap())
}
