package chunker

import (
	"fmt"

	"github.com/xxxsen/qaforge/internal/model"
)

const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// Separators tried coarsest-first when looking for a cut point inside the
// size window. The empty-string fallback of the recursive scheme is the hard
// cut at the window edge.
var separators = []string{"\n\n", "\n", " "}

// Chunker splits document text into overlapping segments of at most size
// runes. Each segment after the first starts with the trailing overlap runes
// of its predecessor, so retrieval never loses text that straddles a cut.
type Chunker struct {
	size    int
	overlap int
}

func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}
	if overlap >= size {
		overlap = size - 1
	}
	return &Chunker{size: size, overlap: overlap}
}

func (c *Chunker) ChunkSize() int {
	return c.size
}

func (c *Chunker) Overlap() int {
	return c.overlap
}

// Split chunks one document. Deterministic for identical input; chunk order
// equals document order. An empty document yields no chunks.
func (c *Chunker) Split(doc model.Document) []model.Chunk {
	fileName := doc.FileName
	if fileName == "" {
		fileName = "unknown"
	}
	fileType := doc.FileType
	if fileType == "" {
		fileType = "unknown"
	}
	parts := c.splitText(doc.Content)
	chunks := make([]model.Chunk, 0, len(parts))
	for i, part := range parts {
		chunks = append(chunks, model.Chunk{
			Content:    part,
			ChunkID:    fmt.Sprintf("%s_%d", fileName, i),
			SourceFile: fileName,
			FileType:   fileType,
			ChunkIndex: i,
		})
	}
	return chunks
}

func (c *Chunker) splitText(text string) []string {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}
	if n <= c.size {
		return []string{text}
	}
	var out []string
	start := 0
	for start < n {
		end := start + c.size
		if end >= n {
			out = append(out, string(runes[start:]))
			break
		}
		cut := findCut(runes, start, end)
		out = append(out, string(runes[start:cut]))
		next := cut - c.overlap
		// A segment shorter than the overlap advances without one; the
		// alternative is no forward progress.
		if next <= start {
			next = cut
		}
		start = next
	}
	return out
}

// findCut picks the end of the current segment: just past the last occurrence
// of the coarsest separator that lands strictly inside the window, or the raw
// window edge when no separator fits.
func findCut(runes []rune, start, end int) int {
	for _, sep := range separators {
		sepRunes := []rune(sep)
		if idx := lastIndex(runes, start, end, sepRunes); idx > start {
			return idx + len(sepRunes)
		}
	}
	return end
}

func lastIndex(runes []rune, start, end int, sep []rune) int {
	for i := end - len(sep); i >= start; i-- {
		matched := true
		for j := range sep {
			if runes[i+j] != sep[j] {
				matched = false
				break
			}
		}
		if matched {
			return i
		}
	}
	return -1
}
