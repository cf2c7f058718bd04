// Package detect runs artifact detection over session documents using the
// language-model backend and aggregates findings into per-artifact verdicts.
package detect

import (
	"strings"
)

// Chunk is one word-window of a document's text.
type Chunk struct {
	Index int
	Text  string
}

// Chunker splits text into overlapping word-based chunks. Documents shorter
// than one chunk pass through as a single chunk.
type Chunker struct {
	chunkWords   int
	overlapWords int
}

// NewChunker creates a chunker with the given window size and overlap (in words).
func NewChunker(chunkWords, overlapWords int) *Chunker {
	return &Chunker{chunkWords: chunkWords, overlapWords: overlapWords}
}

// Chunk splits text into overlapping windows.
func (c *Chunker) Chunk(text string) []Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if len(words) <= c.chunkWords {
		return []Chunk{{Index: 0, Text: strings.Join(words, " ")}}
	}
	step := c.chunkWords - c.overlapWords
	if step <= 0 {
		step = 1
	}
	chunks := make([]Chunk, 0, len(words)/step+1)
	index := 0
	for i := 0; i < len(words); i += step {
		end := i + c.chunkWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, Chunk{Index: index, Text: strings.Join(words[i:end], " ")})
		index++
		if end >= len(words) {
			break
		}
	}
	return chunks
}
