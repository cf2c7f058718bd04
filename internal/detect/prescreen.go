package detect

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/chastnik/mm-bot/internal/catalog"
)

// prescreen ranks a document's chunks by keyword relevance to an artifact so
// only the most promising excerpts of an oversized document are sent to the
// model. It is an in-memory index over one document's chunks, built once per
// document and queried once per artifact.
type prescreen struct {
	index  bleve.Index
	chunks []Chunk
}

// newPrescreen indexes the chunks in memory. The standard analyzer
// (lowercase + tokenize, no stemming) is used: artifact hints are exact
// domain terms, Russian stemming would distort them.
func newPrescreen(chunks []Chunk) (*prescreen, error) {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("prescreen index: %w", err)
	}
	for _, ch := range chunks {
		doc := map[string]interface{}{"content": ch.Text}
		if err := index.Index(strconv.Itoa(ch.Index), doc); err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("prescreen index chunk %d: %w", ch.Index, err)
		}
	}
	return &prescreen{index: index, chunks: chunks}, nil
}

// Close releases the in-memory index.
func (p *prescreen) Close() error {
	return p.index.Close()
}

// Rank returns up to limit chunks most relevant to the artifact, best first.
// When the query matches nothing, the first chunks are returned in document
// order so detection still sees the document's head.
func (p *prescreen) Rank(def catalog.Definition, limit int) []Chunk {
	if limit <= 0 || len(p.chunks) <= limit {
		out := make([]Chunk, len(p.chunks))
		copy(out, p.chunks)
		return out
	}

	query := def.Name
	if len(def.SearchHints) > 0 {
		query += " " + strings.Join(def.SearchHints, " ")
	}
	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	req.Size = limit
	results, err := p.index.Search(req)
	if err != nil || len(results.Hits) == 0 {
		return p.chunks[:limit]
	}

	picked := make([]Chunk, 0, limit)
	for _, hit := range results.Hits {
		idx, err := strconv.Atoi(hit.ID)
		if err != nil || idx < 0 || idx >= len(p.chunks) {
			continue
		}
		picked = append(picked, p.chunks[idx])
	}
	if len(picked) == 0 {
		return p.chunks[:limit]
	}
	// Present excerpts to the model in document order.
	sort.Slice(picked, func(i, j int) bool { return picked[i].Index < picked[j].Index })
	return picked
}
