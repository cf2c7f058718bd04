// Package normalize converts uploaded files and Confluence links into
// canonical SourceDocuments with plain-text content.
package normalize

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chastnik/mm-bot/internal/confluence"
	"github.com/chastnik/mm-bot/internal/extract"
	"github.com/chastnik/mm-bot/internal/models"
)

// Normalizer turns raw inputs into SourceDocuments. Extraction failures are
// recorded on the document, never returned: one broken file must not abort
// intake of the rest of a batch.
type Normalizer struct {
	extractor  *extract.Extractor
	confluence confluence.Fetcher
	logger     *zap.Logger
}

// NewNormalizer creates a Normalizer. fetcher may be nil when Confluence is
// not configured; links then normalize to failed documents.
func NewNormalizer(fetcher confluence.Fetcher, logger *zap.Logger) *Normalizer {
	return &Normalizer{
		extractor:  extract.NewExtractor(),
		confluence: fetcher,
		logger:     logger,
	}
}

// FromUpload normalizes an uploaded file.
func (n *Normalizer) FromUpload(name string, data []byte) *models.SourceDocument {
	ext := strings.ToLower(filepath.Ext(name))
	doc := &models.SourceDocument{
		ID:          uuid.New().String(),
		Origin:      models.OriginUpload,
		DisplayName: name,
		Format:      ext,
		SizeBytes:   len(data),
		CreatedAt:   time.Now(),
	}

	text, err := n.extractor.ExtractBytes(data, ext)
	if err != nil {
		doc.Status = models.ExtractionFailed
		doc.FailReason = failReason(err)
		n.logger.Warn("document extraction failed",
			zap.String("name", name), zap.String("format", ext), zap.Error(err))
		return doc
	}
	doc.Status = models.ExtractionOK
	doc.Text = text
	doc.Pages = extract.CountPages(text)
	return doc
}

// FromConfluence normalizes a Confluence link by fetching the page tree.
func (n *Normalizer) FromConfluence(ctx context.Context, url string) *models.SourceDocument {
	doc := &models.SourceDocument{
		ID:          uuid.New().String(),
		Origin:      models.OriginConfluence,
		DisplayName: url,
		Format:      "confluence",
		URL:         url,
		CreatedAt:   time.Now(),
	}
	if n.confluence == nil {
		doc.Status = models.ExtractionFailed
		doc.FailReason = "confluence_not_configured"
		n.logger.Warn("confluence link received but confluence is not configured", zap.String("url", url))
		return doc
	}

	tree, err := n.confluence.FetchPageTree(ctx, url)
	if err != nil {
		doc.Status = models.ExtractionFailed
		doc.FailReason = failReason(err)
		n.logger.Warn("confluence fetch failed", zap.String("url", url), zap.Error(err))
		return doc
	}
	doc.DisplayName = "Confluence: " + tree.Title
	doc.Status = models.ExtractionOK
	doc.Text = tree.Text
	doc.Pages = tree.Pages
	return doc
}

// failReason classifies an extraction error for user-facing warnings.
func failReason(err error) string {
	if errors.Is(err, extract.ErrUnsupportedFormat) {
		return "unsupported_format"
	}
	return "extraction_failed"
}
