// Package models defines core data structures for documents, findings, and events.
package models

import "time"

// DocumentOrigin identifies where a source document came from.
type DocumentOrigin string

const (
	OriginUpload     DocumentOrigin = "upload"
	OriginConfluence DocumentOrigin = "confluence"
)

// ExtractionStatus tracks whether text extraction of a document succeeded.
type ExtractionStatus string

const (
	ExtractionOK     ExtractionStatus = "ok"
	ExtractionFailed ExtractionStatus = "failed"
)

// SourceDocument is one normalized input document owned by a single session.
// Text is empty when extraction failed; the document is still recorded so
// the user sees what was received.
type SourceDocument struct {
	ID          string           `json:"id"`
	Origin      DocumentOrigin   `json:"origin"`
	DisplayName string           `json:"display_name"`
	Format      string           `json:"format,omitempty"` // file extension or "confluence"
	URL         string           `json:"url,omitempty"`
	Text        string           `json:"-"`
	Status      ExtractionStatus `json:"extraction_status"`
	FailReason  string           `json:"fail_reason,omitempty"`
	Pages       int              `json:"pages"`
	SizeBytes   int              `json:"size_bytes,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Usable reports whether the document contributes text to analysis.
func (d *SourceDocument) Usable() bool {
	return d.Status == ExtractionOK && d.Text != ""
}
