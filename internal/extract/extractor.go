// Package extract provides text extraction from various document formats.
package extract

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat is returned for file formats the bot cannot read.
// It is definitionally non-transient: callers must not retry it.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// SupportedExtensions lists the file extensions the extractor accepts,
// with the leading dot.
var SupportedExtensions = []string{".pdf", ".docx", ".xlsx", ".rtf", ".txt"}

// Extractor extracts plain text from document files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Supported reports whether ext (with leading dot, any case) is extractable.
func (e *Extractor) Supported(ext string) bool {
	ext = strings.ToLower(ext)
	for _, s := range SupportedExtensions {
		if s == ext {
			return true
		}
	}
	return false
}

// ExtractBytes extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf"). Unknown extensions
// return ErrUnsupportedFormat wrapped with the extension name.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	switch strings.ToLower(ext) {
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".xlsx":
		return extractExcel(content)
	case ".rtf":
		return extractRTF(content)
	case ".txt":
		return extractPlain(content)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}
