package normalize

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/chastnik/mm-bot/internal/confluence"
	"github.com/chastnik/mm-bot/internal/models"
)

type stubFetcher struct {
	tree *confluence.PageTree
	err  error
}

func (s *stubFetcher) FetchPageTree(ctx context.Context, url string) (*confluence.PageTree, error) {
	return s.tree, s.err
}

func TestFromUpload_txt(t *testing.T) {
	n := NewNormalizer(nil, zap.NewNop())
	doc := n.FromUpload("заметки.txt", []byte("Паспорт проекта"))
	if doc.Status != models.ExtractionOK {
		t.Fatalf("status = %v, want ok", doc.Status)
	}
	if doc.Text != "Паспорт проекта" {
		t.Errorf("unexpected text: %q", doc.Text)
	}
	if doc.Origin != models.OriginUpload || doc.Format != ".txt" {
		t.Errorf("unexpected origin/format: %v %q", doc.Origin, doc.Format)
	}
	if doc.ID == "" {
		t.Error("document should get an id")
	}
}

func TestFromUpload_unsupportedFormat(t *testing.T) {
	n := NewNormalizer(nil, zap.NewNop())
	doc := n.FromUpload("installer.exe", []byte{0x4d, 0x5a})
	if doc.Status != models.ExtractionFailed {
		t.Fatalf("status = %v, want failed", doc.Status)
	}
	if doc.FailReason != "unsupported_format" {
		t.Errorf("fail reason = %q, want unsupported_format", doc.FailReason)
	}
	if doc.Usable() {
		t.Error("failed document must not be usable")
	}
}

func TestFromUpload_corruptFile(t *testing.T) {
	n := NewNormalizer(nil, zap.NewNop())
	doc := n.FromUpload("битый.docx", []byte("definitely not a zip"))
	if doc.Status != models.ExtractionFailed {
		t.Fatalf("status = %v, want failed", doc.Status)
	}
	if doc.FailReason != "extraction_failed" {
		t.Errorf("fail reason = %q, want extraction_failed", doc.FailReason)
	}
}

func TestFromConfluence_notConfigured(t *testing.T) {
	n := NewNormalizer(nil, zap.NewNop())
	doc := n.FromConfluence(context.Background(), "https://confluence.example.com/pages/1")
	if doc.Status != models.ExtractionFailed || doc.FailReason != "confluence_not_configured" {
		t.Errorf("unexpected doc: %+v", doc)
	}
}

func TestFromConfluence(t *testing.T) {
	fetcher := &stubFetcher{tree: &confluence.PageTree{
		Title: "Паспорт проекта",
		Text:  "содержимое страницы",
		Pages: 3,
	}}
	n := NewNormalizer(fetcher, zap.NewNop())
	doc := n.FromConfluence(context.Background(), "https://confluence.example.com/pages/123")
	if doc.Status != models.ExtractionOK {
		t.Fatalf("status = %v, want ok", doc.Status)
	}
	if doc.DisplayName != "Confluence: Паспорт проекта" {
		t.Errorf("unexpected display name: %q", doc.DisplayName)
	}
	if doc.Pages != 3 || doc.Origin != models.OriginConfluence {
		t.Errorf("unexpected doc: %+v", doc)
	}
}

func TestFromConfluence_fetchError(t *testing.T) {
	n := NewNormalizer(&stubFetcher{err: errors.New("503")}, zap.NewNop())
	doc := n.FromConfluence(context.Background(), "https://confluence.example.com/pages/123")
	if doc.Status != models.ExtractionFailed || doc.FailReason != "extraction_failed" {
		t.Errorf("unexpected doc: %+v", doc)
	}
}
