package detect

import (
	"testing"

	"github.com/chastnik/mm-bot/internal/models"
)

func TestAggregate_dominance(t *testing.T) {
	findings := []models.Finding{
		{ArtifactID: "a", DocumentID: "d1", Status: models.StatusNotFound},
		{ArtifactID: "a", DocumentID: "d2", Status: models.StatusFound, Evidence: "цитата", Confidence: 0.9},
		{ArtifactID: "a", DocumentID: "d3", Status: models.StatusPartial, Evidence: "другая", Confidence: 0.7},
	}
	v := Aggregate("a", findings, 3)
	if v.Status != models.StatusFound {
		t.Errorf("found should dominate, got %v", v.Status)
	}
	// Only evidence from findings matching the final status is kept.
	if len(v.Evidence) != 1 || v.Evidence[0].DocumentID != "d2" {
		t.Errorf("unexpected evidence: %+v", v.Evidence)
	}
}

func TestAggregate_orderIndependence(t *testing.T) {
	a := []models.Finding{
		{Status: models.StatusPartial, Evidence: "x", Confidence: 0.5},
		{Status: models.StatusNotFound},
	}
	b := []models.Finding{a[1], a[0]}
	if Aggregate("id", a, 3).Status != Aggregate("id", b, 3).Status {
		t.Error("verdict must not depend on finding order")
	}
}

func TestAggregate_evidenceSorting(t *testing.T) {
	findings := []models.Finding{
		{Status: models.StatusFound, Evidence: "длинная цитата с деталями", Confidence: 0.8},
		{Status: models.StatusFound, Evidence: "короткая", Confidence: 0.8},
		{Status: models.StatusFound, Evidence: "самая уверенная", Confidence: 0.95},
	}
	v := Aggregate("a", findings, 2)
	if len(v.Evidence) != 2 {
		t.Fatalf("evidence should be capped at 2, got %d", len(v.Evidence))
	}
	if v.Evidence[0].Excerpt != "самая уверенная" {
		t.Errorf("highest confidence first, got %q", v.Evidence[0].Excerpt)
	}
	// Confidence tie breaks toward the shorter excerpt.
	if v.Evidence[1].Excerpt != "короткая" {
		t.Errorf("tie should prefer shorter excerpt, got %q", v.Evidence[1].Excerpt)
	}
}

func TestAggregate_empty(t *testing.T) {
	v := Aggregate("a", nil, 3)
	if v.Status != models.StatusNotFound || len(v.Evidence) != 0 {
		t.Errorf("no findings should yield a bare not_found verdict: %+v", v)
	}
}

func TestAggregate_skipsEmptyEvidence(t *testing.T) {
	findings := []models.Finding{
		{Status: models.StatusPartial, Evidence: "", Confidence: 0.6},
		{Status: models.StatusPartial, Evidence: "есть цитата", Confidence: 0.4},
	}
	v := Aggregate("a", findings, 3)
	if len(v.Evidence) != 1 || v.Evidence[0].Excerpt != "есть цитата" {
		t.Errorf("empty excerpts should be skipped: %+v", v.Evidence)
	}
}
