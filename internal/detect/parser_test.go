package detect

import (
	"testing"

	"github.com/chastnik/mm-bot/internal/models"
)

func TestParseResponse_found(t *testing.T) {
	res := parseResponse(`СТАТУС: НАЙДЕН
УВЕРЕННОСТЬ: 0.9
ИСТОЧНИК: паспорт.pdf, стр. 3
ЦИТАТА: Целью проекта является автоматизация отчётности
ОПИСАНИЕ: Паспорт проекта присутствует полностью`)
	if !res.OK {
		t.Fatalf("expected parse success, got raw %q", res.Raw)
	}
	f := res.Finding
	if f.Status != models.StatusFound {
		t.Errorf("status = %v, want found", f.Status)
	}
	if f.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", f.Confidence)
	}
	if f.Source != "паспорт.pdf, стр. 3" {
		t.Errorf("unexpected source: %q", f.Source)
	}
	if f.Evidence == "" {
		t.Error("evidence should be captured")
	}
}

func TestParseResponse_partialBeforeFound(t *testing.T) {
	// "ЧАСТИЧНО НАЙДЕН" contains "НАЙДЕН" and must still parse as partial.
	res := parseResponse("СТАТУС: ЧАСТИЧНО НАЙДЕН\nУВЕРЕННОСТЬ: 0,6")
	if !res.OK || res.Finding.Status != models.StatusPartial {
		t.Fatalf("expected partial, got %+v", res)
	}
	if res.Finding.Confidence != 0.6 {
		t.Errorf("comma decimal should parse, got %v", res.Finding.Confidence)
	}
}

func TestParseResponse_notFoundClearsEvidence(t *testing.T) {
	res := parseResponse(`СТАТУС: НЕ НАЙДЕН
ИСТОЧНИК: -
ЦИТАТА: какой-то мусор`)
	if !res.OK || res.Finding.Status != models.StatusNotFound {
		t.Fatalf("expected not_found, got %+v", res)
	}
	if res.Finding.Evidence != "" || res.Finding.Source != "" {
		t.Errorf("not_found must carry no evidence: %+v", res.Finding)
	}
	if res.Finding.Confidence != 0 {
		t.Errorf("not_found default confidence = %v, want 0", res.Finding.Confidence)
	}
}

func TestParseResponse_defaultConfidence(t *testing.T) {
	res := parseResponse("СТАТУС: НАЙДЕН")
	if !res.OK || res.Finding.Confidence != 0.8 {
		t.Errorf("found without confidence should default to 0.8, got %+v", res.Finding)
	}
	res = parseResponse("СТАТУС: ЧАСТИЧНО")
	if !res.OK || res.Finding.Confidence != 0.5 {
		t.Errorf("partial without confidence should default to 0.5, got %+v", res.Finding)
	}
}

func TestParseResponse_outOfRangeConfidenceIgnored(t *testing.T) {
	res := parseResponse("СТАТУС: НАЙДЕН\nУВЕРЕННОСТЬ: 42")
	if !res.OK || res.Finding.Confidence != 0.8 {
		t.Errorf("out-of-range confidence should fall back to default, got %+v", res.Finding)
	}
}

func TestParseResponse_malformed(t *testing.T) {
	raw := "Извините, я не могу определить наличие этого артефакта."
	res := parseResponse(raw)
	if res.OK {
		t.Fatalf("free-form answer should not parse: %+v", res.Finding)
	}
	if res.Raw != raw {
		t.Errorf("raw text should be preserved for logging")
	}
}
