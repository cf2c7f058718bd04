package detect

import (
	"strconv"
	"strings"

	"github.com/chastnik/mm-bot/internal/models"
)

// parsedFinding is the structured content of a model response.
type parsedFinding struct {
	Status     models.ArtifactStatus
	Confidence float64
	Source     string
	Evidence   string
}

// parseResult is a tagged result: either a parsed finding or the raw text
// that failed to parse. Parse failures never propagate as errors; the caller
// degrades them to a not_found finding with zero confidence.
type parseResult struct {
	OK      bool
	Finding parsedFinding
	Raw     string
}

// defaultConfidence supplies a status-based confidence when the model omits
// or garbles the УВЕРЕННОСТЬ line.
func defaultConfidence(status models.ArtifactStatus) float64 {
	switch status {
	case models.StatusFound:
		return 0.8
	case models.StatusPartial:
		return 0.5
	default:
		return 0
	}
}

// parseResponse extracts the structured block from a model response. The
// status line is required; everything else is best-effort. Responses without
// a recognizable status line are returned as a parse failure.
func parseResponse(text string) parseResult {
	var f parsedFinding
	statusSeen := false
	confidenceSeen := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "СТАТУС:"):
			raw := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(line, "СТАТУС:")))
			switch {
			case strings.Contains(raw, "ЧАСТИЧНО"):
				f.Status = models.StatusPartial
			case strings.Contains(raw, "НЕ НАЙДЕН"):
				f.Status = models.StatusNotFound
			case strings.Contains(raw, "НАЙДЕН"):
				f.Status = models.StatusFound
			default:
				continue
			}
			statusSeen = true
		case strings.HasPrefix(line, "УВЕРЕННОСТЬ:"):
			raw := strings.TrimSpace(strings.TrimPrefix(line, "УВЕРЕННОСТЬ:"))
			raw = strings.ReplaceAll(raw, ",", ".")
			if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= 0 && v <= 1 {
				f.Confidence = v
				confidenceSeen = true
			}
		case strings.HasPrefix(line, "ИСТОЧНИК:"):
			f.Source = cleanField(strings.TrimPrefix(line, "ИСТОЧНИК:"))
		case strings.HasPrefix(line, "ЦИТАТА:"):
			f.Evidence = cleanField(strings.TrimPrefix(line, "ЦИТАТА:"))
		}
	}

	if !statusSeen {
		return parseResult{OK: false, Raw: text}
	}
	if !confidenceSeen {
		f.Confidence = defaultConfidence(f.Status)
	}
	if f.Status == models.StatusNotFound {
		// A "not found" answer carries no evidence by definition.
		f.Evidence = ""
		f.Source = ""
	}
	return parseResult{OK: true, Finding: f}
}

// cleanField trims a field value and normalizes the "-" placeholder to empty.
func cleanField(s string) string {
	s = strings.TrimSpace(s)
	if s == "-" || s == "—" {
		return ""
	}
	return s
}
