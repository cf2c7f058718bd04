package detect

import (
	"sort"

	"github.com/chastnik/mm-bot/internal/models"
)

// Aggregate folds all findings for one artifact into a verdict. The status
// follows the dominance rule (found > partial > not_found) and is therefore
// independent of finding order, which lets findings arrive from concurrent
// workers. Supporting evidence keeps up to maxEvidence excerpts from
// findings matching the final status, strongest first; confidence ties break
// toward the shorter excerpt.
func Aggregate(artifactID string, findings []models.Finding, maxEvidence int) models.ArtifactVerdict {
	verdict := models.ArtifactVerdict{
		ArtifactID: artifactID,
		Status:     models.StatusNotFound,
	}
	for _, f := range findings {
		if f.Status.Dominates(verdict.Status) {
			verdict.Status = f.Status
		}
	}
	if verdict.Status == models.StatusNotFound {
		return verdict
	}

	candidates := make([]models.Evidence, 0, len(findings))
	for _, f := range findings {
		if f.Status != verdict.Status || f.Evidence == "" {
			continue
		}
		candidates = append(candidates, models.Evidence{
			DocumentID: f.DocumentID,
			Excerpt:    f.Evidence,
			Source:     f.Source,
			Confidence: f.Confidence,
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return len(candidates[i].Excerpt) < len(candidates[j].Excerpt)
	})
	if maxEvidence > 0 && len(candidates) > maxEvidence {
		candidates = candidates[:maxEvidence]
	}
	verdict.Evidence = candidates
	return verdict
}
