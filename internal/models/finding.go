package models

// ArtifactStatus is the coverage grade of one artifact in one document, or
// aggregated across documents. Ordering matters: Found dominates Partial,
// Partial dominates NotFound.
type ArtifactStatus string

const (
	StatusFound    ArtifactStatus = "found"
	StatusPartial  ArtifactStatus = "partial"
	StatusNotFound ArtifactStatus = "not_found"
)

// rank orders statuses for the dominance rule; higher wins.
func (s ArtifactStatus) rank() int {
	switch s {
	case StatusFound:
		return 2
	case StatusPartial:
		return 1
	default:
		return 0
	}
}

// Dominates reports whether s outranks other under the found > partial >
// not_found rule.
func (s ArtifactStatus) Dominates(other ArtifactStatus) bool {
	return s.rank() > other.rank()
}

// Finding is one detection result: one artifact checked against one document
// (or one chunk of it). Confidence is in [0,1]; parse failures degrade to a
// NotFound finding with confidence 0.
type Finding struct {
	ArtifactID string         `json:"artifact_id"`
	DocumentID string         `json:"document_id"`
	Status     ArtifactStatus `json:"status"`
	Evidence   string         `json:"evidence,omitempty"`
	Source     string         `json:"source,omitempty"` // document name, page/section as reported
	Confidence float64        `json:"confidence"`
}

// Evidence is one supporting excerpt attached to a verdict.
type Evidence struct {
	DocumentID string  `json:"document_id"`
	Excerpt    string  `json:"excerpt"`
	Source     string  `json:"source,omitempty"`
	Confidence float64 `json:"confidence"`
}

// ArtifactVerdict aggregates all findings for one artifact across the
// session's documents.
type ArtifactVerdict struct {
	ArtifactID string         `json:"artifact_id"`
	Status     ArtifactStatus `json:"status"`
	Evidence   []Evidence     `json:"evidence,omitempty"`
}
