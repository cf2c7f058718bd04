package session

import (
	"errors"
	"testing"
	"time"

	"github.com/chastnik/mm-bot/internal/models"
)

func okDoc(id string) *models.SourceDocument {
	return &models.SourceDocument{ID: id, Status: models.ExtractionOK, Text: "текст"}
}

func TestWorkflow(t *testing.T) {
	st := NewStore(24 * time.Hour)
	s := st.Get("user1", "ch1")
	if s.State() != StateIdle {
		t.Fatalf("new session state = %v, want idle", s.State())
	}

	s.StartSelection()
	if _, err := s.ToggleType("BI"); err != nil {
		t.Fatal(err)
	}
	if err := s.ConfirmTypes(); err != nil {
		t.Fatal(err)
	}
	if err := s.AddDocument(okDoc("d1")); err != nil {
		t.Fatal(err)
	}

	gen, docs, err := s.BeginAnalysis()
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document snapshot, got %d", len(docs))
	}
	if !s.CompleteAnalysis(gen, []models.ArtifactVerdict{{ArtifactID: "a"}}) {
		t.Fatal("completion with current generation should be accepted")
	}
	if !s.FinishReport(gen) {
		t.Fatal("report finish should be accepted")
	}
	if s.State() != StateConfirmMoreDocs {
		t.Errorf("after report state = %v, want confirm_more_documents", s.State())
	}
	if err := s.RequestMore(); err != nil {
		t.Fatal(err)
	}
	if s.State() != StateAwaitingDocs {
		t.Errorf("add-more should reopen intake, state = %v", s.State())
	}
	// Previously collected documents survive another round.
	if len(s.Documents()) != 1 {
		t.Errorf("documents should be kept across rounds")
	}
}

func TestConfirmTypes_rejectsEmptySelection(t *testing.T) {
	s := NewStore(0).Get("u", "ch")
	s.StartSelection()
	if err := s.ConfirmTypes(); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}
	if s.State() != StateSelectingTypes {
		t.Errorf("rejected confirm must not change state, got %v", s.State())
	}
}

func TestToggleType(t *testing.T) {
	s := NewStore(0).Get("u", "ch")
	s.StartSelection()
	if sel, _ := s.ToggleType("BI"); !sel {
		t.Error("first toggle should select")
	}
	if sel, _ := s.ToggleType("BI"); sel {
		t.Error("second toggle should deselect")
	}
	if len(s.SelectedTypes()) != 0 {
		t.Errorf("selection should be empty after double toggle: %v", s.SelectedTypes())
	}

	_, _ = s.ToggleType("DWH")
	_, _ = s.ToggleType("BI")
	sel := s.SelectedTypes()
	if len(sel) != 2 || sel[0] != "DWH" || sel[1] != "BI" {
		t.Errorf("selection order should be preserved: %v", sel)
	}
}

func TestBeginAnalysis_rejectsEmptyDocuments(t *testing.T) {
	s := NewStore(0).Get("u", "ch")
	s.StartSelection()
	_, _ = s.ToggleType("BI")
	if err := s.ConfirmTypes(); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.BeginAnalysis(); !errors.Is(err, ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments, got %v", err)
	}
	if s.State() != StateAwaitingDocs {
		t.Errorf("rejected analysis must not change state, got %v", s.State())
	}
}

func TestStaleGenerationDiscarded(t *testing.T) {
	s := NewStore(0).Get("u", "ch")
	s.StartSelection()
	_, _ = s.ToggleType("BI")
	_ = s.ConfirmTypes()
	_ = s.AddDocument(okDoc("d1"))
	gen, _, err := s.BeginAnalysis()
	if err != nil {
		t.Fatal(err)
	}

	// The user restarts while analysis is in flight.
	s.StartSelection()

	if s.CompleteAnalysis(gen, nil) {
		t.Error("stale completion must be discarded")
	}
	if s.FailAnalysis(gen) {
		t.Error("stale failure must be discarded")
	}
	if s.State() != StateSelectingTypes {
		t.Errorf("stale result must not disturb the new workflow, state = %v", s.State())
	}
}

func TestFailAnalysis_keepsDocuments(t *testing.T) {
	s := NewStore(0).Get("u", "ch")
	s.StartSelection()
	_, _ = s.ToggleType("BI")
	_ = s.ConfirmTypes()
	_ = s.AddDocument(okDoc("d1"))
	gen, _, _ := s.BeginAnalysis()

	if !s.FailAnalysis(gen) {
		t.Fatal("current-generation failure should be accepted")
	}
	if s.State() != StateError {
		t.Errorf("state = %v, want error", s.State())
	}
	if len(s.Documents()) != 1 {
		t.Error("documents must survive an analysis failure")
	}
	// Retry from the error state works without recollecting documents.
	if _, _, err := s.BeginAnalysis(); err != nil {
		t.Errorf("retry from error state failed: %v", err)
	}
}

func TestStore_lazyExpiry(t *testing.T) {
	st := NewStore(time.Hour)
	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return current }

	s := st.Get("u", "ch")
	s.StartSelection()
	_, _ = s.ToggleType("BI")

	// Within the window: state survives.
	current = current.Add(30 * time.Minute)
	if got := st.Get("u", "ch"); got.State() != StateSelectingTypes {
		t.Errorf("session should survive within expiry window, state = %v", got.State())
	}

	// Past the window: reset to idle on next contact.
	current = current.Add(2 * time.Hour)
	got := st.Get("u", "ch")
	if got.State() != StateIdle {
		t.Errorf("expired session should reset to idle, state = %v", got.State())
	}
	if len(got.SelectedTypes()) != 0 {
		t.Error("expired session should lose its selection")
	}
}

func TestStore_stats(t *testing.T) {
	st := NewStore(0)
	st.Get("a", "ch1").StartSelection()
	st.Get("b", "ch2")
	stats := st.Stats()
	if stats[StateSelectingTypes] != 1 || stats[StateIdle] != 1 {
		t.Errorf("unexpected stats: %v", stats)
	}
}
