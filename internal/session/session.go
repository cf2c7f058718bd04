// Package session keeps per-user conversation state for the analysis
// workflow. Sessions live only in memory; a restart starts everyone over.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/chastnik/mm-bot/internal/models"
)

var (
	// ErrEmptySelection rejects leaving type selection with nothing chosen.
	ErrEmptySelection = errors.New("no project types selected")
	// ErrNoDocuments rejects starting analysis with no collected documents.
	ErrNoDocuments = errors.New("no documents collected")
	// ErrWrongState signals a mutation that the current state does not allow.
	ErrWrongState = errors.New("operation not allowed in current state")
)

// Session is one user's workflow state. All mutations go through methods
// that hold the session lock: the dispatch loop applies events for a user
// sequentially, but analysis completion lands from a worker goroutine.
type Session struct {
	mu sync.Mutex

	UserID    string
	ChannelID string

	state        State
	types        []string
	documents    []*models.SourceDocument
	verdicts     []models.ArtifactVerdict
	generation   uint64
	lastActivity time.Time
}

// State returns the current conversation phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Generation returns the current analysis generation tag.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// SelectedTypes returns the selection in the order it was made.
func (s *Session) SelectedTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.types))
	copy(out, s.types)
	return out
}

// Documents returns a snapshot of the collected documents.
func (s *Session) Documents() []*models.SourceDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.SourceDocument, len(s.documents))
	copy(out, s.documents)
	return out
}

// Verdicts returns the verdicts of the last completed analysis.
func (s *Session) Verdicts() []models.ArtifactVerdict {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ArtifactVerdict, len(s.verdicts))
	copy(out, s.verdicts)
	return out
}

// StartSelection resets the workflow and enters project type selection.
// Any in-flight analysis becomes stale through the generation bump.
func (s *Session) StartSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.state = StateSelectingTypes
}

// reset clears collected data and invalidates in-flight work.
// Caller holds the lock.
func (s *Session) reset() {
	s.state = StateIdle
	s.types = nil
	s.documents = nil
	s.verdicts = nil
	s.generation++
}

// ToggleType adds the code to the selection, or removes it when already
// selected. Returns whether the code is selected after the call.
func (s *Session) ToggleType(code string) (selected bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSelectingTypes {
		return false, ErrWrongState
	}
	for i, t := range s.types {
		if t == code {
			s.types = append(s.types[:i], s.types[i+1:]...)
			return false, nil
		}
	}
	s.types = append(s.types, code)
	return true, nil
}

// ConfirmTypes leaves selection for document intake. The selection must be
// non-empty; otherwise the state is unchanged.
func (s *Session) ConfirmTypes() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSelectingTypes {
		return ErrWrongState
	}
	if len(s.types) == 0 {
		return ErrEmptySelection
	}
	s.state = StateAwaitingDocs
	return nil
}

// AddDocument appends a normalized document during intake. Failed documents
// are kept too so the report can list them.
func (s *Session) AddDocument(doc *models.SourceDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingDocs {
		return ErrWrongState
	}
	s.documents = append(s.documents, doc)
	return nil
}

// RequestMore reopens document intake after a delivered report.
func (s *Session) RequestMore() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConfirmMoreDocs {
		return ErrWrongState
	}
	s.state = StateAwaitingDocs
	return nil
}

// BeginAnalysis enters the analyzing state and returns the generation tag
// that the eventual completion must present. Requires at least one collected
// document; usability is checked by the engine, which reports ErrNoContent
// when nothing extracted.
func (s *Session) BeginAnalysis() (gen uint64, docs []*models.SourceDocument, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingDocs && s.state != StateError {
		return 0, nil, ErrWrongState
	}
	if len(s.documents) == 0 {
		return 0, nil, ErrNoDocuments
	}
	s.state = StateAnalyzing
	docs = make([]*models.SourceDocument, len(s.documents))
	copy(docs, s.documents)
	return s.generation, docs, nil
}

// CompleteAnalysis records verdicts and moves to reporting. Returns false
// when the result is stale (the session was reset while analyzing) and must
// be discarded.
func (s *Session) CompleteAnalysis(gen uint64, verdicts []models.ArtifactVerdict) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.state != StateAnalyzing {
		return false
	}
	s.verdicts = verdicts
	s.state = StateReporting
	return true
}

// FailAnalysis handles a detection failure: documents are kept and the
// session enters the error state, from which the user can retry or restart.
// Returns false for stale results.
func (s *Session) FailAnalysis(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.state != StateAnalyzing {
		return false
	}
	s.state = StateError
	return true
}

// FinishReport marks the report as delivered and offers another round.
func (s *Session) FinishReport(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.state != StateReporting {
		return false
	}
	s.state = StateConfirmMoreDocs
	return true
}

// FailReport handles a rendering or delivery failure, keeping the collected
// documents for a retry.
func (s *Session) FailReport(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.state != StateReporting {
		return false
	}
	s.state = StateError
	return true
}

// Store holds sessions keyed by user id. Expiry is lazy: an expired session
// is reset on next contact, no background eviction runs.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	expiry   time.Duration
	now      func() time.Time
}

// NewStore creates a session store with the given inactivity expiry.
func NewStore(expiry time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		expiry:   expiry,
		now:      time.Now,
	}
}

// Get returns the user's session, creating it in the idle state on first
// contact and resetting it if it sat inactive past the expiry window.
func (st *Store) Get(userID, channelID string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	s, ok := st.sessions[userID]
	if !ok {
		s = &Session{UserID: userID, ChannelID: channelID, state: StateIdle, lastActivity: now}
		st.sessions[userID] = s
		return s
	}

	s.mu.Lock()
	expired := st.expiry > 0 && now.Sub(s.lastActivity) > st.expiry
	if expired {
		s.reset()
	}
	s.ChannelID = channelID
	s.lastActivity = now
	s.mu.Unlock()
	return s
}

// Stats reports session counts per state for the ops endpoint.
func (st *Store) Stats() map[State]int {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make(map[State]int)
	for _, s := range st.sessions {
		out[s.State()]++
	}
	return out
}
