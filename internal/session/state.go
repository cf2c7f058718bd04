package session

// State is the conversation phase of one user's session.
type State string

const (
	StateIdle            State = "idle"
	StateSelectingTypes  State = "selecting_project_types"
	StateAwaitingDocs    State = "awaiting_documents"
	StateConfirmMoreDocs State = "confirm_more_documents"
	StateAnalyzing       State = "analyzing"
	StateReporting       State = "reporting"
	StateError           State = "error"
)

func (s State) String() string { return string(s) }
