package models

// Attachment references a file attached to an inbound message. Bytes are
// fetched lazily through the platform client when the document is normalized.
type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// InboundEvent is one user message observed on the platform. Transient: it
// lives only until the dispatch loop has applied it.
type InboundEvent struct {
	ID          string       `json:"id"`
	ChannelID   string       `json:"channel_id"`
	UserID      string       `json:"user_id"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments,omitempty"`
	// CreateAt is the platform timestamp in milliseconds since epoch.
	CreateAt int64 `json:"create_at"`
}
