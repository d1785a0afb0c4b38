package model

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// MessageMeta is the structured metadata attached to a chat message.
// Persisted as JSON in the metadata column.
type MessageMeta struct {
	Sources []string `json:"sources,omitempty"`
	Status  string   `json:"status,omitempty"`
}

type ChatMessage struct {
	ID        int64        `json:"id"`
	SessionID string       `json:"session_id"`
	Role      string       `json:"role"`
	Content   string       `json:"content"`
	Meta      *MessageMeta `json:"meta,omitempty"`
	Ctime     int64        `json:"ctime"`
}
