// Package ingest converts exported conversation logs from several
// chat-assistant vendors into one canonical, time-ordered message stream
// with stable content-derived identities.
package ingest

// Role is the canonical author role of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleSystem    Role = "system"
)

// ParsedMessage is a single canonical message. All fields are value
// semantics; messages are never mutated after construction.
type ParsedMessage struct {
	ID                string `json:"id"`
	ConversationID    string `json:"conversation_id"`
	ConversationTitle string `json:"conversation_title"`
	Role              Role   `json:"role"`
	TimestampMs       int64  `json:"timestamp_ms"` // epoch ms, 0 if unknown
	Text              string `json:"text"`
	Vendor            string `json:"vendor"`
}
