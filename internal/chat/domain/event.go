package domain

// Stream event type discriminators.
const (
	// EventTypeMessage a new chat message
	EventTypeMessage = "message"
	// EventTypeBan a user was banned
	EventTypeBan = "ban"
	// EventTypeUnban a user's ban was lifted
	EventTypeUnban = "unban"
)

// BanEvent is the ban payload pushed on the stream. It always names the
// target user explicitly so no receiving client can mistake it for applying
// to anyone else.
type BanEvent struct {
	UserID string `json:"userId"`
	Reason string `json:"reason,omitempty"`
}

// StreamEvent is one discrete push on a live connection. Exactly one payload
// field is set, selected by Type; the wire shape matches what the portal
// client parses.
type StreamEvent struct {
	Type    string       `json:"type"`
	Message *ChatMessage `json:"message,omitempty"`
	Ban     *BanEvent    `json:"ban,omitempty"`
	UserID  string       `json:"userId,omitempty"`
}

// NewMessageEvent wraps a stored message for broadcast.
func NewMessageEvent(msg ChatMessage) StreamEvent {
	return StreamEvent{Type: EventTypeMessage, Message: &msg}
}

// NewBanEvent announces that userID is now banned.
func NewBanEvent(userID, reason string) StreamEvent {
	return StreamEvent{Type: EventTypeBan, Ban: &BanEvent{UserID: userID, Reason: reason}}
}

// NewUnbanEvent announces that userID's ban was lifted.
func NewUnbanEvent(userID string) StreamEvent {
	return StreamEvent{Type: EventTypeUnban, UserID: userID}
}
