package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatMessage is one immutable entry in the room log. The ObjectID embeds
// the creation instant plus a counter, so _id order is the room's total
// message order.
type ChatMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    string             `bson:"user_id,omitempty" json:"userId,omitempty"`
	UserName  string             `bson:"user_name,omitempty" json:"userName,omitempty"`
	UserRole  string             `bson:"user_role,omitempty" json:"userRole,omitempty"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	IsSystem  bool               `bson:"is_system,omitempty" json:"isSystem,omitempty"`
}

// User is the identity the token middleware resolved for a request.
type User struct {
	ID   string
	Name string
	Role string
}

// BanRecord marks a user as currently banned. Presence of a record is the
// ban; unban deletes it. A new ban replaces any prior one.
type BanRecord struct {
	UserID   string    `json:"userId"`
	Reason   string    `json:"reason,omitempty"`
	BannedAt time.Time `json:"bannedAt"`
}

// Limits are the room settings advertised to clients in the snapshot.
type Limits struct {
	RateLimitPerMinute int `json:"rateLimitPerMinute"`
	MaxMessageLength   int `json:"maxMessageLength"`
	HistoryLimit       int `json:"historyLimit"`
}

// DefaultLimits returns the portal defaults.
func DefaultLimits() Limits {
	return Limits{
		RateLimitPerMinute: 15,
		MaxMessageLength:   500,
		HistoryLimit:       50,
	}
}

// BanStatus is the caller-facing view of their own ban in the snapshot.
type BanStatus struct {
	Reason string `json:"reason,omitempty"`
}

// Snapshot is the bounded initial state a client fetches before opening the
// live stream: recent history ascending, the room limits, and the caller's
// ban status (nil when not banned).
type Snapshot struct {
	Messages []ChatMessage `json:"messages"`
	Limits   Limits        `json:"limits"`
	Ban      *BanStatus    `json:"ban"`
}
