package model

import (
	"time"
)

// Session is a stable identity for one end user across calls. The external
// SessionID is opaque and caller-supplied (or generated on first contact).
type Session struct {
	ID                string    `json:"id"`
	SessionID         string    `json:"session_id"`
	PreferredLanguage string    `json:"preferred_language"`
	FirstSeen         time.Time `json:"first_seen"`
	LastSeen          time.Time `json:"last_seen"`
	TotalMessages     int       `json:"total_messages"`
}

// Conversation is a time-windowed grouping of turns belonging to one session.
// At most one conversation per session is active at any instant; an idle
// conversation is flipped inactive lazily on next access.
type Conversation struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	StartedAt     time.Time `json:"started_at"`
	LastMessageAt time.Time `json:"last_message_at"`
	MessageCount  int       `json:"message_count"`
	Active        bool      `json:"active"`
}

// SessionStats is the aggregate view returned by the analytics surface.
type SessionStats struct {
	SessionID          string    `json:"session_id"`
	PreferredLanguage  string    `json:"preferred_language"`
	FirstSeen          time.Time `json:"first_seen"`
	LastSeen           time.Time `json:"last_seen"`
	TotalMessages      int       `json:"total_messages"`
	TotalConversations int       `json:"total_conversations"`
}
