package model

import (
	"time"
)

// Turn is one user-message/bot-reply pair with its pipeline metadata.
// Turns are immutable once written.
type Turn struct {
	ID             string            `json:"id"`
	ConversationID string            `json:"conversation_id"`
	UserInput      string            `json:"user_input"`
	BotResponse    string            `json:"bot_response"`
	Language       string            `json:"detected_language"`
	Intent         Intent            `json:"intent"`
	Confidence     float64           `json:"confidence"`
	Entities       map[string]string `json:"entities,omitempty"`
	Topics         []string          `json:"topics,omitempty"`
	Interests      []string          `json:"interests,omitempty"`
	CreatedAt      time.Time         `json:"timestamp"`
	ResponseTimeMs int64             `json:"response_time_ms"`
}
