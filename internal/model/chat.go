package model

// ChatRequest is the inbound message payload.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the reply payload for a handled message.
type ChatResponse struct {
	Response   string            `json:"response"`
	SessionID  string            `json:"session_id"`
	Intent     Intent            `json:"intent"`
	Confidence float64           `json:"confidence"`
	Entities   map[string]string `json:"entities"`
	DebugInfo  *DebugInfo        `json:"debug_info,omitempty"`
}

// DebugInfo carries per-request pipeline internals, included only when the
// debug toggle is enabled.
type DebugInfo struct {
	Language           string  `json:"language"`
	OriginalConfidence float64 `json:"original_confidence"`
	ThresholdApplied   bool    `json:"threshold_applied"`
	ResponseTimeMs     int64   `json:"response_time_ms"`
}

// HistoryResponse is the analytics view of a session's recent turns.
type HistoryResponse struct {
	SessionID    string `json:"session_id"`
	MessageCount int    `json:"message_count"`
	Messages     []Turn `json:"messages"`
}
