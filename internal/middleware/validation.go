package middleware

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MaxMessageLength caps inbound message size in bytes.
const MaxMessageLength = 4096

// MaxSessionIDLength caps the opaque session identifier.
const MaxSessionIDLength = 128

// ValidateMessageContent validates message content.
func ValidateMessageContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.New("message cannot be empty")
	}
	if len(content) > MaxMessageLength {
		return errors.New("message exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("message must be valid UTF-8")
	}
	return nil
}

// ValidateSessionID validates a session ID. Session ids are opaque client
// strings, not UUIDs, so only length and encoding are checked.
func ValidateSessionID(id string) error {
	if len(id) > MaxSessionIDLength {
		return errors.New("session ID exceeds maximum length")
	}
	if !utf8.ValidString(id) {
		return errors.New("session ID must be valid UTF-8")
	}
	return nil
}
