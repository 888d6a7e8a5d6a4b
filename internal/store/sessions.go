package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wondertoys/support-chatbot/internal/model"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// CreateSession inserts a session row, relying on the UNIQUE(session_id)
// constraint to make concurrent first contacts converge on one row. Returns
// true when this call created the row.
func (s *Store) CreateSession(ctx context.Context, id, externalID, language string, now time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, session_id, preferred_language, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO NOTHING`,
		id, externalID, language, now.UnixMilli(), now.UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to create session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to create session: %w", err)
	}
	return affected == 1, nil
}

// SessionByExternalID looks up a session by its caller-facing identifier.
func (s *Store) SessionByExternalID(ctx context.Context, externalID string) (*model.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, preferred_language, first_seen, last_seen, total_messages
		FROM sessions WHERE session_id = ?`,
		externalID,
	)

	var sess model.Session
	var firstSeen, lastSeen int64
	err := row.Scan(&sess.ID, &sess.SessionID, &sess.PreferredLanguage, &firstSeen, &lastSeen, &sess.TotalMessages)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	sess.FirstSeen = time.UnixMilli(firstSeen)
	sess.LastSeen = time.UnixMilli(lastSeen)
	return &sess, nil
}

// TouchSession bumps a session's last-seen timestamp.
func (s *Store) TouchSession(ctx context.Context, id string, now time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET last_seen = ? WHERE id = ?",
		now.UnixMilli(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

// ApplyTurnToSession updates session aggregates after a recorded turn:
// message total, last-seen and preferred language (last observed wins).
func (s *Store) ApplyTurnToSession(ctx context.Context, id, language string, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET total_messages = total_messages + 1, last_seen = ?, preferred_language = ?
		WHERE id = ?`,
		now.UnixMilli(), language, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update session aggregates: %w", err)
	}
	return nil
}

// ActiveConversation returns the session's active conversation, or
// ErrNotFound when there is none.
func (s *Store) ActiveConversation(ctx context.Context, sessionID string) (*model.Conversation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, started_at, last_message_at, message_count, is_active
		FROM conversations
		WHERE session_id = ? AND is_active = 1
		ORDER BY started_at DESC LIMIT 1`,
		sessionID,
	)
	return scanConversation(row)
}

// InsertConversation stores a new conversation.
func (s *Store) InsertConversation(ctx context.Context, conv *model.Conversation) error {
	active := 0
	if conv.Active {
		active = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, session_id, started_at, last_message_at, message_count, is_active)
		VALUES (?, ?, ?, ?, ?, ?)`,
		conv.ID, conv.SessionID, conv.StartedAt.UnixMilli(), conv.LastMessageAt.UnixMilli(), conv.MessageCount, active,
	)
	if err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}
	return nil
}

// DeactivateConversation flips a conversation inactive.
func (s *Store) DeactivateConversation(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE conversations SET is_active = 0 WHERE id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate conversation: %w", err)
	}
	return nil
}

// BumpConversation increments the message count and advances last-activity.
func (s *Store) BumpConversation(ctx context.Context, id string, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE conversations
		SET message_count = message_count + 1, last_message_at = ?
		WHERE id = ?`,
		now.UnixMilli(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to bump conversation: %w", err)
	}
	return nil
}

// CountConversations returns the number of conversations a session owns.
func (s *Store) CountConversations(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM conversations WHERE session_id = ?", sessionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count conversations: %w", err)
	}
	return count, nil
}

// InsertTurn appends an immutable turn record.
func (s *Store) InsertTurn(ctx context.Context, turn *model.Turn) error {
	entities, err := json.Marshal(orEmptyMap(turn.Entities))
	if err != nil {
		return fmt.Errorf("failed to marshal entities: %w", err)
	}
	topics, err := json.Marshal(orEmptySlice(turn.Topics))
	if err != nil {
		return fmt.Errorf("failed to marshal topics: %w", err)
	}
	interests, err := json.Marshal(orEmptySlice(turn.Interests))
	if err != nil {
		return fmt.Errorf("failed to marshal interests: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO turns (id, conversation_id, user_input, bot_response, detected_language,
			intent, confidence, entities, topics, interests, created_at, response_time_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		turn.ID, turn.ConversationID, turn.UserInput, turn.BotResponse, turn.Language,
		turn.Intent, turn.Confidence, string(entities), string(topics), string(interests),
		turn.CreatedAt.UnixMilli(), turn.ResponseTimeMs,
	)
	if err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}
	return nil
}

// RecentTurns returns the most recent limit turns of one conversation,
// oldest first.
func (s *Store) RecentTurns(ctx context.Context, conversationID string, limit int) ([]model.Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, user_input, bot_response, detected_language,
			intent, confidence, entities, topics, interests, created_at, response_time_ms
		FROM turns
		WHERE conversation_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		conversationID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	return scanTurnsReversed(rows)
}

// SessionTurns returns the most recent limit turns across all of a session's
// conversations, oldest first.
func (s *Store) SessionTurns(ctx context.Context, sessionID string, limit int) ([]model.Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.conversation_id, t.user_input, t.bot_response, t.detected_language,
			t.intent, t.confidence, t.entities, t.topics, t.interests, t.created_at, t.response_time_ms
		FROM turns t
		JOIN conversations c ON c.id = t.conversation_id
		WHERE c.session_id = ?
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query session turns: %w", err)
	}
	defer rows.Close()

	return scanTurnsReversed(rows)
}

func scanConversation(row *sql.Row) (*model.Conversation, error) {
	var conv model.Conversation
	var startedAt, lastMessageAt int64
	var active int
	err := row.Scan(&conv.ID, &conv.SessionID, &startedAt, &lastMessageAt, &conv.MessageCount, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	conv.StartedAt = time.UnixMilli(startedAt)
	conv.LastMessageAt = time.UnixMilli(lastMessageAt)
	conv.Active = active == 1
	return &conv, nil
}

// scanTurnsReversed reads rows ordered newest-first and returns them oldest
// first.
func scanTurnsReversed(rows *sql.Rows) ([]model.Turn, error) {
	var turns []model.Turn
	for rows.Next() {
		var turn model.Turn
		var entities, topics, interests string
		var createdAt int64
		err := rows.Scan(&turn.ID, &turn.ConversationID, &turn.UserInput, &turn.BotResponse,
			&turn.Language, &turn.Intent, &turn.Confidence, &entities, &topics, &interests,
			&createdAt, &turn.ResponseTimeMs)
		if err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}

		if err := json.Unmarshal([]byte(entities), &turn.Entities); err != nil {
			return nil, fmt.Errorf("failed to decode entities: %w", err)
		}
		if err := json.Unmarshal([]byte(topics), &turn.Topics); err != nil {
			return nil, fmt.Errorf("failed to decode topics: %w", err)
		}
		if err := json.Unmarshal([]byte(interests), &turn.Interests); err != nil {
			return nil, fmt.Errorf("failed to decode interests: %w", err)
		}
		turn.CreatedAt = time.UnixMilli(createdAt)
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate turns: %w", err)
	}

	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

func orEmptyMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func orEmptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
