package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wondertoys/support-chatbot/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedSession(t *testing.T, s *Store, externalID string, now time.Time) *model.Session {
	t.Helper()
	ctx := context.Background()
	created, err := s.CreateSession(ctx, uuid.New().String(), externalID, "en", now)
	require.NoError(t, err)
	require.True(t, created)

	sess, err := s.SessionByExternalID(ctx, externalID)
	require.NoError(t, err)
	return sess
}

func seedConversation(t *testing.T, s *Store, sess *model.Session, now time.Time) *model.Conversation {
	t.Helper()
	conv := &model.Conversation{
		ID:            uuid.New().String(),
		SessionID:     sess.ID,
		StartedAt:     now,
		LastMessageAt: now,
		Active:        true,
	}
	require.NoError(t, s.InsertConversation(context.Background(), conv))
	return conv
}

func TestOpenAndPing(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestCreateSessionIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)

	created, err := s.CreateSession(ctx, uuid.New().String(), "visitor-1", "en", now)
	require.NoError(t, err)
	assert.True(t, created)

	// Second insert for the same external id is a no-op.
	created, err = s.CreateSession(ctx, uuid.New().String(), "visitor-1", "zh", now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, created)

	sess, err := s.SessionByExternalID(ctx, "visitor-1")
	require.NoError(t, err)
	assert.Equal(t, "visitor-1", sess.SessionID)
	assert.Equal(t, "en", sess.PreferredLanguage)
	assert.Equal(t, now, sess.FirstSeen)
}

func TestSessionByExternalIDNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.SessionByExternalID(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplyTurnToSession(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)

	sess := seedSession(t, s, "visitor-1", now)

	later := now.Add(5 * time.Minute)
	require.NoError(t, s.ApplyTurnToSession(ctx, sess.ID, "zh", later))

	sess, err := s.SessionByExternalID(ctx, "visitor-1")
	require.NoError(t, err)
	assert.Equal(t, 1, sess.TotalMessages)
	assert.Equal(t, "zh", sess.PreferredLanguage)
	assert.Equal(t, later, sess.LastSeen)
}

func TestConversationLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)

	sess := seedSession(t, s, "visitor-1", now)

	_, err := s.ActiveConversation(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	conv := seedConversation(t, s, sess, now)

	got, err := s.ActiveConversation(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, got.ID)
	assert.True(t, got.Active)
	assert.Equal(t, now, got.LastMessageAt)

	require.NoError(t, s.BumpConversation(ctx, conv.ID, now.Add(time.Minute)))
	got, err = s.ActiveConversation(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.MessageCount)
	assert.Equal(t, now.Add(time.Minute), got.LastMessageAt)

	require.NoError(t, s.DeactivateConversation(ctx, conv.ID))
	_, err = s.ActiveConversation(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	count, err := s.CountConversations(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestTurnsOrderingAndLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)

	sess := seedSession(t, s, "visitor-1", now)
	conv := seedConversation(t, s, sess, now)

	for i := 0; i < 5; i++ {
		turn := &model.Turn{
			ID:             uuid.New().String(),
			ConversationID: conv.ID,
			UserInput:      "message",
			BotResponse:    "reply",
			Language:       "en",
			Intent:         model.IntentGreeting,
			Confidence:     0.9,
			Entities:       map[string]string{"order_number": "4821"},
			Topics:         []string{"order_management"},
			CreatedAt:      now.Add(time.Duration(i) * time.Second),
			ResponseTimeMs: 3,
		}
		require.NoError(t, s.InsertTurn(ctx, turn))
	}

	// The most recent 3 turns, returned oldest first.
	turns, err := s.RecentTurns(ctx, conv.ID, 3)
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, now.Add(2*time.Second), turns[0].CreatedAt)
	assert.Equal(t, now.Add(4*time.Second), turns[2].CreatedAt)
	assert.Equal(t, map[string]string{"order_number": "4821"}, turns[0].Entities)
	assert.Equal(t, []string{"order_management"}, turns[0].Topics)
	assert.Empty(t, turns[0].Interests)

	// Session-wide view spans conversations.
	sessionTurns, err := s.SessionTurns(ctx, sess.ID, 10)
	require.NoError(t, err)
	assert.Len(t, sessionTurns, 5)
	assert.True(t, sessionTurns[0].CreatedAt.Before(sessionTurns[4].CreatedAt))
}

func TestOpenTwiceReusesSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	seedSession(t, s, "visitor-1", time.UnixMilli(1_700_000_000_000))
	require.NoError(t, s.Close())

	// Reopening must not re-run migrations or lose data.
	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	sess, err := s.SessionByExternalID(context.Background(), "visitor-1")
	require.NoError(t, err)
	assert.Equal(t, "visitor-1", sess.SessionID)
}
