// Package conversation owns session resolution, conversation lifecycle and
// turn history for the chat pipeline.
package conversation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wondertoys/support-chatbot/internal/model"
	"github.com/wondertoys/support-chatbot/internal/store"
	"github.com/wondertoys/support-chatbot/pkg/logger"
	"github.com/wondertoys/support-chatbot/pkg/metrics"
)

// Publisher mirrors recorded turns to an external event stream. Implemented
// by the NATS publisher; nil disables publishing.
type Publisher interface {
	PublishTurn(ctx context.Context, sessionID string, turn *model.Turn) error
}

// Config holds the manager's tunables.
type Config struct {
	// InactivityWindow is how long a conversation may idle before it is
	// considered ended (observed lazily on next access).
	InactivityWindow time.Duration

	// ContextWindow is how many recent turns feed response augmentation.
	ContextWindow int

	// MaxHistory caps how many turns the analytics surface returns.
	MaxHistory int

	// DefaultLanguage seeds the preferred language of new sessions.
	DefaultLanguage string
}

// Manager coordinates session and conversation state on top of the store.
type Manager struct {
	store  *store.Store
	events Publisher
	logger *logger.Logger
	cfg    Config

	// now is injectable for expiry tests.
	now func() time.Time

	// Per-session-id mutexes scope the get-or-create checks so two
	// concurrent first contacts converge on one session and one active
	// conversation. Entries are never evicted; the set of live session ids
	// is small enough that this is fine.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a conversation manager. events may be nil.
func NewManager(st *store.Store, events Publisher, log *logger.Logger, cfg Config) *Manager {
	if cfg.InactivityWindow <= 0 {
		cfg.InactivityWindow = 30 * time.Minute
	}
	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = 3
	}
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = 50
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en"
	}
	return &Manager{
		store:  st,
		events: events,
		logger: log,
		cfg:    cfg,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
}

// SetClock overrides the manager's time source. Test hook.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Now returns the manager's current time. Turn timestamps must come from the
// same clock that drives conversation expiry.
func (m *Manager) Now() time.Time {
	return m.now()
}

// lockSession acquires the per-session-id mutex and returns its unlock.
func (m *Manager) lockSession(sessionID string) func() {
	m.mu.Lock()
	l, ok := m.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[sessionID] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// ResolveSession gets or creates the session for an external session id and
// bumps its last-seen timestamp. Safe under concurrent calls for the same id:
// the store's unique constraint plus the keyed mutex guarantee one row.
func (m *Manager) ResolveSession(ctx context.Context, sessionID string) (*model.Session, error) {
	unlock := m.lockSession(sessionID)
	defer unlock()

	now := m.now()
	created, err := m.store.CreateSession(ctx, uuid.Must(uuid.NewV7()).String(), sessionID, m.cfg.DefaultLanguage, now)
	if err != nil {
		return nil, err
	}

	sess, err := m.store.SessionByExternalID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if created {
		m.logger.Info("session created", zap.String("session_id", sessionID))
	} else if err := m.store.TouchSession(ctx, sess.ID, now); err != nil {
		return nil, err
	}
	sess.LastSeen = now

	return sess, nil
}

// ActiveConversation returns the session's active conversation if its last
// activity is inside the inactivity window. A stale conversation is flipped
// inactive as a side effect and nil is returned. Staleness is only ever
// evaluated here, never by a background sweep.
func (m *Manager) ActiveConversation(ctx context.Context, sess *model.Session) (*model.Conversation, error) {
	conv, err := m.store.ActiveConversation(ctx, sess.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if m.now().Sub(conv.LastMessageAt) > m.cfg.InactivityWindow {
		if err := m.store.DeactivateConversation(ctx, conv.ID); err != nil {
			return nil, err
		}
		m.logger.Debug("conversation expired",
			zap.String("session_id", sess.SessionID),
			zap.String("conversation_id", conv.ID),
		)
		return nil, nil
	}

	return conv, nil
}

// StartConversation creates a fresh active conversation for the session.
// Callers hold no conversation when they call this; the per-session mutex in
// the chat path keeps two concurrent starters from racing.
func (m *Manager) StartConversation(ctx context.Context, sess *model.Session) (*model.Conversation, error) {
	now := m.now()
	conv := &model.Conversation{
		ID:            uuid.Must(uuid.NewV7()).String(),
		SessionID:     sess.ID,
		StartedAt:     now,
		LastMessageAt: now,
		Active:        true,
	}
	if err := m.store.InsertConversation(ctx, conv); err != nil {
		return nil, err
	}

	m.logger.Info("conversation started",
		zap.String("session_id", sess.SessionID),
		zap.String("conversation_id", conv.ID),
	)
	return conv, nil
}

// ResolveConversation combines the active lookup and fresh start under the
// session's mutex.
func (m *Manager) ResolveConversation(ctx context.Context, sess *model.Session) (*model.Conversation, error) {
	unlock := m.lockSession(sess.SessionID)
	defer unlock()

	conv, err := m.ActiveConversation(ctx, sess)
	if err != nil {
		return nil, err
	}
	if conv != nil {
		return conv, nil
	}
	return m.StartConversation(ctx, sess)
}

// Context returns the conversation's most recent turns, oldest first, capped
// at the configured context window.
func (m *Manager) Context(ctx context.Context, conv *model.Conversation) ([]model.Turn, error) {
	return m.store.RecentTurns(ctx, conv.ID, m.cfg.ContextWindow)
}

// RecordTurn appends the turn and updates conversation and session
// aggregates. Persistence failures are logged and swallowed: the reply has
// already been computed and returned, and a lost turn only degrades
// analytics.
func (m *Manager) RecordTurn(ctx context.Context, sess *model.Session, conv *model.Conversation, turn *model.Turn) {
	if err := m.store.InsertTurn(ctx, turn); err != nil {
		m.logger.Error("failed to persist turn",
			zap.String("session_id", sess.SessionID),
			zap.Error(err),
		)
		metrics.RecordPersistenceFailure()
		return
	}

	if err := m.store.BumpConversation(ctx, conv.ID, turn.CreatedAt); err != nil {
		m.logger.Error("failed to update conversation aggregates", zap.Error(err))
		metrics.RecordPersistenceFailure()
	}
	if err := m.store.ApplyTurnToSession(ctx, sess.ID, turn.Language, turn.CreatedAt); err != nil {
		m.logger.Error("failed to update session aggregates", zap.Error(err))
		metrics.RecordPersistenceFailure()
	}

	if m.events != nil {
		if err := m.events.PublishTurn(ctx, sess.SessionID, turn); err != nil {
			m.logger.Warn("failed to publish turn event", zap.Error(err))
		}
	}
}

// History returns a session's most recent turns for analytics, oldest first.
// Unknown sessions yield an empty result, not an error.
func (m *Manager) History(ctx context.Context, sessionID string, limit int) ([]model.Turn, error) {
	sess, err := m.store.SessionByExternalID(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > m.cfg.MaxHistory {
		limit = m.cfg.MaxHistory
	}
	turns, err := m.store.SessionTurns(ctx, sess.ID, limit)
	if err != nil {
		return nil, err
	}
	if turns == nil {
		// Known session, no turns yet. Distinguishable from the unknown-session
		// nil result.
		turns = []model.Turn{}
	}
	return turns, nil
}

// Stats returns a session's aggregate counters, or nil when the session is
// unknown.
func (m *Manager) Stats(ctx context.Context, sessionID string) (*model.SessionStats, error) {
	sess, err := m.store.SessionByExternalID(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	conversations, err := m.store.CountConversations(ctx, sess.ID)
	if err != nil {
		return nil, err
	}

	return &model.SessionStats{
		SessionID:          sess.SessionID,
		PreferredLanguage:  sess.PreferredLanguage,
		FirstSeen:          sess.FirstSeen,
		LastSeen:           sess.LastSeen,
		TotalMessages:      sess.TotalMessages,
		TotalConversations: conversations,
	}, nil
}
