package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wondertoys/support-chatbot/internal/augment"
	"github.com/wondertoys/support-chatbot/internal/conversation"
	"github.com/wondertoys/support-chatbot/internal/model"
	"github.com/wondertoys/support-chatbot/internal/nlp"
	"github.com/wondertoys/support-chatbot/internal/response"
	"github.com/wondertoys/support-chatbot/internal/store"
	"github.com/wondertoys/support-chatbot/pkg/logger"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T) (*ChatService, *fakeClock) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	log := logger.NewNop()

	classifier := nlp.NewClassifier(log)
	require.NoError(t, classifier.Train(nlp.DefaultTrainingData))

	clock := &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
	manager := conversation.NewManager(st, nil, log, conversation.Config{
		InactivityWindow: 30 * time.Minute,
	})
	manager.SetClock(clock.Now)

	svc := NewChatService(
		classifier,
		nlp.NewExtractor(augment.Noop{}, log),
		manager,
		response.NewComposer(),
		log,
		0.5,
		true,
	)
	return svc, clock
}

func TestHandleMessagePurchase(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.HandleMessage(context.Background(), "I want to buy a toy", "visitor-1")
	require.NoError(t, err)

	assert.Equal(t, model.IntentProductInquiry, resp.Intent)
	assert.Equal(t, 0.95, resp.Confidence)
	assert.NotContains(t, resp.Entities, "order_number")
	assert.Equal(t, "I'd love to help you find the perfect product! What are you looking for? Toys or gifts?", resp.Response)
	assert.Equal(t, "visitor-1", resp.SessionID)

	require.NotNil(t, resp.DebugInfo)
	assert.Equal(t, "en", resp.DebugInfo.Language)
	assert.False(t, resp.DebugInfo.ThresholdApplied)
}

func TestHandleMessageCancelWithOrderNumber(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.HandleMessage(context.Background(), "Please cancel my order 4821", "visitor-1")
	require.NoError(t, err)

	assert.Equal(t, model.IntentCancelOrder, resp.Intent)
	assert.Equal(t, 0.90, resp.Confidence)
	assert.Equal(t, "4821", resp.Entities["order_number"])
	assert.Equal(t, "I understand you want to cancel an order. Please provide your order number so I can help you.", resp.Response)
}

func TestHandleMessageOrderStatusInterpolation(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.HandleMessage(context.Background(), "where is my order 4821", "visitor-1")
	require.NoError(t, err)

	assert.Equal(t, model.IntentOrderStatus, resp.Intent)
	assert.Equal(t, "Let me check order #4821 for you.", resp.Response)
}

func TestHandleMessageContextHint(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	resp, err := svc.HandleMessage(ctx, "hello", "visitor-1")
	require.NoError(t, err)
	assert.Equal(t, model.IntentGreeting, resp.Intent)

	clock.Advance(time.Minute)
	resp, err = svc.HandleMessage(ctx, "I want a gift", "visitor-1")
	require.NoError(t, err)
	assert.Equal(t, model.IntentProductInquiry, resp.Intent)
	assert.Equal(t, "Great, let's find something for you! I'd love to help you find the perfect product! What are you looking for? Toys or gifts?", resp.Response)
}

func TestHandleMessageExpiredConversationDropsHint(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	_, err := svc.HandleMessage(ctx, "hello", "visitor-1")
	require.NoError(t, err)

	// Past the inactivity window the greeting no longer counts as context:
	// a fresh conversation starts and no hint is prepended.
	clock.Advance(31 * time.Minute)
	resp, err := svc.HandleMessage(ctx, "I want a gift", "visitor-1")
	require.NoError(t, err)
	assert.Equal(t, model.IntentProductInquiry, resp.Intent)
	assert.Equal(t, "I'd love to help you find the perfect product! What are you looking for? Toys or gifts?", resp.Response)

	stats, err := svc.Stats(ctx, "visitor-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalConversations)
	assert.Equal(t, 2, stats.TotalMessages)
}

func TestHandleMessageLowConfidence(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.HandleMessage(context.Background(), "quux zork blee", "visitor-1")
	require.NoError(t, err)

	assert.Equal(t, model.IntentLowConfidence, resp.Intent)
	assert.Equal(t, "I'm not sure I understand. Could you please rephrase your question?", resp.Response)
	require.NotNil(t, resp.DebugInfo)
	assert.True(t, resp.DebugInfo.ThresholdApplied)
}

func TestHandleMessageChinese(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.HandleMessage(context.Background(), "你好", "visitor-1")
	require.NoError(t, err)

	assert.Equal(t, model.IntentGreeting, resp.Intent)
	assert.Equal(t, "您好！今天我能为您做些什么？", resp.Response)
	require.NotNil(t, resp.DebugInfo)
	assert.Equal(t, "zh", resp.DebugInfo.Language)
}

func TestHandleMessageGeneratesSessionID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.HandleMessage(ctx, "hello", "")
	require.NoError(t, err)
	require.NotEmpty(t, resp.SessionID)

	// The generated id is a working session: history accrues under it.
	turns, err := svc.History(ctx, resp.SessionID, 10)
	require.NoError(t, err)
	assert.Len(t, turns, 1)
	assert.Equal(t, "hello", turns[0].UserInput)
}

func TestHistoryRecordsTurnMetadata(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.HandleMessage(ctx, "I want to buy a toy as a gift", "visitor-1")
	require.NoError(t, err)

	turns, err := svc.History(ctx, "visitor-1", 10)
	require.NoError(t, err)
	require.Len(t, turns, 1)

	turn := turns[0]
	assert.Equal(t, model.IntentProductInquiry, turn.Intent)
	assert.Equal(t, "en", turn.Language)
	assert.Contains(t, turn.Interests, "toys")
	assert.Contains(t, turn.Interests, "gifts")
	assert.Contains(t, turn.Topics, "order_management")
	assert.NotEmpty(t, turn.BotResponse)
}
