// Package service provides the message-handling pipeline for the chatbot.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wondertoys/support-chatbot/internal/conversation"
	"github.com/wondertoys/support-chatbot/internal/model"
	"github.com/wondertoys/support-chatbot/internal/nlp"
	"github.com/wondertoys/support-chatbot/internal/response"
	"github.com/wondertoys/support-chatbot/pkg/logger"
	"github.com/wondertoys/support-chatbot/pkg/metrics"
)

// ChatService runs the full pipeline for one inbound message: normalize,
// detect language, extract entities, classify, gate, resolve context,
// compose the reply and record the turn.
type ChatService struct {
	classifier    *nlp.Classifier
	extractor     *nlp.Extractor
	conversations *conversation.Manager
	composer      *response.Composer
	logger        *logger.Logger

	confidenceThreshold float64
	debugInfo           bool
}

// NewChatService creates the pipeline with all collaborators injected.
func NewChatService(
	classifier *nlp.Classifier,
	extractor *nlp.Extractor,
	conversations *conversation.Manager,
	composer *response.Composer,
	log *logger.Logger,
	confidenceThreshold float64,
	debugInfo bool,
) *ChatService {
	return &ChatService{
		classifier:          classifier,
		extractor:           extractor,
		conversations:       conversations,
		composer:            composer,
		logger:              log,
		confidenceThreshold: confidenceThreshold,
		debugInfo:           debugInfo,
	}
}

// HandleMessage processes one user message and returns the reply payload.
// Read-side enrichment (context, entities) degrades to "none" on failure; the
// only error surfaced to the caller is a missing response template, which is
// a configuration defect.
func (s *ChatService) HandleMessage(ctx context.Context, message, sessionID string) (*model.ChatResponse, error) {
	start := time.Now()

	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	language := nlp.Detect(message)

	intent, confidence, err := s.classifier.Classify(message)
	if err != nil {
		// ErrNotTrained yields the neutral unknown/0.0 result; anything else
		// would be a programming error inside the classifier.
		s.logger.Error("intent classification unavailable", zap.Error(err))
	}

	entities := s.extractor.Extract(ctx, message, language)

	gated := nlp.Gate(intent, confidence, s.confidenceThreshold)
	if gated != intent {
		s.logger.Info("low confidence, using fallback intent",
			zap.String("intent", intent),
			zap.Float64("confidence", confidence),
		)
	}

	// Context read path: any failure here drops personalization but never the
	// reply.
	var (
		sess *model.Session
		conv *model.Conversation
		hint string
	)
	sess, err = s.conversations.ResolveSession(ctx, sessionID)
	if err != nil {
		s.logger.Warn("session resolution failed, replying without context",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	} else {
		conv, err = s.conversations.ResolveConversation(ctx, sess)
		if err != nil {
			s.logger.Warn("conversation resolution failed, replying without context",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
		} else {
			turns, err := s.conversations.Context(ctx, conv)
			if err != nil {
				s.logger.Warn("context read failed, omitting hint", zap.Error(err))
			} else {
				hint = conversation.ContextHint(turns, gated, language)
			}
		}
	}

	reply, err := s.composer.Compose(gated, language, entities, hint)
	if err != nil {
		if errors.Is(err, response.ErrTemplateMissing) {
			s.logger.Error("template table incomplete", zap.Error(err))
		}
		return nil, err
	}

	responseTime := time.Since(start).Milliseconds()

	metrics.RecordClassification(gated, language, confidence, gated != intent)

	if sess != nil && conv != nil {
		turn := &model.Turn{
			ID:             uuid.Must(uuid.NewV7()).String(),
			ConversationID: conv.ID,
			UserInput:      message,
			BotResponse:    reply,
			Language:       language,
			Intent:         gated,
			Confidence:     confidence,
			Entities:       entities,
			Topics:         nlp.Topics(message),
			Interests:      nlp.Interests(message),
			CreatedAt:      s.conversations.Now(),
			ResponseTimeMs: responseTime,
		}
		s.conversations.RecordTurn(ctx, sess, conv, turn)
	}

	resp := &model.ChatResponse{
		Response:   reply,
		SessionID:  sessionID,
		Intent:     gated,
		Confidence: confidence,
		Entities:   entities,
	}
	if s.debugInfo {
		resp.DebugInfo = &model.DebugInfo{
			Language:           language,
			OriginalConfidence: confidence,
			ThresholdApplied:   gated != intent,
			ResponseTimeMs:     responseTime,
		}
	}

	return resp, nil
}

// History returns a session's recent turns for the analytics surface.
func (s *ChatService) History(ctx context.Context, sessionID string, limit int) ([]model.Turn, error) {
	return s.conversations.History(ctx, sessionID, limit)
}

// Stats returns a session's aggregate counters, or nil when unknown.
func (s *ChatService) Stats(ctx context.Context, sessionID string) (*model.SessionStats, error) {
	return s.conversations.Stats(ctx, sessionID)
}
