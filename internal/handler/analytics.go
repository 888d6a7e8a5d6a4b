package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wondertoys/support-chatbot/internal/middleware"
	"github.com/wondertoys/support-chatbot/internal/model"
	"github.com/wondertoys/support-chatbot/internal/service"
	"github.com/wondertoys/support-chatbot/pkg/logger"
)

// AnalyticsHandler handles per-session analytics endpoints.
type AnalyticsHandler struct {
	chatService *service.ChatService
	logger      *logger.Logger
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(chatSvc *service.ChatService, log *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		chatService: chatSvc,
		logger:      log,
	}
}

// History handles GET /analytics/{session_id}
func (h *AnalyticsHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "session_id")

	if err := middleware.ValidateSessionID(sessionID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	turns, err := h.chatService.History(ctx, sessionID, limit)
	if err != nil {
		h.logger.Error("failed to read history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read history")
		return
	}
	if turns == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, model.HistoryResponse{
		SessionID:    sessionID,
		MessageCount: len(turns),
		Messages:     turns,
	})
}

// Stats handles GET /analytics/{session_id}/stats
func (h *AnalyticsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "session_id")

	if err := middleware.ValidateSessionID(sessionID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := h.chatService.Stats(ctx, sessionID)
	if err != nil {
		h.logger.Error("failed to read session stats", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read session stats")
		return
	}
	if stats == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
