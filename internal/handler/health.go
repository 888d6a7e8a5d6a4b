package handler

import (
	"net/http"

	natsclient "github.com/wondertoys/support-chatbot/internal/nats"
	"github.com/wondertoys/support-chatbot/internal/store"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	store      *store.Store
	natsClient *natsclient.Client
}

// NewHealthHandler creates a new health handler. natsClient may be nil when
// event publishing is disabled.
func NewHealthHandler(st *store.Store, natsClient *natsclient.Client) *HealthHandler {
	return &HealthHandler{
		store:      st,
		natsClient: natsClient,
	}
}

// Index handles GET /
func (h *HealthHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "support-chatbot",
		"status":  "running",
	})
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	components := map[string]string{
		"database": "ok",
	}
	ready := true

	if err := h.store.Ping(r.Context()); err != nil {
		components["database"] = "unavailable"
		ready = false
	}

	if h.natsClient != nil {
		components["nats"] = "ok"
		if !h.natsClient.IsConnected() {
			components["nats"] = "disconnected"
			ready = false
		}
	}

	status := http.StatusOK
	body := map[string]interface{}{
		"status":     "ready",
		"components": components,
	}
	if !ready {
		status = http.StatusServiceUnavailable
		body["status"] = "not ready"
	}

	writeJSON(w, status, body)
}
