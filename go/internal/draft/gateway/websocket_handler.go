package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler handles WebSocket upgrade requests for division connections
type WebSocketHandler struct {
	connectionManager *ConnectionManager
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cm *ConnectionManager) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
	}
}

// HandleDivisionConnection upgrades /ws/division?division_id=<uuid>&coach_id=<id>.
func (h *WebSocketHandler) HandleDivisionConnection(w http.ResponseWriter, r *http.Request) {
	divisionIDStr := r.URL.Query().Get("division_id")
	if divisionIDStr == "" {
		http.Error(w, "division_id is required", http.StatusBadRequest)
		return
	}

	divisionID, err := uuid.Parse(divisionIDStr)
	if err != nil {
		http.Error(w, "invalid division_id format", http.StatusBadRequest)
		return
	}

	coachID := r.URL.Query().Get("coach_id")
	if coachID == "" {
		coachID = "spectator"
	}

	// on failure the upgrader has already written an HTTP error
	if err := h.connectionManager.UpgradeConnection(w, r, coachID, divisionID); err != nil {
		log.Error().
			Err(err).
			Str("division_id", divisionID.String()).
			Str("coach_id", coachID).
			Msg("failed to upgrade WebSocket connection")
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.connectionManager.GetConnectionStats()); err != nil {
		log.Error().Err(err).Msg("failed to encode connection stats")
	}
}

// RegisterRoutes registers WebSocket routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/division", h.HandleDivisionConnection)
	mux.HandleFunc("GET /ws/stats", h.HandleConnectionStats)
}
