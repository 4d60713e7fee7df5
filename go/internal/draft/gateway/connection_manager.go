package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/tierdraft/go/internal/draft/engine"
	"github.com/mcdev12/tierdraft/go/internal/draft/outbox"
	"github.com/rs/zerolog/log"
)

// StateProvider returns the snapshot a client receives when it connects.
type StateProvider interface {
	DivisionSnapshot(ctx context.Context, divisionID uuid.UUID) (*engine.Snapshot, error)
}

// ConnectionManager manages WebSocket connections for division events
type ConnectionManager struct {
	// Connection pools organized by division ID
	divisionConnections map[uuid.UUID]map[*Connection]bool
	mu                  sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig
	state    StateProvider

	broadcastCh chan BroadcastMessage
}

// Connection represents a WebSocket connection to a client
type Connection struct {
	ID         string
	CoachID    string
	DivisionID uuid.UUID
	Conn       *websocket.Conn
	Send       chan []byte
	Manager    *ConnectionManager

	ConnectedAt time.Time
	lastPing    time.Time
	pingMu      sync.Mutex
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBuffer      int
	CheckOrigin     func(r *http.Request) bool
}

// BroadcastMessage represents a message to broadcast to connections
type BroadcastMessage struct {
	DivisionID uuid.UUID
	Event      *DivisionEvent
	CoachID    string // Optional: if set, only send to this coach
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBuffer:      256,
		CheckOrigin: func(r *http.Request) bool {
			// origins are enforced by the CORS layer in front of the API
			return true
		},
	}
}

// NewConnectionManager creates a new WebSocket connection manager. state may be nil.
func NewConnectionManager(config ConnectionConfig, state StateProvider) *ConnectionManager {
	if config.SendBuffer <= 0 {
		config.SendBuffer = 256
	}
	return &ConnectionManager{
		divisionConnections: make(map[uuid.UUID]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		state:       state,
		broadcastCh: make(chan BroadcastMessage, 1000),
	}
}

// Start begins processing broadcast messages
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			return
		case message := <-cm.broadcastCh:
			cm.handleBroadcast(message)
		}
	}
}

// UpgradeConnection upgrades an HTTP connection to WebSocket and sends the current snapshot.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, coachID string, divisionID uuid.UUID) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		CoachID:     coachID,
		DivisionID:  divisionID,
		Conn:        conn,
		Send:        make(chan []byte, cm.config.SendBuffer),
		Manager:     cm,
		ConnectedAt: time.Now(),
		lastPing:    time.Now(),
	}

	if frame := cm.syncFrame(r.Context(), divisionID); frame != nil {
		connection.Send <- frame
	}
	cm.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("coach_id", coachID).
		Str("division_id", divisionID.String()).
		Msg("WebSocket connection established")

	return nil
}

func (cm *ConnectionManager) syncFrame(ctx context.Context, divisionID uuid.UUID) []byte {
	if cm.state == nil {
		return nil
	}
	snapshot, err := cm.state.DivisionSnapshot(ctx, divisionID)
	if err != nil {
		log.Warn().Err(err).Str("division_id", divisionID.String()).Msg("failed to load division snapshot")
		return nil
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal division snapshot")
		return nil
	}
	frame, err := json.Marshal(DivisionEvent{
		ID:         uuid.New().String(),
		DivisionID: divisionID.String(),
		Type:       EventTypeSync,
		Timestamp:  time.Now().UTC(),
		Data:       data,
	})
	if err != nil {
		return nil
	}
	return frame
}

// registerConnection adds a connection to the manager
func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.divisionConnections[conn.DivisionID] == nil {
		cm.divisionConnections[conn.DivisionID] = make(map[*Connection]bool)
	}
	cm.divisionConnections[conn.DivisionID][conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Str("division_id", conn.DivisionID.String()).
		Int("total_connections", len(cm.divisionConnections[conn.DivisionID])).
		Msg("connection registered")
}

// unregisterConnection removes a connection from the manager
func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	connections, exists := cm.divisionConnections[conn.DivisionID]
	if !exists {
		return
	}
	if _, exists := connections[conn]; !exists {
		return
	}
	delete(connections, conn)
	close(conn.Send)

	if len(connections) == 0 {
		delete(cm.divisionConnections, conn.DivisionID)
	}

	log.Info().
		Str("connection_id", conn.ID).
		Str("coach_id", conn.CoachID).
		Str("division_id", conn.DivisionID.String()).
		Msg("connection unregistered")
}

// BroadcastToDivision sends an event to all connections for a division
func (cm *ConnectionManager) BroadcastToDivision(divisionID uuid.UUID, event *DivisionEvent) {
	select {
	case cm.broadcastCh <- BroadcastMessage{DivisionID: divisionID, Event: event}:
	default:
		log.Warn().Str("division_id", divisionID.String()).Msg("broadcast channel full, dropping message")
	}
}

// BroadcastToCoach sends an event to one coach's connections in a division
func (cm *ConnectionManager) BroadcastToCoach(divisionID uuid.UUID, coachID string, event *DivisionEvent) {
	select {
	case cm.broadcastCh <- BroadcastMessage{DivisionID: divisionID, Event: event, CoachID: coachID}:
	default:
		log.Warn().
			Str("division_id", divisionID.String()).
			Str("coach_id", coachID).
			Msg("broadcast channel full, dropping coach message")
	}
}

// Publish implements outbox.Publisher so events can be fanned out in-process.
func (cm *ConnectionManager) Publish(_ context.Context, event outbox.Event) error {
	cm.BroadcastToDivision(event.DivisionID, FromEnvelope(outbox.NewEnvelope(event)))
	return nil
}

// handleBroadcast processes a broadcast message
func (cm *ConnectionManager) handleBroadcast(message BroadcastMessage) {
	eventData, err := json.Marshal(message.Event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}

	var slow []*Connection
	sent := 0

	// sends happen under the read lock so unregisterConnection cannot close a channel mid-send
	cm.mu.RLock()
	for conn := range cm.divisionConnections[message.DivisionID] {
		if message.CoachID != "" && conn.CoachID != message.CoachID {
			continue
		}
		select {
		case conn.Send <- eventData:
			sent++
		default:
			slow = append(slow, conn)
		}
	}
	cm.mu.RUnlock()

	for _, conn := range slow {
		log.Warn().
			Str("connection_id", conn.ID).
			Str("coach_id", conn.CoachID).
			Msg("connection send buffer full, closing connection")
		cm.unregisterConnection(conn)
		conn.Conn.Close()
	}

	log.Debug().
		Str("event_type", message.Event.Type).
		Str("division_id", message.DivisionID.String()).
		Int("connections", sent).
		Msg("event broadcasted")
}

// ConnectionStats summarizes active connections.
type ConnectionStats struct {
	TotalConnections    int            `json:"total_connections"`
	ActiveDivisions     int            `json:"active_divisions"`
	DivisionConnections map[string]int `json:"division_connections"`
}

// GetConnectionStats returns statistics about active connections
func (cm *ConnectionManager) GetConnectionStats() ConnectionStats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	stats := ConnectionStats{
		ActiveDivisions:     len(cm.divisionConnections),
		DivisionConnections: make(map[string]int, len(cm.divisionConnections)),
	}
	for divisionID, connections := range cm.divisionConnections {
		stats.TotalConnections += len(connections)
		stats.DivisionConnections[divisionID.String()] = len(connections)
	}
	return stats
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump handles reading messages from the WebSocket connection
func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		_ = c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		c.pingMu.Lock()
		c.lastPing = time.Now()
		c.pingMu.Unlock()
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		// clients are read-only; anything they send is logged and dropped
		log.Debug().
			Str("connection_id", c.ID).
			Str("coach_id", c.CoachID).
			Int("bytes", len(message)).
			Msg("received client message")
		_ = c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}
