// Package ws is the realtime surface: one bidirectional connection per
// session, feeding the same coordinator pipeline as the HTTP API.
package ws

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"npc-dialogue-engine/backend/internal/models"
	"npc-dialogue-engine/backend/internal/registry"
	"npc-dialogue-engine/backend/internal/session"
	"npc-dialogue-engine/backend/pkg/errors"
	"npc-dialogue-engine/backend/pkg/logger"
	"npc-dialogue-engine/backend/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Origin policy is enforced by the CORS layer
	},
	HandshakeTimeout: 10 * time.Second,
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
}

// Manager maps each session key to at most one live connection. A second
// attach for a key already holding a connection is rejected; the peer must
// detach first. Detaching never touches the session's history.
type Manager struct {
	coordinator *session.Coordinator
	registry    *registry.Registry
	log         *logger.Logger

	mu          sync.Mutex
	connections map[models.SessionKey]*Client
}

// NewManager creates a channel manager.
func NewManager(coordinator *session.Coordinator, reg *registry.Registry, log *logger.Logger) *Manager {
	return &Manager{
		coordinator: coordinator,
		registry:    reg,
		log:         log,
		connections: make(map[models.SessionKey]*Client),
	}
}

// Attach registers a connection for the key. It fails with a ConflictError if
// the key already has a live connection.
func (m *Manager) Attach(key models.SessionKey, conn *websocket.Conn) (*Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.connections[key]; ok {
		return nil, errors.NewConflictError(fmt.Sprintf("session %s already has a live connection", key))
	}

	client := &Client{
		id:      uuid.New().String(),
		key:     key,
		conn:    conn,
		send:    make(chan []byte, 64),
		manager: m,
		log:     m.log.WithSession(key.CharacterID, key.SessionID),
	}
	m.connections[key] = client
	metrics.ActiveConnections.Inc()

	return client, nil
}

// Detach unregisters the client if it is still the one attached for its key.
func (m *Manager) Detach(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connections[client.key] == client {
		delete(m.connections, client.key)
		metrics.ActiveConnections.Dec()
	}
}

// Attached reports whether the key currently holds a live connection.
func (m *Manager) Attached(key models.SessionKey) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.connections[key]
	return ok
}

// ActiveCount returns the number of live connections.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.connections)
}

// ServeWs upgrades the request and starts the client pumps for the session
// named in the path.
func ServeWs(m *Manager, c *gin.Context) {
	key := models.SessionKey{
		CharacterID: c.Param("characterId"),
		SessionID:   c.Param("sessionId"),
	}

	if _, err := m.registry.Get(key.CharacterID); err != nil {
		c.Error(err)
		return
	}

	if m.Attached(key) {
		c.Error(errors.NewConflictError(fmt.Sprintf("session %s already has a live connection", key)))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		m.log.LogError(err, "websocket upgrade failed", "session", key.String())
		return
	}

	client, err := m.Attach(key, conn)
	if err != nil {
		// Lost the race with a concurrent attach for the same key
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "session already connected"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}

	m.log.Info("realtime channel attached",
		"client_id", client.id,
		"character_id", key.CharacterID,
		"session_id", key.SessionID,
	)

	go client.WritePump()
	go client.ReadPump()
}
