package ws

import (
	"context"
	"encoding/json"
	"time"

	"npc-dialogue-engine/backend/pkg/errors"
	"npc-dialogue-engine/backend/pkg/logger"

	"npc-dialogue-engine/backend/internal/models"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8 * 1024
)

// inboundFrame is a player message arriving over the channel.
type inboundFrame struct {
	Message string `json:"message"`
}

// Client is one live connection for one session key.
type Client struct {
	id      string
	key     models.SessionKey
	conn    *websocket.Conn
	send    chan []byte
	manager *Manager
	log     *logger.Logger
}

// ReadPump reads inbound frames and processes them strictly in order: each
// message is fully handled before the next is read, so a connection never has
// more than one generation in flight.
func (c *Client) ReadPump() {
	defer func() {
		c.manager.Detach(c)
		close(c.send)
		c.conn.Close()
		c.log.Info("realtime channel detached", "client_id", c.id)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.LogError(err, "websocket read failed", "client_id", c.id)
			}
			break
		}

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.sendError("invalid frame: expected {\"message\": ...}")
			continue
		}

		c.handleMessage(frame.Message)
	}
}

// handleMessage runs the player message through the shared turn pipeline and
// relays the result. The gateway call runs on a background context: a peer
// disconnecting mid-generation does not cancel it, so the transcript stays
// consistent for a later reconnect. The result is simply dropped if nobody is
// left to receive it.
func (c *Client) handleMessage(message string) {
	resp, err := c.manager.coordinator.GenerateTurn(context.Background(), c.key.CharacterID, c.key.SessionID, message)
	if err != nil {
		c.log.LogError(err, "turn generation failed", "client_id", c.id)
		c.sendError(errors.GetErrorMessage(err))
		return
	}

	c.sendJSON(resp)
}

func (c *Client) sendJSON(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		c.log.LogError(err, "marshaling outbound frame", "client_id", c.id)
		return
	}

	select {
	case c.send <- payload:
	default:
		c.log.Warn("outbound buffer full, dropping frame", "client_id", c.id)
	}
}

func (c *Client) sendError(message string) {
	c.sendJSON(map[string]string{"error": message})
}

// WritePump relays outbound frames and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The read pump closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
