package websocket

import (
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/KevinKickass/OpenLaundryCore/internal/auth"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Time allowed for the first (auth) message
	authWait = 10 * time.Second

	maxMessageSize = 8192
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client represents a WebSocket client connection
type Client struct {
	hub           *Hub
	conn          *websocket.Conn
	send          chan []byte
	logger        *zap.Logger
	authenticated bool
}

func (c *Client) remoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// readPump authenticates the client, then drains incoming messages until the
// connection closes.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregisterClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(authWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	if c.hub.validator == nil {
		c.activate()
	}

	for {
		var msg map[string]interface{}
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket read error",
					zap.Error(err),
					zap.String("remote_addr", c.remoteAddr()))
			}
			return
		}

		if !c.authenticated {
			if !c.authenticate(msg) {
				return
			}
			continue
		}

		c.logger.Debug("Received client message",
			zap.String("remote_addr", c.remoteAddr()),
			zap.Any("message", msg))
	}
}

// authenticate expects {"type":"auth","token":"..."} as the first message.
func (c *Client) authenticate(msg map[string]interface{}) bool {
	if msgType, ok := msg["type"].(string); !ok || msgType != "auth" {
		c.writeDirect(NewMessage(MessageTypeAuthFailed, "first message must be authentication"))
		return false
	}

	token, ok := msg["token"].(string)
	if !ok || token == "" {
		c.writeDirect(NewMessage(MessageTypeAuthFailed, "missing token in auth message"))
		return false
	}

	claims, permissions, err := c.hub.validator.ValidateToken(token)
	if err != nil || !slices.Contains(permissions, auth.PermViewer) {
		c.logger.Warn("WebSocket authentication failed",
			zap.Error(err),
			zap.String("remote_addr", c.remoteAddr()))
		c.writeDirect(NewMessage(MessageTypeAuthFailed, "invalid or expired token"))
		return false
	}

	c.logger.Info("WebSocket client authenticated",
		zap.String("remote_addr", c.remoteAddr()),
		zap.String("username", claims.Username))

	c.send <- mustMarshal(NewMessage(MessageTypeAuthSuccess, permissions))
	c.activate()
	return true
}

// activate registers the client with the hub and sends the current status.
func (c *Client) activate() {
	c.authenticated = true
	c.conn.SetReadDeadline(time.Now().Add(pongWait))

	if provider := c.hub.machineStatusProvider; provider != nil {
		c.send <- mustMarshal(NewMessage(MessageTypeMachineStatus, provider.Status()))
	}

	c.hub.registerClient(c)
}

// writeDirect is used before the write pump owns the connection's close path.
func (c *Client) writeDirect(msg Message) {
	c.send <- mustMarshal(msg)
	close(c.send)
	c.send = nil
}

func mustMarshal(msg Message) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		data, _ = json.Marshal(NewMessage(msg.Type, err.Error()))
	}
	return data
}

// writePump handles writing messages to the WebSocket connection
func (c *Client) writePump(send <-chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

// ServeWs handles WebSocket upgrade requests
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Error("WebSocket upgrade error",
			zap.Error(err),
			zap.String("remote_addr", r.RemoteAddr))
		return
	}

	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		logger: hub.logger,
	}

	go client.writePump(client.send)
	go client.readPump()
}
