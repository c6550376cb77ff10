package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/KevinKickass/OpenLaundryCore/internal/auth"
	"github.com/KevinKickass/OpenLaundryCore/internal/cycle"
	"go.uber.org/zap"
)

// MachineStatusProvider supplies the snapshot sent to freshly authenticated clients.
type MachineStatusProvider interface {
	Status() cycle.MachineStatus
}

// TokenValidator checks the token a client sends as its first message.
type TokenValidator interface {
	ValidateToken(token string) (*auth.JWTClaims, []auth.Permission, error)
}

// Hub maintains active WebSocket clients and broadcasts messages
type Hub struct {
	clients map[*Client]bool

	broadcast  chan Message
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// closed when Run returns
	done chan struct{}

	logger *zap.Logger

	// nil disables authentication
	validator TokenValidator

	machineStatusProvider MachineStatusProvider
}

func NewHub(logger *zap.Logger, validator TokenValidator) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
		logger:     logger,
		validator:  validator,
	}
}

func (h *Hub) SetMachineStatusProvider(provider MachineStatusProvider) {
	h.machineStatusProvider = provider
}

// Run starts the hub's main event loop and returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("WebSocket Hub started")
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			h.logger.Info("WebSocket Hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("WebSocket client registered",
				zap.String("remote_addr", client.remoteAddr()),
				zap.Int("total_clients", total))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Info("WebSocket client unregistered",
					zap.String("remote_addr", client.remoteAddr()),
					zap.Int("total_clients", len(h.clients)))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			data, err := json.Marshal(message)
			if err != nil {
				h.logger.Error("Failed to marshal broadcast message", zap.Error(err))
				continue
			}

			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// slow or dead client
					close(client.send)
					delete(h.clients, client)
					h.logger.Warn("Client send buffer full, unregistering",
						zap.String("remote_addr", client.remoteAddr()))
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

func (h *Hub) registerClient(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

func (h *Hub) unregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast sends a message to all connected clients
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("Hub broadcast channel full, message dropped",
			zap.String("message_type", string(msg.Type)))
	}
}

// Publish lets the hub subscribe to cycle runner events.
func (h *Hub) Publish(event cycle.Event) {
	h.Broadcast(NewCycleMessage(event))
}

func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

var _ cycle.Subscriber = (*Hub)(nil)
