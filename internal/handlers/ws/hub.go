// Package ws delivers direct messages to connected clients over websockets.
package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"bookhub/internal/middleware"
	"bookhub/internal/models"
	"bookhub/internal/repositories"
	"bookhub/internal/services"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sendBufferSize = 16
	writeTimeout   = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // tighten for production deployments
	},
}

type client struct {
	conn      *websocket.Conn
	userID    int64
	send      chan *models.Message
	done      chan struct{}
	closeOnce sync.Once
}

// shutdown tears the connection down exactly once. Both the replaced side
// of a reconnect and the pump's own cleanup funnel through here.
func (c *client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// Hub tracks live connections and pushes messages to them. It implements
// services.MessageNotifier so the message service can fan out new messages.
type Hub struct {
	mu             sync.Mutex
	clients        map[int64]*client
	messageService services.MessageService
	userRepo       repositories.UserRepository
	logger         *zap.Logger
}

// NewHub creates a hub with no connected clients
func NewHub(userRepo repositories.UserRepository, logger *zap.Logger) *Hub {
	return &Hub{
		clients:  make(map[int64]*client),
		userRepo: userRepo,
		logger:   logger,
	}
}

// SetMessageService wires the message service after construction. The hub
// is built before the services so it can be injected as their notifier.
func (h *Hub) SetMessageService(svc services.MessageService) {
	h.messageService = svc
}

// HandleConnection upgrades an authenticated request and runs the client
// pumps until the peer disconnects.
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthContext(r.Context())
	if authCtx == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", zap.Error(err), zap.Int64("user_id", authCtx.UserID))
		return
	}

	c := &client{
		conn:   conn,
		userID: authCtx.UserID,
		send:   make(chan *models.Message, sendBufferSize),
		done:   make(chan struct{}),
	}
	h.register(c)
	h.logger.Info("Websocket client connected", zap.Int64("user_id", c.userID))

	go c.writePump(h.logger)
	h.readPump(c)
}

// NotifyMessage pushes a persisted message to the receiver and echoes it
// back to the sender when either has a live connection. Delivery is best
// effort; a full buffer drops the push rather than blocking the caller.
func (h *Hub) NotifyMessage(ctx context.Context, message *models.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, userID := range []int64{message.ReceiverID, message.SenderID} {
		c, ok := h.clients[userID]
		if !ok {
			continue
		}
		select {
		case c.send <- message:
		default:
			h.logger.Warn("Dropping websocket push, send buffer full",
				zap.Int64("user_id", userID), zap.Int64("message_id", message.ID))
		}
	}
}

// IsOnline reports whether the user has a live connection
func (h *Hub) IsOnline(userID int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.clients[userID]
	return ok
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	if existing, ok := h.clients[c.userID]; ok {
		// A reconnect replaces the previous connection
		existing.shutdown()
	}
	h.clients[c.userID] = c
	h.mu.Unlock()

	h.touchLastSeen(c.userID)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if h.clients[c.userID] == c {
		delete(h.clients, c.userID)
	}
	h.mu.Unlock()

	c.shutdown()
	h.touchLastSeen(c.userID)
	h.logger.Info("Websocket client disconnected", zap.Int64("user_id", c.userID))
}

func (h *Hub) touchLastSeen(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.userRepo.UpdateLastSeen(ctx, userID); err != nil {
		h.logger.Warn("Failed to update last seen", zap.Error(err), zap.Int64("user_id", userID))
	}
}

// readPump accepts inbound frames shaped like SendMessageRequest and routes
// them through the message service, which persists and fans out each one.
func (h *Hub) readPump(c *client) {
	defer h.unregister(c)

	for {
		var req services.SendMessageRequest
		if err := c.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("Websocket read error", zap.Error(err), zap.Int64("user_id", c.userID))
			}
			return
		}

		if h.messageService == nil {
			continue
		}
		req.SenderID = c.userID

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if _, err := h.messageService.SendMessage(ctx, &req); err != nil {
			h.logger.Warn("Failed to send websocket message",
				zap.Error(err),
				zap.Int64("sender_id", c.userID),
				zap.Int64("receiver_id", req.ReceiverID),
			)
		}
		cancel()
	}
}

func (c *client) writePump(logger *zap.Logger) {
	defer c.conn.Close()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(msg); err != nil {
				logger.Warn("Websocket write error", zap.Error(err), zap.Int64("user_id", c.userID))
				return
			}
		case <-c.done:
			return
		}
	}
}
