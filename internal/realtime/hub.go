package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/perguntas-ebd/backend/internal/models"
)

const (
	// PingInterval and PongWait are used for heartbeat (seconds).
	PingInterval = 30
	PongWait     = 60
)

// Hub maintains room -> set of connections and fans out change events.
// Uses Redis pub/sub for horizontal scaling: handlers publish to Redis and
// each instance's subscriber performs the local broadcast exactly once.
type Hub struct {
	// room id -> map[clientID]*Client
	rooms    map[string]map[string]*Client
	subs     map[string]func() // cancel Redis subscription per room
	mu       sync.RWMutex
	logger   *zap.Logger
	redis    RedisPublisher
	redisSub RedisSubscriber
}

// RedisPublisher is the interface for publishing to Redis (for cross-instance broadcast).
type RedisPublisher interface {
	PublishRoomEvent(room string, event string, payload []byte) error
}

// RedisSubscriber subscribes to room channels and invokes handler for incoming events.
type RedisSubscriber interface {
	SubscribeRoom(room string, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger, redisPub RedisPublisher, redisSub RedisSubscriber) *Hub {
	return &Hub{
		rooms:    make(map[string]map[string]*Client),
		subs:     make(map[string]func()),
		logger:   logger,
		redis:    redisPub,
		redisSub: redisSub,
	}
}

// Register adds a client to a room. Starts the Redis subscription for the
// room on first client, and confirms the handshake to the new client with
// a connected event (the client-side connectivity indicator keys off it).
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.rooms[c.Room] == nil {
		h.rooms[c.Room] = make(map[string]*Client)
		if h.redisSub != nil {
			cancel, err := h.redisSub.SubscribeRoom(c.Room, func(event string, payload []byte) {
				h.BroadcastToRoom(c.Room, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[c.Room] = cancel
			}
		}
	}
	h.rooms[c.Room][c.ID] = c
	h.mu.Unlock()

	c.enqueue(WSMessage{Event: EventConnected})
	h.logger.Debug("client joined room", zap.String("client_id", c.ID), zap.String("room", c.Room))
}

// Unregister removes a client from a room. Cancels the Redis subscription
// when the last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.rooms[c.Room]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.rooms, c.Room)
			if cancel, ok := h.subs[c.Room]; ok {
				cancel()
				delete(h.subs, c.Room)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client left room", zap.String("client_id", c.ID), zap.String("room", c.Room))
}

// BroadcastToRoom sends a message to all clients in a room (local only).
func (h *Hub) BroadcastToRoom(room string, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	clients := h.rooms[room]
	h.mu.RUnlock()

	for _, c := range clients {
		c.enqueue(msg)
	}
}

// PublishToRoomOnly publishes to Redis only (no direct local broadcast), so
// the Redis subscriber callback performs the broadcast once for all
// instances including this one. Falls back to a local broadcast when Redis
// is not configured.
func (h *Hub) PublishToRoomOnly(room string, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if h.redis != nil {
		_ = h.redis.PublishRoomEvent(room, event, data)
		return
	}
	h.BroadcastToRoom(room, event, payload)
}

// AudienceCount returns the number of connected clients in a room.
func (h *Hub) AudienceCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// PublishInsert publishes a question_insert change event for the question's room.
func (h *Hub) PublishInsert(q *models.Question) {
	h.PublishToRoomOnly(q.Room, EventInsert, q)
}

// PublishUpdate publishes a question_update change event for the question's room.
func (h *Hub) PublishUpdate(q *models.Question) {
	h.PublishToRoomOnly(q.Room, EventUpdate, q)
}

// PublishDelete publishes a question_delete change event. Moderator feeds
// remove deleted questions optimistically and ignore this event; student
// feeds rely on it.
func (h *Hub) PublishDelete(room string, id uuid.UUID) {
	h.PublishToRoomOnly(room, EventDelete, DeletePayload{ID: id})
}
