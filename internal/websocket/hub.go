package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"mindcare-rag-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	hubModule = "Hub"

	// Redis channel shared by every instance for session fan-out.
	sessionEventsChannel = "mindcare:session_events"
)

const (
	FrameChat           = "chat"
	FrameError          = "error"
	FrameSessionCleared = "session_cleared"
)

// Frame is the envelope of every server-to-client message.
type Frame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type binding struct {
	client    *Client
	sessionId string
}

type clusterMessage struct {
	Origin    string          `json:"origin"`
	SessionId string          `json:"session_id"`
	Message   json.RawMessage `json:"message"`
}

type Hub struct {
	// Connected clients by session id. A socket that has not chatted yet is
	// kept under the empty key.
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	bind       chan binding

	mu sync.RWMutex

	// Optional; fans session events out to other instances.
	rdb        *redis.Client
	instanceId string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		bind:       make(chan binding),
		rdb:        rdb,
		instanceId: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.key] = append(h.clients[client.key], client)
			h.mu.Unlock()
			h.logger.Info(hubModule, "Client registered", map[string]interface{}{"session_id": client.key})

		case client := <-h.unregister:
			h.mu.Lock()
			if h.remove(client) {
				close(client.Send)
			}
			h.mu.Unlock()

		case b := <-h.bind:
			h.mu.Lock()
			if h.remove(b.client) {
				b.client.key = b.sessionId
				h.clients[b.sessionId] = append(h.clients[b.sessionId], b.client)
			}
			h.mu.Unlock()
		}
	}
}

// remove drops client from its slot. Callers hold h.mu.
func (h *Hub) remove(client *Client) bool {
	clients := h.clients[client.key]
	for i, c := range clients {
		if c == client {
			h.clients[client.key] = append(clients[:i], clients[i+1:]...)
			if len(h.clients[client.key]) == 0 {
				delete(h.clients, client.key)
			}
			return true
		}
	}
	return false
}

// NotifySessionCleared tells every socket attached to sessionId, on this and
// other instances, that its history is gone.
func (h *Hub) NotifySessionCleared(sessionId string) {
	data, err := json.Marshal(Frame{
		Type: FrameSessionCleared,
		Data: map[string]string{"session_id": sessionId},
	})
	if err != nil {
		return
	}

	h.deliver(sessionId, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterMessage{
			Origin:    h.instanceId,
			SessionId: sessionId,
			Message:   data,
		})
		if err := h.rdb.Publish(context.Background(), sessionEventsChannel, payload).Err(); err != nil {
			h.logger.Warn(hubModule, "Failed to publish session event", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (h *Hub) deliver(sessionId string, data []byte) {
	if sessionId == "" {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients[sessionId] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn(hubModule, "Client send buffer full, dropping frame", map[string]interface{}{"session_id": sessionId})
		}
	}
}

func (h *Hub) clientCount(sessionId string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionId])
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, sessionEventsChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.handleClusterMessage(msg.Payload)
	}
}

// handleClusterMessage delivers a frame published by another instance. Our
// own messages were delivered locally before publishing.
func (h *Hub) handleClusterMessage(raw string) {
	var payload clusterMessage
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		h.logger.Warn(hubModule, "Redis message parse error", map[string]interface{}{"error": err.Error()})
		return
	}
	if payload.Origin == h.instanceId {
		return
	}
	h.deliver(payload.SessionId, payload.Message)
}
