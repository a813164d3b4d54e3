package handler

import (
	"context"

	"mindcare-rag-be/internal/pkg/logger"
	"mindcare-rag-be/internal/service"
	internalWS "mindcare-rag-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type ChatSocketHandler struct {
	hub    *internalWS.Hub
	chat   service.IChatService
	logger logger.ILogger
}

func NewChatSocketHandler(hub *internalWS.Hub, chat service.IChatService, log logger.ILogger) *ChatSocketHandler {
	return &ChatSocketHandler{
		hub:    hub,
		chat:   chat,
		logger: log,
	}
}

func (h *ChatSocketHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws/chat", h.ServeWs)
}

// ServeWs upgrades the request and runs a chat socket. An optional
// session_id query parameter resumes an existing conversation.
func (h *ChatSocketHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	sessionId := c.Query("session_id")
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("ChatSocketHandler", "WebSocket session started", map[string]interface{}{"session_id": sessionId})
		internalWS.ServeWs(context.Background(), h.hub, h.chat, conn, sessionId)
		h.logger.Info("ChatSocketHandler", "WebSocket session ended", map[string]interface{}{"session_id": sessionId})
	})(c)
}
