package websocket

import (
	"context"

	"mindcare-rag-be/internal/service"

	"github.com/gofiber/websocket/v2"
)

// ServeWs runs one chat socket until the peer goes away. sessionId may be
// empty; the first reply then assigns one.
func ServeWs(ctx context.Context, hub *Hub, chat service.IChatService, c *websocket.Conn, sessionId string) {
	client := &Client{Hub: hub, Conn: c, Send: make(chan []byte, 256), chat: chat, key: sessionId}
	client.Hub.register <- client

	go client.writePump()
	client.readPump(ctx, sessionId)
}
