package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"mindcare-rag-be/internal/dto"
	"mindcare-rag-be/internal/pkg/serverutils"
	"mindcare-rag-be/internal/service"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 32 * 1024
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	Conn *websocket.Conn

	// Buffered channel of outbound frames.
	Send chan []byte

	chat service.IChatService

	// Hub slot; only touched by the hub goroutine.
	key string
}

// readPump answers each chat frame in order. The session created by the
// first reply is reused for later frames that carry no session_id.
func (c *Client) readPump(ctx context.Context, sessionId string) {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn(hubModule, "Unexpected close", map[string]interface{}{"error": err.Error()})
			}
			return
		}

		sessionId = c.handle(ctx, data, sessionId)
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

// handle processes one frame and returns the session the socket is on now.
func (c *Client) handle(ctx context.Context, data []byte, sessionId string) string {
	var req dto.ChatRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.reply(Frame{Type: FrameError, Data: map[string]string{"message": "Invalid message format"}})
		return sessionId
	}
	if req.SessionId == "" {
		req.SessionId = sessionId
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		c.reply(errorFrame(err))
		return sessionId
	}

	res, err := c.chat.Chat(ctx, &req)
	if err != nil {
		c.reply(errorFrame(err))
		return sessionId
	}

	if res.SessionId != sessionId {
		c.Hub.bind <- binding{client: c, sessionId: res.SessionId}
	}
	c.reply(Frame{Type: FrameChat, Data: res})
	return res.SessionId
}

func errorFrame(err error) Frame {
	msg := "Internal server error"
	var appErr *serverutils.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	return Frame{Type: FrameError, Data: map[string]string{"message": msg}}
}

func (c *Client) reply(frame Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	select {
	case c.Send <- data:
	default:
		c.Hub.logger.Warn(hubModule, "Client send buffer full, dropping frame", map[string]interface{}{"type": frame.Type})
	}
}

// writePump pumps frames from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
