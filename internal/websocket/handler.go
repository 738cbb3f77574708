package websocket

import (
	"voicepad-be/internal/service"

	"github.com/gofiber/websocket/v2"
)

// ServeWs handles an assistant websocket connection for one session.
func ServeWs(hub *Hub, assistant service.IAssistantService, c *websocket.Conn, sessionID string) {
	client := &Client{
		Hub:       hub,
		Conn:      c,
		SessionID: sessionID,
		Send:      make(chan []byte, 256),
		assistant: assistant,
	}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
