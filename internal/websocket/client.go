package websocket

import (
	"encoding/json"
	"log"
	"time"

	"voicepad-be/internal/service"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// InboundFrame is what the browser sends over the assistant socket.
type InboundFrame struct {
	Type  string `json:"type"` // activate | deactivate | transcript | path | error
	Text  string `json:"text,omitempty"`
	Final bool   `json:"final,omitempty"`
	Path  string `json:"path,omitempty"`
	Error string `json:"error,omitempty"`
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// Assistant session this connection belongs to
	SessionID string

	// Buffered channel of outbound messages.
	Send chan []byte

	assistant service.IAssistantService
}

// readPump pumps frames from the websocket connection into the assistant.
func (c *Client) readPump() {
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
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("readPump error for session %s: %v", c.SessionID, err)
			}
			break
		}

		var frame InboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			log.Printf("invalid frame from session %s: %v", c.SessionID, err)
			continue
		}
		c.handleFrame(frame)
	}
}

func (c *Client) handleFrame(frame InboundFrame) {
	switch frame.Type {
	case "activate":
		c.assistant.Activate(c.SessionID, frame.Path)
	case "deactivate":
		c.assistant.Deactivate(c.SessionID)
	case "transcript":
		c.assistant.HandleTranscript(c.SessionID, frame.Text, frame.Final)
	case "path":
		c.assistant.SetPath(c.SessionID, frame.Path)
	case "error":
		c.assistant.TranscriptError(c.SessionID, frame.Error)
	default:
		log.Printf("unknown frame type %q from session %s", frame.Type, c.SessionID)
	}
}

// writePump pumps messages from the hub to the websocket connection.
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

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued frames to the current websocket message.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
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
