package handler

import (
	"voicepad-be/internal/pkg/logger"
	"voicepad-be/internal/service"
	internalWS "voicepad-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// AssistantWsHandler upgrades /ws/assistant/:session connections and binds
// them to their voice assistant session.
type AssistantWsHandler struct {
	assistant service.IAssistantService
	hub       *internalWS.Hub
	logger    logger.ILogger
}

func NewAssistantWsHandler(assistant service.IAssistantService, hub *internalWS.Hub, log logger.ILogger) *AssistantWsHandler {
	return &AssistantWsHandler{
		assistant: assistant,
		hub:       hub,
		logger:    log,
	}
}

// ServeWs handles websocket requests from the peer.
func (h *AssistantWsHandler) ServeWs(c *fiber.Ctx) error {
	sessionID := c.Params("session")
	if _, err := uuid.Parse(sessionID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "session must be a UUID"})
	}

	// Upgrade via Fiber WebSocket Middleware; the helper hijacks the
	// connection.
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("AssistantWsHandler", "Starting WebSocket session", map[string]interface{}{"session_id": sessionID})
			internalWS.ServeWs(h.hub, h.assistant, conn, sessionID)
			h.logger.Info("AssistantWsHandler", "WebSocket session ended", map[string]interface{}{"session_id": sessionID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the websocket endpoint.
func (h *AssistantWsHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/assistant/:session", h.ServeWs)
}
