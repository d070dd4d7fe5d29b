package handler

import (
	"context"
	"encoding/json"

	"ipad-assistant-be/internal/dto"
	"ipad-assistant-be/internal/pkg/logger"
	"ipad-assistant-be/internal/pkg/serverutils"
	"ipad-assistant-be/internal/service"
	internalWS "ipad-assistant-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	frameChatResponse = "chat_response"
	frameError        = "error"
)

type chatFrame struct {
	Type  string            `json:"type"`
	Data  *dto.ChatResponse `json:"data,omitempty"`
	Code  int               `json:"code,omitempty"`
	Error string            `json:"error,omitempty"`
}

// ChatHandler serves the websocket flavour of POST /chat.
type ChatHandler struct {
	service service.IChatbotService
	hub     *internalWS.Hub
	logger  logger.ILogger
}

func NewChatHandler(service service.IChatbotService, hub *internalWS.Hub, log logger.ILogger) *ChatHandler {
	return &ChatHandler{
		service: service,
		hub:     hub,
		logger:  log,
	}
}

func (h *ChatHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws/chat", h.ServeWs)
}

// ServeWs upgrades the request and answers chat frames until the peer leaves.
func (h *ChatHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("ChatHandler", "Starting WebSocket session", map[string]interface{}{"remote": conn.RemoteAddr().String()})
		internalWS.ServeWs(h.hub, conn, h.HandleFrame)
		h.logger.Info("ChatHandler", "WebSocket session ended", map[string]interface{}{"remote": conn.RemoteAddr().String()})
	})(c)
}

// HandleFrame decodes one `{message, session_id?}` frame, runs the chat and
// encodes the reply. Failures come back as error frames; the connection stays
// open.
func (h *ChatHandler) HandleFrame(ctx context.Context, payload []byte) []byte {
	var req dto.ChatRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.errorFrame(serverutils.ErrBadRequest)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return h.errorFrame(err)
	}

	res, err := h.service.Chat(ctx, &req, service.TransportWebsocket)
	if err != nil {
		return h.errorFrame(err)
	}

	return h.encode(chatFrame{Type: frameChatResponse, Data: res})
}

func (h *ChatHandler) errorFrame(err error) []byte {
	code, message := serverutils.StatusFor(err)
	if code >= fiber.StatusInternalServerError {
		h.logger.Error("ChatHandler", "Chat frame failed", map[string]interface{}{"error": err.Error()})
	}
	return h.encode(chatFrame{Type: frameError, Code: code, Error: message})
}

func (h *ChatHandler) encode(frame chatFrame) []byte {
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("ChatHandler", "Failed to encode frame", map[string]interface{}{"error": err.Error()})
		return []byte(`{"type":"error","code":500,"error":"Internal server error"}`)
	}
	return data
}
