package handler

import (
	"context"
	"encoding/json"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"campusmarket/internal/adapter/api/middleware"
	ws "campusmarket/internal/infrastructure/websocket"
	"campusmarket/internal/usecase"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/logger"
	"campusmarket/pkg/response"
)

// WebSocketHandler upgrades connections and dispatches inbound frames to the
// conversation service. This is the transport collaborator's seam: typing
// events, read receipts and delivery acknowledgements all arrive here.
type WebSocketHandler struct {
	wsManager           *ws.Manager
	authMiddleware      *middleware.AuthMiddleware
	conversationUseCase *usecase.ConversationUseCase
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Restrict in production deployments.
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, authMiddleware *middleware.AuthMiddleware, conversationUseCase *usecase.ConversationUseCase) *WebSocketHandler {
	h := &WebSocketHandler{
		wsManager:           wsManager,
		authMiddleware:      authMiddleware,
		conversationUseCase: conversationUseCase,
	}
	wsManager.OnMessage = h.handleFrame
	return h
}

func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return response.Error(c, errors.Unauthorized("Authentication token is required", nil))
	}

	userID, err := h.authMiddleware.GetUIDFromToken(c.Request().Context(), token)
	if err != nil || userID == "" {
		return response.Error(c, errors.Unauthorized("Invalid authentication token", err))
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return response.Error(c, errors.Internal("Failed to upgrade connection", err))
	}

	client := &ws.Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	h.wsManager.Register <- client

	go client.ReadPump(h.wsManager)
	go client.WritePump()

	return nil
}

func (h *WebSocketHandler) handleFrame(client *ws.Client, data []byte) {
	var envelope ws.Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		logger.Warn("Invalid websocket frame from %s: %v", client.UserID, err)
		h.sendError(client, "Invalid message format")
		return
	}

	ctx := context.Background()

	switch envelope.Type {
	case ws.EventPing:
		h.send(client, ws.NewEnvelope(ws.EventPong, map[string]string{"status": "alive"}))

	case ws.EventJoinThread:
		if envelope.ThreadID == "" {
			h.sendError(client, "Missing thread_id")
			return
		}
		h.wsManager.JoinThread(envelope.ThreadID, client.UserID)
		client.ActiveThread = envelope.ThreadID

	case ws.EventLeaveThread:
		if envelope.ThreadID == "" {
			h.sendError(client, "Missing thread_id")
			return
		}
		h.wsManager.LeaveThread(envelope.ThreadID, client.UserID)
		if client.ActiveThread == envelope.ThreadID {
			client.ActiveThread = ""
		}

	case ws.EventTypingStart:
		h.conversationUseCase.SetTyping(ctx, envelope.ThreadID, client.UserID, true)

	case ws.EventTypingStop:
		h.conversationUseCase.SetTyping(ctx, envelope.ThreadID, client.UserID, false)

	case ws.EventMarkRead:
		if err := h.conversationUseCase.AcknowledgeRead(ctx, envelope.ThreadID, client.UserID); err != nil {
			logger.Warn("Read acknowledgement from %s for thread %s failed: %v", client.UserID, envelope.ThreadID, err)
		}

	case ws.EventDeliveryReceipt:
		var receipt ws.DeliveryReceiptData
		if !h.decodeData(client, envelope.Data, &receipt) {
			return
		}
		if err := h.conversationUseCase.MarkDelivered(ctx, receipt.ThreadID, receipt.MessageID); err != nil {
			logger.Warn("Delivery receipt from %s for message %s failed: %v", client.UserID, receipt.MessageID, err)
		}

	case "send_message":
		var payload struct {
			ThreadID string                 `json:"thread_id"`
			Content  string                 `json:"content"`
			Type     string                 `json:"type"`
			Metadata map[string]interface{} `json:"metadata"`
		}
		if !h.decodeData(client, envelope.Data, &payload) {
			return
		}
		if payload.ThreadID == "" && envelope.ThreadID != "" {
			payload.ThreadID = envelope.ThreadID
		}
		if _, err := h.conversationUseCase.SendMessage(ctx, client.UserID, usecase.SendMessageInput{
			ThreadID: payload.ThreadID,
			Content:  payload.Content,
			Type:     payload.Type,
			Metadata: payload.Metadata,
		}); err != nil {
			h.sendError(client, err.Error())
		}

	default:
		logger.Debug("Unknown websocket event %q from %s", envelope.Type, client.UserID)
		h.sendError(client, "Unknown message type")
	}
}

func (h *WebSocketHandler) decodeData(client *ws.Client, data interface{}, out interface{}) bool {
	raw, err := json.Marshal(data)
	if err != nil {
		h.sendError(client, "Invalid event data")
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		h.sendError(client, "Invalid event data")
		return false
	}
	return true
}

func (h *WebSocketHandler) send(client *ws.Client, envelope ws.Envelope) {
	h.wsManager.SendToUser(client.UserID, ws.Marshal(envelope))
}

func (h *WebSocketHandler) sendError(client *ws.Client, message string) {
	h.send(client, ws.NewEnvelope(ws.EventError, map[string]string{"error": message}))
}
