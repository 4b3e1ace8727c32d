package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"campusmarket/internal/usecase"
	"campusmarket/pkg/response"
	"campusmarket/pkg/utils"
)

type ConversationHandler struct {
	conversationUseCase *usecase.ConversationUseCase
}

func NewConversationHandler(conversationUseCase *usecase.ConversationUseCase) *ConversationHandler {
	return &ConversationHandler{
		conversationUseCase: conversationUseCase,
	}
}

type openConversationRequest struct {
	RecipientID    string `json:"recipient_id" validate:"required"`
	ListingID      string `json:"listing_id"`
	InitialMessage string `json:"initial_message"`
}

type sendMessageRequest struct {
	Content  string                 `json:"content" validate:"required"`
	Type     string                 `json:"type" validate:"omitempty,oneof=text image file offer"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type archiveRequest struct {
	Archived *bool `json:"archived"`
}

type offerActionRequest struct {
	MessageID string `json:"message_id" validate:"required"`
}

// OpenConversation finds or creates the thread between the caller and a
// recipient, optionally about a listing.
func (h *ConversationHandler) OpenConversation(c echo.Context) error {
	var req openConversationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	viewerID := c.Get("uid").(string)

	thread, err := h.conversationUseCase.OpenConversation(c.Request().Context(), viewerID, usecase.OpenConversationInput{
		RecipientID:    req.RecipientID,
		ListingID:      req.ListingID,
		InitialMessage: req.InitialMessage,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, thread)
}

// ListThreads returns the caller's conversations with per-viewer unread counts.
func (h *ConversationHandler) ListThreads(c echo.Context) error {
	viewerID := c.Get("uid").(string)
	params := utils.GetPaginationParams(c, 20)

	threads, total, err := h.conversationUseCase.ListThreads(c.Request().Context(), viewerID, params.Limit, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, threads, total, params.Limit, params.Offset)
}

// GetThread returns one conversation.
func (h *ConversationHandler) GetThread(c echo.Context) error {
	threadID := c.Param("id")
	viewerID := c.Get("uid").(string)

	thread, err := h.conversationUseCase.GetThread(c.Request().Context(), threadID, viewerID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, thread)
}

// SendMessage appends a message to a thread.
func (h *ConversationHandler) SendMessage(c echo.Context) error {
	threadID := c.Param("id")
	senderID := c.Get("uid").(string)

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.conversationUseCase.SendMessage(c.Request().Context(), senderID, usecase.SendMessageInput{
		ThreadID: threadID,
		Content:  req.Content,
		Type:     req.Type,
		Metadata: req.Metadata,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// GetMessages returns a page of the thread's message log in append order.
func (h *ConversationHandler) GetMessages(c echo.Context) error {
	threadID := c.Param("id")
	viewerID := c.Get("uid").(string)
	params := utils.GetPaginationParams(c, 50)

	messages, total, err := h.conversationUseCase.GetMessages(c.Request().Context(), threadID, viewerID, params.Limit, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, messages, total, params.Limit, params.Offset)
}

// AcknowledgeRead marks everything the caller has not read in the thread as read.
func (h *ConversationHandler) AcknowledgeRead(c echo.Context) error {
	threadID := c.Param("id")
	viewerID := c.Get("uid").(string)

	if err := h.conversationUseCase.AcknowledgeRead(c.Request().Context(), threadID, viewerID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}

// MarkDelivered records a transport delivery acknowledgement for one message.
func (h *ConversationHandler) MarkDelivered(c echo.Context) error {
	threadID := c.Param("id")
	messageID := c.Param("messageId")

	if err := h.conversationUseCase.MarkDelivered(c.Request().Context(), threadID, messageID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}

// ArchiveThread hides or restores a thread in the caller's listing.
func (h *ConversationHandler) ArchiveThread(c echo.Context) error {
	threadID := c.Param("id")
	viewerID := c.Get("uid").(string)

	var req archiveRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	archived := true
	if req.Archived != nil {
		archived = *req.Archived
	}

	if err := h.conversationUseCase.ArchiveThread(c.Request().Context(), threadID, viewerID, archived); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}

// AcceptOffer resolves a pending price offer in the caller's favor.
func (h *ConversationHandler) AcceptOffer(c echo.Context) error {
	threadID := c.Param("id")
	var req offerActionRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}
	userID := c.Get("uid").(string)

	if err := h.conversationUseCase.AcceptOffer(c.Request().Context(), threadID, req.MessageID, userID); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"message": "Offer accepted"})
}

// RejectOffer declines a pending price offer.
func (h *ConversationHandler) RejectOffer(c echo.Context) error {
	threadID := c.Param("id")
	var req offerActionRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}
	userID := c.Get("uid").(string)

	if err := h.conversationUseCase.RejectOffer(c.Request().Context(), threadID, req.MessageID, userID); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"message": "Offer rejected"})
}

// ContactPresence returns a contact's advisory online state.
func (h *ConversationHandler) ContactPresence(c echo.Context) error {
	contactID := c.Param("id")

	contact, err := h.conversationUseCase.ContactPresence(c.Request().Context(), contactID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, contact)
}
