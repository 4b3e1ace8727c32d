package router

import (
	"github.com/labstack/echo/v4"

	"campusmarket/internal/adapter/api/handler"
	"campusmarket/internal/adapter/api/middleware"
)

// SetupConversationRouter sets up the messaging routes (excluding WebSocket).
func SetupConversationRouter(e *echo.Echo, conversationHandler *handler.ConversationHandler, authMiddleware *middleware.AuthMiddleware) {
	threadGroup := e.Group("/v1/threads")
	threadGroup.Use(authMiddleware.Authenticate)

	// Thread management
	threadGroup.POST("", conversationHandler.OpenConversation) // POST /v1/threads - Find or create a conversation
	threadGroup.GET("", conversationHandler.ListThreads)       // GET /v1/threads - List the caller's conversations
	threadGroup.GET("/:id", conversationHandler.GetThread)     // GET /v1/threads/:id - Get one conversation
	threadGroup.PUT("/:id/read", conversationHandler.AcknowledgeRead)
	threadGroup.PUT("/:id/archive", conversationHandler.ArchiveThread)

	// Message management
	threadGroup.POST("/:id/messages", conversationHandler.SendMessage)
	threadGroup.GET("/:id/messages", conversationHandler.GetMessages)
	threadGroup.PUT("/:id/messages/:messageId/delivered", conversationHandler.MarkDelivered)

	// Offer system
	threadGroup.POST("/:id/messages/accept-offer", conversationHandler.AcceptOffer)
	threadGroup.POST("/:id/messages/reject-offer", conversationHandler.RejectOffer)

	contactGroup := e.Group("/v1/contacts")
	contactGroup.Use(authMiddleware.Authenticate)
	contactGroup.GET("/:id/presence", conversationHandler.ContactPresence)
}
