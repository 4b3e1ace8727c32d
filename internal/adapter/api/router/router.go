package router

import (
	"github.com/labstack/echo/v4"

	"campusmarket/internal/adapter/api/handler"
	"campusmarket/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, conversationHandler *handler.ConversationHandler, wsHandler *handler.WebSocketHandler, authMiddleware *middleware.AuthMiddleware) {
	SetupConversationRouter(e, conversationHandler, authMiddleware)
	SetupWebSocketRouter(e, wsHandler)
	SetupHealthRouter(e)
}
