package router

import (
	"team_portal_service/internal/chat/app"
	"team_portal_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes 注册聊天相关的路由
// @title Team Portal Chat API
// @version 1.0
// @description API documentation for the team portal chat service
// @host localhost:8080
// @BasePath /
func RegisterRoutes(r *fiber.App, chatHandler *app.ChatHandler, streamHandler *app.StreamHandler) {
	r.Get("/swagger/*", swagger.HandlerDefault)
	r.Get("/", app.ConnectCheck)
	r.Post("/debug", app.DebugLogFlag)

	chatRoutes := r.Group("/api/chat", middlewares.JWTMiddleware())
	chatRoutes.Get("/messages", chatHandler.Snapshot)
	chatRoutes.Post("/messages", chatHandler.Send)
	chatRoutes.Get("/stream", websocket.New(streamHandler.HandleConnection))

	banRoutes := chatRoutes.Group("/bans", middlewares.RequireModerator())
	banRoutes.Post("/:userId", chatHandler.Ban)
	banRoutes.Delete("/:userId", chatHandler.Unban)
	banRoutes.Get("/:userId", chatHandler.BanStatus)
}
