package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"team_portal_service/internal/chat/app"
	"team_portal_service/internal/chat/domain"
	"team_portal_service/internal/chat/repository"
	"team_portal_service/internal/chat/router"
	"team_portal_service/pkg/config"
	"team_portal_service/pkg/database"
	"team_portal_service/pkg/logger"
	testtool "team_portal_service/pkg/test_tool"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath)
	cfg := config.LoadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath)

	// 1. Mongo holds the message history.
	ctx := context.Background()
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.MongoSQL.User, cfg.MongoSQL.Password, cfg.MongoSQL.Host, cfg.MongoSQL.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    uri,
			RetryCount:    cfg.MongoSQL.RetryCount,
			RetryInterval: time.Duration(cfg.MongoSQL.RetryInterval),
		},
		cfg.MongoSQL.Database)
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to mongoDB database after retries",
			zap.String("address", fmt.Sprintf("[%s]", uri)),
			zap.Error(err),
		)
	}
	defer mongo.Close(ctx)

	// 2. Redis holds the ban records.
	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisFailoverClient(masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}

	// 3. Repositories.
	msgRepo := repository.NewMongoMessageRepository(mongo.Database)
	banRepo := repository.NewRedisBanRepository(redisClient)

	// 4. Room settings, YAML values fall back to the portal defaults.
	limits := domain.DefaultLimits()
	if cfg.Limits.RateLimitPerMinute > 0 {
		limits.RateLimitPerMinute = cfg.Limits.RateLimitPerMinute
	}
	if cfg.Limits.MaxMessageLength > 0 {
		limits.MaxMessageLength = cfg.Limits.MaxMessageLength
	}
	if cfg.Limits.HistoryLimit > 0 {
		limits.HistoryLimit = cfg.Limits.HistoryLimit
	}

	// 5. UseCases.
	hub := app.NewHub()
	limiter := app.NewSlidingWindowLimiter(limits.RateLimitPerMinute, time.Minute)
	banRegistry := app.NewBanRegistry(banRepo, hub)
	chatUC := app.NewChatUseCase(msgRepo, limiter, banRegistry, hub, limits)

	// 6. Fiber
	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ChatServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r, app.NewChatHandler(chatUC, banRegistry), app.NewStreamHandler(chatUC))

	testtool.StartPprof()

	port := ":" + cfg.Port
	log.Printf("Chat Service listening on %s", port)
	if err := r.Listen(port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}
}
