// Package main runs the classroom Q&A HTTP server with the websocket
// change feed and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/perguntas-ebd/backend/config"
	"github.com/perguntas-ebd/backend/internal/middleware"
	"github.com/perguntas-ebd/backend/internal/moderators"
	"github.com/perguntas-ebd/backend/internal/questions"
	"github.com/perguntas-ebd/backend/internal/realtime"
	"github.com/perguntas-ebd/backend/pkg/database"
	"github.com/perguntas-ebd/backend/pkg/redis"
	"github.com/perguntas-ebd/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if cfg.Moderator.Secret == "" {
		logger.Warn("MODERATOR_SECRET not set; moderator routes are locked")
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	// Redis carries change events across instances. Without it the hub
	// still broadcasts locally, which is enough for a single instance.
	var redisPub realtime.RedisPublisher
	var redisSub realtime.RedisSubscriber
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Warn("redis unavailable, running single-instance", zap.Error(err))
		} else {
			defer rdb.Close()
			pubsub := realtime.NewRedisPubSub(rdb.Client, logger)
			redisPub, redisSub = pubsub, pubsub
		}
	}
	hub := realtime.NewHub(logger, redisPub, redisSub)

	questionRepo := questions.NewRepository(pool)
	questionHandler := questions.NewHandler(questionRepo, hub)
	moderatorHandler := moderators.NewHandler(logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Student-facing: anonymous, no gate.
	router.GET("/rooms", questionHandler.ListRooms)
	router.GET("/rooms/:room/questions", questionHandler.ListByRoom)
	router.POST("/rooms/:room/questions", questionHandler.Create)

	// Moderator perimeter: shared secret in the query string; mismatches
	// redirect silently to the student root.
	perimeter := middleware.Perimeter(cfg.Moderator.Secret)

	mod := router.Group("/moderator")
	mod.Use(perimeter)
	{
		mod.POST("/login", moderatorHandler.Login)
		mod.GET("/session", moderatorHandler.Session)
	}

	api := router.Group("")
	api.Use(perimeter, middleware.ModeratorAuth())
	{
		api.PATCH("/questions/:id/status", questionHandler.UpdateStatus)
		api.DELETE("/questions/:id", questionHandler.Delete)
	}

	// Change feed (students and moderators alike; scoped to one room).
	router.GET("/ws", realtime.ServeWs(hub, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
