package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teamnet-go/internal/config"
	"teamnet-go/internal/handlers/presenceserver"
	appkafka "teamnet-go/internal/kafka"
	"teamnet-go/internal/logging"
	"teamnet-go/internal/nettypes"
	appredis "teamnet-go/internal/redis"
	"teamnet-go/internal/services"
	"teamnet-go/internal/storage"
	"teamnet-go/internal/websocket"

	confluentkafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"
	redisdriver "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := storage.InitDB(cfg.Database)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	redisClient := redisdriver.NewClient(&redisdriver.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}

	userRepo := storage.NewGormUserRepository(db)
	presenceStore := appredis.NewRedisPresenceStore(redisClient, cfg.Presence.HeartbeatTTL)
	presenceService := services.NewPresenceService(presenceStore, userRepo, logger)
	tokenBlacklist := appredis.NewRedisTokenBlacklist(redisClient)

	hub := websocket.NewHub(logger)
	go hub.Run()

	wsHandler := presenceserver.NewWebSocketHandler(hub, presenceService, tokenBlacklist, cfg, logger)

	// Realtime consumer: every presence server instance needs every event,
	// so each instance gets its own consumer group.
	realtimeConsumer, err := appkafka.NewConfluentKafkaConsumer(cfg.Kafka, logger)
	if err != nil {
		logger.Fatal("failed to create Kafka consumer", zap.Error(err))
	}
	defer realtimeConsumer.Close()

	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()
	groupID := appkafka.InstanceGroupID(cfg.Kafka.RealtimeConsumerGroup)
	go func() {
		topics := []string{cfg.Kafka.RealtimeOutgoingTopic}
		err := realtimeConsumer.Consume(consumerCtx, topics, groupID,
			func(ctx context.Context, msg *confluentkafka.Message) error {
				var event nettypes.RealtimeEvent
				if err := json.Unmarshal(msg.Value, &event); err != nil {
					logger.Error("failed to unmarshal realtime event, skipping", zap.Error(err))
					return nil
				}
				hub.Deliver(&event)
				return nil
			})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("realtime consumer stopped with error", zap.Error(err))
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc(cfg.Server.WebSocketPath, wsHandler.ServeWS)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:           addr,
		Handler:        mux,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		logger.Info("presence server listening",
			zap.String("addr", addr),
			zap.String("path", cfg.Server.WebSocketPath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("presence server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down presence server")

	cancelConsumer()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("presence server stopped")
}
