package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teamnet-go/internal/config"
	"teamnet-go/internal/handlers/apiserver"
	appkafka "teamnet-go/internal/kafka"
	kafkahandlers "teamnet-go/internal/kafka/handlers"
	"teamnet-go/internal/logging"
	"teamnet-go/internal/middleware"
	appredis "teamnet-go/internal/redis"
	"teamnet-go/internal/services"
	"teamnet-go/internal/storage"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
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
	if err := storage.AutoMigrateTables(db); err != nil {
		logger.Fatal("failed to migrate database tables", zap.Error(err))
	}
	logger.Info("database ready")

	redisClient := redisdriver.NewClient(&redisdriver.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	tokenBlacklist := appredis.NewRedisTokenBlacklist(redisClient)

	userRepo := storage.NewGormUserRepository(db)
	connectionRepo := storage.NewGormConnectionRepository(db)
	messageRepo := storage.NewGormMessageRepository(db)
	notificationRepo := storage.NewGormNotificationRepository(db)
	roleRepo := storage.NewGormRoleRepository(db)
	blockRepo := storage.NewGormBlockRepository(db)
	reportRepo := storage.NewGormReportRepository(db)

	producer, err := appkafka.NewConfluentKafkaProducer(cfg.Kafka, logger)
	if err != nil {
		logger.Fatal("failed to create Kafka producer", zap.Error(err))
	}
	defer producer.Close()

	authService := services.NewAuthService(userRepo, roleRepo, tokenBlacklist, cfg.Auth, logger)
	userService := services.NewUserService(userRepo, logger)
	connectionService := services.NewConnectionService(connectionRepo, userRepo, producer, cfg.Kafka, logger)
	suggestionService := services.NewSuggestionService(userRepo, connectionRepo, logger)
	messageService := services.NewMessageService(messageRepo, userRepo, blockRepo, producer, cfg.Kafka, logger)
	notificationService := services.NewNotificationService(notificationRepo, logger)
	safetyService := services.NewSafetyService(blockRepo, reportRepo, logger)
	roleService := services.NewRoleService(roleRepo, userRepo, logger)

	authHandler := apiserver.NewAuthHandler(authService, logger)
	userHandler := apiserver.NewUserHandler(userService, logger)
	connectionHandler := apiserver.NewConnectionHandler(connectionService, logger)
	suggestionHandler := apiserver.NewSuggestionHandler(suggestionService, logger)
	messageHandler := apiserver.NewMessageHandler(messageService, logger)
	notificationHandler := apiserver.NewNotificationHandler(notificationService, logger)
	safetyHandler := apiserver.NewSafetyHandler(safetyService, logger)
	roleHandler := apiserver.NewRoleHandler(roleService, logger)

	r := mux.NewRouter()

	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)

	// Public profile view.
	r.HandleFunc("/users/{userID:[0-9]+}", userHandler.GetByID).Methods(http.MethodGet)

	authMW := middleware.AuthMiddleware(cfg.Auth.JWTSecretKey, tokenBlacklist, logger)
	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(authMW)

	// Logout needs the claims, so it sits behind the auth middleware.
	apiRouter.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)

	apiRouter.HandleFunc("/users/me", userHandler.GetMe).Methods(http.MethodGet)
	apiRouter.HandleFunc("/users/me", userHandler.UpdateMe).Methods(http.MethodPut)
	apiRouter.HandleFunc("/users/search", userHandler.Search).Methods(http.MethodGet)

	apiRouter.HandleFunc("/connections", connectionHandler.Send).Methods(http.MethodPost)
	apiRouter.HandleFunc("/connections", connectionHandler.List).Methods(http.MethodGet)
	apiRouter.HandleFunc("/connections/{id:[0-9]+}/accept", connectionHandler.Accept).Methods(http.MethodPost)
	apiRouter.HandleFunc("/connections/{id:[0-9]+}/reject", connectionHandler.Reject).Methods(http.MethodPost)
	apiRouter.HandleFunc("/connections/{id:[0-9]+}", connectionHandler.Remove).Methods(http.MethodDelete)

	apiRouter.HandleFunc("/suggestions", suggestionHandler.List).Methods(http.MethodGet)

	apiRouter.HandleFunc("/messages", messageHandler.Send).Methods(http.MethodPost)
	apiRouter.HandleFunc("/conversations", messageHandler.ListConversations).Methods(http.MethodGet)
	apiRouter.HandleFunc("/conversations/{partnerID:[0-9]+}/messages", messageHandler.OpenConversation).Methods(http.MethodGet)

	apiRouter.HandleFunc("/notifications", notificationHandler.List).Methods(http.MethodGet)
	apiRouter.HandleFunc("/notifications/{id:[0-9]+}/read", notificationHandler.MarkRead).Methods(http.MethodPost)
	apiRouter.HandleFunc("/notifications/read-all", notificationHandler.MarkAllRead).Methods(http.MethodPost)

	apiRouter.HandleFunc("/blocks", safetyHandler.Block).Methods(http.MethodPost)
	apiRouter.HandleFunc("/reports", safetyHandler.Report).Methods(http.MethodPost)

	apiRouter.HandleFunc("/roles/request", roleHandler.Request).Methods(http.MethodPost)

	// Consumer that turns connection/message events into notification rows
	// and realtime pushes.
	eventConsumer, err := appkafka.NewConfluentKafkaConsumer(cfg.Kafka, logger)
	if err != nil {
		logger.Fatal("failed to create Kafka consumer", zap.Error(err))
	}
	defer eventConsumer.Close()

	eventHandler := kafkahandlers.NewEventConsumerHandler(notificationService, userRepo, producer, cfg.Kafka, logger)
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()
	go func() {
		topics := []string{cfg.Kafka.ConnectionEventsTopic, cfg.Kafka.MessageEventsTopic}
		if err := eventConsumer.Consume(consumerCtx, topics, cfg.Kafka.ConsumerGroup, eventHandler.HandleMessage); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("event consumer stopped with error", zap.Error(err))
		}
	}()

	corsOptions := []handlers.CORSOption{
		handlers.AllowedOrigins(cfg.APIServer.CORS.AllowedOrigins),
		handlers.AllowedMethods(cfg.APIServer.CORS.AllowedMethods),
		handlers.AllowedHeaders(cfg.APIServer.CORS.AllowedHeaders),
		handlers.ExposedHeaders(cfg.APIServer.CORS.ExposedHeaders),
		handlers.MaxAge(cfg.APIServer.CORS.MaxAge),
	}
	if cfg.APIServer.CORS.AllowCredentials {
		corsOptions = append(corsOptions, handlers.AllowCredentials())
	}

	addr := fmt.Sprintf("%s:%s", cfg.APIServer.Host, cfg.APIServer.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handlers.CORS(corsOptions...)(r),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("API server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("API server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down API server")

	cancelConsumer()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("API server stopped")
}
