package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// APIServerConfig holds configuration specific to the REST API server.
type APIServerConfig struct {
	Host string     `mapstructure:"HOST"`
	Port string     `mapstructure:"PORT"`
	CORS CORSConfig `mapstructure:"CORS"`
}

// CORSConfig holds configuration for CORS.
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"ALLOWED_ORIGINS"`
	AllowedMethods   []string `mapstructure:"ALLOWED_METHODS"`
	AllowedHeaders   []string `mapstructure:"ALLOWED_HEADERS"`
	ExposedHeaders   []string `mapstructure:"EXPOSED_HEADERS"`
	AllowCredentials bool     `mapstructure:"ALLOW_CREDENTIALS"`
	MaxAge           int      `mapstructure:"MAX_AGE"`
}

// RedisConfig holds configuration for Redis.
type RedisConfig struct {
	Addr     string `mapstructure:"ADDR"`
	Password string `mapstructure:"PASSWORD"`
	DB       int    `mapstructure:"DB"`
}

// Config holds all configuration for the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	AppName    string          `mapstructure:"APP_NAME"`
	AppVersion string          `mapstructure:"APP_VERSION"`
	LogLevel   string          `mapstructure:"LOG_LEVEL"`
	Server     ServerConfig    `mapstructure:"SERVER"` // presence (WebSocket) server
	APIServer  APIServerConfig `mapstructure:"API_SERVER"`
	Kafka      KafkaConfig     `mapstructure:"KAFKA"`
	Database   DatabaseConfig  `mapstructure:"DATABASE"`
	Auth       AuthConfig      `mapstructure:"AUTH"`
	WebSocket  WebSocketConfig `mapstructure:"WEBSOCKET"`
	Redis      RedisConfig     `mapstructure:"REDIS"`
	Presence   PresenceConfig  `mapstructure:"PRESENCE"`
}

// ServerConfig holds configuration for the presence (WebSocket) server.
type ServerConfig struct {
	Host           string        `mapstructure:"HOST"`
	Port           string        `mapstructure:"PORT"`
	WebSocketPath  string        `mapstructure:"WEBSOCKET_PATH"`
	ReadTimeout    time.Duration `mapstructure:"READ_TIMEOUT"`
	WriteTimeout   time.Duration `mapstructure:"WRITE_TIMEOUT"`
	MaxHeaderBytes int           `mapstructure:"MAX_HEADER_BYTES"`
}

// KafkaConfig holds configuration for Kafka.
type KafkaConfig struct {
	Brokers               []string `mapstructure:"BROKERS"`
	ClientID              string   `mapstructure:"CLIENT_ID"`
	ConnectionEventsTopic string   `mapstructure:"CONNECTION_EVENTS_TOPIC"` // connection request/accept events
	MessageEventsTopic    string   `mapstructure:"MESSAGE_EVENTS_TOPIC"`    // new-message events
	RealtimeOutgoingTopic string   `mapstructure:"REALTIME_OUTGOING_TOPIC"` // events pushed to connected clients
	ConsumerGroup         string   `mapstructure:"CONSUMER_GROUP"`          // API server notification consumer group
	RealtimeConsumerGroup string   `mapstructure:"REALTIME_CONSUMER_GROUP"` // presence server consumer group
	Protocol              string   `mapstructure:"PROTOCOL"`
}

// DatabaseConfig holds configuration for the database.
type DatabaseConfig struct {
	Type     string `mapstructure:"TYPE"`
	Host     string `mapstructure:"HOST"`
	Port     int    `mapstructure:"PORT"`
	User     string `mapstructure:"USER"`
	Password string `mapstructure:"PASSWORD"`
	DBName   string `mapstructure:"DB_NAME"`
	SSLMode  string `mapstructure:"SSL_MODE"`
}

// AuthConfig holds configuration for authentication (e.g., JWT).
type AuthConfig struct {
	JWTSecretKey string        `mapstructure:"JWT_SECRET_KEY"`
	JWTExpiry    time.Duration `mapstructure:"JWT_EXPIRY"`
}

// WebSocketConfig holds configuration for WebSocket connections.
type WebSocketConfig struct {
	WriteWaitSeconds    int `mapstructure:"WRITE_WAIT_SECONDS"`
	PongWaitSeconds     int `mapstructure:"PONG_WAIT_SECONDS"`
	PingPeriodSeconds   int `mapstructure:"PING_PERIOD_SECONDS"`
	MaxMessageSizeBytes int `mapstructure:"MAX_MESSAGE_SIZE_BYTES"`
}

// PresenceConfig holds configuration for the presence tracker.
type PresenceConfig struct {
	// HeartbeatTTL is how long a user stays "online" after their last heartbeat.
	HeartbeatTTL time.Duration `mapstructure:"HEARTBEAT_TTL"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()

	v.SetDefault("APP_NAME", "TeamNet-Go")
	v.SetDefault("APP_VERSION", "0.1.0")
	v.SetDefault("LOG_LEVEL", "info")

	// Presence server defaults
	v.SetDefault("SERVER.HOST", "0.0.0.0")
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.WEBSOCKET_PATH", "/ws")
	v.SetDefault("SERVER.READ_TIMEOUT", 30*time.Second)
	v.SetDefault("SERVER.WRITE_TIMEOUT", 30*time.Second)
	v.SetDefault("SERVER.MAX_HEADER_BYTES", 1<<20) // 1 MB

	// API server defaults
	v.SetDefault("API_SERVER.HOST", "0.0.0.0")
	v.SetDefault("API_SERVER.PORT", "8081")
	v.SetDefault("API_SERVER.CORS.ALLOWED_ORIGINS", []string{"http://localhost:5173"})
	v.SetDefault("API_SERVER.CORS.ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("API_SERVER.CORS.ALLOWED_HEADERS", []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"})
	v.SetDefault("API_SERVER.CORS.EXPOSED_HEADERS", []string{"Content-Length"})
	v.SetDefault("API_SERVER.CORS.ALLOW_CREDENTIALS", true)
	v.SetDefault("API_SERVER.CORS.MAX_AGE", 300)

	// Kafka defaults
	v.SetDefault("KAFKA.BROKERS", []string{"localhost:9092"})
	v.SetDefault("KAFKA.CLIENT_ID", "teamnet-go-client")
	v.SetDefault("KAFKA.CONNECTION_EVENTS_TOPIC", "teamnet-connection-events")
	v.SetDefault("KAFKA.MESSAGE_EVENTS_TOPIC", "teamnet-message-events")
	v.SetDefault("KAFKA.REALTIME_OUTGOING_TOPIC", "teamnet-realtime-outgoing")
	v.SetDefault("KAFKA.CONSUMER_GROUP", "teamnet-api-server-group")
	v.SetDefault("KAFKA.REALTIME_CONSUMER_GROUP", "teamnet-presence-server-group")

	// Database defaults (PostgreSQL)
	v.SetDefault("DATABASE.TYPE", "postgres")
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "password")
	v.SetDefault("DATABASE.DB_NAME", "teamnet_db")
	v.SetDefault("DATABASE.SSL_MODE", "disable")

	// Auth defaults
	v.SetDefault("AUTH.JWT_SECRET_KEY", "a_very_secret_key_that_should_be_changed")
	v.SetDefault("AUTH.JWT_EXPIRY", 24*time.Hour)

	// Redis defaults
	v.SetDefault("REDIS.ADDR", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)

	// WebSocket defaults
	v.SetDefault("WEBSOCKET.WRITE_WAIT_SECONDS", 10)
	v.SetDefault("WEBSOCKET.PONG_WAIT_SECONDS", 60)
	v.SetDefault("WEBSOCKET.PING_PERIOD_SECONDS", 54) // (60 * 9) / 10
	v.SetDefault("WEBSOCKET.MAX_MESSAGE_SIZE_BYTES", 512)

	// Presence defaults
	v.SetDefault("PRESENCE.HEARTBEAT_TTL", 90*time.Second)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.AutomaticEnv()
	// Example: API_SERVER_PORT overrides APIServer.Port.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err = v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		// No config file found; the defaults above cover everything.
		err = nil
	}

	err = v.Unmarshal(&config)
	return
}
