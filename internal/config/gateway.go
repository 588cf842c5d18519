package config

import "time"

// GatewayConfig holds configuration for the HTTP/WS gateway service.
type GatewayConfig struct {
	Server    ServerConfig
	WebSocket WebSocketConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
}

type WebSocketConfig struct {
	PingInterval   time.Duration
	WriteWait      time.Duration
	PongWait       time.Duration
	MaxMessageSize int64
}

// LoadGatewayConfig loads configuration for the gateway.
func LoadGatewayConfig() *GatewayConfig {
	return &GatewayConfig{
		Server: ServerConfig{
			Port:     getEnv("GATEWAY_SERVER_PORT", "8081"),
			Name:     "dice-gateway",
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		WebSocket: WebSocketConfig{
			PingInterval:   time.Duration(getEnvInt("WS_PING_INTERVAL_SECONDS", 54)) * time.Second,
			WriteWait:      time.Duration(getEnvInt("WS_WRITE_WAIT_SECONDS", 10)) * time.Second,
			PongWait:       time.Duration(getEnvInt("WS_PONG_WAIT_SECONDS", 60)) * time.Second,
			MaxMessageSize: int64(getEnvInt("WS_MAX_MESSAGE_SIZE", 4096)),
		},
		Database: loadDatabaseConfig(),
		Redis:    loadRedisConfig(),
		JWT: JWTConfig{
			Secret:   getEnv("JWT_SECRET", "dev-secret-change-me"),
			Duration: time.Duration(getEnvInt("JWT_DURATION_HOURS", 24)) * time.Hour,
		},
	}
}
