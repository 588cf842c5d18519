package config

// SchedulerConfig holds configuration for the round scheduler service.
type SchedulerConfig struct {
	Database DatabaseConfig
	Redis    RedisConfig
	LogLevel string
}

// LoadSchedulerConfig loads configuration for the scheduler.
func LoadSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		Database: loadDatabaseConfig(),
		Redis:    loadRedisConfig(),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}
