package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Provider  ProviderConfig
	Optimizer OptimizerConfig
	Logging   LoggingConfig
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// ServiceKey guards the API for service-to-service calls. Empty
	// disables the check.
	ServiceKey string
}

// DatabaseConfig holds database specific configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis specific configuration for response caching
type RedisConfig struct {
	Enabled       bool
	Addr          string
	Password      string
	DB            int
	CacheDuration time.Duration
}

// KafkaConfig holds Kafka specific configuration
type KafkaConfig struct {
	Enabled  bool
	Brokers  []string
	ClientID string
	Topic    string
}

// ProviderConfig holds configuration for the upstream price history source
type ProviderConfig struct {
	BaseURL        string
	Symbol         string
	Range          string
	Timeout        time.Duration
	MaxElapsedTime time.Duration
	CacheTTL       time.Duration
}

// OptimizerConfig bounds the MA grid search worker pool
type OptimizerConfig struct {
	Workers int
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads the configuration from file and environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Environment variables override
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "30s")
	v.SetDefault("server.idleTimeout", "120s")
	v.SetDefault("server.serviceKey", "")

	// Database defaults
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", "30m")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.cacheDuration", "5m")

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.clientID", "ma-backtest-service")
	v.SetDefault("kafka.topic", "backtest-events")

	// Provider defaults
	v.SetDefault("provider.baseURL", "https://query1.finance.yahoo.com/v8/finance/chart")
	v.SetDefault("provider.symbol", "^TWII")
	v.SetDefault("provider.range", "20y")
	v.SetDefault("provider.timeout", "30s")
	v.SetDefault("provider.maxElapsedTime", "2m")
	v.SetDefault("provider.cacheTTL", "24h")

	// Optimizer defaults
	v.SetDefault("optimizer.workers", 4)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
