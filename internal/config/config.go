package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// StorageDriverPostgres keeps products in PostgreSQL
	StorageDriverPostgres = "postgres"

	// StorageDriverMemory keeps products in process memory (local runs and tests)
	StorageDriverMemory = "memory"
)

// Config holds all configuration for the application
type Config struct {
	Env         string
	LogLevel    string
	ServiceName string
	Gateway     GatewayConfig
	Ops         OpsConfig
	RPC         RPCConfig
	NATS        NATSConfig
	Storage     StorageConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Lock        LockConfig
	Pagination  PaginationConfig
	Telemetry   TelemetryConfig
}

// GatewayConfig holds the HTTP gateway configuration
type GatewayConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// OpsConfig holds the health/metrics listener of the microservice
type OpsConfig struct {
	Port string
}

// RPCConfig holds message-pattern RPC settings
type RPCConfig struct {
	SubjectPrefix  string
	QueueGroup     string
	HandlerTimeout time.Duration
	RequestTimeout time.Duration
	MaxInFlight    int
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL            string
	ConnectTimeout time.Duration
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Driver string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// LockConfig controls per-product serialization of update/remove
type LockConfig struct {
	Enabled bool
	TTL     time.Duration
}

// PaginationConfig holds find_all defaults
type PaginationConfig struct {
	DefaultLimit int
}

// TelemetryConfig holds OpenTelemetry export settings
type TelemetryConfig struct {
	OTLPEndpoint string
}

// Load reads configuration from environment variables (and an optional .env file)
func Load() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "")
	viper.SetDefault("SERVICE_NAME", "products-ms")

	viper.SetDefault("GATEWAY_PORT", "8080")
	viper.SetDefault("SERVER_READ_TIMEOUT", "10s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	viper.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "30s")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:8080")

	viper.SetDefault("OPS_PORT", "9090")

	viper.SetDefault("RPC_SUBJECT_PREFIX", "products")
	viper.SetDefault("RPC_QUEUE_GROUP", "products-ms")
	viper.SetDefault("RPC_HANDLER_TIMEOUT", "10s")
	viper.SetDefault("RPC_REQUEST_TIMEOUT", "5s")
	viper.SetDefault("RPC_MAX_IN_FLIGHT", 64)

	viper.SetDefault("NATS_URL", "nats://localhost:4222")
	viper.SetDefault("NATS_CONNECT_TIMEOUT", "5s")

	viper.SetDefault("STORAGE_DRIVER", StorageDriverPostgres)

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "products")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("DB_AUTO_MIGRATE", true)

	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("LOCK_ENABLED", false)
	viper.SetDefault("LOCK_TTL", "5s")

	viper.SetDefault("PAGINATION_DEFAULT_LIMIT", 10)

	viper.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	readTimeout, err := parseDuration("SERVER_READ_TIMEOUT")
	if err != nil {
		return nil, err
	}

	writeTimeout, err := parseDuration("SERVER_WRITE_TIMEOUT")
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := parseDuration("SERVER_SHUTDOWN_TIMEOUT")
	if err != nil {
		return nil, err
	}

	handlerTimeout, err := parseDuration("RPC_HANDLER_TIMEOUT")
	if err != nil {
		return nil, err
	}

	requestTimeout, err := parseDuration("RPC_REQUEST_TIMEOUT")
	if err != nil {
		return nil, err
	}

	connectTimeout, err := parseDuration("NATS_CONNECT_TIMEOUT")
	if err != nil {
		return nil, err
	}

	connMaxLifetime, err := parseDuration("DB_CONN_MAX_LIFETIME")
	if err != nil {
		return nil, err
	}

	lockTTL, err := parseDuration("LOCK_TTL")
	if err != nil {
		return nil, err
	}

	driver := strings.ToLower(viper.GetString("STORAGE_DRIVER"))
	if driver != StorageDriverPostgres && driver != StorageDriverMemory {
		return nil, fmt.Errorf("invalid STORAGE_DRIVER: %q", driver)
	}

	defaultLimit := viper.GetInt("PAGINATION_DEFAULT_LIMIT")
	if defaultLimit < 1 {
		return nil, fmt.Errorf("invalid PAGINATION_DEFAULT_LIMIT: %d", defaultLimit)
	}

	maxInFlight := viper.GetInt("RPC_MAX_IN_FLIGHT")
	if maxInFlight < 1 {
		return nil, fmt.Errorf("invalid RPC_MAX_IN_FLIGHT: %d", maxInFlight)
	}

	allowedOrigins := strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",")
	for i := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
	}

	config := &Config{
		Env:         viper.GetString("ENV"),
		LogLevel:    viper.GetString("LOG_LEVEL"),
		ServiceName: viper.GetString("SERVICE_NAME"),
		Gateway: GatewayConfig{
			Port:            viper.GetString("GATEWAY_PORT"),
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
			AllowedOrigins:  allowedOrigins,
		},
		Ops: OpsConfig{
			Port: viper.GetString("OPS_PORT"),
		},
		RPC: RPCConfig{
			SubjectPrefix:  viper.GetString("RPC_SUBJECT_PREFIX"),
			QueueGroup:     viper.GetString("RPC_QUEUE_GROUP"),
			HandlerTimeout: handlerTimeout,
			RequestTimeout: requestTimeout,
			MaxInFlight:    maxInFlight,
		},
		NATS: NATSConfig{
			URL:            viper.GetString("NATS_URL"),
			ConnectTimeout: connectTimeout,
		},
		Storage: StorageConfig{
			Driver: driver,
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetString("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
			AutoMigrate:     viper.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Lock: LockConfig{
			Enabled: viper.GetBool("LOCK_ENABLED"),
			TTL:     lockTTL,
		},
		Pagination: PaginationConfig{
			DefaultLimit: defaultLimit,
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: viper.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		},
	}

	return config, nil
}

func parseDuration(key string) (time.Duration, error) {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Subject returns the NATS subject a command is served on
func (c *Config) Subject(command string) string {
	return c.RPC.SubjectPrefix + "." + command
}
