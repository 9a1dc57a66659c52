package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"occasion-ledger/pkg/logger"
)

const (
	StorageBackendPostgres = "postgres"
	StorageBackendMemory   = "memory"
)

type Config struct {
	HTTPPort       string
	Env            string
	StorageBackend string
	HTTP           HTTPConfig
	DB             DBConfig
	AMQP           AMQPConfig
	Users          UsersConfig
}

type HTTPConfig struct {
	ReadHeaderTimeout time.Duration
	RequestTimeout    time.Duration
	ShutdownTimeout   time.Duration
	AllowedOrigins    []string
}

type DBConfig struct {
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// AMQPConfig controls settlement event publishing. An empty URL disables it.
type AMQPConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
}

type UsersConfig struct {
	UsernameCacheTTL time.Duration
}

func Load(log logger.Logger) (Config, error) {
	err := loadDotEnv(log)
	if err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", StorageBackendPostgres)),
		HTTP: HTTPConfig{
			ReadHeaderTimeout: getEnvDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
			RequestTimeout:    getEnvDuration("HTTP_REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout:   getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 5*time.Second),
			AllowedOrigins:    getEnvList("HTTP_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		DB: DBConfig{
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "occasion_ledger"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", true),
		},
		AMQP: AMQPConfig{
			URL:        getEnv("AMQP_URL", ""),
			Exchange:   getEnv("AMQP_EXCHANGE", "ledger"),
			RoutingKey: getEnv("AMQP_ROUTING_KEY", "payment_log.created"),
		},
		Users: UsersConfig{
			UsernameCacheTTL: getEnvDuration("USERNAME_CACHE_TTL", time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var problems []string

	port, err := strconv.Atoi(c.HTTPPort)
	if err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid HTTP_PORT %q", c.HTTPPort))
	}

	switch c.StorageBackend {
	case StorageBackendPostgres, StorageBackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("invalid STORAGE_BACKEND %q: must be postgres or memory", c.StorageBackend))
	}

	if c.HTTP.RequestTimeout <= 0 {
		problems = append(problems, "HTTP_REQUEST_TIMEOUT must be positive")
	}
	if c.AMQP.URL != "" && strings.TrimSpace(c.AMQP.Exchange) == "" {
		problems = append(problems, "AMQP_EXCHANGE is required when AMQP_URL is set")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var items []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}
