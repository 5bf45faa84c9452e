package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type RateLimitConfig struct {
	RPS   float64 `env:"RATE_LIMIT_RPS" env-default:"0"`
	Burst int     `env:"RATE_LIMIT_BURST" env-default:"20"`
}

type Config struct {
	Port               string        `env:"PORT" env-default:"3001"`
	StoreDriver        string        `env:"STORE_DRIVER" env-default:"postgres"`
	DatabaseURL        string        `env:"DATABASE_URL"`
	CorsAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:5173"`
	LogLevel           string        `env:"LOG_LEVEL" env-default:"INFO"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
	RateLimit          RateLimitConfig
}

// ClientConfig is read by the terminal client.
type ClientConfig struct {
	APIBaseURL string        `env:"API_BASE_URL" env-default:"http://localhost:3001"`
	Timeout    time.Duration `env:"API_TIMEOUT" env-default:"10s"`
	LogFile    string        `env:"LOG_FILE" env-default:"todo-debug.log"`
	LogLevel   string        `env:"LOG_LEVEL" env-default:"INFO"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.CorsAllowedOrigins = splitCSV(strings.Join(cfg.CorsAllowedOrigins, ","))
	if len(cfg.CorsAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS must list at least one origin")
	}

	switch cfg.StoreDriver {
	case DriverPostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required for store driver %q", DriverPostgres)
		}
	case DriverMemory:
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.RateLimit.RPS < 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT_RPS must not be negative")
	}

	return cfg, nil
}

func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

func LoadClient() (ClientConfig, error) {
	_ = godotenv.Load()

	var cfg ClientConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("read env: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if cfg.APIBaseURL == "" {
		return ClientConfig{}, fmt.Errorf("API_BASE_URL is empty")
	}
	return cfg, nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
