package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mohamedkhairy/stocklens/internal/models"
)

// Config holds all configuration for the application
type Config struct {
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`

	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Provider ProviderConfig `yaml:"provider"`
	Engine   EngineConfig   `yaml:"engine"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	Universe UniverseConfig `yaml:"universe"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	HealthCheckPort int           `yaml:"health_check_port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RateLimitRPS    int           `yaml:"rate_limit_rps"`
	JWTSecret       string        `yaml:"jwt_secret"`
}

// DatabaseConfig holds Postgres configuration for the bar archive
type DatabaseConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxConnections  int           `yaml:"max_connections"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// RedisConfig holds Redis configuration for the bar cache
type RedisConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	BarTTL       time.Duration `yaml:"bar_ttl"`
}

// ProviderConfig holds market data provider configuration
type ProviderConfig struct {
	Type         string        `yaml:"type"` // "yahoo", "postgres", "mock"
	BaseURL      string        `yaml:"base_url"`
	ProxyURL     string        `yaml:"proxy_url"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// EngineConfig holds the default indicator parameter set
type EngineConfig struct {
	Indicators models.IndicatorConfig `yaml:"indicators"`
}

// RefreshConfig holds the auto-refresh scheduler configuration
type RefreshConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Cron     string        `yaml:"cron"`
	Lookback time.Duration `yaml:"lookback"`
	Symbols  []string      `yaml:"symbols"`
}

// UniverseConfig holds the ticker list configuration
type UniverseConfig struct {
	Path string `yaml:"path"`
}

// Load reads configuration from an optional YAML file, then applies
// environment variable overrides. A .env file is loaded first when
// present so local development matches deployment.
func Load(path string) (*Config, error) {
	// Ignore error: .env is optional
	_ = godotenv.Load()

	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:            8080,
			HealthCheckPort: 9090,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimitRPS:    20,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "stocklens",
			Database:        "stocklens",
			SSLMode:         "disable",
			MaxConnections:  10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Redis: RedisConfig{
			Host:         "localhost",
			Port:         6379,
			PoolSize:     10,
			MinIdleConns: 2,
			BarTTL:       15 * time.Minute,
		},
		Provider: ProviderConfig{
			Type:         "yahoo",
			FetchTimeout: 30 * time.Second,
		},
		Engine: EngineConfig{
			Indicators: models.DefaultIndicatorConfig(),
		},
		Refresh: RefreshConfig{
			Cron:     "0 */5 * * * *",
			Lookback: 365 * 24 * time.Hour,
		},
		Universe: UniverseConfig{
			Path: "sp500_tickers.txt",
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.Server.Port = getEnvAsInt("SERVER_PORT", cfg.Server.Port)
	cfg.Server.HealthCheckPort = getEnvAsInt("HEALTH_CHECK_PORT", cfg.Server.HealthCheckPort)
	cfg.Server.RateLimitRPS = getEnvAsInt("RATE_LIMIT_RPS", cfg.Server.RateLimitRPS)
	cfg.Server.JWTSecret = getEnv("JWT_SECRET", cfg.Server.JWTSecret)

	cfg.Database.Enabled = getEnvAsBool("DB_ENABLED", cfg.Database.Enabled)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvAsInt("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Database = getEnv("DB_NAME", cfg.Database.Database)
	cfg.Database.SSLMode = getEnv("DB_SSL_MODE", cfg.Database.SSLMode)

	cfg.Redis.Enabled = getEnvAsBool("REDIS_ENABLED", cfg.Redis.Enabled)
	cfg.Redis.Host = getEnv("REDIS_HOST", cfg.Redis.Host)
	cfg.Redis.Port = getEnvAsInt("REDIS_PORT", cfg.Redis.Port)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.BarTTL = getEnvAsDuration("REDIS_BAR_TTL", cfg.Redis.BarTTL)

	cfg.Provider.Type = getEnv("PROVIDER_TYPE", cfg.Provider.Type)
	cfg.Provider.BaseURL = getEnv("PROVIDER_BASE_URL", cfg.Provider.BaseURL)
	cfg.Provider.ProxyURL = getEnv("HTTPS_PROXY", cfg.Provider.ProxyURL)
	cfg.Provider.FetchTimeout = getEnvAsDuration("PROVIDER_FETCH_TIMEOUT", cfg.Provider.FetchTimeout)

	cfg.Refresh.Enabled = getEnvAsBool("REFRESH_ENABLED", cfg.Refresh.Enabled)
	cfg.Refresh.Cron = getEnv("REFRESH_CRON", cfg.Refresh.Cron)
	if v := os.Getenv("REFRESH_SYMBOLS"); v != "" {
		parts := strings.Split(v, ",")
		symbols := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				symbols = append(symbols, strings.ToUpper(s))
			}
		}
		cfg.Refresh.Symbols = symbols
	}

	cfg.Universe.Path = getEnv("UNIVERSE_PATH", cfg.Universe.Path)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.Port == c.Server.HealthCheckPort {
		return fmt.Errorf("server and health check ports must differ")
	}
	switch c.Provider.Type {
	case "yahoo", "postgres", "mock":
	default:
		return fmt.Errorf("unknown provider type: %q", c.Provider.Type)
	}
	if c.Provider.Type == "postgres" && !c.Database.Enabled {
		return fmt.Errorf("postgres provider requires database.enabled")
	}
	if err := c.Engine.Indicators.Validate(); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}
	return nil
}

// Helper functions for environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
