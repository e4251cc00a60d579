package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Redis    RedisConfig
	Gateway  GatewayConfig
	Map      MapConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds PostgreSQL/PostGIS connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// RedisConfig holds the optional dashboard cache configuration.
// An empty Addr disables caching entirely.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTLSecs  int
}

// GatewayConfig holds the mobile-money payment gateway credentials.
type GatewayConfig struct {
	BaseURL        string
	MerchantID     string
	MerchantSecret string
}

// MapConfig holds the display-point resolution thresholds, in meters.
// HardCutoff zero disables marker exclusion.
type MapConfig struct {
	FallbackMeters   float64
	HardCutoffMeters float64
}

// Load reads configuration from environment variables.
// It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "taxe_municipale")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("CORS_ORIGINS", "http://localhost:4200,http://127.0.0.1:4200")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("STATS_CACHE_TTL_SECS", 60)
	v.SetDefault("GATEWAY_BASE_URL", "https://client.bamboopay-ga.com/api")
	v.SetDefault("MAP_FALLBACK_METERS", 1000.0)
	v.SetDefault("MAP_HARD_CUTOFF_METERS", 0.0)

	// Bind environment variables
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TTLSecs:  v.GetInt("STATS_CACHE_TTL_SECS"),
		},
		Gateway: GatewayConfig{
			BaseURL:        v.GetString("GATEWAY_BASE_URL"),
			MerchantID:     v.GetString("GATEWAY_MERCHANT_ID"),
			MerchantSecret: v.GetString("GATEWAY_MERCHANT_SECRET"),
		},
		Map: MapConfig{
			FallbackMeters:   v.GetFloat64("MAP_FALLBACK_METERS"),
			HardCutoffMeters: v.GetFloat64("MAP_HARD_CUTOFF_METERS"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}

	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	if c.Redis.Addr != "" && c.Redis.TTLSecs < 1 {
		return fmt.Errorf("STATS_CACHE_TTL_SECS must be at least 1 when Redis is configured")
	}

	if c.Map.FallbackMeters <= 0 {
		return fmt.Errorf("MAP_FALLBACK_METERS must be positive")
	}
	if c.Map.HardCutoffMeters < 0 {
		return fmt.Errorf("MAP_HARD_CUTOFF_METERS must be non-negative")
	}
	if c.Map.HardCutoffMeters > 0 && c.Map.HardCutoffMeters < c.Map.FallbackMeters {
		return fmt.Errorf("MAP_HARD_CUTOFF_METERS must not be below MAP_FALLBACK_METERS")
	}

	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
