package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Database
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis (optional; empty falls back to the in-memory cache)
	RedisURL string `mapstructure:"REDIS_URL"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Pool ingestion
	DefaultSeason       string        `mapstructure:"DEFAULT_SEASON"`
	DefaultLeague       string        `mapstructure:"DEFAULT_LEAGUE"`
	PoolRefreshInterval string        `mapstructure:"POOL_REFRESH_INTERVAL"`
	PoolCacheTTL        time.Duration `mapstructure:"POOL_CACHE_TTL"`
	MaxValueLookups     int           `mapstructure:"MAX_VALUE_LOOKUPS"`

	// Scraping
	FBrefBaseURL            string        `mapstructure:"FBREF_BASE_URL"`
	ScrapeRateLimit         float64       `mapstructure:"SCRAPE_RATE_LIMIT"` // requests per second
	ScrapeBurst             int           `mapstructure:"SCRAPE_BURST"`
	ExternalAPITimeout      time.Duration `mapstructure:"EXTERNAL_API_TIMEOUT"`
	CircuitBreakerThreshold int           `mapstructure:"CIRCUIT_BREAKER_THRESHOLD"`

	// Optimizer
	OptimizerTimeout time.Duration `mapstructure:"OPTIMIZER_TIMEOUT"`

	// Local data directory for squad file exports
	DataDir string `mapstructure:"DATA_DIR"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("DATABASE_URL", "scoutxi.db")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("DEFAULT_SEASON", "2024-2025")
	viper.SetDefault("DEFAULT_LEAGUE", "Big 5 European Leagues Combined")
	viper.SetDefault("POOL_REFRESH_INTERVAL", "6h")
	viper.SetDefault("POOL_CACHE_TTL", "1h")
	viper.SetDefault("MAX_VALUE_LOOKUPS", 60)
	viper.SetDefault("FBREF_BASE_URL", "https://fbref.com")
	viper.SetDefault("SCRAPE_RATE_LIMIT", 0.5)
	viper.SetDefault("SCRAPE_BURST", 1)
	viper.SetDefault("EXTERNAL_API_TIMEOUT", "15s")
	viper.SetDefault("CIRCUIT_BREAKER_THRESHOLD", 5)
	viper.SetDefault("OPTIMIZER_TIMEOUT", "3s")
	viper.SetDefault("DATA_DIR", "data")

	// Read from environment
	viper.AutomaticEnv()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Parse CORS origins from comma-separated string
	if corsStr := viper.GetString("CORS_ORIGINS"); corsStr != "" {
		config.CorsOrigins = strings.Split(corsStr, ",")
	}

	return &config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
