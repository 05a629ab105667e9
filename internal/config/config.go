package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName         string
	AppEnv          string
	AppPort         string
	DatabaseURL     string
	RedisURL        string
	JWTSecret       string
	RankingCacheTTL time.Duration

	// GradePointFloor and StarPointFactor fix the point scale: an official
	// grade g maps to floor + (100-floor)/100 * g points, and a vote of s
	// stars contributes s * factor points.
	GradePointFloor int
	StarPointFactor int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EXPO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Expotec API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("ranking.cache_ttl", "2m")
	v.SetDefault("ranking.grade_floor", 10)
	v.SetDefault("ranking.star_factor", 20)

	ttlString := v.GetString("ranking.cache_ttl")
	if ttlString == "" {
		ttlString = "2m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid ranking cache ttl: %w", err)
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		DatabaseURL:     v.GetString("database.url"),
		RedisURL:        v.GetString("redis.url"),
		JWTSecret:       v.GetString("jwt.secret"),
		RankingCacheTTL: ttl,
		GradePointFloor: v.GetInt("ranking.grade_floor"),
		StarPointFactor: v.GetInt("ranking.star_factor"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.GradePointFloor < 0 || cfg.GradePointFloor > 100 {
		return Config{}, fmt.Errorf("grade point floor must be within 0-100")
	}

	if cfg.StarPointFactor <= 0 {
		cfg.StarPointFactor = 20
	}

	return cfg, nil
}
