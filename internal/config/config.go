package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DBPath            string
	ServerPort        string
	LogLevel          string
	ChallongeAPIToken string
	ChallongeBaseURL  string
	RequestTimeout    time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:            getEnv("DB_PATH", "elo_data.db"),
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		ChallongeAPIToken: getEnv("CHALLONGE_API_TOKEN", ""),
		ChallongeBaseURL:  getEnv("CHALLONGE_BASE_URL", "https://api.challonge.com/v1"),
		RequestTimeout:    30 * time.Second,
	}

	if cfg.ChallongeAPIToken == "" {
		logger.Warn().Msg("CHALLONGE_API_TOKEN not set, tournament imports are disabled")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("challonge_base_url", cfg.ChallongeBaseURL).
		Dur("request_timeout", cfg.RequestTimeout).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
