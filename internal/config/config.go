package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/zhouzirui/pong-duel/backend/internal/service/pong"
)

// Config aggregates the service configuration.
type Config struct {
	Server ServerConfig
	Game   GameConfig
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	game, err := loadGameConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Game: game}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr          string
	AllowedOrigin string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}
	origin := getEnvOrDefault("CORS_ALLOWED_ORIGIN", "*")

	if strings.Contains(port, ":") {
		// ":8080" and "127.0.0.1:8080" are used verbatim.
		return ServerConfig{Addr: port, AllowedOrigin: origin}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, AllowedOrigin: origin}, nil
}

// GameConfig holds session timing and per-connection buffering.
type GameConfig struct {
	TickRate      int           `env:"GAME_TICK_RATE" envDefault:"60"`
	VoteTimeout   time.Duration `env:"GAME_VOTE_TIMEOUT" envDefault:"60s"`
	CountdownStep time.Duration `env:"GAME_COUNTDOWN_STEP" envDefault:"800ms"`
	SpeedInterval time.Duration `env:"GAME_SPEED_INTERVAL" envDefault:"1s"`
	GoalFreeze    time.Duration `env:"GAME_GOAL_FREEZE" envDefault:"1s"`
	OutboxSize    int           `env:"GAME_OUTBOX_SIZE" envDefault:"32"`
}

func loadGameConfig() (GameConfig, error) {
	cfg, err := env.ParseAs[GameConfig]()
	if err != nil {
		return GameConfig{}, fmt.Errorf("parse game env: %w", err)
	}
	if err := cfg.Session().Validate(); err != nil {
		return GameConfig{}, err
	}
	if cfg.OutboxSize <= 0 {
		return GameConfig{}, fmt.Errorf("invalid GAME_OUTBOX_SIZE value: %d", cfg.OutboxSize)
	}
	return cfg, nil
}

// Session converts the env settings into session timing.
func (c GameConfig) Session() pong.Config {
	return pong.Config{
		TickRate:      c.TickRate,
		VoteTimeout:   c.VoteTimeout,
		CountdownStep: c.CountdownStep,
		SpeedInterval: c.SpeedInterval,
		GoalFreeze:    c.GoalFreeze,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
