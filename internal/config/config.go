package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/words.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"../web/dist"`

	// RedisURL enables the readings cache. Empty means no cache.
	RedisURL         string        `env:"REDIS_URL"`
	ReadingsCacheTTL time.Duration `env:"READINGS_CACHE_TTL" envDefault:"1h"`

	Game Game
}

// Game holds the duel rules and timings.
type Game struct {
	RoundTimeout   time.Duration `env:"ROUND_TIMEOUT" envDefault:"30s"`
	WinsNeeded     int           `env:"WINS_NEEDED" envDefault:"15"`
	MaxRounds      int           `env:"MAX_ROUNDS" envDefault:"30"`
	RematchWindow  time.Duration `env:"REMATCH_WINDOW" envDefault:"2m"`
	WordRetryDelay time.Duration `env:"WORD_RETRY_DELAY" envDefault:"2s"`
	LookupTimeout  time.Duration `env:"LOOKUP_TIMEOUT" envDefault:"3s"`

	LobbyMaxAge          time.Duration `env:"LOBBY_MAX_AGE" envDefault:"5m"`
	PendingSweepInterval time.Duration `env:"PENDING_SWEEP_INTERVAL" envDefault:"1m"`

	OutboxSize   int     `env:"OUTBOX_SIZE" envDefault:"16"`
	MessageRate  float64 `env:"MESSAGE_RATE" envDefault:"10"`
	MessageBurst int     `env:"MESSAGE_BURST" envDefault:"20"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.Game.WinsNeeded <= 0 && cfg.Game.MaxRounds <= 0 {
		return nil, errors.New("WINS_NEEDED or MAX_ROUNDS must be positive")
	}
	if cfg.Game.RoundTimeout <= 0 {
		return nil, fmt.Errorf("ROUND_TIMEOUT must be positive, got %s", cfg.Game.RoundTimeout)
	}
	return &cfg, nil
}
