package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want INFO", cfg.LogLevel)
	}
	if cfg.RedisURL != "" {
		t.Errorf("RedisURL = %q, want empty", cfg.RedisURL)
	}
	if cfg.Game.RoundTimeout != 30*time.Second {
		t.Errorf("RoundTimeout = %s, want 30s", cfg.Game.RoundTimeout)
	}
	if cfg.Game.WinsNeeded != 15 || cfg.Game.MaxRounds != 30 {
		t.Errorf("rules = %d/%d, want 15/30", cfg.Game.WinsNeeded, cfg.Game.MaxRounds)
	}
	if cfg.Game.OutboxSize != 16 {
		t.Errorf("OutboxSize = %d, want 16", cfg.Game.OutboxSize)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ROUND_TIMEOUT", "15s")
	t.Setenv("WINS_NEEDED", "2")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Game.RoundTimeout != 15*time.Second {
		t.Errorf("RoundTimeout = %s, want 15s", cfg.Game.RoundTimeout)
	}
	if cfg.Game.WinsNeeded != 2 {
		t.Errorf("WinsNeeded = %d, want 2", cfg.Game.WinsNeeded)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want DEBUG", cfg.LogLevel)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"no end condition", map[string]string{"WINS_NEEDED": "0", "MAX_ROUNDS": "0"}},
		{"zero timeout", map[string]string{"ROUND_TIMEOUT": "0s"}},
		{"bad duration", map[string]string{"REMATCH_WINDOW": "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("Load succeeded, want error")
			}
		})
	}
}
