package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/alsvik/yomitaisen/internal/config"
	"github.com/alsvik/yomitaisen/internal/database"
	"github.com/alsvik/yomitaisen/internal/duel"
	"github.com/alsvik/yomitaisen/internal/handler/health"
	"github.com/alsvik/yomitaisen/internal/handler/play"
	"github.com/alsvik/yomitaisen/internal/migrations"
	"github.com/alsvik/yomitaisen/internal/server"
	"github.com/alsvik/yomitaisen/internal/words"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	applied, err := migrations.Run(ctx, db)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	repo := words.NewRepository(db)
	n, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting words: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath, "migrations_applied", applied, "words", n)

	checks := map[string]health.Checker{
		"sqlite": dbChecker{db},
		"words":  repo,
	}

	// --- Redis (optional readings cache) ---
	var source duel.WordSource = repo
	if cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		logger.Info("connected to redis", "ttl", cfg.ReadingsCacheTTL)

		source = words.NewCache(repo, rdb, cfg.ReadingsCacheTTL, logger)
		checks["redis"] = redisChecker{rdb}
	}

	// --- Game engine ---
	game := cfg.Game
	registry := duel.NewRegistry(duel.Rules{
		WinsNeeded: game.WinsNeeded,
		MaxRounds:  game.MaxRounds,
	}, logger)
	engine := duel.NewEngine(registry, source, duel.EngineConfig{
		RoundTimeout:   game.RoundTimeout,
		RematchWindow:  game.RematchWindow,
		WordRetryDelay: game.WordRetryDelay,
		LookupTimeout:  game.LookupTimeout,
	}, logger)
	defer engine.Close()

	pending := duel.NewPendingGames(game.LobbyMaxAge)
	plays := play.NewHandler(engine, duel.NewLobby(), pending, play.Config{
		OutboxSize:   game.OutboxSize,
		MessageRate:  game.MessageRate,
		MessageBurst: game.MessageBurst,
	}, logger)

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Options{
		Lobby:  pending,
		SPADir: cfg.SPADir,
		Mount: func(r chi.Router) {
			r.Mount("/healthz", health.NewHandler(logger, checks).Routes())
			r.Mount("/ws", plays.Routes())
		},
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	g.Go(func() error {
		sweepPending(gctx, pending, game.PendingSweepInterval, logger)
		return nil
	})

	return g.Wait()
}

// sweepPending drops invite games nobody joined until ctx is done.
func sweepPending(ctx context.Context, pending *duel.PendingGames, every time.Duration, logger *slog.Logger) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := pending.Sweep(); n > 0 {
				logger.Info("swept expired invite games", "count", n)
			}
		}
	}
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

// dbChecker adapts *sql.DB to health.Checker.
type dbChecker struct{ db *sql.DB }

func (d dbChecker) Check(ctx context.Context) error { return d.db.PingContext(ctx) }

// redisChecker adapts *redis.Client to health.Checker.
type redisChecker struct{ client *redis.Client }

func (r redisChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }
