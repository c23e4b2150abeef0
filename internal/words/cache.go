package words

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alsvik/yomitaisen/internal/duel"
)

const readingsKeyPrefix = "readings:"

// Cache keeps the readings of each kanji in redis. Redis failures are logged
// and the lookup goes to the wrapped source, so a cache outage never stalls a
// round.
type Cache struct {
	next   duel.WordSource
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCache(next duel.WordSource, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func (c *Cache) Random(ctx context.Context) (duel.Word, error) {
	return c.next.Random(ctx)
}

func (c *Cache) Readings(ctx context.Context, kanji string) ([]string, error) {
	key := readingsKeyPrefix + kanji

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var readings []string
		if err := json.Unmarshal(raw, &readings); err == nil {
			return readings, nil
		}
		c.logger.Warn("discarding corrupt readings cache entry", "kanji", kanji)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("readings cache get failed", "kanji", kanji, "error", err)
	}

	readings, err := c.next.Readings(ctx, kanji)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return readings, nil
	}

	raw, err = json.Marshal(readings)
	if err != nil {
		return readings, nil
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("readings cache set failed", "kanji", kanji, "error", err)
	}
	return readings, nil
}

func (c *Cache) IsValidReading(ctx context.Context, kanji, reading string) (bool, error) {
	readings, err := c.Readings(ctx, kanji)
	if err != nil {
		return false, err
	}
	return slices.Contains(readings, reading), nil
}
