// Package cache provides an optional Redis-backed cache for the points
// leaderboard. The API serves leaderboard reads far more often than progress
// writes land, so a short TTL absorbs most of the read load.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trezcool/mazoezi/core"
	"github.com/trezcool/mazoezi/core/progress"
)

const leaderboardKey = "leaderboard:points"

type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
	logger core.Logger
}

var _ progress.LeaderboardCache = (*LeaderboardCache)(nil)

func NewLeaderboardCache(conf *core.Config, logger core.Logger) *LeaderboardCache {
	return &LeaderboardCache{
		client: redis.NewClient(&redis.Options{Addr: conf.Redis.Addr}),
		ttl:    conf.Redis.LeaderboardTTL,
		logger: logger,
	}
}

func (c *LeaderboardCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *LeaderboardCache) Close() error {
	return c.client.Close()
}

// GetLeaderboard reports ok=false on a miss or any Redis failure; the caller
// falls back to the database either way.
func (c *LeaderboardCache) GetLeaderboard(ctx context.Context) ([]progress.UserProgress, bool) {
	data, err := c.client.Get(ctx, leaderboardKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("reading leaderboard cache", err)
		}
		return nil, false
	}

	var entries []progress.UserProgress
	if err = json.Unmarshal(data, &entries); err != nil {
		c.logger.Warn("decoding leaderboard cache", err)
		return nil, false
	}
	return entries, true
}

func (c *LeaderboardCache) SetLeaderboard(ctx context.Context, entries []progress.UserProgress) {
	data, err := json.Marshal(entries)
	if err != nil {
		c.logger.Warn("encoding leaderboard cache", err)
		return
	}
	if err = c.client.Set(ctx, leaderboardKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn("writing leaderboard cache", err)
	}
}
