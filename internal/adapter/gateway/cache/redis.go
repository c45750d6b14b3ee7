package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	dm "github.com/papercircuit/elektronVersion/internal/domain/listing"
)

const snapshotKey = "listings:snapshot"

// Snapshot publishes every reconciled listing set to Redis: the full set as
// one JSON blob plus a latest-price key per listing. Consumers (the original
// UI's stand-in) read from here instead of holding an IPC pipe to the engine.
type Snapshot struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewSnapshot(addr, password string, db int, ttl time.Duration, logger *slog.Logger) (*Snapshot, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Snapshot{client: client, ttl: ttl, logger: logger}, nil
}

func (s *Snapshot) log() *slog.Logger {
	if s.logger != nil { return s.logger }
	return slog.Default()
}

// health.Pinger
func (*Snapshot) Name() string { return "redis" }

func (s *Snapshot) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Notify implements syncuc.Subscriber. A publish failure is logged, never
// escalated: the cache lagging one cycle must not fail ingestion.
func (s *Snapshot) Notify(ctx context.Context, set dm.Set) {
	data, err := json.Marshal(set)
	if err != nil {
		s.log().Warn("snapshot marshal failed", "err", err)
		return
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, snapshotKey, data, s.ttl)
	for _, l := range set {
		pipe.Set(ctx, "listings:latest:"+l.ID, l.Price.Amount, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.log().Warn("snapshot publish failed", "err", err, "listings", len(set))
		return
	}
	s.log().Debug("snapshot published", "listings", len(set))
}

// Latest returns the last published set, or ok=false when none is cached.
func (s *Snapshot) Latest(ctx context.Context) (dm.Set, bool, error) {
	data, err := s.client.Get(ctx, snapshotKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var set dm.Set
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, false, err
	}
	return set, true, nil
}

func (s *Snapshot) Close() error { return s.client.Close() }
