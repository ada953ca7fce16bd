package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/johnquangdev/meeting-reporter/internal/domain/entities"
	"github.com/johnquangdev/meeting-reporter/pkg/config"
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func runKey(id uuid.UUID) string {
	return "run:" + id.String()
}

func sessionRunsKey(sessionID string) string {
	return "session:" + sessionID + ":runs"
}

// RedisRunRepository stores runs as JSON with a TTL and indexes them per
// session in a sorted set scored by start time.
type RedisRunRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisRunRepository creates a Redis-backed run repository
func NewRedisRunRepository(client redis.UniversalClient, ttl time.Duration) *RedisRunRepository {
	return &RedisRunRepository{client: client, ttl: ttl}
}

// Save stores a snapshot of run
func (r *RedisRunRepository) Save(ctx context.Context, run *entities.PipelineRun) error {
	data, err := json.Marshal(run.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, runKey(run.ID), data, r.ttl)
		if run.SessionID != "" {
			key := sessionRunsKey(run.SessionID)
			pipe.ZAdd(ctx, key, redis.Z{
				Score:  float64(run.StartedAt.UnixNano()),
				Member: run.ID.String(),
			})
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// Get loads a run by id
func (r *RedisRunRepository) Get(ctx context.Context, id uuid.UUID) (*entities.PipelineRun, error) {
	data, err := r.client.Get(ctx, runKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", entities.ErrRunNotFound, id)
		}
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	var run entities.PipelineRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to decode run: %w", err)
	}
	return &run, nil
}

// ListBySession returns the session's runs, newest first
func (r *RedisRunRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]*entities.PipelineRun, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	ids, err := r.client.ZRevRange(ctx, sessionRunsKey(sessionID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list session runs: %w", err)
	}
	if len(ids) == 0 {
		return []*entities.PipelineRun{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = "run:" + id
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load session runs: %w", err)
	}

	runs := make([]*entities.PipelineRun, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			// expired
			continue
		}
		var run entities.PipelineRun
		if err := json.Unmarshal([]byte(s), &run); err != nil {
			return nil, fmt.Errorf("failed to decode run: %w", err)
		}
		runs = append(runs, &run)
	}
	return runs, nil
}
