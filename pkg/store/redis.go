package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	swerrors "github.com/matzehuels/storyweaver/pkg/errors"
	"github.com/matzehuels/storyweaver/pkg/project"
)

// Redis key layout.
const (
	redisKeyPrefix = "storyweaver:project:"
	redisIndexKey  = "storyweaver:projects"
)

// RedisConfig holds connection settings for [NewRedis].
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Redis stores each project document under its own key and tracks all IDs
// in an index set. Writes update value and index in one transaction.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	return &Redis{client: client}, nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func redisKey(id string) string { return redisKeyPrefix + id }

func (r *Redis) Get(ctx context.Context, id string) (*project.Project, error) {
	data, err := r.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", id, err)
	}
	return project.Unmarshal(data)
}

func (r *Redis) Put(ctx context.Context, p *project.Project) error {
	if err := swerrors.ValidateProjectID(p.ID); err != nil {
		return err
	}
	data, err := project.Marshal(p)
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisKey(p.ID), data, 0)
		pipe.SAdd(ctx, redisIndexKey, p.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put %s: %w", p.ID, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, redisKey(id))
		pipe.SRem(ctx, redisIndexKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete %s: %w", id, err)
	}
	if del.Val() == 0 {
		return notFound(id)
	}
	return nil
}

// List reads every indexed project. IDs whose value has vanished are
// dropped from the index.
func (r *Redis) List(ctx context.Context) ([]project.Summary, error) {
	ids, err := r.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list: %w", err)
	}
	if len(ids) == 0 {
		return []project.Summary{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisKey(id)
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list: %w", err)
	}

	out := make([]project.Summary, 0, len(ids))
	var stale []any
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		p, err := project.Unmarshal([]byte(s))
		if err != nil {
			continue
		}
		out = append(out, p.Summarize())
	}
	if len(stale) > 0 {
		_ = r.client.SRem(ctx, redisIndexKey, stale...).Err()
	}
	sortSummaries(out)
	return out, nil
}

func (r *Redis) Close() error { return r.client.Close() }
