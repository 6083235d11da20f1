package redis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/w-h-a/vecstore/kv"
)

type redisKV struct {
	options kv.Options
	client  *redis.Client
}

func (r *redisKV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *redisKV) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *redisKV) SetEx(ctx context.Context, key string, ttl time.Duration, value []byte) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisKV) Delete(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *redisKV) HSet(ctx context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return r.client.HSet(ctx, key, fields).Err()
}

func (r *redisKV) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return r.client.HGetAll(ctx, key).Result()
}

func (r *redisKV) SAdd(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	return r.client.SAdd(ctx, key, toAny(members)...).Err()
}

func (r *redisKV) SRem(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	return r.client.SRem(ctx, key, toAny(members)...).Err()
}

func (r *redisKV) SMembers(ctx context.Context, key string) ([]string, error) {
	return r.client.SMembers(ctx, key).Result()
}

func (r *redisKV) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *redisKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string

	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	return keys, nil
}

func (r *redisKV) Close() error {
	return r.client.Close()
}

func toAny(members []string) []any {
	out := make([]any, len(members))
	for i, m := range members {
		out[i] = m
	}
	return out
}

// NewKV connects to the redis instance named by WithLocation, e.g.
// redis://localhost:6379/0.
func NewKV(opts ...kv.Option) kv.KV {
	options := kv.NewOptions(opts...)

	r := &redisKV{
		options: options,
	}

	cfg, err := redis.ParseURL(options.Location)
	if err != nil {
		detail := "failed to parse redis location"
		slog.ErrorContext(options.Context, detail, "error", err)
		panic(detail)
	}

	client := redis.NewClient(cfg)

	if err := client.Ping(options.Context).Err(); err != nil {
		detail := "failed to ping with redis kv"
		slog.ErrorContext(options.Context, detail, "error", err)
		panic(detail)
	}

	if err := redisotel.InstrumentTracing(client); err != nil {
		detail := "failed to initialize redis instrumentation for redis kv"
		slog.ErrorContext(options.Context, detail, "error", err)
		panic(detail)
	}

	r.client = client

	return r
}
