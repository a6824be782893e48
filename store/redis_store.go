package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each document as a plain redis string under Prefix+key.
type RedisStore struct {
	Client        *redis.Client
	Prefix        string
	MaxValueBytes int
}

func NewRedisStore(client *redis.Client, prefix string, maxValueBytes int) *RedisStore {
	return &RedisStore{Client: client, Prefix: prefix, MaxValueBytes: maxValueBytes}
}

func (s *RedisStore) key(k string) string {
	return s.Prefix + k
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.Client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, backendErr("get", key, err)
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := checkQuota(key, value, s.MaxValueBytes); err != nil {
		return err
	}
	if err := s.Client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return backendErr("set", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	if err := s.Client.Del(ctx, full...).Err(); err != nil {
		return backendErr("delete", keys[0], err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.Client.Close()
}
