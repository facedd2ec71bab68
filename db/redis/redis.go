package redis

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/suxatcode/learn-graph-layout/db"
)

const keyPrefix = "layout:"

// RedisStore implements db.Store as an expiring cache: every record is stored
// as its json document and dropped after ttl. A ttl of 0 keeps records
// forever.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(ctx context.Context, conf db.Config) (db.Store, error) {
	client := redis.NewClient(&redis.Options{Addr: conf.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "failed to connect to redis at '%s'", conf.RedisAddr)
	}
	return NewRedisStoreWithClient(client, conf.RedisTTL), nil
}

func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func key(name string) string {
	return keyPrefix + name
}

func (s *RedisStore) SaveLayout(ctx context.Context, name string, record *db.Record) error {
	if err := db.ValidName(name); err != nil {
		return err
	}
	data, err := db.EncodeRecord(record)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key(name), data, s.ttl).Err()
}

func (s *RedisStore) LoadLayout(ctx context.Context, name string) (*db.Record, error) {
	data, err := s.client.Get(ctx, key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, db.ErrLayoutNotFound
	}
	if err != nil {
		return nil, err
	}
	return db.DecodeRecord(key(name), data)
}

func (s *RedisStore) DeleteLayout(ctx context.Context, name string) error {
	n, err := s.client.Del(ctx, key(name)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return db.ErrLayoutNotFound
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
