package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "pinstudio:"

// RedisStore keeps each collection in one hash, field = record ID, value = JSON.
type RedisStore struct {
	rdb *redis.Client
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Addr, err)
	}
	return &RedisStore{rdb: rdb}, nil
}

func hashKey(collection string) string {
	return keyPrefix + collection
}

func (s *RedisStore) Put(ctx context.Context, r *Record) error {
	if err := prepare(r); err != nil {
		return err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.rdb.HSet(ctx, hashKey(r.Collection), r.ID, data).Err()
}

func (s *RedisStore) Get(ctx context.Context, collection, id string) (*Record, error) {
	data, err := s.rdb.HGet(ctx, hashKey(collection), id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("store: record %s/%s: %w", collection, id, err)
	}
	return &r, nil
}

func (s *RedisStore) List(ctx context.Context, collection string, limit int) ([]*Record, error) {
	vals, err := s.rdb.HVals(ctx, hashKey(collection)).Result()
	if err != nil {
		return nil, err
	}
	recs := make([]*Record, 0, len(vals))
	for _, v := range vals {
		var r Record
		if err := json.Unmarshal([]byte(v), &r); err != nil {
			continue
		}
		recs = append(recs, &r)
	}
	return newestFirst(recs, limit), nil
}

func (s *RedisStore) Delete(ctx context.Context, collection, id string) error {
	n, err := s.rdb.HDel(ctx, hashKey(collection), id).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// Open picks the backend: Redis when addr is set and reachable, else a file
// store when path is set, else memory.
func Open(ctx context.Context, cfg RedisConfig, path string) Store {
	if cfg.Addr != "" {
		s, err := NewRedisStore(ctx, cfg)
		if err == nil {
			return s
		}
		log.Printf("[!] Redis недоступен: %v", err)
	}
	if path != "" {
		s, err := OpenFileStore(path)
		if err == nil {
			return s
		}
		log.Printf("[!] Не удалось открыть %s: %v", path, err)
	}
	return NewMemoryStore()
}
