// Package redisstore keeps published card handles in Redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/pingcard/pingcard/internal/publish"
)

const DefaultKeyPrefix = "pingcard:card_handle"

type Store struct {
	client redis.UniversalClient
	prefix string
}

var _ publish.HandleStore = (*Store)(nil)

// NewClient accepts either a redis:// URL or a bare host:port address.
func NewClient(addr string) (redis.UniversalClient, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("redis address is required")
	}
	if !strings.Contains(addr, "://") {
		addr = "redis://" + addr
	}
	opts, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("cant parse redis url: %w", err)
	}
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{opts.Addr},
		DB:           opts.DB,
		Username:     opts.Username,
		Password:     opts.Password,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		TLSConfig:    opts.TLSConfig,
	}), nil
}

func New(client redis.UniversalClient, prefix string) *Store {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(subscription string) string {
	return s.prefix + ":" + subscription
}

func (s *Store) Load(ctx context.Context, subscription string) (string, error) {
	id, err := s.client.Get(ctx, s.key(subscription)).Result()
	if errors.Is(err, redis.Nil) {
		return "", publish.ErrNoHandle
	}
	if err != nil {
		return "", fmt.Errorf("failed to get card handle from redis: %w", err)
	}
	return id, nil
}

func (s *Store) Save(ctx context.Context, subscription, messageID string) error {
	if err := s.client.Set(ctx, s.key(subscription), messageID, 0).Err(); err != nil {
		return fmt.Errorf("failed to save card handle to redis: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, subscription string) error {
	if err := s.client.Del(ctx, s.key(subscription)).Err(); err != nil {
		return fmt.Errorf("failed to delete card handle from redis: %w", err)
	}
	return nil
}
