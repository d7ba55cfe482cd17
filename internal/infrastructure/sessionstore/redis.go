package sessionstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/teamc/account-console/internal/core/ports"
)

const keyPrefix = "account-console:session:"

var _ ports.SessionPersister = (*RedisPersister)(nil)

// RedisPersister stores the session blob under one Redis key with no TTL;
// expiry is decided by the token, not by the store.
// Key format: account-console:session:<name>
type RedisPersister struct {
	client redis.Cmdable
	key    string
}

func NewRedisPersister(client redis.Cmdable, name string) *RedisPersister {
	return &RedisPersister{client: client, key: keyPrefix + name}
}

// Key returns the full Redis key.
func (p *RedisPersister) Key() string { return p.key }

func (p *RedisPersister) Read(ctx context.Context) ([]byte, error) {
	blob, err := p.client.Get(ctx, p.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	return blob, nil
}

func (p *RedisPersister) Write(ctx context.Context, blob []byte) error {
	if err := p.client.Set(ctx, p.key, blob, 0).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (p *RedisPersister) Remove(ctx context.Context) error {
	if err := p.client.Del(ctx, p.key).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}

// Ping checks Redis connectivity.
func (p *RedisPersister) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
