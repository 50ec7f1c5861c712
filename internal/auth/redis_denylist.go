package auth

import (
	"context"
	"time"

	"github.com/redis/rueidis"
)

type RedisDenylist struct {
	client rueidis.Client
	prefix string
	now    func() time.Time
}

func NewRedisDenylist(client rueidis.Client, keyPrefix string) *RedisDenylist {
	return &RedisDenylist{
		client: client,
		prefix: keyPrefix,
		now:    time.Now,
	}
}

func (r *RedisDenylist) key(tokenID string) string {
	return r.prefix + tokenID
}

func (r *RedisDenylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now()).Milliseconds()
	if ttl <= 0 {
		return nil
	}

	cmd := r.client.B().Set().Key(r.key(tokenID)).Value("1").PxMilliseconds(ttl).Build()
	return r.client.Do(ctx, cmd).Error()
}

func (r *RedisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	cmd := r.client.B().Exists().Key(r.key(tokenID)).Build()
	n, err := r.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
