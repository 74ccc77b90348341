package blacklist

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// sentinel-значение: важен сам факт наличия ключа, не содержимое.
const revokedValue = "revoked"

type redisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore создаёт хранилище поверх Redis из URL
// (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "jwt:blacklist:".
func NewRedisStore(redisURL, prefix string) (Store, error) {
	const op = "blacklist.NewRedisStore"

	if prefix == "" {
		prefix = "jwt:blacklist:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &redisStore{rdb: rdb, prefix: prefix}, nil
}

func (s *redisStore) key(jti string) string { return s.prefix + jti }

func (s *redisStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	const op = "blacklist.redis.Revoke"

	if ttl <= 0 {
		return nil
	}

	if err := s.rdb.Set(ctx, s.key(jti), revokedValue, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}

	return nil
}

func (s *redisStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	const op = "blacklist.redis.IsRevoked"

	n, err := s.rdb.Exists(ctx, s.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}

	return n > 0, nil
}

func (s *redisStore) Close() error { return s.rdb.Close() }

// Ping проверяет доступность Redis; используется readiness-пробой.
func Ping(ctx context.Context, st Store) error {
	if r, ok := st.(*redisStore); ok {
		return r.rdb.Ping(ctx).Err()
	}

	return nil
}
