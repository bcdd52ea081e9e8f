// Package tokencache is the Redis adapter for token revocation markers and
// per-user cached access tokens.
//
// Every transport failure is wrapped in ErrCacheUnavailable so callers can
// fail closed: a revocation check that cannot be completed must never be
// treated as "not revoked".
package tokencache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheUnavailable = errors.New("token cache unavailable")

const revokedMarker = "revoked"

type Cache struct {
	redis redis.UniversalClient
}

func New(client redis.UniversalClient) *Cache {
	return &Cache{redis: client}
}

func revokedKey(jti string) string {
	return "revoked_token:" + jti
}

func userTokenKey(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10) + ":token"
}

// MarkRevoked writes a revocation record for the token id.
// The ttl should cover the maximum remaining lifetime of the token class,
// after that the record expires on its own
func (c *Cache) MarkRevoked(ctx context.Context, jti string, ttl time.Duration) error {
	err := c.redis.Set(ctx, revokedKey(jti), revokedMarker, ttl).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	return nil
}

// IsRevoked reports whether a revocation record exists for the token id.
// Transport errors are returned as ErrCacheUnavailable and must not be
// interpreted as "not revoked"
func (c *Cache) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := c.redis.Get(ctx, revokedKey(jti)).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
}

// CacheUserToken stores the user's current access token.
// Last write wins: at most one cached token per user
func (c *Cache) CacheUserToken(ctx context.Context, userID int64, token string, ttl time.Duration) error {
	err := c.redis.Set(ctx, userTokenKey(userID), token, ttl).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	return nil
}

// UserToken returns the cached access token for the user or empty string if absent
func (c *Cache) UserToken(ctx context.Context, userID int64) (string, error) {
	token, err := c.redis.Get(ctx, userTokenKey(userID)).Result()
	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, redis.Nil):
		return "", nil
	default:
		return "", fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
}

func (c *Cache) DeleteUserToken(ctx context.Context, userID int64) error {
	err := c.redis.Del(ctx, userTokenKey(userID)).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	return nil
}

// Ping returns a point-in-time cache availability check
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	return nil
}
