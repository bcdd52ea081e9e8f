package tokencache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return New(rdb), mr
}

func Test_Cache_Revocation(t *testing.T) {
	t.Parallel()

	t.Run("not revoked by default", func(t *testing.T) {
		c, _ := newTestCache(t)

		revoked, err := c.IsRevoked(t.Context(), "some-jti")

		require.NoError(t, err)
		require.False(t, revoked)
	})

	t.Run("revoked after mark", func(t *testing.T) {
		c, _ := newTestCache(t)

		err := c.MarkRevoked(t.Context(), "some-jti", time.Hour)
		require.NoError(t, err)

		revoked, err := c.IsRevoked(t.Context(), "some-jti")
		require.NoError(t, err)
		require.True(t, revoked)
	})

	t.Run("mark twice is ok", func(t *testing.T) {
		c, _ := newTestCache(t)

		require.NoError(t, c.MarkRevoked(t.Context(), "some-jti", time.Hour))
		require.NoError(t, c.MarkRevoked(t.Context(), "some-jti", time.Hour))

		revoked, err := c.IsRevoked(t.Context(), "some-jti")
		require.NoError(t, err)
		require.True(t, revoked)
	})

	t.Run("record expires with ttl", func(t *testing.T) {
		c, mr := newTestCache(t)

		err := c.MarkRevoked(t.Context(), "some-jti", time.Minute)
		require.NoError(t, err)

		mr.FastForward(2 * time.Minute)

		revoked, err := c.IsRevoked(t.Context(), "some-jti")
		require.NoError(t, err)
		require.False(t, revoked, "record should expire once token could not be valid anyway")
	})

	t.Run("key layout", func(t *testing.T) {
		c, mr := newTestCache(t)

		require.NoError(t, c.MarkRevoked(t.Context(), "abc", time.Hour))

		got, err := mr.Get("revoked_token:abc")
		require.NoError(t, err)
		require.Equal(t, "revoked", got)
	})

	t.Run("transport error surfaced", func(t *testing.T) {
		c, mr := newTestCache(t)
		mr.Close()

		_, err := c.IsRevoked(t.Context(), "some-jti")

		require.Error(t, err, "cache failure must not look like 'not revoked'")
		require.ErrorIs(t, err, ErrCacheUnavailable)
	})
}

func Test_Cache_UserToken(t *testing.T) {
	t.Parallel()

	t.Run("empty when nothing cached", func(t *testing.T) {
		c, _ := newTestCache(t)

		token, err := c.UserToken(t.Context(), 1)

		require.NoError(t, err)
		require.Empty(t, token)
	})

	t.Run("cache and read back", func(t *testing.T) {
		c, mr := newTestCache(t)

		err := c.CacheUserToken(t.Context(), 42, "token-value", time.Hour)
		require.NoError(t, err)

		token, err := c.UserToken(t.Context(), 42)
		require.NoError(t, err)
		require.Equal(t, "token-value", token)

		_, err = mr.Get("user:42:token")
		require.NoError(t, err, "token should be stored under 'user:<id>:token'")
	})

	t.Run("last write wins", func(t *testing.T) {
		c, _ := newTestCache(t)

		require.NoError(t, c.CacheUserToken(t.Context(), 42, "first", time.Hour))
		require.NoError(t, c.CacheUserToken(t.Context(), 42, "second", time.Hour))

		token, err := c.UserToken(t.Context(), 42)
		require.NoError(t, err)
		require.Equal(t, "second", token)
	})

	t.Run("delete", func(t *testing.T) {
		c, _ := newTestCache(t)

		require.NoError(t, c.CacheUserToken(t.Context(), 42, "token-value", time.Hour))
		require.NoError(t, c.DeleteUserToken(t.Context(), 42))

		token, err := c.UserToken(t.Context(), 42)
		require.NoError(t, err)
		require.Empty(t, token)
	})

	t.Run("delete absent token is ok", func(t *testing.T) {
		c, _ := newTestCache(t)

		require.NoError(t, c.DeleteUserToken(t.Context(), 404))
	})

	t.Run("expires with ttl", func(t *testing.T) {
		c, mr := newTestCache(t)

		require.NoError(t, c.CacheUserToken(t.Context(), 42, "token-value", time.Minute))
		mr.FastForward(2 * time.Minute)

		token, err := c.UserToken(t.Context(), 42)
		require.NoError(t, err)
		require.Empty(t, token)
	})
}
