package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/storecatalog/internal/apperrors"
	"github.com/avolkov/storecatalog/internal/models"
	"github.com/avolkov/storecatalog/internal/service/auth/tokenmanager"
	"github.com/avolkov/storecatalog/internal/tokencache"
)

// In memory user repo, enough for the service under test
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]models.User{}}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, username string, hashedPassword string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[username]; ok {
		return models.User{}, apperrors.ErrUserAlreadyExists
	}

	r.nextID++
	user := models.User{
		ID:             r.nextID,
		CreatedAt:      time.Now(),
		Username:       username,
		HashedPassword: hashedPassword,
	}
	r.users[username] = user
	return user, nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, userID int64) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return models.User{}, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[username]
	if !ok {
		return models.User{}, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) DeleteUser(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, u := range r.users {
		if u.ID == userID {
			delete(r.users, name)
			return nil
		}
	}
	return apperrors.ErrUserNotFound
}

type testEnv struct {
	service *Service
	tokens  *tokenmanager.TokenManager
	redis   *miniredis.Miniredis
	users   *fakeUserRepo
}

func newTestService(t *testing.T, cfg Config) testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	tokens, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret-key"})
	require.NoError(t, err)

	users := newFakeUserRepo()

	s, err := NewService(cfg, tokens, tokencache.New(rdb), users)
	require.NoError(t, err, "auth service should be created without errors")

	return testEnv{service: s, tokens: tokens, redis: mr, users: users}
}

func Test_Service_Register(t *testing.T) {
	t.Parallel()

	t.Run("new user ok", func(t *testing.T) {
		env := newTestService(t, Config{})

		user, err := env.service.Register(t.Context(), "alice", "secret1")

		require.NoError(t, err)
		require.Equal(t, "alice", user.Username)
		require.NotEqual(t, "secret1", user.HashedPassword, "plaintext must never be stored")
	})

	t.Run("fail if user exists and keep original record", func(t *testing.T) {
		env := newTestService(t, Config{})

		_, err := env.service.Register(t.Context(), "alice", "secret1")
		require.NoError(t, err)

		_, err = env.service.Register(t.Context(), "alice", "other-pwd")
		require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)

		// Original credentials still work
		_, err = env.service.Login(t.Context(), "alice", "secret1")
		require.NoError(t, err)
	})
}

func Test_Service_Login(t *testing.T) {
	t.Parallel()

	t.Run("issues fresh pair", func(t *testing.T) {
		env := newTestService(t, Config{})
		user, err := env.service.Register(t.Context(), "alice", "secret1")
		require.NoError(t, err)

		pair, err := env.service.Login(t.Context(), "alice", "secret1")
		require.NoError(t, err)
		require.NotEmpty(t, pair.Access.Value)
		require.NotEmpty(t, pair.Refresh.Value)

		claims, err := env.tokens.Parse(pair.Access.Value)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID, "token should decode to the logged in user")
		assert.True(t, claims.Fresh, "password login issues a fresh token")

		validated, err := env.service.Validate(t.Context(), pair.Access.Value, ValidateOptions{})
		require.NoError(t, err, "freshly issued token must not be flagged revoked")
		assert.Equal(t, user.ID, validated.User.ID)
	})

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "wrong password", username: "alice", password: "wrong"},
		{name: "unknown user", username: "nobody", password: "secret1"},
	}

	for _, tt := range tests {
		t.Run("fail on "+tt.name, func(t *testing.T) {
			env := newTestService(t, Config{})
			_, err := env.service.Register(t.Context(), "alice", "secret1")
			require.NoError(t, err)

			_, err = env.service.Login(t.Context(), tt.username, tt.password)

			require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		})
	}

	t.Run("reuses cached token", func(t *testing.T) {
		env := newTestService(t, Config{})
		_, err := env.service.Register(t.Context(), "alice", "secret1")
		require.NoError(t, err)

		first, err := env.service.Login(t.Context(), "alice", "secret1")
		require.NoError(t, err)

		second, err := env.service.Login(t.Context(), "alice", "secret1")
		require.NoError(t, err)

		assert.Equal(t, first.Access.Value, second.Access.Value, "no duplicate issuance while cached token lives")
		assert.Empty(t, second.Refresh.Value, "cached path returns the access token only")
	})

	t.Run("issues new token after cache expiry", func(t *testing.T) {
		env := newTestService(t, Config{})
		_, err := env.service.Register(t.Context(), "alice", "secret1")
		require.NoError(t, err)

		first, err := env.service.Login(t.Context(), "alice", "secret1")
		require.NoError(t, err)

		env.redis.FastForward(25 * time.Hour)

		second, err := env.service.Login(t.Context(), "alice", "secret1")
		require.NoError(t, err)
		assert.NotEqual(t, first.Access.Value, second.Access.Value)
		assert.NotEmpty(t, second.Refresh.Value)
	})

	t.Run("cache failure fails login", func(t *testing.T) {
		env := newTestService(t, Config{})
		_, err := env.service.Register(t.Context(), "alice", "secret1")
		require.NoError(t, err)

		env.redis.Close()

		_, err = env.service.Login(t.Context(), "alice", "secret1")
		require.ErrorIs(t, err, tokencache.ErrCacheUnavailable)
	})
}

func Test_Service_Refresh(t *testing.T) {
	t.Parallel()

	login := func(t *testing.T, env testEnv) models.TokenPair {
		t.Helper()
		_, err := env.service.Register(t.Context(), "alice", "secret1")
		require.NoError(t, err)
		pair, err := env.service.Login(t.Context(), "alice", "secret1")
		require.NoError(t, err)
		return pair
	}

	t.Run("mints non fresh access token", func(t *testing.T) {
		env := newTestService(t, Config{})
		pair := login(t, env)

		access, err := env.service.Refresh(t.Context(), pair.Refresh.Value)
		require.NoError(t, err)

		claims, err := env.tokens.Parse(access.Value)
		require.NoError(t, err)
		assert.False(t, claims.Fresh, "refreshed access token must not be fresh")
		assert.Equal(t, models.TokenTypeAccess, claims.TokenType)
	})

	t.Run("refresh token is single use", func(t *testing.T) {
		env := newTestService(t, Config{})
		pair := login(t, env)

		_, err := env.service.Refresh(t.Context(), pair.Refresh.Value)
		require.NoError(t, err)

		_, err = env.service.Refresh(t.Context(), pair.Refresh.Value)
		require.ErrorIs(t, err, apperrors.ErrTokenRevoked)
	})

	t.Run("rejects access token", func(t *testing.T) {
		env := newTestService(t, Config{})
		pair := login(t, env)

		_, err := env.service.Refresh(t.Context(), pair.Access.Value)

		require.ErrorIs(t, err, apperrors.ErrWrongTokenType)
	})
}

func Test_Service_Logout(t *testing.T) {
	t.Parallel()

	login := func(t *testing.T, env testEnv) models.TokenPair {
		t.Helper()
		_, err := env.service.Register(t.Context(), "alice", "secret1")
		require.NoError(t, err)
		pair, err := env.service.Login(t.Context(), "alice", "secret1")
		require.NoError(t, err)
		return pair
	}

	t.Run("revokes token immediately", func(t *testing.T) {
		env := newTestService(t, Config{})
		pair := login(t, env)

		err := env.service.Logout(t.Context(), pair.Access.Value)
		require.NoError(t, err)

		_, err = env.service.Validate(t.Context(), pair.Access.Value, ValidateOptions{})
		require.ErrorIs(t, err, apperrors.ErrTokenRevoked, "revoked wins no matter how much TTL remains")
	})

	t.Run("drops cached token so next login issues anew", func(t *testing.T) {
		env := newTestService(t, Config{})
		pair := login(t, env)

		require.NoError(t, env.service.Logout(t.Context(), pair.Access.Value))

		next, err := env.service.Login(t.Context(), "alice", "secret1")
		require.NoError(t, err)
		assert.NotEqual(t, pair.Access.Value, next.Access.Value)
	})

	t.Run("idempotent", func(t *testing.T) {
		env := newTestService(t, Config{})
		pair := login(t, env)

		require.NoError(t, env.service.Logout(t.Context(), pair.Access.Value))
		require.NoError(t, env.service.Logout(t.Context(), pair.Access.Value), "second logout with the same token is safe")
	})

	t.Run("rejects refresh token", func(t *testing.T) {
		env := newTestService(t, Config{})
		pair := login(t, env)

		err := env.service.Logout(t.Context(), pair.Refresh.Value)
		require.ErrorIs(t, err, apperrors.ErrWrongTokenType)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		env := newTestService(t, Config{})

		err := env.service.Logout(t.Context(), "not-a-token")
		require.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})
}

func Test_Service_Validate(t *testing.T) {
	t.Parallel()

	login := func(t *testing.T, env testEnv) models.TokenPair {
		t.Helper()
		_, err := env.service.Register(t.Context(), "alice", "secret1")
		require.NoError(t, err)
		pair, err := env.service.Login(t.Context(), "alice", "secret1")
		require.NoError(t, err)
		return pair
	}

	t.Run("tampered token never validates", func(t *testing.T) {
		env := newTestService(t, Config{})
		pair := login(t, env)

		tampered := []byte(pair.Access.Value)
		tampered[len(tampered)-1] ^= 0x01

		_, err := env.service.Validate(t.Context(), string(tampered), ValidateOptions{})
		require.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("refreshed token fails freshness gate", func(t *testing.T) {
		env := newTestService(t, Config{})
		pair := login(t, env)

		access, err := env.service.Refresh(t.Context(), pair.Refresh.Value)
		require.NoError(t, err)

		_, err = env.service.Validate(t.Context(), access.Value, ValidateOptions{RequireFresh: true})
		require.ErrorIs(t, err, apperrors.ErrFreshTokenRequired)

		_, err = env.service.Validate(t.Context(), access.Value, ValidateOptions{})
		require.NoError(t, err, "same token is fine where freshness not required")
	})

	t.Run("revoked reported before freshness", func(t *testing.T) {
		env := newTestService(t, Config{})
		pair := login(t, env)

		access, err := env.service.Refresh(t.Context(), pair.Refresh.Value)
		require.NoError(t, err)

		require.NoError(t, env.service.Logout(t.Context(), access.Value))

		_, err = env.service.Validate(t.Context(), access.Value, ValidateOptions{RequireFresh: true})
		require.ErrorIs(t, err, apperrors.ErrTokenRevoked, "revocation check runs before the freshness check")
	})

	t.Run("access token fails refresh gate", func(t *testing.T) {
		env := newTestService(t, Config{})
		pair := login(t, env)

		_, err := env.service.Validate(t.Context(), pair.Access.Value, ValidateOptions{RequireRefresh: true})
		require.ErrorIs(t, err, apperrors.ErrWrongTokenType)
	})

	t.Run("fails closed when cache is down", func(t *testing.T) {
		env := newTestService(t, Config{})
		pair := login(t, env)

		env.redis.Close()

		_, err := env.service.Validate(t.Context(), pair.Access.Value, ValidateOptions{})
		require.ErrorIs(t, err, tokencache.ErrCacheUnavailable, "cache failure must reject the request, not skip the revocation check")
	})

	t.Run("deleted user fails validation", func(t *testing.T) {
		env := newTestService(t, Config{})
		pair := login(t, env)

		user, err := env.users.GetUserByUsername(t.Context(), "alice")
		require.NoError(t, err)
		require.NoError(t, env.users.DeleteUser(t.Context(), user.ID))

		_, err = env.service.Validate(t.Context(), pair.Access.Value, ValidateOptions{})
		require.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("admin predicate", func(t *testing.T) {
		env := newTestService(t, Config{AdminFunc: AdminByID(1)})

		// First registered user gets id 1 in the fake repo
		_, err := env.service.Register(t.Context(), "root", "secret1")
		require.NoError(t, err)
		_, err = env.service.Register(t.Context(), "alice", "secret1")
		require.NoError(t, err)

		rootPair, err := env.service.Login(t.Context(), "root", "secret1")
		require.NoError(t, err)
		alicePair, err := env.service.Login(t.Context(), "alice", "secret1")
		require.NoError(t, err)

		rootClaims, err := env.service.Validate(t.Context(), rootPair.Access.Value, ValidateOptions{})
		require.NoError(t, err)
		assert.True(t, rootClaims.IsAdmin)

		aliceClaims, err := env.service.Validate(t.Context(), alicePair.Access.Value, ValidateOptions{})
		require.NoError(t, err)
		assert.False(t, aliceClaims.IsAdmin)
	})
}
