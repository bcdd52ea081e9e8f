package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avolkov/storecatalog/internal/apperrors"
	"github.com/avolkov/storecatalog/internal/models"
	"github.com/avolkov/storecatalog/internal/repository"
	"github.com/avolkov/storecatalog/internal/service/auth/tokenmanager"
)

// Revocation markers written on logout outlive any token class,
// so a logged out jti stays blocked until it could not be valid anyway
const defaultLogoutRevocationTTL = 7 * 24 * time.Hour

// TokenCache is the shared cache for revocation markers and cached access tokens.
// Implemented by tokencache.Cache
type TokenCache interface {
	MarkRevoked(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	CacheUserToken(ctx context.Context, userID int64, token string, ttl time.Duration) error
	UserToken(ctx context.Context, userID int64) (string, error)
	DeleteUserToken(ctx context.Context, userID int64) error
}

type Config struct {
	// Hasher to use during registration or login
	// BcryptHasher is used if not set
	Hasher PasswordHasher

	// AdminFunc decides whether a user carries the admin claim.
	// If not set nobody is admin
	AdminFunc func(models.User) bool

	// How long logout revocation markers live
	// Must exceed the longest token lifetime; default is 7 days
	LogoutRevocationTTL time.Duration
}

// AdminByID returns a predicate that grants admin to a single user id
func AdminByID(adminID int64) func(models.User) bool {
	return func(u models.User) bool {
		return u.ID == adminID
	}
}

type ValidateOptions struct {
	// Reject non fresh access tokens
	RequireFresh bool

	// Expect a refresh class token instead of an access one
	RequireRefresh bool
}

// Service orchestrates the token lifecycle: login issues or reuses tokens,
// refresh re-mints non fresh access tokens, logout revokes, and Validate
// gates every authenticated request
type Service struct {
	tokens  *tokenmanager.TokenManager
	cache   TokenCache
	users   repository.UserRepo
	hasher  PasswordHasher
	isAdmin func(models.User) bool

	logoutRevocationTTL time.Duration
}

func NewService(cfg Config, tokens *tokenmanager.TokenManager, cache TokenCache, users repository.UserRepo) (*Service, error) {
	if tokens == nil || cache == nil || users == nil {
		return nil, errors.New("token manager, cache and user repo must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	isAdmin := cfg.AdminFunc
	if isAdmin == nil {
		isAdmin = func(models.User) bool { return false }
	}

	ttl := cfg.LogoutRevocationTTL
	if ttl == 0 {
		ttl = defaultLogoutRevocationTTL
	}

	return &Service{
		tokens:              tokens,
		cache:               cache,
		users:               users,
		hasher:              hasher,
		isAdmin:             isAdmin,
		logoutRevocationTTL: ttl,
	}, nil
}

// Register creates a user with hashed password. No tokens are issued
func (s *Service) Register(ctx context.Context, username string, password string) (models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	user, err := s.users.CreateUser(ctx, username, hash)
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

// Login verifies credentials and returns a token pair.
//
// If a cached access token is still alive for the user it is returned
// unchanged with an empty refresh slot: no redundant issuance, at the cost
// that a user can't force a fresh token while the cached one lives
func (s *Service) Login(ctx context.Context, username string, password string) (models.TokenPair, error) {
	var pair models.TokenPair

	user, err := s.users.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrUserNotFound):
		return pair, apperrors.ErrInvalidCredentials
	default:
		return pair, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return pair, apperrors.ErrInvalidCredentials
	}

	cached, err := s.cache.UserToken(ctx, user.ID)
	if err != nil {
		return pair, err
	}
	if cached != "" {
		// Reuse only if the cached token still parses: the cache key TTL
		// tracks the token expiry but clocks may disagree slightly
		if claims, parseErr := s.tokens.Parse(cached); parseErr == nil {
			pair.Access = models.IssuedToken{Value: cached, ExpiresAt: claims.ExpiresAt.Time}
			return pair, nil
		}
	}

	access, err := s.tokens.IssueAccess(user.ID, true)
	if err != nil {
		return pair, err
	}

	refresh, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		return pair, err
	}

	if err := s.cache.CacheUserToken(ctx, user.ID, access.Value, time.Until(access.ExpiresAt)); err != nil {
		return pair, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh validates a refresh token and mints a new non fresh access token.
// Refresh tokens are single use: the used jti gets a revocation marker that
// lives as long as the refresh token class could
func (s *Service) Refresh(ctx context.Context, refreshToken string) (models.IssuedToken, error) {
	claims, err := s.Validate(ctx, refreshToken, ValidateOptions{RequireRefresh: true})
	if err != nil {
		return models.IssuedToken{}, err
	}

	access, err := s.tokens.IssueAccess(claims.User.ID, false)
	if err != nil {
		return models.IssuedToken{}, err
	}

	if err := s.cache.MarkRevoked(ctx, claims.JTI, s.tokens.RefreshTTL()); err != nil {
		return models.IssuedToken{}, err
	}

	return access, nil
}

// Logout revokes the access token and drops the user's cached token.
// Idempotent: revoking an already revoked jti overwrites the same marker
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.tokens.Parse(accessToken)
	if err != nil {
		return err
	}

	if claims.TokenType != models.TokenTypeAccess {
		return apperrors.ErrWrongTokenType
	}

	if err := s.cache.MarkRevoked(ctx, claims.ID, s.logoutRevocationTTL); err != nil {
		return err
	}

	if err := s.cache.DeleteUserToken(ctx, claims.UserID); err != nil {
		return err
	}

	return nil
}

// Validate verifies the token and derives authorization claims.
//
// Check order is fixed: signature and expiry, then revocation, then token
// class, then freshness. A revoked but otherwise fresh token is reported
// revoked, not stale. If the revocation lookup can't be completed the
// request fails: cache trouble never passes for "not revoked"
func (s *Service) Validate(ctx context.Context, token string, opts ValidateOptions) (models.Claims, error) {
	var result models.Claims

	claims, err := s.tokens.Parse(token)
	if err != nil {
		return result, err
	}

	revoked, err := s.cache.IsRevoked(ctx, claims.ID)
	if err != nil {
		return result, err
	}
	if revoked {
		return result, apperrors.ErrTokenRevoked
	}

	switch {
	case opts.RequireRefresh && claims.TokenType != models.TokenTypeRefresh:
		return result, apperrors.ErrWrongTokenType
	case !opts.RequireRefresh && claims.TokenType != models.TokenTypeAccess:
		return result, apperrors.ErrWrongTokenType
	}

	if opts.RequireFresh && !claims.Fresh {
		return result, apperrors.ErrFreshTokenRequired
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return result, err
	}

	return models.Claims{
		User:    user,
		JTI:     claims.ID,
		Fresh:   claims.Fresh,
		IsAdmin: s.isAdmin(user),
	}, nil
}
