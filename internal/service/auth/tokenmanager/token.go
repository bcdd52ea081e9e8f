package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/avolkov/storecatalog/internal/apperrors"
	"github.com/avolkov/storecatalog/internal/models"
)

const (
	// Access tokens live one day, matching the cached-token window
	defaultAccessTokenTTL = 24 * time.Hour

	// Refresh tokens are longer lived and single use
	defaultRefreshTokenTTL = 72 * time.Hour

	defaultSigningMethod = "HS256"
)

type TokenClaims struct {
	jwt.RegisteredClaims
	UserID    int64  `json:"uid"`
	Fresh     bool   `json:"fresh"`
	TokenType string `json:"token_type"`
}

// Token manager config with sensible defaults
type Config struct {
	// Secret key to sign token payload
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set than default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type TokenManager struct {
	// Secret key to sign tokens
	key string

	// JWT MAC (Message Authentication Code) algorithm
	alg jwt.SigningMethod

	// Access and refresh token lifetimes
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	return &TokenManager{
		key:        cfg.SecretKey,
		alg:        jwt.GetSigningMethod(cfg.Alg),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

func (m *TokenManager) AccessTTL() time.Duration {
	return m.accessTTL
}

func (m *TokenManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

// IssueAccess mints a signed access token bound to the user.
// fresh marks tokens issued directly from a password login
func (m *TokenManager) IssueAccess(userID int64, fresh bool) (models.IssuedToken, error) {
	return m.issue(userID, models.TokenTypeAccess, fresh, m.accessTTL)
}

// IssueRefresh mints a signed refresh token. Refresh tokens are never fresh
func (m *TokenManager) IssueRefresh(userID int64) (models.IssuedToken, error) {
	return m.issue(userID, models.TokenTypeRefresh, false, m.refreshTTL)
}

func (m *TokenManager) issue(userID int64, tokenType string, fresh bool, ttl time.Duration) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(
		m.alg,
		TokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			UserID:    userID,
			Fresh:     fresh,
			TokenType: tokenType,
		},
	)

	signed, err := token.SignedString([]byte(m.key))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing %s token. Err: %w", tokenType, err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// Parse verifies signature and expiry and returns the token claims.
// Expired tokens are reported as apperrors.ErrTokenExpired, every other
// verification failure as apperrors.ErrTokenInvalid
func (m *TokenManager) Parse(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}

	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) {
			return []byte(m.key), nil
		},
		jwt.WithValidMethods([]string{m.alg.Alg()}),
	)

	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTokenExpired, err)
	default:
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}
}
