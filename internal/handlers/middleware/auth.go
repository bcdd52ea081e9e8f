package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/avolkov/storecatalog/internal/apperrors"
	"github.com/avolkov/storecatalog/internal/handlers/render"
	"github.com/avolkov/storecatalog/internal/handlers/userctx"
	"github.com/avolkov/storecatalog/internal/models"
	"github.com/avolkov/storecatalog/internal/service/auth"
	"github.com/avolkov/storecatalog/internal/tokencache"
)

// Stable machine codes for auth failures. Clients match on these
const (
	CodeAuthorizationRequired = "authorization_required"
	CodeInvalidToken          = "invalid_token"
	CodeTokenExpired          = "token_expired"
	CodeTokenRevoked          = "token_revoked"
	CodeFreshTokenRequired    = "fresh_token_required"
	CodeWrongTokenType        = "wrong_token_type"
	CodeAdminRequired         = "admin_required"
	CodeInternalError         = "internal_error"
)

type tokenValidator interface {
	Validate(ctx context.Context, token string, opts auth.ValidateOptions) (models.Claims, error)
}

// BearerToken extracts the token from the Authorization header.
// Returns empty string if the header is missing or not a bearer scheme
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}

// Auth requires a valid access token and stores the claims in the context
func Auth(v tokenValidator) func(http.Handler) http.Handler {
	return requireToken(v, auth.ValidateOptions{})
}

// AuthFresh requires an access token obtained directly by password login,
// not through the refresh flow
func AuthFresh(v tokenValidator) func(http.Handler) http.Handler {
	return requireToken(v, auth.ValidateOptions{RequireFresh: true})
}

// AuthAdmin requires a valid access token whose user carries the admin claim
func AuthAdmin(v tokenValidator) func(http.Handler) http.Handler {
	validate := requireToken(v, auth.ValidateOptions{})

	return func(next http.Handler) http.Handler {
		return validate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := userctx.FromContext(r.Context())
			if !ok || !claims.IsAdmin {
				render.ErrorWithCode(w, CodeAdminRequired, "Admin privilege required", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

func requireToken(v tokenValidator, opts auth.ValidateOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				render.ErrorWithCode(w, CodeAuthorizationRequired, "Missing Authorization header", http.StatusUnauthorized)
				return
			}

			claims, err := v.Validate(r.Context(), token, opts)
			if err != nil {
				RenderAuthError(w, err)
				return
			}

			ctx := userctx.New(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RenderAuthError maps validation sentinels to machine codes.
// A revoked token and a cache outage must never look alike: the first is 401,
// the second is 500 so the client retries instead of re-logging in.
// Shared with the token handlers that read bearer tokens themselves
func RenderAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrTokenExpired):
		render.ErrorWithCode(w, CodeTokenExpired, "Token has expired", http.StatusUnauthorized)
	case errors.Is(err, apperrors.ErrTokenRevoked):
		render.ErrorWithCode(w, CodeTokenRevoked, "Token has been revoked", http.StatusUnauthorized)
	case errors.Is(err, apperrors.ErrFreshTokenRequired):
		render.ErrorWithCode(w, CodeFreshTokenRequired, "Fresh token required", http.StatusUnauthorized)
	case errors.Is(err, apperrors.ErrWrongTokenType):
		render.ErrorWithCode(w, CodeWrongTokenType, "Wrong token type", http.StatusUnauthorized)
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrUserNotFound):
		render.ErrorWithCode(w, CodeInvalidToken, "Token is invalid", http.StatusUnauthorized)
	case errors.Is(err, tokencache.ErrCacheUnavailable):
		render.ErrorWithCode(w, CodeInternalError, "Internal server error", http.StatusInternalServerError)
	default:
		render.ErrorWithCode(w, CodeInternalError, "Internal server error", http.StatusInternalServerError)
	}
}
