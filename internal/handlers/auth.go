package handlers

import (
	"errors"
	"net/http"

	"github.com/avolkov/storecatalog/internal/apperrors"
	"github.com/avolkov/storecatalog/internal/handlers/middleware"
	"github.com/avolkov/storecatalog/internal/handlers/render"
	"github.com/avolkov/storecatalog/internal/logger"
)

func handleRegister(s authService, l logger.Logger) http.Handler {
	type request struct {
		Username string `json:"username" validate:"required,min=2,max=50"`
		Password string `json:"password" validate:"required,min=8"`
	}
	type response struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, err := s.Register(r.Context(), data.Username, data.Password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserAlreadyExists):
				render.ServiceError(w, "User already exists", http.StatusConflict)
			default:
				l.Error("failed to register user", "err", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSONWithStatus(w, response{ID: user.ID, Username: user.Username}, http.StatusCreated)
	})
}

func handleLogin(s authService, l logger.Logger) http.Handler {
	type request struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	type response struct {
		AccessToken string `json:"access_token"`

		// Empty when a still alive token was reused: the original refresh
		// token keeps working, a new one is not minted
		RefreshToken string `json:"refresh_token,omitempty"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		pair, err := s.Login(r.Context(), data.Username, data.Password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrInvalidCredentials):
				render.ServiceError(w, "Invalid credentials", http.StatusUnauthorized)
			default:
				l.Error("failed to login user", "err", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, response{
			AccessToken:  pair.Access.Value,
			RefreshToken: pair.Refresh.Value,
		})
	})
}

func handleTokenRefresh(s authService, l logger.Logger) http.Handler {
	type response struct {
		AccessToken string `json:"access_token"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := middleware.BearerToken(r)
		if token == "" {
			render.ErrorWithCode(w, middleware.CodeAuthorizationRequired, "Missing Authorization header", http.StatusUnauthorized)
			return
		}

		access, err := s.Refresh(r.Context(), token)
		if err != nil {
			middleware.RenderAuthError(w, err)
			return
		}

		render.JSON(w, response{AccessToken: access.Value})
	})
}

func handleLogout(s authService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := middleware.BearerToken(r)
		if token == "" {
			render.ErrorWithCode(w, middleware.CodeAuthorizationRequired, "Missing Authorization header", http.StatusUnauthorized)
			return
		}

		if err := s.Logout(r.Context(), token); err != nil {
			middleware.RenderAuthError(w, err)
			return
		}

		render.JSON(w, response{Message: "Successfully logged out"})
	})
}
