package handlers

import (
	"errors"
	"net/http"

	"github.com/avolkov/storecatalog/internal/apperrors"
	"github.com/avolkov/storecatalog/internal/handlers/render"
	"github.com/avolkov/storecatalog/internal/logger"
)

func handleGetUser(s userService, l logger.Logger) http.Handler {
	type response struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			render.ServiceError(w, "User not found", http.StatusNotFound)
			return
		}

		user, err := s.GetUserByID(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "User not found", http.StatusNotFound)
			default:
				l.Error("failed to get user", "err", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, response{ID: user.ID, Username: user.Username})
	})
}

func handleDeleteUser(s userService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			render.ServiceError(w, "User not found", http.StatusNotFound)
			return
		}

		err = s.DeleteUser(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "User not found", http.StatusNotFound)
			default:
				l.Error("failed to delete user", "err", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, response{Message: "User deleted"})
	})
}
