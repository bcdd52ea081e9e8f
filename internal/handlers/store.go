package handlers

import (
	"errors"
	"net/http"

	"github.com/avolkov/storecatalog/internal/apperrors"
	"github.com/avolkov/storecatalog/internal/handlers/render"
	"github.com/avolkov/storecatalog/internal/logger"
	"github.com/avolkov/storecatalog/internal/models"
)

type StoreResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func toStoreResponse(s models.Store) StoreResponse {
	return StoreResponse{ID: s.ID, Name: s.Name}
}

func handleCreateStore(s catalogService, l logger.Logger) http.Handler {
	type request struct {
		Name string `json:"name" validate:"required,min=1,max=80"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		store, err := s.CreateStore(r.Context(), data.Name)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrStoreAlreadyExists):
				render.ServiceError(w, "Store with that name already exists", http.StatusConflict)
			default:
				l.Error("failed to create store", "err", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSONWithStatus(w, toStoreResponse(store), http.StatusCreated)
	})
}

func handleGetStore(s catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			render.ServiceError(w, "Store not found", http.StatusNotFound)
			return
		}

		store, err := s.GetStore(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrStoreNotFound):
				render.ServiceError(w, "Store not found", http.StatusNotFound)
			default:
				l.Error("failed to get store", "err", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, toStoreResponse(store))
	})
}

func handleListStores(s catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stores, err := s.ListStores(r.Context())
		if err != nil {
			l.Error("failed to list stores", "err", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		res := make([]StoreResponse, 0, len(stores))
		for _, store := range stores {
			res = append(res, toStoreResponse(store))
		}

		render.JSON(w, res)
	})
}

func handleDeleteStore(s catalogService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			render.ServiceError(w, "Store not found", http.StatusNotFound)
			return
		}

		err = s.DeleteStore(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrStoreNotFound):
				render.ServiceError(w, "Store not found", http.StatusNotFound)
			default:
				l.Error("failed to delete store", "err", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, response{Message: "Store deleted"})
	})
}
