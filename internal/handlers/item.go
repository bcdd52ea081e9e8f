package handlers

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/avolkov/storecatalog/internal/apperrors"
	"github.com/avolkov/storecatalog/internal/handlers/render"
	"github.com/avolkov/storecatalog/internal/logger"
	"github.com/avolkov/storecatalog/internal/models"
)

type ItemResponse struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	StoreID int64           `json:"store_id"`
}

func toItemResponse(i models.Item) ItemResponse {
	return ItemResponse{ID: i.ID, Name: i.Name, Price: i.Price, StoreID: i.StoreID}
}

func handleCreateItem(s catalogService, l logger.Logger) http.Handler {
	type request struct {
		Name    string          `json:"name" validate:"required,min=1,max=80"`
		Price   decimal.Decimal `json:"price"`
		StoreID int64           `json:"store_id" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		item, err := s.CreateItem(r.Context(), models.Item{
			Name:    data.Name,
			Price:   data.Price,
			StoreID: data.StoreID,
		})
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrItemAlreadyExists):
				render.ServiceError(w, "Item with that name already exists", http.StatusConflict)
			case errors.Is(err, apperrors.ErrStoreNotFound):
				render.ServiceError(w, "Store not found", http.StatusNotFound)
			default:
				l.Error("failed to create item", "err", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSONWithStatus(w, toItemResponse(item), http.StatusCreated)
	})
}

func handleGetItem(s catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			render.ServiceError(w, "Item not found", http.StatusNotFound)
			return
		}

		item, err := s.GetItem(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrItemNotFound):
				render.ServiceError(w, "Item not found", http.StatusNotFound)
			default:
				l.Error("failed to get item", "err", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, toItemResponse(item))
	})
}

func handleListItems(s catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		items, err := s.ListItems(r.Context())
		if err != nil {
			l.Error("failed to list items", "err", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		res := make([]ItemResponse, 0, len(items))
		for _, item := range items {
			res = append(res, toItemResponse(item))
		}

		render.JSON(w, res)
	})
}

func handleUpdateItem(s catalogService, l logger.Logger) http.Handler {
	type request struct {
		Name  string          `json:"name" validate:"required,min=1,max=80"`
		Price decimal.Decimal `json:"price"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			render.ServiceError(w, "Item not found", http.StatusNotFound)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		item, err := s.UpdateItem(r.Context(), id, models.Item{Name: data.Name, Price: data.Price})
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrItemNotFound):
				render.ServiceError(w, "Item not found", http.StatusNotFound)
			case errors.Is(err, apperrors.ErrItemAlreadyExists):
				render.ServiceError(w, "Item with that name already exists", http.StatusConflict)
			default:
				l.Error("failed to update item", "err", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, toItemResponse(item))
	})
}

func handleDeleteItem(s catalogService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			render.ServiceError(w, "Item not found", http.StatusNotFound)
			return
		}

		err = s.DeleteItem(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrItemNotFound):
				render.ServiceError(w, "Item not found", http.StatusNotFound)
			default:
				l.Error("failed to delete item", "err", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, response{Message: "Item deleted"})
	})
}
