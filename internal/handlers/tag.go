package handlers

import (
	"errors"
	"net/http"

	"github.com/avolkov/storecatalog/internal/apperrors"
	"github.com/avolkov/storecatalog/internal/handlers/render"
	"github.com/avolkov/storecatalog/internal/logger"
	"github.com/avolkov/storecatalog/internal/models"
)

type TagResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	StoreID int64  `json:"store_id"`
}

func toTagResponse(t models.Tag) TagResponse {
	return TagResponse{ID: t.ID, Name: t.Name, StoreID: t.StoreID}
}

func handleCreateTag(s catalogService, l logger.Logger) http.Handler {
	type request struct {
		Name string `json:"name" validate:"required,min=1,max=80"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		storeID, err := pathID(r, "id")
		if err != nil {
			render.ServiceError(w, "Store not found", http.StatusNotFound)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		tag, err := s.CreateTag(r.Context(), storeID, data.Name)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrStoreNotFound):
				render.ServiceError(w, "Store not found", http.StatusNotFound)
			case errors.Is(err, apperrors.ErrTagAlreadyExists):
				render.ServiceError(w, "Tag with that name already exists in the store", http.StatusConflict)
			default:
				l.Error("failed to create tag", "err", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSONWithStatus(w, toTagResponse(tag), http.StatusCreated)
	})
}

func handleGetTag(s catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			render.ServiceError(w, "Tag not found", http.StatusNotFound)
			return
		}

		tag, err := s.GetTag(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrTagNotFound):
				render.ServiceError(w, "Tag not found", http.StatusNotFound)
			default:
				l.Error("failed to get tag", "err", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, toTagResponse(tag))
	})
}

func handleListStoreTags(s catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		storeID, err := pathID(r, "id")
		if err != nil {
			render.ServiceError(w, "Store not found", http.StatusNotFound)
			return
		}

		tags, err := s.ListStoreTags(r.Context(), storeID)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrStoreNotFound):
				render.ServiceError(w, "Store not found", http.StatusNotFound)
			default:
				l.Error("failed to list store tags", "err", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		res := make([]TagResponse, 0, len(tags))
		for _, tag := range tags {
			res = append(res, toTagResponse(tag))
		}

		render.JSON(w, res)
	})
}

func handleDeleteTag(s catalogService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			render.ServiceError(w, "Tag not found", http.StatusNotFound)
			return
		}

		err = s.DeleteTag(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrTagNotFound):
				render.ServiceError(w, "Tag not found", http.StatusNotFound)
			default:
				l.Error("failed to delete tag", "err", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, response{Message: "Tag deleted"})
	})
}

func handleLinkItemTag(s catalogService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		itemID, err := pathID(r, "item_id")
		if err != nil {
			render.ServiceError(w, "Item not found", http.StatusNotFound)
			return
		}
		tagID, err := pathID(r, "tag_id")
		if err != nil {
			render.ServiceError(w, "Tag not found", http.StatusNotFound)
			return
		}

		err = s.LinkItemTag(r.Context(), itemID, tagID)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrItemNotFound):
				render.ServiceError(w, "Item not found", http.StatusNotFound)
			case errors.Is(err, apperrors.ErrTagNotFound):
				render.ServiceError(w, "Tag not found", http.StatusNotFound)
			case errors.Is(err, apperrors.ErrCrossStoreLink):
				render.ServiceError(w, "Item and tag belong to different stores", http.StatusBadRequest)
			default:
				l.Error("failed to link tag to item", "err", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSONWithStatus(w, response{Message: "Tag linked to item"}, http.StatusCreated)
	})
}

func handleUnlinkItemTag(s catalogService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		itemID, err := pathID(r, "item_id")
		if err != nil {
			render.ServiceError(w, "Item not found", http.StatusNotFound)
			return
		}
		tagID, err := pathID(r, "tag_id")
		if err != nil {
			render.ServiceError(w, "Tag not found", http.StatusNotFound)
			return
		}

		err = s.UnlinkItemTag(r.Context(), itemID, tagID)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrTagNotLinked):
				render.ServiceError(w, "Tag is not linked to the item", http.StatusNotFound)
			default:
				l.Error("failed to unlink tag from item", "err", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, response{Message: "Tag unlinked from item"})
	})
}
