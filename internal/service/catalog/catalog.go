// Package catalog holds the CRUD orchestration for stores, items and tags.
// Interesting invariants live in the repositories (unique names, FK checks),
// this layer keeps handlers free of persistence details
package catalog

import (
	"context"
	"fmt"

	"github.com/avolkov/storecatalog/internal/apperrors"
	"github.com/avolkov/storecatalog/internal/models"
	"github.com/avolkov/storecatalog/internal/repository"
)

type Service struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *Service {
	return &Service{storage: storage}
}

func (s *Service) CreateStore(ctx context.Context, name string) (models.Store, error) {
	return s.storage.Store().CreateStore(ctx, name)
}

func (s *Service) GetStore(ctx context.Context, storeID int64) (models.Store, error) {
	return s.storage.Store().GetStore(ctx, storeID)
}

func (s *Service) ListStores(ctx context.Context) ([]models.Store, error) {
	return s.storage.Store().ListStores(ctx)
}

func (s *Service) DeleteStore(ctx context.Context, storeID int64) error {
	return s.storage.Store().DeleteStore(ctx, storeID)
}

func (s *Service) CreateItem(ctx context.Context, item models.Item) (models.Item, error) {
	return s.storage.Item().CreateItem(ctx, item)
}

func (s *Service) GetItem(ctx context.Context, itemID int64) (models.Item, error) {
	return s.storage.Item().GetItem(ctx, itemID)
}

func (s *Service) ListItems(ctx context.Context) ([]models.Item, error) {
	return s.storage.Item().ListItems(ctx)
}

func (s *Service) UpdateItem(ctx context.Context, itemID int64, item models.Item) (models.Item, error) {
	return s.storage.Item().UpdateItem(ctx, itemID, item)
}

func (s *Service) DeleteItem(ctx context.Context, itemID int64) error {
	return s.storage.Item().DeleteItem(ctx, itemID)
}

// CreateTag checks the store exists first so a missing store reads as
// "store not found" and not as an FK violation surprise
func (s *Service) CreateTag(ctx context.Context, storeID int64, name string) (models.Tag, error) {
	var tag models.Tag

	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		if _, err := st.Store().GetStore(ctx, storeID); err != nil {
			return err
		}

		created, err := st.Tag().CreateTag(ctx, storeID, name)
		if err != nil {
			return err
		}

		tag = created
		return nil
	})
	if err != nil {
		return tag, err
	}

	return tag, nil
}

func (s *Service) GetTag(ctx context.Context, tagID int64) (models.Tag, error) {
	return s.storage.Tag().GetTag(ctx, tagID)
}

func (s *Service) ListStoreTags(ctx context.Context, storeID int64) ([]models.Tag, error) {
	if _, err := s.storage.Store().GetStore(ctx, storeID); err != nil {
		return nil, err
	}

	return s.storage.Tag().ListStoreTags(ctx, storeID)
}

func (s *Service) DeleteTag(ctx context.Context, tagID int64) error {
	return s.storage.Tag().DeleteTag(ctx, tagID)
}

// LinkItemTag links an item to a tag of the same store.
// Cross store links are rejected: a tag describes items of its own store only
func (s *Service) LinkItemTag(ctx context.Context, itemID int64, tagID int64) error {
	return s.storage.InTx(ctx, func(st repository.Storage) error {
		item, err := st.Item().GetItem(ctx, itemID)
		if err != nil {
			return err
		}

		tag, err := st.Tag().GetTag(ctx, tagID)
		if err != nil {
			return err
		}

		if item.StoreID != tag.StoreID {
			return fmt.Errorf("tag belongs to another store: %w", apperrors.ErrCrossStoreLink)
		}

		return st.Tag().LinkItem(ctx, itemID, tagID)
	})
}

func (s *Service) UnlinkItemTag(ctx context.Context, itemID int64, tagID int64) error {
	return s.storage.Tag().UnlinkItem(ctx, itemID, tagID)
}

func (s *Service) ListItemTags(ctx context.Context, itemID int64) ([]models.Tag, error) {
	if _, err := s.storage.Item().GetItem(ctx, itemID); err != nil {
		return nil, err
	}

	return s.storage.Tag().ListItemTags(ctx, itemID)
}
