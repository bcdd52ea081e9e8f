package repository

import (
	"context"

	"github.com/avolkov/storecatalog/internal/models"
)

// Storage groups all repositories backed by the same database handle
type Storage interface {
	User() UserRepo
	Store() StoreRepo
	Item() ItemRepo
	Tag() TagRepo

	// Run fn inside a database transaction
	InTx(ctx context.Context, fn func(Storage) error) error
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with username exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, username string, hashedPassword string) (models.User, error)

	// Get user by it's id or username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID int64) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)

	// Delete user by id
	// If user not found must return apperrors.ErrUserNotFound
	DeleteUser(ctx context.Context, userID int64) error
}

type StoreRepo interface {
	// If store with the same name exists has to return apperrors.ErrStoreAlreadyExists
	CreateStore(ctx context.Context, name string) (models.Store, error)

	// If store not found must return apperrors.ErrStoreNotFound
	GetStore(ctx context.Context, storeID int64) (models.Store, error)
	ListStores(ctx context.Context) ([]models.Store, error)
	DeleteStore(ctx context.Context, storeID int64) error
}

type ItemRepo interface {
	// If item with the same name exists has to return apperrors.ErrItemAlreadyExists
	// If the target store not found must return apperrors.ErrStoreNotFound
	CreateItem(ctx context.Context, item models.Item) (models.Item, error)

	// If item not found must return apperrors.ErrItemNotFound
	GetItem(ctx context.Context, itemID int64) (models.Item, error)
	ListItems(ctx context.Context) ([]models.Item, error)
	UpdateItem(ctx context.Context, itemID int64, item models.Item) (models.Item, error)
	DeleteItem(ctx context.Context, itemID int64) error
}

type TagRepo interface {
	// If tag with the same name exists in the store has to return apperrors.ErrTagAlreadyExists
	// If the target store not found must return apperrors.ErrStoreNotFound
	CreateTag(ctx context.Context, storeID int64, name string) (models.Tag, error)

	// If tag not found must return apperrors.ErrTagNotFound
	GetTag(ctx context.Context, tagID int64) (models.Tag, error)
	ListStoreTags(ctx context.Context, storeID int64) ([]models.Tag, error)
	DeleteTag(ctx context.Context, tagID int64) error

	// Item <-> tag links
	// Linking the same pair twice is a no-op
	LinkItem(ctx context.Context, itemID int64, tagID int64) error
	UnlinkItem(ctx context.Context, itemID int64, tagID int64) error
	ListItemTags(ctx context.Context, itemID int64) ([]models.Tag, error)
}
