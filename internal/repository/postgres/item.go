package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avolkov/storecatalog/internal/apperrors"
	"github.com/avolkov/storecatalog/internal/models"
)

type ItemRepo struct {
	DB DBTX
}

const createItem = `-- name: CreateItem
INSERT INTO items (name, price, store_id)
VALUES ($1, $2, $3)
RETURNING id, created_at, name, price, store_id
`

func (r *ItemRepo) CreateItem(ctx context.Context, item models.Item) (models.Item, error) {
	rows, _ := r.DB.Query(ctx, createItem, item.Name, item.Price, item.StoreID)
	created, err := pgx.CollectOneRow(rows, rowToItem)

	if err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation:
			return created, apperrors.ErrItemAlreadyExists
		case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation:
			return created, apperrors.ErrStoreNotFound
		}

		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const getItem = `-- name: GetItem
SELECT id, created_at, name, price, store_id FROM items
WHERE id = $1
`

func (r *ItemRepo) GetItem(ctx context.Context, id int64) (models.Item, error) {
	rows, _ := r.DB.Query(ctx, getItem, id)
	item, err := pgx.CollectOneRow(rows, rowToItem)

	switch {
	case err == nil:
		return item, nil
	case errors.Is(err, pgx.ErrNoRows):
		return item, apperrors.ErrItemNotFound
	default:
		return item, fmt.Errorf("db error: %w", err)
	}
}

const listItems = `-- name: ListItems
SELECT id, created_at, name, price, store_id FROM items
ORDER BY id
`

func (r *ItemRepo) ListItems(ctx context.Context) ([]models.Item, error) {
	rows, _ := r.DB.Query(ctx, listItems)
	items, err := pgx.CollectRows(rows, rowToItem)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return items, nil
}

const updateItem = `-- name: UpdateItem
UPDATE items
SET name = $2, price = $3
WHERE id = $1
RETURNING id, created_at, name, price, store_id
`

func (r *ItemRepo) UpdateItem(ctx context.Context, id int64, item models.Item) (models.Item, error) {
	rows, _ := r.DB.Query(ctx, updateItem, id, item.Name, item.Price)
	updated, err := pgx.CollectOneRow(rows, rowToItem)

	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, pgx.ErrNoRows):
		return updated, apperrors.ErrItemNotFound
	default:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return updated, apperrors.ErrItemAlreadyExists
		}
		return updated, fmt.Errorf("db error: %w", err)
	}
}

const deleteItem = `-- name: DeleteItem
DELETE FROM items
WHERE id = $1
`

func (r *ItemRepo) DeleteItem(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx, deleteItem, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrItemNotFound
	}

	return nil
}

func rowToItem(row pgx.CollectableRow) (models.Item, error) {
	var i models.Item
	err := row.Scan(&i.ID, &i.CreatedAt, &i.Name, &i.Price, &i.StoreID)
	return i, err
}
