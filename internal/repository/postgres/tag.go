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

type TagRepo struct {
	DB DBTX
}

const createTag = `-- name: CreateTag
INSERT INTO tags (store_id, name)
VALUES ($1, $2)
RETURNING id, name, store_id
`

func (r *TagRepo) CreateTag(ctx context.Context, storeID int64, name string) (models.Tag, error) {
	rows, _ := r.DB.Query(ctx, createTag, storeID, name)
	tag, err := pgx.CollectOneRow(rows, rowToTag)

	if err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation:
			return tag, apperrors.ErrTagAlreadyExists
		case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation:
			return tag, apperrors.ErrStoreNotFound
		}

		return tag, fmt.Errorf("db error: %w", err)
	}

	return tag, nil
}

const getTag = `-- name: GetTag
SELECT id, name, store_id FROM tags
WHERE id = $1
`

func (r *TagRepo) GetTag(ctx context.Context, id int64) (models.Tag, error) {
	rows, _ := r.DB.Query(ctx, getTag, id)
	tag, err := pgx.CollectOneRow(rows, rowToTag)

	switch {
	case err == nil:
		return tag, nil
	case errors.Is(err, pgx.ErrNoRows):
		return tag, apperrors.ErrTagNotFound
	default:
		return tag, fmt.Errorf("db error: %w", err)
	}
}

const listStoreTags = `-- name: ListStoreTags
SELECT id, name, store_id FROM tags
WHERE store_id = $1
ORDER BY id
`

func (r *TagRepo) ListStoreTags(ctx context.Context, storeID int64) ([]models.Tag, error) {
	rows, _ := r.DB.Query(ctx, listStoreTags, storeID)
	tags, err := pgx.CollectRows(rows, rowToTag)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return tags, nil
}

const deleteTag = `-- name: DeleteTag
DELETE FROM tags
WHERE id = $1
`

func (r *TagRepo) DeleteTag(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx, deleteTag, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrTagNotFound
	}

	return nil
}

const linkItem = `-- name: LinkItemTag
INSERT INTO items_tags (item_id, tag_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`

func (r *TagRepo) LinkItem(ctx context.Context, itemID int64, tagID int64) error {
	_, err := r.DB.Exec(ctx, linkItem, itemID, tagID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return apperrors.ErrTagNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

const unlinkItem = `-- name: UnlinkItemTag
DELETE FROM items_tags
WHERE item_id = $1 AND tag_id = $2
`

func (r *TagRepo) UnlinkItem(ctx context.Context, itemID int64, tagID int64) error {
	tag, err := r.DB.Exec(ctx, unlinkItem, itemID, tagID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrTagNotLinked
	}

	return nil
}

const listItemTags = `-- name: ListItemTags
SELECT t.id, t.name, t.store_id
FROM tags t
JOIN items_tags it ON it.tag_id = t.id
WHERE it.item_id = $1
ORDER BY t.id
`

func (r *TagRepo) ListItemTags(ctx context.Context, itemID int64) ([]models.Tag, error) {
	rows, _ := r.DB.Query(ctx, listItemTags, itemID)
	tags, err := pgx.CollectRows(rows, rowToTag)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return tags, nil
}

func rowToTag(row pgx.CollectableRow) (models.Tag, error) {
	var t models.Tag
	err := row.Scan(&t.ID, &t.Name, &t.StoreID)
	return t, err
}
