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

type StoreRepo struct {
	DB DBTX
}

const createStore = `-- name: CreateStore
INSERT INTO stores (name)
VALUES ($1)
RETURNING id, created_at, name
`

func (r *StoreRepo) CreateStore(ctx context.Context, name string) (models.Store, error) {
	rows, _ := r.DB.Query(ctx, createStore, name)
	store, err := pgx.CollectOneRow(rows, rowToStore)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return store, apperrors.ErrStoreAlreadyExists
		}

		return store, fmt.Errorf("db error: %w", err)
	}

	return store, nil
}

const getStore = `-- name: GetStore
SELECT id, created_at, name FROM stores
WHERE id = $1
`

func (r *StoreRepo) GetStore(ctx context.Context, id int64) (models.Store, error) {
	rows, _ := r.DB.Query(ctx, getStore, id)
	store, err := pgx.CollectOneRow(rows, rowToStore)

	switch {
	case err == nil:
		return store, nil
	case errors.Is(err, pgx.ErrNoRows):
		return store, apperrors.ErrStoreNotFound
	default:
		return store, fmt.Errorf("db error: %w", err)
	}
}

const listStores = `-- name: ListStores
SELECT id, created_at, name FROM stores
ORDER BY id
`

func (r *StoreRepo) ListStores(ctx context.Context) ([]models.Store, error) {
	rows, _ := r.DB.Query(ctx, listStores)
	stores, err := pgx.CollectRows(rows, rowToStore)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return stores, nil
}

const deleteStore = `-- name: DeleteStore
DELETE FROM stores
WHERE id = $1
`

func (r *StoreRepo) DeleteStore(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx, deleteStore, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrStoreNotFound
	}

	return nil
}

func rowToStore(row pgx.CollectableRow) (models.Store, error) {
	var s models.Store
	err := row.Scan(&s.ID, &s.CreatedAt, &s.Name)
	return s, err
}
