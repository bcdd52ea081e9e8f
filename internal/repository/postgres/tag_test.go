package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/storecatalog/internal/apperrors"
	"github.com/avolkov/storecatalog/internal/models"
	"github.com/avolkov/storecatalog/internal/testutil"
)

func Test_TagRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Store with one item, shared fixture for link tests
	setup := func(t *testing.T, tx pgx.Tx) (models.Store, models.Item) {
		t.Helper()

		store, err := (&StoreRepo{DB: tx}).CreateStore(t.Context(), "grocery")
		require.NoError(t, err)

		item, err := (&ItemRepo{DB: tx}).CreateItem(t.Context(), models.Item{
			Name:    "apple",
			Price:   decimal.RequireFromString("1.25"),
			StoreID: store.ID,
		})
		require.NoError(t, err)

		return store, item
	}

	t.Run("create tag ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			store, _ := setup(t, tx)
			r := TagRepo{DB: tx}

			tag, err := r.CreateTag(t.Context(), store.ID, "fruit")

			require.NoError(t, err)
			assert.Equal(t, "fruit", tag.Name)
			assert.Equal(t, store.ID, tag.StoreID)
		})
	})

	t.Run("duplicate tag name in one store", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			store, _ := setup(t, tx)
			r := TagRepo{DB: tx}

			_, err := r.CreateTag(t.Context(), store.ID, "fruit")
			require.NoError(t, err)

			_, err = r.CreateTag(t.Context(), store.ID, "fruit")
			assert.ErrorIs(t, err, apperrors.ErrTagAlreadyExists)
		})
	})

	t.Run("same tag name allowed in different stores", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			store, _ := setup(t, tx)
			other, err := (&StoreRepo{DB: tx}).CreateStore(t.Context(), "hardware")
			require.NoError(t, err)
			r := TagRepo{DB: tx}

			_, err = r.CreateTag(t.Context(), store.ID, "sale")
			require.NoError(t, err)

			_, err = r.CreateTag(t.Context(), other.ID, "sale")
			assert.NoError(t, err, "tag names are unique per store, not globally")
		})
	})

	t.Run("create tag in missing store", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := TagRepo{DB: tx}

			_, err := r.CreateTag(t.Context(), 404404, "fruit")

			assert.ErrorIs(t, err, apperrors.ErrStoreNotFound)
		})
	})

	t.Run("link and list item tags", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			store, item := setup(t, tx)
			r := TagRepo{DB: tx}
			tag, err := r.CreateTag(t.Context(), store.ID, "fruit")
			require.NoError(t, err)

			require.NoError(t, r.LinkItem(t.Context(), item.ID, tag.ID))

			// Linking the same pair twice is a no-op
			require.NoError(t, r.LinkItem(t.Context(), item.ID, tag.ID))

			tags, err := r.ListItemTags(t.Context(), item.ID)
			require.NoError(t, err)
			require.Len(t, tags, 1)
			assert.Equal(t, tag.ID, tags[0].ID)
		})
	})

	t.Run("unlink", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			store, item := setup(t, tx)
			r := TagRepo{DB: tx}
			tag, err := r.CreateTag(t.Context(), store.ID, "fruit")
			require.NoError(t, err)
			require.NoError(t, r.LinkItem(t.Context(), item.ID, tag.ID))

			require.NoError(t, r.UnlinkItem(t.Context(), item.ID, tag.ID))

			err = r.UnlinkItem(t.Context(), item.ID, tag.ID)
			assert.ErrorIs(t, err, apperrors.ErrTagNotLinked, "second unlink should report missing link")
		})
	})

	t.Run("deleting item drops its links", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			store, item := setup(t, tx)
			r := TagRepo{DB: tx}
			tag, err := r.CreateTag(t.Context(), store.ID, "fruit")
			require.NoError(t, err)
			require.NoError(t, r.LinkItem(t.Context(), item.ID, tag.ID))

			require.NoError(t, (&ItemRepo{DB: tx}).DeleteItem(t.Context(), item.ID))

			err = r.UnlinkItem(t.Context(), item.ID, tag.ID)
			assert.ErrorIs(t, err, apperrors.ErrTagNotLinked, "cascade should have removed the link")
		})
	})

	t.Run("list store tags", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			store, _ := setup(t, tx)
			r := TagRepo{DB: tx}
			_, err := r.CreateTag(t.Context(), store.ID, "fruit")
			require.NoError(t, err)
			_, err = r.CreateTag(t.Context(), store.ID, "sale")
			require.NoError(t, err)

			tags, err := r.ListStoreTags(t.Context(), store.ID)

			require.NoError(t, err)
			require.Len(t, tags, 2)
			assert.Equal(t, "fruit", tags[0].Name, "tags should be ordered by id")
		})
	})

	t.Run("delete tag", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			store, _ := setup(t, tx)
			r := TagRepo{DB: tx}
			tag, err := r.CreateTag(t.Context(), store.ID, "fruit")
			require.NoError(t, err)

			require.NoError(t, r.DeleteTag(t.Context(), tag.ID))

			err = r.DeleteTag(t.Context(), tag.ID)
			assert.ErrorIs(t, err, apperrors.ErrTagNotFound)
		})
	})
}
