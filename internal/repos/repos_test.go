package repos_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore/internal/domain"
	"bookstore/internal/repos"
)

func openMemory(t *testing.T) *repos.ProductRepo {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repos.NewProductRepo(db)
}

func TestOpenDBSeedsCatalog(t *testing.T) {
	products, err := openMemory(t).List()
	require.NoError(t, err)
	require.Len(t, products, 10)
	assert.Equal(t, "book-001", products[0].ID)
	assert.Equal(t, "manga-004", products[9].ID)

	counts := map[domain.Category]int{}
	for _, p := range products {
		counts[p.Category]++
	}
	assert.Equal(t, map[domain.Category]int{
		domain.CategoryBook:  3,
		domain.CategoryComic: 3,
		domain.CategoryManga: 4,
	}, counts)
}

func TestOpenDBIsIdempotent(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "shop.db")
	for i := 0; i < 2; i++ {
		db, err := repos.OpenDB(dsn)
		require.NoError(t, err, "open %d", i)
		var n int
		require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM products`))
		assert.Equal(t, 10, n, "open %d", i)
		db.Close()
	}
}

func TestProductRepoGet(t *testing.T) {
	r := openMemory(t)

	p, err := r.Get("book-002")
	require.NoError(t, err)
	assert.Nil(t, p.OriginalPrice, "NULL original_price maps to nil")
	assert.Equal(t, 16.50, p.Price)
	assert.Equal(t, 8, p.Stock)
	assert.True(t, p.IsBestseller)
	assert.NotEmpty(t, p.ISBN)
	assert.Nil(t, p.Images, "empty images array stays nil")

	onSale, err := r.Get("manga-001")
	require.NoError(t, err)
	require.NotNil(t, onSale.OriginalPrice)
	assert.Equal(t, 9.99, *onSale.OriginalPrice)

	_, err = r.Get("missing")
	assert.Error(t, err)
}

func TestProductRepoSkipsInactive(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`UPDATE products SET active = 0 WHERE id = 'comic-001'`)
	require.NoError(t, err)

	products, err := repos.NewProductRepo(db).List()
	require.NoError(t, err)
	assert.Len(t, products, 9)
	for _, p := range products {
		assert.NotEqual(t, "comic-001", p.ID)
	}
}

func TestKVRepo(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	defer db.Close()
	kv := repos.NewKVRepo(db)
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "bookstore-user")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "bookstore-user", `{"id":"u1"}`))
	require.NoError(t, kv.Set(ctx, "bookstore-user", `{"id":"u2"}`))
	v, ok, err := kv.Get(ctx, "bookstore-user")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":"u2"}`, v)

	require.NoError(t, kv.Delete(ctx, "bookstore-user"))
	require.NoError(t, kv.Delete(ctx, "bookstore-user"), "deleting an absent key is not an error")
	_, ok, _ = kv.Get(ctx, "bookstore-user")
	assert.False(t, ok)
}
