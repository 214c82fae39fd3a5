package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore/internal/domain"
)

func reduceAll(s State, ins ...Intent) State {
	for _, in := range ins {
		s = Reduce(s, in)
	}
	return s
}

func TestInitialState(t *testing.T) {
	s := InitialState()
	assert.Empty(t, s.Cart)
	assert.Empty(t, s.Wishlist)
	assert.Nil(t, s.User)
	assert.Equal(t, "", s.SearchTerm)
	assert.Equal(t, domain.SortPopular, s.SortBy)
	assert.False(t, s.IsCartOpen)
	assert.Equal(t, domain.Filters{
		Category:   []domain.Category{},
		PriceRange: domain.PriceRange{0, 100},
		Rating:     0,
		InStock:    true,
		OnSale:     false,
	}, s.Filters)
}

func TestAddToCart(t *testing.T) {
	x := product("x", 10, 3)

	s := Reduce(InitialState(), AddToCart{Product: x})
	require.Len(t, s.Cart, 1)
	assert.Equal(t, 1, s.Cart[0].Quantity)

	s = reduceAll(s, AddToCart{Product: x}, AddToCart{Product: x}, AddToCart{Product: x})
	require.Len(t, s.Cart, 1, "one line per product")
	assert.Equal(t, 3, s.Cart[0].Quantity, "quantity is capped at stock")
}

func TestAddToCart_OutOfStockIsNoOp(t *testing.T) {
	s := InitialState()
	next := Reduce(s, AddToCart{Product: product("gone", 5, 0)})
	assert.Empty(t, next.Cart)
	assert.Equal(t, Slice(0), Diff(s, next))
}

func TestAddToCart_KeepsOrder(t *testing.T) {
	s := reduceAll(InitialState(),
		AddToCart{Product: product("a", 1, 5)},
		AddToCart{Product: product("b", 1, 5)},
		AddToCart{Product: product("a", 1, 5)},
	)
	require.Len(t, s.Cart, 2)
	assert.Equal(t, "a", s.Cart[0].ID)
	assert.Equal(t, 2, s.Cart[0].Quantity)
	assert.Equal(t, "b", s.Cart[1].ID)
}

func TestUpdateCartQuantity(t *testing.T) {
	x := product("x", 10, 5)
	base := Reduce(InitialState(), AddToCart{Product: x})

	cases := []struct {
		name string
		qty  int
		want int // 0 means the line is gone
	}{
		{"within stock", 4, 4},
		{"above stock clamps", 99, 5},
		{"zero removes", 0, 0},
		{"negative removes", -3, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Reduce(base, UpdateCartQuantity{ID: "x", Quantity: tc.qty})
			if tc.want == 0 {
				assert.Empty(t, s.Cart)
				return
			}
			require.Len(t, s.Cart, 1)
			assert.Equal(t, tc.want, s.Cart[0].Quantity)
		})
	}
}

func TestUnknownIDsAreNoOps(t *testing.T) {
	s := reduceAll(InitialState(),
		AddToCart{Product: product("x", 10, 5)},
		AddToWishlist{Product: product("y", 3, 1)},
	)
	for _, in := range []Intent{
		RemoveFromCart{ID: "nope"},
		UpdateCartQuantity{ID: "nope", Quantity: 2},
		RemoveFromWishlist{ID: "nope"},
	} {
		next := Reduce(s, in)
		assert.Equal(t, Slice(0), Diff(s, next), Name(in))
	}
}

func TestReduceDoesNotMutatePrevious(t *testing.T) {
	x := product("x", 10, 5)
	prev := reduceAll(InitialState(), AddToCart{Product: x}, AddToWishlist{Product: x})
	snapshot := append([]domain.CartLine{}, prev.Cart...)

	_ = Reduce(prev, AddToCart{Product: x})
	_ = Reduce(prev, UpdateCartQuantity{ID: "x", Quantity: 4})
	_ = Reduce(prev, RemoveFromCart{ID: "x"})
	_ = Reduce(prev, ClearCart{})
	_ = Reduce(prev, RemoveFromWishlist{ID: "x"})
	_ = Reduce(prev, SetFilters{Patch: FilterPatch{Category: &[]domain.Category{domain.CategoryManga}}})

	assert.Equal(t, snapshot, prev.Cart)
	assert.Len(t, prev.Wishlist, 1)
	assert.Empty(t, prev.Filters.Category)
}

func TestRemoveAndClearCart(t *testing.T) {
	s := reduceAll(InitialState(),
		AddToCart{Product: product("a", 1, 5)},
		AddToCart{Product: product("b", 1, 5)},
	)
	s = Reduce(s, RemoveFromCart{ID: "a"})
	require.Len(t, s.Cart, 1)
	assert.Equal(t, "b", s.Cart[0].ID)

	s = Reduce(s, ClearCart{})
	assert.Empty(t, s.Cart)
	assert.NotNil(t, s.Cart)
}

func TestToggleCart(t *testing.T) {
	s := Reduce(InitialState(), ToggleCart{})
	assert.True(t, s.IsCartOpen)
	s = Reduce(s, ToggleCart{})
	assert.False(t, s.IsCartOpen)
}

func TestWishlistIdempotent(t *testing.T) {
	a, b := product("a", 1, 1), product("b", 2, 0)
	s := reduceAll(InitialState(), AddToWishlist{Product: a}, AddToWishlist{Product: b})
	again := Reduce(s, AddToWishlist{Product: a})
	assert.Equal(t, Slice(0), Diff(s, again))
	require.Len(t, again.Wishlist, 2)
	assert.Equal(t, "a", again.Wishlist[0].ID)
	assert.Equal(t, "b", again.Wishlist[1].ID, "out-of-stock products can be saved")

	s = Reduce(s, RemoveFromWishlist{ID: "a"})
	require.Len(t, s.Wishlist, 1)
	assert.Equal(t, "b", s.Wishlist[0].ID)
}

func TestSetFiltersShallowMerge(t *testing.T) {
	s := Reduce(InitialState(), SetFilters{Patch: FilterPatch{Rating: ptr(4.0)}})
	want := domain.DefaultFilters()
	want.Rating = 4
	assert.Equal(t, want, s.Filters)

	s = Reduce(s, SetFilters{Patch: FilterPatch{
		Category: &[]domain.Category{domain.CategoryManga},
		OnSale:   ptr(true),
	}})
	assert.Equal(t, []domain.Category{domain.CategoryManga}, s.Filters.Category)
	assert.True(t, s.Filters.OnSale)
	assert.Equal(t, 4.0, s.Filters.Rating, "earlier fields survive")
	assert.True(t, s.Filters.InStock)
}

func TestSetFiltersNormalizesPriceRange(t *testing.T) {
	s := Reduce(InitialState(), SetFilters{Patch: FilterPatch{PriceRange: &domain.PriceRange{50, 10}}})
	assert.Equal(t, domain.PriceRange{10, 50}, s.Filters.PriceRange)
}

func TestSetSearchTermVerbatim(t *testing.T) {
	s := Reduce(InitialState(), SetSearchTerm{Term: "  One PIECE "})
	assert.Equal(t, "  One PIECE ", s.SearchTerm)
}

func TestSetSortBy(t *testing.T) {
	s := Reduce(InitialState(), SetSortBy{Key: domain.SortPriceAsc})
	assert.Equal(t, domain.SortPriceAsc, s.SortBy)

	bad := Reduce(s, SetSortBy{Key: "cheapest"})
	assert.Equal(t, domain.SortPriceAsc, bad.SortBy)
}

func TestSetUser(t *testing.T) {
	u := &domain.User{ID: "u1", Name: "Ann", Email: "ann@example.com"}
	s := Reduce(InitialState(), SetUser{User: u})
	require.NotNil(t, s.User)
	assert.Equal(t, *u, *s.User)

	u.Name = "changed"
	assert.Equal(t, "Ann", s.User.Name, "state keeps its own copy")

	s = Reduce(s, SetUser{User: nil})
	assert.Nil(t, s.User)
}

func TestLoadPersistedMergesOnlyPresentSlices(t *testing.T) {
	x := product("x", 10, 2)
	s := Reduce(InitialState(), AddToWishlist{Product: product("w", 1, 1)})

	cart := []domain.CartLine{
		{Product: x, Quantity: 7},                  // clamped to stock
		{Product: x, Quantity: 1},                  // duplicate id
		{Product: product("z", 1, 4), Quantity: 0}, // dropped
	}
	s = Reduce(s, LoadPersisted{Slices: Persisted{Cart: &cart}})

	require.Len(t, s.Cart, 1)
	assert.Equal(t, 2, s.Cart[0].Quantity)
	assert.Len(t, s.Wishlist, 1, "absent slices are left alone")
	assert.Nil(t, s.User)
}

func TestCartQuantityScenario(t *testing.T) {
	x := product("x", 10, 3)
	s := reduceAll(InitialState(),
		AddToCart{Product: x},
		AddToCart{Product: x},
	)
	assert.Equal(t, 2, s.Cart[0].Quantity)
	s = Reduce(s, UpdateCartQuantity{ID: "x", Quantity: 10})
	assert.Equal(t, 3, s.Cart[0].Quantity)
	s = Reduce(s, UpdateCartQuantity{ID: "x", Quantity: 0})
	assert.Empty(t, s.Cart)
}

func TestDiff(t *testing.T) {
	s := InitialState()
	assert.Equal(t, SliceCart, Diff(s, Reduce(s, AddToCart{Product: product("x", 1, 1)})))
	assert.Equal(t, SliceCartOpen, Diff(s, Reduce(s, ToggleCart{})))
	assert.Equal(t, SliceSearch, Diff(s, Reduce(s, SetSearchTerm{Term: "a"})))
	assert.Equal(t, Slice(0), Diff(s, Reduce(s, SetSearchTerm{Term: ""})))
	assert.Equal(t, Slice(0), Diff(s, Reduce(s, SetFilters{})))
	assert.Equal(t, "cart|user", (SliceCart | SliceUser).String())
	assert.Equal(t, "none", Slice(0).String())
}
