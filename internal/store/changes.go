package store

import "strings"

// Slice is a bit set naming the parts of State that differ between two
// states.
type Slice uint16

const (
	SliceProducts Slice = 1 << iota
	SliceCart
	SliceWishlist
	SliceUser
	SliceSearch
	SliceFilters
	SliceSort
	SliceCartOpen
)

var sliceNames = []struct {
	s    Slice
	name string
}{
	{SliceProducts, "products"},
	{SliceCart, "cart"},
	{SliceWishlist, "wishlist"},
	{SliceUser, "user"},
	{SliceSearch, "search"},
	{SliceFilters, "filters"},
	{SliceSort, "sort"},
	{SliceCartOpen, "cart_open"},
}

func (s Slice) Has(x Slice) bool { return s&x != 0 }

func (s Slice) String() string {
	if s == 0 {
		return "none"
	}
	var parts []string
	for _, n := range sliceNames {
		if s.Has(n.s) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Diff reports which slices changed from prev to next. Slices are compared
// by identity, which is exact because reductions copy on write.
func Diff(prev, next State) Slice {
	var d Slice
	if !same(prev.Products, next.Products) {
		d |= SliceProducts
	}
	if !same(prev.Cart, next.Cart) {
		d |= SliceCart
	}
	if !same(prev.Wishlist, next.Wishlist) {
		d |= SliceWishlist
	}
	if prev.User != next.User {
		d |= SliceUser
	}
	if prev.SearchTerm != next.SearchTerm {
		d |= SliceSearch
	}
	pf, nf := prev.Filters, next.Filters
	if !same(pf.Category, nf.Category) || pf.PriceRange != nf.PriceRange || pf.Rating != nf.Rating ||
		pf.InStock != nf.InStock || pf.OnSale != nf.OnSale {
		d |= SliceFilters
	}
	if prev.SortBy != next.SortBy {
		d |= SliceSort
	}
	if prev.IsCartOpen != next.IsCartOpen {
		d |= SliceCartOpen
	}
	return d
}

func same[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}
