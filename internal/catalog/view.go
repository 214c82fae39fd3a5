// Package catalog derives the visible product list from the catalog
// snapshot and the session's search, filters and sort key.
package catalog

import (
	"cmp"
	"slices"
	"strings"

	"bookstore/internal/domain"
)

// Predicate selects products. Predicates are independent of each other, so
// the order they are applied in does not change the result.
type Predicate func(domain.Product) bool

// Matches reports whether term occurs, case-insensitively, in the title,
// author, category or subcategory. An empty term matches everything.
func Matches(term string) Predicate {
	if term == "" {
		return func(domain.Product) bool { return true }
	}
	q := strings.ToLower(term)
	return func(p domain.Product) bool {
		return strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Author), q) ||
			strings.Contains(strings.ToLower(string(p.Category)), q) ||
			strings.Contains(strings.ToLower(p.Subcategory), q)
	}
}

func InCategories(cats []domain.Category) Predicate {
	return func(p domain.Product) bool {
		return len(cats) == 0 || slices.Contains(cats, p.Category)
	}
}

func InPriceRange(r domain.PriceRange) Predicate {
	return func(p domain.Product) bool { return r.Contains(p.Price) }
}

func MinRating(threshold float64) Predicate {
	return func(p domain.Product) bool { return p.Rating >= threshold }
}

func InStock(only bool) Predicate {
	return func(p domain.Product) bool { return !only || p.Stock > 0 }
}

func OnSale(only bool) Predicate {
	return func(p domain.Product) bool { return !only || p.IsOnSale }
}

// FilterPredicates returns one predicate per filter field.
func FilterPredicates(f domain.Filters) []Predicate {
	return []Predicate{
		InCategories(f.Category),
		InPriceRange(f.PriceRange),
		MinRating(f.Rating),
		InStock(f.InStock),
		OnSale(f.OnSale),
	}
}

// Filter keeps the products accepted by every predicate, in catalog order.
func Filter(products []domain.Product, preds ...Predicate) []domain.Product {
	out := make([]domain.Product, 0, len(products))
next:
	for _, p := range products {
		for _, pred := range preds {
			if !pred(p) {
				continue next
			}
		}
		out = append(out, p)
	}
	return out
}

// Sort orders products in place by key. The sort is stable: ties keep
// their catalog order. Unknown keys leave the order unchanged.
func Sort(products []domain.Product, key domain.SortKey) {
	var less func(a, b domain.Product) int
	switch key {
	case domain.SortPriceAsc:
		less = func(a, b domain.Product) int { return cmp.Compare(a.Price, b.Price) }
	case domain.SortPriceDesc:
		less = func(a, b domain.Product) int { return cmp.Compare(b.Price, a.Price) }
	case domain.SortRating:
		less = func(a, b domain.Product) int { return cmp.Compare(b.Rating, a.Rating) }
	case domain.SortNewest:
		less = func(a, b domain.Product) int { return cmp.Compare(boolRank(b.IsNew), boolRank(a.IsNew)) }
	case domain.SortPopular:
		less = func(a, b domain.Product) int { return cmp.Compare(b.ReviewCount, a.ReviewCount) }
	default:
		return
	}
	slices.SortStableFunc(products, less)
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Visible is the product list shown to the user: search, then filters,
// then a stable sort. The input slice is not modified.
func Visible(products []domain.Product, term string, f domain.Filters, key domain.SortKey) []domain.Product {
	preds := append([]Predicate{Matches(term)}, FilterPredicates(f)...)
	out := Filter(products, preds...)
	Sort(out, key)
	return out
}

// StockStatus buckets a stock level the way product cards show it.
func StockStatus(stock int) string {
	switch {
	case stock <= 0:
		return "OUT_OF_STOCK"
	case stock <= 5:
		return "LOW"
	case stock <= 10:
		return "MEDIUM"
	default:
		return "HIGH"
	}
}
