package store

import "bookstore/internal/domain"

// State is the root of the client state tree. Values handed out by the
// store share memory with it and must be treated as read-only; reductions
// never write to a slice that an earlier State refers to.
type State struct {
	Products   []domain.Product  `json:"products"`
	Cart       []domain.CartLine `json:"cart"`
	Wishlist   []domain.Product  `json:"wishlist"`
	User       *domain.User      `json:"user"`
	SearchTerm string            `json:"searchTerm"`
	Filters    domain.Filters    `json:"filters"`
	SortBy     domain.SortKey    `json:"sortBy"`
	IsCartOpen bool              `json:"isCartOpen"`
}

// InitialState is an empty, anonymous session with default filters.
func InitialState() State {
	return State{
		Products: []domain.Product{},
		Cart:     []domain.CartLine{},
		Wishlist: []domain.Product{},
		Filters:  domain.DefaultFilters(),
		SortBy:   domain.SortPopular,
	}
}

// FilterPatch is a partial Filters; nil fields are left untouched.
type FilterPatch struct {
	Category   *[]domain.Category `json:"category,omitempty"`
	PriceRange *domain.PriceRange `json:"priceRange,omitempty"`
	Rating     *float64           `json:"rating,omitempty"`
	InStock    *bool              `json:"inStock,omitempty"`
	OnSale     *bool              `json:"onSale,omitempty"`
}

// Apply shallow-merges p into f.
func (p FilterPatch) Apply(f domain.Filters) domain.Filters {
	if p.Category != nil {
		f.Category = append([]domain.Category{}, (*p.Category)...)
	}
	if p.PriceRange != nil {
		f.PriceRange = p.PriceRange.Normalize()
	}
	if p.Rating != nil {
		f.Rating = *p.Rating
	}
	if p.InStock != nil {
		f.InStock = *p.InStock
	}
	if p.OnSale != nil {
		f.OnSale = *p.OnSale
	}
	return f
}

func (p FilterPatch) Empty() bool {
	return p.Category == nil && p.PriceRange == nil && p.Rating == nil && p.InStock == nil && p.OnSale == nil
}

// PatchOf returns a patch that sets every field to the value in f.
func PatchOf(f domain.Filters) FilterPatch {
	cats := append([]domain.Category{}, f.Category...)
	pr, rating, inStock, onSale := f.PriceRange, f.Rating, f.InStock, f.OnSale
	return FilterPatch{Category: &cats, PriceRange: &pr, Rating: &rating, InStock: &inStock, OnSale: &onSale}
}

// Persisted holds the slices read back from storage; nil means no value.
type Persisted struct {
	Cart     *[]domain.CartLine
	Wishlist *[]domain.Product
	User     *domain.User
}

func (p Persisted) Empty() bool {
	return p.Cart == nil && p.Wishlist == nil && p.User == nil
}
