package domain

import "math"

type Category string

const (
	CategoryBook  Category = "book"
	CategoryComic Category = "comic"
	CategoryManga Category = "manga"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryBook, CategoryComic, CategoryManga}

func (c Category) Valid() bool {
	switch c {
	case CategoryBook, CategoryComic, CategoryManga:
		return true
	}
	return false
}

// Product is an immutable catalog record. JSON names match the persisted
// storefront layout.
type Product struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Category      Category `json:"category"`
	Subcategory   string   `json:"subcategory"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Image         string   `json:"image"`
	Images        []string `json:"images,omitempty"`
	Description   string   `json:"description,omitempty"`
	Rating        float64  `json:"rating"`
	ReviewCount   int      `json:"reviewCount"`
	Stock         int      `json:"stock"`
	ISBN          string   `json:"isbn,omitempty"`
	Pages         int      `json:"pages,omitempty"`
	Publisher     string   `json:"publisher"`
	Language      string   `json:"language"`
	IsNew         bool     `json:"isNew,omitempty"`
	IsBestseller  bool     `json:"isBestseller,omitempty"`
	IsOnSale      bool     `json:"isOnSale,omitempty"`
}

// DiscountPercent is the rounded percentage saved against OriginalPrice,
// or 0 when the product has no higher original price.
func (p Product) DiscountPercent() int {
	if p.OriginalPrice == nil || *p.OriginalPrice <= 0 || *p.OriginalPrice <= p.Price {
		return 0
	}
	return int(math.Round((*p.OriginalPrice - p.Price) / *p.OriginalPrice * 100))
}

// Savings is OriginalPrice - Price, never negative.
func (p Product) Savings() float64 {
	if p.OriginalPrice == nil || *p.OriginalPrice <= p.Price {
		return 0
	}
	return *p.OriginalPrice - p.Price
}

// CartLine is a product with a quantity; 1 <= Quantity <= Stock.
type CartLine struct {
	Product
	Quantity int `json:"quantity"`
}

// LineTotal returns price x quantity.
func (l CartLine) LineTotal() float64 { return l.Price * float64(l.Quantity) }

type SortKey string

const (
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortRating    SortKey = "rating"
	SortNewest    SortKey = "newest"
	SortPopular   SortKey = "popular"
)

var SortKeys = []SortKey{SortPopular, SortNewest, SortRating, SortPriceAsc, SortPriceDesc}

func (k SortKey) Valid() bool {
	switch k {
	case SortPriceAsc, SortPriceDesc, SortRating, SortNewest, SortPopular:
		return true
	}
	return false
}

// PriceRange is an inclusive interval. It encodes as a two element array.
type PriceRange [2]float64

func (r PriceRange) Min() float64 { return r[0] }
func (r PriceRange) Max() float64 { return r[1] }

// Normalize swaps the bounds when they are given in the wrong order.
func (r PriceRange) Normalize() PriceRange {
	if r[0] > r[1] {
		return PriceRange{r[1], r[0]}
	}
	return r
}

func (r PriceRange) Contains(price float64) bool {
	return price >= r[0] && price <= r[1]
}

type Filters struct {
	Category   []Category `json:"category"`
	PriceRange PriceRange `json:"priceRange"`
	Rating     float64    `json:"rating"`
	InStock    bool       `json:"inStock"`
	OnSale     bool       `json:"onSale"`
}

// DefaultFilters returns the filters a fresh session starts with.
func DefaultFilters() Filters {
	return Filters{
		Category:   []Category{},
		PriceRange: PriceRange{0, 100},
		Rating:     0,
		InStock:    true,
		OnSale:     false,
	}
}

// HasCategory reports whether c is part of the category filter.
func (f Filters) HasCategory(c Category) bool {
	for _, x := range f.Category {
		if x == c {
			return true
		}
	}
	return false
}

type Availability struct {
	Status string `json:"status"` // OUT_OF_STOCK | LOW | MEDIUM | HIGH
	Qty    int    `json:"qty"`
}
