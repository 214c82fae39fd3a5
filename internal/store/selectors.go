package store

import "bookstore/internal/domain"

// CartItemCount is the sum of quantities across cart lines.
func CartItemCount(s State) int {
	n := 0
	for _, l := range s.Cart {
		n += l.Quantity
	}
	return n
}

func WishlistCount(s State) int { return len(s.Wishlist) }

func InCart(s State, id string) bool { return cartIndex(s.Cart, id) >= 0 }

func InWishlist(s State, id string) bool { return wishlistIndex(s.Wishlist, id) >= 0 }

// CartLineFor returns the cart line for product id.
func CartLineFor(s State, id string) (domain.CartLine, bool) {
	if i := cartIndex(s.Cart, id); i >= 0 {
		return s.Cart[i], true
	}
	return domain.CartLine{}, false
}

// FindProduct looks id up in the catalog snapshot.
func FindProduct(s State, id string) (domain.Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// ToggleWishlist returns the intent that flips p's wishlist membership.
func ToggleWishlist(s State, p domain.Product) Intent {
	if InWishlist(s, p.ID) {
		return RemoveFromWishlist{ID: p.ID}
	}
	return AddToWishlist{Product: p}
}

// ToggleCategory returns the intent that adds c to the category filter, or
// removes it when already selected.
func ToggleCategory(s State, c domain.Category) Intent {
	cats := make([]domain.Category, 0, len(s.Filters.Category)+1)
	found := false
	for _, x := range s.Filters.Category {
		if x == c {
			found = true
			continue
		}
		cats = append(cats, x)
	}
	if !found {
		cats = append(cats, c)
	}
	return SetFilters{Patch: FilterPatch{Category: &cats}}
}

// ClearFilters returns the intents that restore default filters and an
// empty search.
func ClearFilters() []Intent {
	return []Intent{
		SetFilters{Patch: PatchOf(domain.DefaultFilters())},
		SetSearchTerm{Term: ""},
	}
}
