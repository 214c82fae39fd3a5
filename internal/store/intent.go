package store

import "bookstore/internal/domain"

// Intent is a request to change state. The set of intents is closed: only
// the types in this file implement it.
type Intent interface {
	intentName() string
}

// Name returns the stable name of an intent, used in logs and metrics.
func Name(in Intent) string {
	if in == nil {
		return "nil"
	}
	return in.intentName()
}

type SetProducts struct{ Products []domain.Product }

type AddToCart struct{ Product domain.Product }

type RemoveFromCart struct{ ID string }

type UpdateCartQuantity struct {
	ID       string
	Quantity int
}

type ClearCart struct{}

type ToggleCart struct{}

type AddToWishlist struct{ Product domain.Product }

type RemoveFromWishlist struct{ ID string }

// SetUser replaces the session identity; a nil User signs out.
type SetUser struct{ User *domain.User }

type SetSearchTerm struct{ Term string }

type SetFilters struct{ Patch FilterPatch }

type SetSortBy struct{ Key domain.SortKey }

// LoadPersisted merges rehydrated slices into state.
type LoadPersisted struct{ Slices Persisted }

func (SetProducts) intentName() string        { return "set_products" }
func (AddToCart) intentName() string          { return "add_to_cart" }
func (RemoveFromCart) intentName() string     { return "remove_from_cart" }
func (UpdateCartQuantity) intentName() string { return "update_cart_quantity" }
func (ClearCart) intentName() string          { return "clear_cart" }
func (ToggleCart) intentName() string         { return "toggle_cart" }
func (AddToWishlist) intentName() string      { return "add_to_wishlist" }
func (RemoveFromWishlist) intentName() string { return "remove_from_wishlist" }
func (SetUser) intentName() string            { return "set_user" }
func (SetSearchTerm) intentName() string      { return "set_search_term" }
func (SetFilters) intentName() string         { return "set_filters" }
func (SetSortBy) intentName() string          { return "set_sort_by" }
func (LoadPersisted) intentName() string      { return "load_persisted" }
