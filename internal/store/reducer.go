package store

import "bookstore/internal/domain"

// Reduce computes the state that follows s after in. It never mutates s:
// any slice it changes is copied first, untouched slices are shared.
func Reduce(s State, in Intent) State {
	switch in := in.(type) {
	case SetProducts:
		s.Products = append([]domain.Product{}, in.Products...)
		return s

	case AddToCart:
		return addToCart(s, in.Product)

	case RemoveFromCart:
		i := cartIndex(s.Cart, in.ID)
		if i < 0 {
			return s
		}
		s.Cart = without(s.Cart, i)
		return s

	case UpdateCartQuantity:
		return updateCartQuantity(s, in.ID, in.Quantity)

	case ClearCart:
		if len(s.Cart) == 0 {
			return s
		}
		s.Cart = []domain.CartLine{}
		return s

	case ToggleCart:
		s.IsCartOpen = !s.IsCartOpen
		return s

	case AddToWishlist:
		if wishlistIndex(s.Wishlist, in.Product.ID) >= 0 {
			return s
		}
		s.Wishlist = appended(s.Wishlist, in.Product)
		return s

	case RemoveFromWishlist:
		i := wishlistIndex(s.Wishlist, in.ID)
		if i < 0 {
			return s
		}
		s.Wishlist = without(s.Wishlist, i)
		return s

	case SetUser:
		s.User = copyUser(in.User)
		return s

	case SetSearchTerm:
		s.SearchTerm = in.Term
		return s

	case SetFilters:
		if in.Patch.Empty() {
			return s
		}
		s.Filters = in.Patch.Apply(s.Filters)
		return s

	case SetSortBy:
		if !in.Key.Valid() {
			return s
		}
		s.SortBy = in.Key
		return s

	case LoadPersisted:
		if in.Slices.Cart != nil {
			s.Cart = sanitizeCart(*in.Slices.Cart)
		}
		if in.Slices.Wishlist != nil {
			s.Wishlist = sanitizeWishlist(*in.Slices.Wishlist)
		}
		if in.Slices.User != nil {
			s.User = copyUser(in.Slices.User)
		}
		return s
	}
	return s
}

func addToCart(s State, p domain.Product) State {
	if i := cartIndex(s.Cart, p.ID); i >= 0 {
		line := s.Cart[i]
		if line.Quantity >= line.Stock {
			return s
		}
		cart := append([]domain.CartLine{}, s.Cart...)
		cart[i].Quantity = line.Quantity + 1
		s.Cart = cart
		return s
	}
	if p.Stock <= 0 {
		return s
	}
	s.Cart = appended(s.Cart, domain.CartLine{Product: p, Quantity: 1})
	return s
}

func updateCartQuantity(s State, id string, qty int) State {
	i := cartIndex(s.Cart, id)
	if i < 0 {
		return s
	}
	line := s.Cart[i]
	q := clamp(qty, 0, line.Stock)
	if q == line.Quantity {
		return s
	}
	if q == 0 {
		s.Cart = without(s.Cart, i)
		return s
	}
	cart := append([]domain.CartLine{}, s.Cart...)
	cart[i].Quantity = q
	s.Cart = cart
	return s
}

// sanitizeCart enforces the cart invariants on data read from storage:
// one line per id, 1 <= quantity <= stock.
func sanitizeCart(lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.ID == "" || cartIndex(out, l.ID) >= 0 {
			continue
		}
		l.Quantity = clamp(l.Quantity, 0, l.Stock)
		if l.Quantity == 0 {
			continue
		}
		out = append(out, l)
	}
	return out
}

func sanitizeWishlist(items []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(items))
	for _, p := range items {
		if p.ID == "" || wishlistIndex(out, p.ID) >= 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}

func cartIndex(cart []domain.CartLine, id string) int {
	for i, l := range cart {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func wishlistIndex(list []domain.Product, id string) int {
	for i, p := range list {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// appended returns a new slice holding xs followed by x.
func appended[T any](xs []T, x T) []T {
	out := make([]T, len(xs), len(xs)+1)
	copy(out, xs)
	return append(out, x)
}

// without returns a new slice holding xs minus the element at i.
func without[T any](xs []T, i int) []T {
	out := make([]T, 0, len(xs)-1)
	out = append(out, xs[:i]...)
	return append(out, xs[i+1:]...)
}

func copyUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
