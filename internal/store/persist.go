package store

import (
	"context"
	"encoding/json"
	"errors"

	"bookstore/internal/domain"
	applog "bookstore/internal/log"
	"bookstore/internal/metrics"
	"bookstore/internal/storage"
)

// Storage keys of the persisted slices.
const (
	KeyCart     = "bookstore-cart"
	KeyWishlist = "bookstore-wishlist"
	KeyUser     = "bookstore-user"
)

var errNoUserID = errors.New("persisted user has no id")

// EncodeCart serializes the cart as a JSON array of products with an inlined
// quantity.
func EncodeCart(cart []domain.CartLine) (string, error) {
	if cart == nil {
		cart = []domain.CartLine{}
	}
	b, err := json.Marshal(cart)
	return string(b), err
}

func DecodeCart(raw string) ([]domain.CartLine, error) {
	var cart []domain.CartLine
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, err
	}
	if cart == nil {
		cart = []domain.CartLine{}
	}
	return cart, nil
}

func EncodeWishlist(list []domain.Product) (string, error) {
	if list == nil {
		list = []domain.Product{}
	}
	b, err := json.Marshal(list)
	return string(b), err
}

func DecodeWishlist(raw string) ([]domain.Product, error) {
	var list []domain.Product
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Product{}
	}
	return list, nil
}

func EncodeUser(u domain.User) (string, error) {
	b, err := json.Marshal(u)
	return string(b), err
}

// DecodeUser returns nil, nil for a stored JSON null.
func DecodeUser(raw string) (*domain.User, error) {
	var u *domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, err
	}
	if u != nil && u.ID == "" {
		return nil, errNoUserID
	}
	return u, nil
}

// loadPersisted reads the three persisted slices. A key that is missing,
// unreadable or malformed contributes nothing; the error is logged.
func loadPersisted(ctx context.Context, kv storage.KV, m *metrics.Metrics) Persisted {
	var p Persisted

	if raw, ok := readKey(ctx, kv, m, KeyCart); ok {
		if cart, err := DecodeCart(raw); err != nil {
			discard(m, KeyCart, err)
		} else {
			p.Cart = &cart
			m.Rehydrated(KeyCart, "loaded")
		}
	}
	if raw, ok := readKey(ctx, kv, m, KeyWishlist); ok {
		if list, err := DecodeWishlist(raw); err != nil {
			discard(m, KeyWishlist, err)
		} else {
			p.Wishlist = &list
			m.Rehydrated(KeyWishlist, "loaded")
		}
	}
	if raw, ok := readKey(ctx, kv, m, KeyUser); ok {
		switch u, err := DecodeUser(raw); {
		case err != nil:
			discard(m, KeyUser, err)
		case u == nil:
			m.Rehydrated(KeyUser, "absent")
		default:
			p.User = u
			m.Rehydrated(KeyUser, "loaded")
		}
	}
	return p
}

func readKey(ctx context.Context, kv storage.KV, m *metrics.Metrics, key string) (string, bool) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		applog.Warn(nil, "store.rehydrate.read_fail", err, map[string]any{"key": key})
		m.Rehydrated(key, "error")
		return "", false
	}
	if !ok {
		m.Rehydrated(key, "absent")
		return "", false
	}
	return raw, true
}

func discard(m *metrics.Metrics, key string, err error) {
	applog.Warn(nil, "store.rehydrate.discard", err, map[string]any{"key": key})
	m.Rehydrated(key, "invalid")
}
