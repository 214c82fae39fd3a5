package services

import (
	"context"

	"bookstore/internal/domain"
	"bookstore/internal/store"
)

type WishlistService struct {
	Sessions *SessionService
	Catalog  *CatalogService
}

func NewWishlistService(sessions *SessionService, c *CatalogService) *WishlistService {
	return &WishlistService{Sessions: sessions, Catalog: c}
}

func (s *WishlistService) Save(ctx context.Context, sessionID, productID string) error {
	p, err := s.Catalog.GetProduct(productID)
	if err != nil {
		return err
	}
	_, err = s.Sessions.Dispatch(ctx, sessionID, store.AddToWishlist{Product: p})
	return err
}

func (s *WishlistService) Unsave(ctx context.Context, sessionID, productID string) error {
	_, err := s.Sessions.Dispatch(ctx, sessionID, store.RemoveFromWishlist{ID: productID})
	return err
}

// Toggle saves productID, or unsaves it when already saved. It reports
// whether the product is saved afterwards.
func (s *WishlistService) Toggle(ctx context.Context, sessionID, productID string) (bool, error) {
	p, err := s.Catalog.GetProduct(productID)
	if err != nil {
		return false, err
	}
	st, err := s.Sessions.Store(ctx, sessionID)
	if err != nil {
		return false, err
	}
	next := st.Update(ctx, func(cur store.State) store.Intent {
		return store.ToggleWishlist(cur, p)
	})
	return store.InWishlist(next, productID), nil
}

func (s *WishlistService) List(ctx context.Context, sessionID string) ([]domain.Product, error) {
	st, err := s.Sessions.State(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return st.Wishlist, nil
}
