package services

import (
	"context"

	"bookstore/internal/domain"
	"bookstore/internal/pricing"
	"bookstore/internal/store"
)

type CartService struct {
	Sessions *SessionService
	Catalog  *CatalogService
}

func NewCartService(sessions *SessionService, c *CatalogService) *CartService {
	return &CartService{Sessions: sessions, Catalog: c}
}

// Add puts one more unit of productID in the cart, up to its stock.
func (s *CartService) Add(ctx context.Context, sessionID, productID string) (store.State, error) {
	p, err := s.Catalog.GetProduct(productID)
	if err != nil {
		return store.State{}, err
	}
	return s.Sessions.Dispatch(ctx, sessionID, store.AddToCart{Product: p})
}

func (s *CartService) SetQuantity(ctx context.Context, sessionID, productID string, qty int) (store.State, error) {
	return s.Sessions.Dispatch(ctx, sessionID, store.UpdateCartQuantity{ID: productID, Quantity: qty})
}

func (s *CartService) Remove(ctx context.Context, sessionID, productID string) (store.State, error) {
	return s.Sessions.Dispatch(ctx, sessionID, store.RemoveFromCart{ID: productID})
}

func (s *CartService) Clear(ctx context.Context, sessionID string) (store.State, error) {
	return s.Sessions.Dispatch(ctx, sessionID, store.ClearCart{})
}

func (s *CartService) Toggle(ctx context.Context, sessionID string) (store.State, error) {
	return s.Sessions.Dispatch(ctx, sessionID, store.ToggleCart{})
}

type CartView struct {
	Items  []domain.CartLine `json:"items"`
	Totals pricing.View      `json:"totals"`
	Open   bool              `json:"isCartOpen"`
}

func ViewOf(st store.State) CartView {
	return CartView{Items: st.Cart, Totals: pricing.Compute(st.Cart).View(), Open: st.IsCartOpen}
}

func (s *CartService) View(ctx context.Context, sessionID string) (CartView, error) {
	st, err := s.Sessions.State(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	return ViewOf(st), nil
}
