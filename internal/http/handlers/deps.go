package handlers

import (
	"bookstore/internal/services"
)

type Deps struct {
	CatalogHandler   *CatalogHandler
	CartHandler      *CartHandler
	WishlistHandler  *WishlistHandler
	StateHandler     *StateHandler
	InventoryHandler *InventoryHandler
}

func NewDeps(sessions *services.SessionService, catalogSvc *services.CatalogService) *Deps {
	cartSvc := services.NewCartService(sessions, catalogSvc)
	wishSvc := services.NewWishlistService(sessions, catalogSvc)
	invSvc := services.NewInventoryService(catalogSvc)

	return &Deps{
		CatalogHandler:   &CatalogHandler{Sessions: sessions},
		CartHandler:      &CartHandler{Cart: cartSvc},
		WishlistHandler:  &WishlistHandler{Wish: wishSvc},
		StateHandler:     &StateHandler{Sessions: sessions},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
	}
}
