package services

import (
	"bookstore/internal/catalog"
	"bookstore/internal/domain"
)

type InventoryService struct {
	Catalog *CatalogService
}

func NewInventoryService(c *CatalogService) *InventoryService {
	return &InventoryService{Catalog: c}
}

// CheckAvailability converts stock into OUT_OF_STOCK / LOW / MEDIUM / HIGH.
func (s *InventoryService) CheckAvailability(productID string) (domain.Availability, error) {
	p, err := s.Catalog.GetProduct(productID)
	if err != nil {
		return domain.Availability{}, err
	}
	return domain.Availability{Status: catalog.StockStatus(p.Stock), Qty: p.Stock}, nil
}
