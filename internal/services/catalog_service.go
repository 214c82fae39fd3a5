package services

import (
	"errors"
	"sync"

	"bookstore/internal/domain"
	"bookstore/internal/repos"
)

var ErrUnknownProduct = errors.New("unknown product")

// CatalogService holds the catalog snapshot read once at start.
type CatalogService struct {
	Prods *repos.ProductRepo

	mu       sync.RWMutex
	products []domain.Product
	byID     map[string]int
}

func NewCatalogService(prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Prods: prods}
}

// Load reads the catalog from the repository.
func (s *CatalogService) Load() error {
	products, err := s.Prods.List()
	if err != nil {
		return err
	}
	s.Set(products)
	return nil
}

// Set replaces the snapshot; used by Load and by tests.
func (s *CatalogService) Set(products []domain.Product) {
	byID := make(map[string]int, len(products))
	for i, p := range products {
		byID[p.ID] = i
	}
	s.mu.Lock()
	s.products = append([]domain.Product{}, products...)
	s.byID = byID
	s.mu.Unlock()
}

// Products returns the snapshot. Callers must not modify it.
func (s *CatalogService) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products
}

func (s *CatalogService) GetProduct(id string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return domain.Product{}, ErrUnknownProduct
	}
	return s.products[i], nil
}
