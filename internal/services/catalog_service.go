package services

import (
	"fmt"

	"gasper/internal/catalog"
	"gasper/internal/domain"
)

// CatalogService pages over the static module and package tables.
type CatalogService struct {
	PageSize int
}

func NewCatalogService() *CatalogService {
	return &CatalogService{PageSize: 12}
}

func (s *CatalogService) Modules() []domain.Product  { return catalog.Modules() }
func (s *CatalogService) Packages() []domain.Product { return catalog.Packages() }

func (s *CatalogService) GetProduct(id string) (domain.Product, error) {
	p, ok := catalog.Get(id)
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %q", ErrUnknownProduct, id)
	}
	return p, nil
}

// Search filters by q and an optional category, then returns one page.
func (s *CatalogService) Search(q, category string, page int) []domain.Product {
	if page < 1 {
		page = 1
	}
	size := s.PageSize
	if size <= 0 {
		size = 12
	}
	var hits []domain.Product
	for _, p := range catalog.Search(q) {
		if category != "" && p.Category != category {
			continue
		}
		hits = append(hits, p)
	}
	start := (page - 1) * size
	if start >= len(hits) {
		return []domain.Product{}
	}
	end := start + size
	if end > len(hits) {
		end = len(hits)
	}
	return hits[start:end]
}
