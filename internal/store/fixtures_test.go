package store

import "bookstore/internal/domain"

func ptr[T any](v T) *T { return &v }

func product(id string, price float64, stock int) domain.Product {
	return domain.Product{
		ID:          id,
		Title:       "Title " + id,
		Author:      "Author",
		Category:    domain.CategoryBook,
		Subcategory: "Fiction",
		Price:       price,
		Rating:      4,
		ReviewCount: 10,
		Stock:       stock,
	}
}
