package repos

import (
	"database/sql"
	"encoding/json"

	"bookstore/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

type productRow struct {
	ID            string          `db:"id"`
	Title         string          `db:"title"`
	Author        string          `db:"author"`
	Category      string          `db:"category"`
	Subcategory   string          `db:"subcategory"`
	Price         float64         `db:"price"`
	OriginalPrice sql.NullFloat64 `db:"original_price"`
	Image         string          `db:"image"`
	ImagesJSON    string          `db:"images_json"`
	Description   string          `db:"description"`
	Rating        float64         `db:"rating"`
	ReviewCount   int             `db:"review_count"`
	Stock         int             `db:"stock"`
	ISBN          string          `db:"isbn"`
	Pages         int             `db:"pages"`
	Publisher     string          `db:"publisher"`
	Language      string          `db:"language"`
	IsNew         bool            `db:"is_new"`
	IsBestseller  bool            `db:"is_bestseller"`
	IsOnSale      bool            `db:"is_on_sale"`
}

const productColumns = `
    id, title, author, category, subcategory, price, original_price, image,
    COALESCE(images_json,'[]') AS images_json, COALESCE(description,'') AS description,
    rating, review_count, stock, COALESCE(isbn,'') AS isbn, COALESCE(pages,0) AS pages,
    publisher, language, is_new, is_bestseller, is_on_sale`

func (r productRow) toDomain() domain.Product {
	p := domain.Product{
		ID:           r.ID,
		Title:        r.Title,
		Author:       r.Author,
		Category:     domain.Category(r.Category),
		Subcategory:  r.Subcategory,
		Price:        r.Price,
		Image:        r.Image,
		Description:  r.Description,
		Rating:       r.Rating,
		ReviewCount:  r.ReviewCount,
		Stock:        r.Stock,
		ISBN:         r.ISBN,
		Pages:        r.Pages,
		Publisher:    r.Publisher,
		Language:     r.Language,
		IsNew:        r.IsNew,
		IsBestseller: r.IsBestseller,
		IsOnSale:     r.IsOnSale,
	}
	if r.OriginalPrice.Valid {
		op := r.OriginalPrice.Float64
		p.OriginalPrice = &op
	}
	var images []string
	if err := json.Unmarshal([]byte(r.ImagesJSON), &images); err == nil && len(images) > 0 {
		p.Images = images
	}
	return p
}

// List returns every active product in catalog order.
func (r *ProductRepo) List() ([]domain.Product, error) {
	var rows []productRow
	if err := r.db.Select(&rows, `SELECT`+productColumns+`
  FROM products
  WHERE active = 1
  ORDER BY rowid`); err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var row productRow
	if err := r.db.Get(&row, `SELECT`+productColumns+`
  FROM products
  WHERE id = ?`, id); err != nil {
		return domain.Product{}, err
	}
	return row.toDomain(), nil
}
