package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product maps to the `products` table. JSON tags follow the column names so
// gateway rows decode straight into it. Products are read-only here.
type Product struct {
	ID              string            `json:"id"`
	Slug            string            `json:"slug"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	FullDescription string            `json:"full_description"`
	Price           decimal.Decimal   `json:"price"`
	Category        string            `json:"category"`
	ImageURL        string            `json:"image_url"`
	Specifications  map[string]string `json:"specifications"`
	Stock           int               `json:"stock"`
	Featured        bool              `json:"featured"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// InStock mirrors the storefront's disabled add button.
func (p Product) InStock() bool {
	return p.Stock > 0
}

// Default page sizes of the catalog views.
const (
	FeaturedLimit = 4
	RelatedLimit  = 4
)
