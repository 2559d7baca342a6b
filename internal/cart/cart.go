package cart

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/obrakomarvelouss/gpower/internal/product"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrOutOfStock      = errors.New("product out of stock")
	ErrInvalidItem     = errors.New("invalid cart item")
	ErrItemNotFound    = errors.New("cart item not found")
)

// CartItem maps to the `cart_items` table. Product is filled in by Items from
// a separate products read and stays nil when the product is gone.
type CartItem struct {
	ID        string           `json:"id"`
	SessionID string           `json:"session_id"`
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Product   *product.Product `json:"product,omitempty"`
}

// TaxRate is the flat sales tax applied to the subtotal.
var TaxRate = decimal.RequireFromString("0.08")

// Totals is the cart summary. Shipping is always free.
type Totals struct {
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	Shipping  decimal.Decimal
	Total     decimal.Decimal
	ItemCount int
}

// MarshalJSON renders money with two decimals.
func (t Totals) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Subtotal  string `json:"subtotal"`
		Tax       string `json:"tax"`
		Shipping  string `json:"shipping"`
		Total     string `json:"total"`
		ItemCount int    `json:"item_count"`
	}{
		Subtotal:  t.Subtotal.StringFixed(2),
		Tax:       t.Tax.StringFixed(2),
		Shipping:  t.Shipping.StringFixed(2),
		Total:     t.Total.StringFixed(2),
		ItemCount: t.ItemCount,
	})
}

// ComputeTotals prices items using their joined product. An item whose
// product is missing counts with price 0.
func ComputeTotals(items []CartItem) Totals {
	subtotal := decimal.Zero
	count := 0
	for _, it := range items {
		count += it.Quantity
		if it.Product == nil {
			continue
		}
		subtotal = subtotal.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	tax := subtotal.Mul(TaxRate)
	return Totals{
		Subtotal:  subtotal,
		Tax:       tax,
		Shipping:  decimal.Zero,
		Total:     subtotal.Add(tax),
		ItemCount: count,
	}
}

// Summary is what the cart page renders.
type Summary struct {
	Items  []CartItem `json:"items"`
	Totals Totals     `json:"totals"`
}
