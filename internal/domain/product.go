package domain

import (
	"time"

	"github.com/google/uuid"
)

// Pricing is one localized price point for a variation. Sale is nil when the
// variation is not discounted in that market.
type Pricing struct {
	CountryCode string   `json:"countryCode,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	Symbol      string   `json:"symbol,omitempty"`
	Original    float64  `json:"original,omitempty"`
	Sale        *float64 `json:"sale,omitempty"`
}

// Variation carries the full per-country pricing set as stored in the
// catalog. Every variation is expected to carry a USD entry as the
// conversion base; a missing USD entry is a data-quality defect the pricing
// resolver degrades around.
type Variation struct {
	SKU        string            `json:"sku"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Stock      int               `json:"stock"`
	Pricing    []Pricing         `json:"pricing"`
}

// ResolvedVariation is a variation narrowed to the single price shown to a
// shopper. Pricing is empty when no localized or USD price could be resolved.
type ResolvedVariation struct {
	SKU        string            `json:"sku"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Stock      int               `json:"stock"`
	Pricing    Pricing           `json:"pricing"`
}

type Product struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Category    string      `json:"category,omitempty"`
	Images      []string    `json:"images,omitempty"`
	Variations  []Variation `json:"variations"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type ProductRepository interface {
	Create(product *Product) error
	GetByID(id uuid.UUID) (*Product, error)
	List(category string, limit, offset int) ([]*Product, int, error)
}
