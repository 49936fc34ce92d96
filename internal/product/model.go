package product

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Variant struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Stock     int       `json:"stock"`
	IsDefault bool      `json:"isDefault"`
}

type Product struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   *string   `json:"description,omitempty"`
	Price         int64     `json:"price"`
	Stock         int       `json:"stock"`
	Active        bool      `json:"isActive"`
	PurchaseCount int       `json:"purchaseCount"`
	Variants      []Variant `json:"variants"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// DefaultVariant returns the variant flagged default, falling back to the
// first one. It is nil for products sold without variants.
func (p *Product) DefaultVariant() *Variant {
	if !p.HasVariants() {
		return nil
	}
	for i := range p.Variants {
		if p.Variants[i].IsDefault {
			return &p.Variants[i]
		}
	}
	return &p.Variants[0]
}

// ResolveVariant maps an optional variant name onto the product. An empty
// name selects the default variant.
func (p *Product) ResolveVariant(name string) (*Variant, error) {
	name = strings.TrimSpace(name)

	if !p.HasVariants() {
		if name != "" {
			return nil, ErrVariantNotFound
		}
		return nil, nil
	}

	if name == "" {
		return p.DefaultVariant(), nil
	}

	for i := range p.Variants {
		if strings.EqualFold(p.Variants[i].Name, name) {
			return &p.Variants[i], nil
		}
	}
	return nil, ErrVariantNotFound
}

func (p *Product) UnitPrice(v *Variant) int64 {
	if v != nil {
		return v.Price
	}
	return p.Price
}

func (p *Product) Available(v *Variant) int {
	if v != nil {
		return v.Stock
	}
	return p.Stock
}

type ListOptions struct {
	Page            int
	Limit           int
	IncludeInactive bool
	Search          string
}

type ListResult struct {
	Products   []Product `json:"products"`
	TotalCount int       `json:"totalCount"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
}
