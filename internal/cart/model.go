package cart

import (
	"strings"

	"bestea-be/internal/coupon"
	"bestea-be/internal/pricing"

	"github.com/google/uuid"
)

type Item struct {
	Key         string    `json:"key"`
	ProductID   uuid.UUID `json:"product"`
	ProductName string    `json:"name"`
	Variant     *string   `json:"variant,omitempty"`
	UnitPrice   int64     `json:"price"`
	Quantity    int       `json:"quantity"`
	// Stock is the availability seen when the item was added. Checkout
	// checks live stock again.
	Stock     int   `json:"stock"`
	LineTotal int64 `json:"total"`
}

// State is the full cart, totals included. It is what subscribers receive
// and what gets persisted.
type State struct {
	Items  []Item         `json:"items"`
	Coupon *coupon.Coupon `json:"coupon,omitempty"`
	Totals pricing.Totals `json:"totals"`
}

func (s State) IsEmpty() bool {
	return len(s.Items) == 0
}

func (s State) ItemCount() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

func (s State) clone() State {
	out := State{Totals: s.Totals}
	out.Items = append([]Item{}, s.Items...)
	if s.Coupon != nil {
		c := *s.Coupon
		out.Coupon = &c
	}
	return out
}

// ItemKey identifies a cart line by product and optional variant.
func ItemKey(productID uuid.UUID, variant *string) string {
	if variant == nil || strings.TrimSpace(*variant) == "" {
		return productID.String()
	}
	return productID.String() + "::" + strings.TrimSpace(*variant)
}

type AddItemInput struct {
	ProductID string  `json:"product"`
	Variant   *string `json:"variant,omitempty"`
	Quantity  int     `json:"quantity"`
}
