package coupon

import (
	"strings"

	"bestea-be/internal/pricing"
)

type Type string

const (
	TypePercentage Type = "percentage"
	TypeFixed      Type = "fixed"
)

func (t Type) Valid() bool {
	return t == TypePercentage || t == TypeFixed
}

type Coupon struct {
	Code     string `json:"code"`
	Type     Type   `json:"discountType"`
	Value    int64  `json:"discountValue"`
	MinOrder int64  `json:"minOrderAmount"`
	Active   bool   `json:"isActive"`
}

// Discount is the amount this coupon takes off subtotal. It is zero while
// the subtotal is below the minimum order and never exceeds the subtotal.
func (c Coupon) Discount(subtotal int64) int64 {
	if subtotal <= 0 || subtotal < c.MinOrder {
		return 0
	}

	var amount int64
	switch c.Type {
	case TypePercentage:
		amount = pricing.Percent(subtotal, c.Value)
	case TypeFixed:
		amount = c.Value
	}
	return pricing.ClampDiscount(amount, subtotal)
}

// Result is an accepted coupon together with the discount it grants.
type Result struct {
	Coupon   Coupon `json:"coupon"`
	Discount int64  `json:"discount"`
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
