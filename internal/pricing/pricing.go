package pricing

import (
	"github.com/shopspring/decimal"
)

// Method names the payment method a quote is computed for. Only cash on
// delivery changes the price.
const MethodCOD = "cod"

// MaxLineQuantity caps the units on one cart or order line, which keeps
// price × quantity far from int64 overflow.
const MaxLineQuantity = 100

type Policy struct {
	FreeShippingThreshold int64
	ShippingFee           int64
	TaxRate               decimal.Decimal
	CODFee                int64
}

// DefaultPolicy mirrors the storefront's published rates.
func DefaultPolicy() Policy {
	return Policy{
		FreeShippingThreshold: 499,
		ShippingFee:           50,
		TaxRate:               decimal.NewFromFloat(0.18),
		CODFee:                0,
	}
}

// Totals always satisfies Total == Subtotal - Discount + Shipping + Tax.
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Discount int64 `json:"discount"`
	Shipping int64 `json:"shippingCharges"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

func (p Policy) Shipping(subtotal int64, method string) int64 {
	var fee int64
	if subtotal < p.FreeShippingThreshold {
		fee = p.ShippingFee
	}
	if method == MethodCOD {
		fee += p.CODFee
	}
	return fee
}

// Tax is the rate applied to the pre-discount subtotal, rounded half away
// from zero to a whole unit.
func (p Policy) Tax(subtotal int64) int64 {
	return decimal.NewFromInt(subtotal).Mul(p.TaxRate).Round(0).IntPart()
}

func (p Policy) Quote(subtotal, discount int64, method string) Totals {
	if subtotal < 0 {
		subtotal = 0
	}
	discount = ClampDiscount(discount, subtotal)

	shipping := p.Shipping(subtotal, method)
	tax := p.Tax(subtotal)

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal - discount + shipping + tax,
	}
}

// Percent returns round(amount * pct / 100).
func Percent(amount, pct int64) int64 {
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(pct)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

func ClampDiscount(discount, subtotal int64) int64 {
	if discount < 0 {
		return 0
	}
	if discount > subtotal {
		return subtotal
	}
	return discount
}
