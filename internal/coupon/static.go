package coupon

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

type staticSource struct {
	coupons map[string]Coupon
}

// NewStaticSource serves a fixed coupon table.
func NewStaticSource(coupons ...Coupon) Source {
	m := make(map[string]Coupon, len(coupons))
	for _, c := range coupons {
		c.Code = normalizeCode(c.Code)
		m[c.Code] = c
	}
	return &staticSource{coupons: m}
}

func (s *staticSource) FindByCode(_ context.Context, code string) (*Coupon, error) {
	c, ok := s.coupons[normalizeCode(code)]
	if !ok {
		return nil, ErrCodeNotFound
	}
	return &c, nil
}

// ParseTable reads "CODE:type:value:minOrder" entries separated by commas.
// Parsed coupons are active.
func ParseTable(raw string) ([]Coupon, error) {
	var out []Coupon
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, ":")
		if len(parts) != 4 {
			return nil, fmt.Errorf("coupon %q: want CODE:type:value:minOrder", entry)
		}

		typ := Type(strings.ToLower(parts[1]))
		if !typ.Valid() {
			return nil, fmt.Errorf("coupon %q: unknown type %q", entry, parts[1])
		}

		value, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil || value < 0 {
			return nil, fmt.Errorf("coupon %q: invalid value", entry)
		}
		if typ == TypePercentage && value > 100 {
			return nil, fmt.Errorf("coupon %q: percentage above 100", entry)
		}

		minOrder, err := strconv.ParseInt(parts[3], 10, 64)
		if err != nil || minOrder < 0 {
			return nil, fmt.Errorf("coupon %q: invalid minimum order", entry)
		}

		out = append(out, Coupon{
			Code:     normalizeCode(parts[0]),
			Type:     typ,
			Value:    value,
			MinOrder: minOrder,
			Active:   true,
		})
	}
	return out, nil
}

// DefaultCoupons is the launch promotion table.
func DefaultCoupons() []Coupon {
	return []Coupon{
		{Code: "TEA20", Type: TypePercentage, Value: 20, MinOrder: 500, Active: true},
		{Code: "WELCOME10", Type: TypePercentage, Value: 10, MinOrder: 0, Active: true},
		{Code: "FLAT100", Type: TypeFixed, Value: 100, MinOrder: 999, Active: true},
	}
}
