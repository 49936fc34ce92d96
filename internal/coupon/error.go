package coupon

import (
	"fmt"

	"bestea-be/internal/apperr"
)

const (
	CodeNotFound          = "COUPON_NOT_FOUND"
	CodeBelowMinimumOrder = "BELOW_MINIMUM_ORDER"
)

var (
	ErrCodeNotFound      = apperr.Business(CodeNotFound, "invalid or expired coupon code")
	ErrBelowMinimumOrder = apperr.Business(CodeBelowMinimumOrder, "order total is below the coupon minimum")
	ErrCodeRequired      = apperr.Validation("COUPON_CODE_REQUIRED", "coupon code is required")
)

func newBelowMinimum(minimum, subtotal int64) error {
	shortfall := minimum - subtotal
	return &apperr.Error{
		Kind:    apperr.KindBusiness,
		Code:    CodeBelowMinimumOrder,
		Message: fmt.Sprintf("minimum order amount of %d required for this coupon; add %d more", minimum, shortfall),
		Details: map[string]any{
			"minOrderAmount": minimum,
			"shortfall":      shortfall,
		},
	}
}
