package payment

import "bestea-be/internal/apperr"

var (
	ErrInvalidMethod   = apperr.Validation("INVALID_PAYMENT_METHOD", "unsupported payment method")
	ErrInvalidResult   = apperr.Validation("INVALID_PAYMENT_RESULT", "payment confirmation is incomplete")
	ErrOrderNotPayable = apperr.Business("ORDER_NOT_PAYABLE", "payment cannot be recorded for this order")
)
