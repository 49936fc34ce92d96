package product

import "bestea-be/internal/apperr"

var (
	ErrProductNotFound = apperr.NotFound("PRODUCT_NOT_FOUND", "product not found")
	ErrVariantNotFound = apperr.Business("VARIANT_NOT_FOUND", "variant not found for product")
	ErrInvalidID       = apperr.Validation("INVALID_PRODUCT_ID", "invalid product id")
)
