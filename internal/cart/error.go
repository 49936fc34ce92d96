package cart

import (
	"bestea-be/internal/apperr"
	"bestea-be/internal/pricing"
)

var (
	ErrUserNotAuthenticated = apperr.New(apperr.KindUnauthorized, "UNAUTHENTICATED", "user not authenticated")
	ErrCartItemNotFound     = apperr.NotFound("CART_ITEM_NOT_FOUND", "cart item not found")
	ErrProductUnavailable   = apperr.Business("PRODUCT_UNAVAILABLE", "product is not available")
	ErrQuantityTooLarge     = apperr.Validation("QUANTITY_TOO_LARGE", "quantity exceeds the per item limit").WithDetail("max", pricing.MaxLineQuantity)
)
