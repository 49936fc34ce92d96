package api

import (
	"bestea-be/internal/cart"
	"bestea-be/internal/coupon"
	"bestea-be/internal/metrics"
	"bestea-be/internal/order"
	"bestea-be/internal/pricing"
	"bestea-be/internal/product"
)

// Handler holds the services behind the HTTP routes.
type Handler struct {
	OrderSvc   order.Service
	ProductSvc product.Service
	CartSvc    cart.Service
	CouponSvc  coupon.Service
	Metrics    *metrics.Registry
	Pricing    pricing.Policy
}
