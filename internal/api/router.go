package api

import (
	"net/http"

	"bestea-be/internal/logger"
	"bestea-be/internal/middleware"
	"bestea-be/internal/transport"

	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	JWTSecret  string
	CORSOrigin string
	Limiter    *middleware.Limiter
}

func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.Auth(cfg.JWTSecret))
	if cfg.Limiter != nil {
		r.Use(cfg.Limiter.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		transport.WriteStatus(w, http.StatusNotFound, "ROUTE_NOT_FOUND")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		transport.WriteStatus(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED")
	})

	r.Get("/health", h.Health)
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())
	}

	r.Get("/products", h.ListProducts)
	r.Get("/products/{id}", h.GetProduct)
	r.Post("/coupons/validate", h.ValidateCoupon)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.PlaceOrder)
			r.Get("/", h.ListOrders)
			r.Get("/{id}", h.GetOrder)
			r.Put("/{id}/cancel", h.CancelOrder)
			r.Post("/{id}/payment", h.RecordPayment)
			r.With(middleware.RequireAdmin).Put("/{id}/status", h.UpdateOrderStatus)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddCartItem)
			r.Put("/items/{key}", h.UpdateCartItem)
			r.Delete("/items/{key}", h.RemoveCartItem)
			r.Post("/coupon", h.ApplyCartCoupon)
			r.Delete("/coupon", h.RemoveCartCoupon)
		})
	})

	r.With(middleware.RequireAdmin).Get("/admin/orders", h.ListAllOrders)

	return r
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
