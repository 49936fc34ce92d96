package api

import (
	"net/http"

	"bestea-be/internal/transport"
)

// ValidateCoupon checks a code against a client-side subtotal, for carts
// that are kept in the browser.
func (h *Handler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := transport.DecodeJSON(r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	res, err := h.CouponSvc.Validate(r.Context(), req.Code, req.Subtotal)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, couponResponse{
		Valid:    true,
		Code:     res.Coupon.Code,
		Discount: res.Discount,
		Totals:   h.Pricing.Quote(req.Subtotal, res.Discount, ""),
	})
}
