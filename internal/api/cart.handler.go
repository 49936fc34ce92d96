package api

import (
	"net/http"
	"net/url"

	"bestea-be/internal/apperr"
	"bestea-be/internal/cart"
	"bestea-be/internal/transport"

	"github.com/go-chi/chi/v5"
)

var errInvalidCartKey = apperr.Validation("INVALID_CART_KEY", "cart item key is not valid")

// cartKey returns the {key} path segment decoded. chi matches on the raw
// path when the URL carries escapes such as %2F, so the segment arrives
// still escaped in that case.
func cartKey(r *http.Request) (string, error) {
	key := chi.URLParam(r, "key")
	if r.URL.RawPath == "" {
		return key, nil
	}
	decoded, err := url.PathUnescape(key)
	if err != nil {
		return "", errInvalidCartKey
	}
	return decoded, nil
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	st, err := h.CartSvc.Get(r.Context())
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, st)
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req cart.AddItemInput
	if err := transport.DecodeJSON(r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	st, err := h.CartSvc.AddItem(r.Context(), req)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, st)
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateCartItemRequest
	if err := transport.DecodeJSON(r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	key, err := cartKey(r)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	st, err := h.CartSvc.UpdateQuantity(r.Context(), key, req.Quantity)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, st)
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	key, err := cartKey(r)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	st, err := h.CartSvc.RemoveItem(r.Context(), key)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, st)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.CartSvc.Clear(r.Context()); err != nil {
		transport.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ApplyCartCoupon(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := transport.DecodeJSON(r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	st, err := h.CartSvc.ApplyCoupon(r.Context(), req.Code)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, st)
}

func (h *Handler) RemoveCartCoupon(w http.ResponseWriter, r *http.Request) {
	st, err := h.CartSvc.RemoveCoupon(r.Context())
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, st)
}
