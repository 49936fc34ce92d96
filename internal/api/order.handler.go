package api

import (
	"net/http"

	"bestea-be/internal/logger"
	"bestea-be/internal/order"
	"bestea-be/internal/transport"
	"bestea-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := transport.DecodeJSON(r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	o, err := h.OrderSvc.PlaceOrder(r.Context(), req.toInput())
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	// the order stands even if the saved cart cannot be cleared
	if h.CartSvc != nil {
		if err := h.CartSvc.Clear(r.Context()); err != nil {
			logger.FromCtx(r.Context()).Warn("failed to clear cart after order",
				zap.String("layer", "api"),
				zap.String("order_number", o.OrderNumber),
				zap.Error(err),
			)
		}
	}

	transport.WriteJSON(w, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	res, err := h.OrderSvc.ListOrders(r.Context(), opts)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	res, err := h.OrderSvc.ListAllOrders(r.Context(), opts)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.OrderSvc.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := transport.DecodeJSON(r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	o, err := h.OrderSvc.AdvanceStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.Note)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	var req cancelOrderRequest
	// the reason is optional, so an empty body is accepted
	if r.ContentLength != 0 {
		if err := transport.DecodeJSON(r, &req); err != nil {
			transport.WriteError(w, r, err)
			return
		}
	}

	o, err := h.OrderSvc.Cancel(r.Context(), chi.URLParam(r, "id"), utils.TrimPtr(req.Reason))
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentResultRequest
	if err := transport.DecodeJSON(r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	o, err := h.OrderSvc.RecordPayment(r.Context(), chi.URLParam(r, "id"), req.toResult())
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, toOrderResponse(o))
}

func listOptions(r *http.Request) (order.ListOptions, error) {
	q := r.URL.Query()
	opts := order.ListOptions{
		Page:  utils.ParsePositiveInt(q.Get("page"), 1),
		Limit: utils.ParsePositiveInt(q.Get("limit"), 0),
	}

	if raw := q.Get("status"); raw != "" {
		st, err := order.ParseStatus(raw)
		if err != nil {
			return opts, err
		}
		opts.Status = &st
	}
	return opts, nil
}
