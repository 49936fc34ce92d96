package api

import (
	"fmt"

	"bestea-be/internal/address"
	"bestea-be/internal/order"
	"bestea-be/internal/payment"
	"bestea-be/internal/pricing"
)

/* ---------- requests ---------- */

type placeOrderRequest struct {
	Items           []order.LineInput `json:"items"`
	ShippingAddress address.Address   `json:"shippingAddress"`
	Payment         struct {
		Method string `json:"method"`
	} `json:"payment"`
	CouponCode *string `json:"couponCode,omitempty"`
	OrderNotes *string `json:"orderNotes,omitempty"`
}

func (r placeOrderRequest) toInput() order.PlaceOrderInput {
	return order.PlaceOrderInput{
		Items:           r.Items,
		ShippingAddress: r.ShippingAddress,
		PaymentMethod:   r.Payment.Method,
		CouponCode:      r.CouponCode,
		Notes:           r.OrderNotes,
	}
}

type updateStatusRequest struct {
	Status string  `json:"status"`
	Note   *string `json:"note,omitempty"`
}

type cancelOrderRequest struct {
	Reason *string `json:"reason,omitempty"`
}

type paymentResultRequest struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

func (r paymentResultRequest) toResult() payment.Result {
	return payment.Result{
		ID:           r.ID,
		Status:       r.Status,
		UpdateTime:   r.UpdateTime,
		EmailAddress: r.EmailAddress,
	}
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type couponRequest struct {
	Code     string `json:"code"`
	Subtotal int64  `json:"subtotal"`
}

/* ---------- responses ---------- */

type orderResponse struct {
	*order.Order
	PaymentInstructions []string `json:"paymentInstructions,omitempty"`
}

func toOrderResponse(o *order.Order) orderResponse {
	steps := payment.GetInstructions(o.PaymentMethod)
	return orderResponse{
		Order: o,
		PaymentInstructions: payment.InjectVariables(steps, payment.InstructionVars{
			"amount":       formatRupees(o.Total),
			"order_number": o.OrderNumber,
		}),
	}
}

type couponResponse struct {
	Valid    bool           `json:"valid"`
	Code     string         `json:"code"`
	Discount int64          `json:"discount"`
	Totals   pricing.Totals `json:"totals"`
}

func formatRupees(amount int64) string {
	return fmt.Sprintf("₹%d", amount)
}
