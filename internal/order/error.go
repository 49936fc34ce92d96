package order

import (
	"errors"
	"fmt"
	"time"

	"bestea-be/internal/apperr"
	"bestea-be/internal/pricing"

	"github.com/google/uuid"
)

const (
	CodeEmptyCart                 = "EMPTY_CART"
	CodeProductUnavailable        = "PRODUCT_UNAVAILABLE"
	CodeInsufficientStock         = "INSUFFICIENT_STOCK"
	CodeAlreadyShipped            = "ALREADY_SHIPPED"
	CodeAlreadyCancelled          = "ALREADY_CANCELLED"
	CodeCancellationWindowExpired = "CANCELLATION_WINDOW_EXPIRED"
	CodeInvalidStatus             = "INVALID_STATUS"
	CodeInvalidTransition         = "INVALID_TRANSITION"
)

var (
	ErrUnauthenticated           = apperr.New(apperr.KindUnauthorized, "UNAUTHENTICATED", "authentication required")
	ErrForbidden                 = apperr.Forbidden("FORBIDDEN", "you are not allowed to access this order")
	ErrOrderNotFound             = apperr.NotFound("ORDER_NOT_FOUND", "order not found")
	ErrEmptyCart                 = apperr.Validation(CodeEmptyCart, "no items in order")
	ErrInvalidQuantity           = apperr.Validation("INVALID_QUANTITY", "quantity must be at least 1")
	ErrQuantityTooLarge          = apperr.Validation("QUANTITY_TOO_LARGE", "quantity exceeds the per item limit").WithDetail("max", pricing.MaxLineQuantity)
	ErrProductUnavailable        = apperr.Business(CodeProductUnavailable, "product is not available")
	ErrInsufficientStock         = apperr.Business(CodeInsufficientStock, "insufficient stock")
	ErrAlreadyShipped            = apperr.Business(CodeAlreadyShipped, "order has already been shipped and cannot be cancelled")
	ErrAlreadyCancelled          = apperr.Business(CodeAlreadyCancelled, "order is already cancelled")
	ErrCancellationWindowExpired = apperr.Business(CodeCancellationWindowExpired, "cancellation window has expired")
	ErrInvalidStatus             = apperr.Validation(CodeInvalidStatus, "invalid order status")
	ErrInvalidTransition         = apperr.Business(CodeInvalidTransition, "order cannot move to the requested status")
	ErrStatusConflict            = apperr.New(apperr.KindConflict, "ORDER_STATUS_CHANGED", "order was updated by someone else, please retry")

	// ErrDuplicateOrderNumber is retried by the service and never reaches
	// callers.
	ErrDuplicateOrderNumber = errors.New("duplicate order number")
)

// StockConflictError is returned by the repository when a conditional
// stock decrement matched no row.
type StockConflictError struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
}

func (e *StockConflictError) Error() string {
	if e.VariantID != nil {
		return fmt.Sprintf("stock conflict on product %s variant %s", e.ProductID, e.VariantID)
	}
	return fmt.Sprintf("stock conflict on product %s", e.ProductID)
}

func newProductUnavailable(name string) error {
	return &apperr.Error{
		Kind:    apperr.KindBusiness,
		Code:    CodeProductUnavailable,
		Message: fmt.Sprintf("%s is not available", name),
		Details: map[string]any{"product": name},
	}
}

func newInsufficientStock(name string, available int) error {
	if available < 0 {
		available = 0
	}
	return &apperr.Error{
		Kind:    apperr.KindBusiness,
		Code:    CodeInsufficientStock,
		Message: fmt.Sprintf("insufficient stock for %s: only %d available", name, available),
		Details: map[string]any{"product": name, "available": available},
	}
}

func newWindowExpired(window time.Duration) error {
	return &apperr.Error{
		Kind:    apperr.KindBusiness,
		Code:    CodeCancellationWindowExpired,
		Message: fmt.Sprintf("orders can only be cancelled within %s of placement", humanWindow(window)),
		Details: map[string]any{"windowHours": window.Hours()},
	}
}

func newInvalidTransition(from, to Status) error {
	return &apperr.Error{
		Kind:    apperr.KindBusiness,
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("order cannot move from %s to %s", from, to),
		Details: map[string]any{"from": string(from), "to": string(to)},
	}
}

func humanWindow(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%d hours", int(d.Hours()))
	}
	return d.String()
}
