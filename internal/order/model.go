package order

import (
	"time"

	"bestea-be/internal/address"
	"bestea-be/internal/payment"
	"bestea-be/internal/pricing"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending           Status = "pending"
	StatusConfirmed         Status = "confirmed"
	StatusProcessing        Status = "processing"
	StatusShipped           Status = "shipped"
	StatusDelivered         Status = "delivered"
	StatusCancelled         Status = "cancelled"
	StatusReturned          Status = "returned"
	StatusExchangeRequested Status = "exchange_requested"
)

// Item is a frozen copy of a cart line. It never follows later catalog
// changes.
type Item struct {
	ProductID   uuid.UUID  `json:"product"`
	VariantID   *uuid.UUID `json:"variantId,omitempty"`
	ProductName string     `json:"name"`
	Variant     *string    `json:"variant,omitempty"`
	UnitPrice   int64      `json:"price"`
	Quantity    int        `json:"quantity"`
	LineTotal   int64      `json:"total"`
}

type HistoryEntry struct {
	Status    Status    `json:"status"`
	Note      *string   `json:"note,omitempty"`
	ChangedBy *uint     `json:"changedBy,omitempty"`
	CreatedAt time.Time `json:"timestamp"`
}

type Order struct {
	ID          uuid.UUID `json:"id"`
	OrderNumber string    `json:"orderNumber"`
	UserID      uint      `json:"user"`
	Items       []Item    `json:"items"`

	Subtotal   int64   `json:"subtotal"`
	Discount   int64   `json:"discount"`
	CouponCode *string `json:"couponCode,omitempty"`
	Shipping   int64   `json:"shippingCharges"`
	Tax        int64   `json:"tax"`
	Total      int64   `json:"total"`

	ShippingAddress address.Address `json:"shippingAddress"`

	PaymentMethod payment.Method `json:"paymentMethod"`
	PaymentStatus payment.Status `json:"paymentStatus"`
	PaymentID     *string        `json:"paymentId,omitempty"`
	PayerEmail    *string        `json:"payerEmail,omitempty"`
	PaidAt        *time.Time     `json:"paidAt,omitempty"`

	Notes              *string        `json:"orderNotes,omitempty"`
	Status             Status         `json:"status"`
	History            []HistoryEntry `json:"statusHistory"`
	CancellationReason *string        `json:"cancellationReason,omitempty"`

	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	ConfirmedAt  *time.Time `json:"confirmedAt,omitempty"`
	ProcessingAt *time.Time `json:"processingAt,omitempty"`
	ShippedAt    *time.Time `json:"shippedAt,omitempty"`
	DeliveredAt  *time.Time `json:"deliveredAt,omitempty"`
	CancelledAt  *time.Time `json:"cancelledAt,omitempty"`
}

func (o *Order) Totals() pricing.Totals {
	return pricing.Totals{
		Subtotal: o.Subtotal,
		Discount: o.Discount,
		Shipping: o.Shipping,
		Tax:      o.Tax,
		Total:    o.Total,
	}
}

func (o *Order) lastHistoryAt() time.Time {
	if len(o.History) == 0 {
		return o.CreatedAt
	}
	return o.History[len(o.History)-1].CreatedAt
}

// LineInput is one requested line of a new order.
type LineInput struct {
	ProductID string  `json:"product"`
	Variant   *string `json:"variant,omitempty"`
	Quantity  int     `json:"quantity"`
}

type PlaceOrderInput struct {
	Items           []LineInput
	ShippingAddress address.Address
	PaymentMethod   string
	CouponCode      *string
	Notes           *string
}

// StockLine is the stock a placed order holds on one product or variant.
type StockLine struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
}

type ListOptions struct {
	Page   int
	Limit  int
	Status *Status
	// UserID restricts the listing to one customer; nil lists every order.
	UserID *uint
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalOrders int  `json:"totalOrders"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

type ListResult struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

func newPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalOrders: total,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}
