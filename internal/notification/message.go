package notification

import (
	"time"

	"bestea-be/internal/order"

	"github.com/google/uuid"
)

// Message is the payload published for every order event. Consumers (email,
// SMS, admin alerts) route on Type.
type Message struct {
	ID             uuid.UUID `json:"id"`
	Type           string    `json:"type"`
	OrderID        uuid.UUID `json:"orderId"`
	OrderNumber    string    `json:"orderNumber"`
	UserID         uint      `json:"userId"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	Total          int64     `json:"total"`
	PaymentMethod  string    `json:"paymentMethod"`
	CustomerName   string    `json:"customerName"`
	CustomerPhone  string    `json:"customerPhone"`
	Reason         *string   `json:"reason,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

func FromEvent(e order.Event) Message {
	o := e.Order
	return Message{
		ID:             uuid.New(),
		Type:           string(e.Type),
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		UserID:         o.UserID,
		Status:         string(o.Status),
		PreviousStatus: string(e.PreviousStatus),
		Total:          o.Total,
		PaymentMethod:  string(o.PaymentMethod),
		CustomerName:   o.ShippingAddress.Name,
		CustomerPhone:  o.ShippingAddress.Phone,
		Reason:         o.CancellationReason,
		OccurredAt:     e.OccurredAt,
	}
}

// RoutingKey is the topic the message is published under.
func (m Message) RoutingKey() string {
	return m.Type
}
