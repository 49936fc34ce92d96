package order

import "strings"

var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusDelivered, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusReturned, StatusExchangeRequested},
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusReturned, StatusExchangeRequested:
		return s, nil
	}
	return "", ErrInvalidStatus.WithDetail("status", raw)
}

// CanTransition reports whether an order may move from one status to
// another. The main flow only moves forward; cancelled, returned and
// exchange_requested have no exits.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusProcessing
}

// Dispatched is true once the parcel has left the warehouse.
func (s Status) Dispatched() bool {
	switch s {
	case StatusShipped, StatusDelivered, StatusReturned, StatusExchangeRequested:
		return true
	}
	return false
}

// milestoneColumn names the timestamp column a status sets once.
func milestoneColumn(s Status) string {
	switch s {
	case StatusConfirmed:
		return "confirmed_at"
	case StatusProcessing:
		return "processing_at"
	case StatusShipped:
		return "shipped_at"
	case StatusDelivered:
		return "delivered_at"
	case StatusCancelled:
		return "cancelled_at"
	}
	return ""
}
