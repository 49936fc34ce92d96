package order

import "fmt"

const maxPlaceAttempts = 3

// FormatNumber renders the customer facing order number, e.g. BT2026000042.
// It is a display label; uniqueness is enforced by the orders table.
func FormatNumber(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s%d%06d", prefix, year, seq)
}
