package coupon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type repository struct {
	db *sql.DB
}

// NewRepository serves coupons from the coupons table.
func NewRepository(db *sql.DB) Source {
	return &repository{db: db}
}

func (r *repository) FindByCode(ctx context.Context, code string) (*Coupon, error) {
	query := `
		SELECT code, discount_type, discount_value, min_order_amount, is_active
		FROM coupons
		WHERE UPPER(code) = $1
	`

	var c Coupon
	err := r.db.QueryRowContext(ctx, query, normalizeCode(code)).
		Scan(&c.Code, &c.Type, &c.Value, &c.MinOrder, &c.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query coupon: %w", err)
	}

	return &c, nil
}
