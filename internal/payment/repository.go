package payment

import (
	"context"
	"database/sql"
	"fmt"

	"bestea-be/internal/db"

	"github.com/google/uuid"
)

type Repository interface {
	// RecordResult stores the confirmation and marks the order paid in one
	// transaction. Replaying the same confirmation is a no-op for the log.
	RecordResult(ctx context.Context, orderID uuid.UUID, r Result) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) RecordResult(ctx context.Context, orderID uuid.UUID, res Result) error {
	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO payment_results (
				order_id, provider_payment_id, status, update_time, email_address
			) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (order_id, provider_payment_id) DO NOTHING
		`, orderID, res.ID, res.Status, res.UpdateTime, res.EmailAddress)
		if err != nil {
			return fmt.Errorf("insert payment result: %w", err)
		}

		out, err := tx.ExecContext(ctx, `
			UPDATE orders
			SET payment_status = $1,
				payment_id = $2,
				payer_email = $3,
				paid_at = COALESCE(paid_at, NOW()),
				updated_at = NOW()
			WHERE id = $4 AND status <> 'cancelled'
		`, StatusPaid, res.ID, res.EmailAddress, orderID)
		if err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}

		n, err := out.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrOrderNotPayable
		}
		return nil
	})
}
