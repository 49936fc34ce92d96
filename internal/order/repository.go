package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"bestea-be/internal/db"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const orderNumberConstraint = "orders_order_number_key"

type Repository interface {
	// Create decrements stock for every line, allocates the order number and
	// inserts the order in one transaction. A line whose stock no longer
	// covers it aborts everything with *StockConflictError.
	Create(ctx context.Context, o *Order, lines []StockLine, prefix string) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context, opts ListOptions) ([]Order, int, error)
	// UpdateStatus moves the order from `from` to entry.Status. It fails with
	// ErrStatusConflict when the stored status is no longer `from`.
	UpdateStatus(ctx context.Context, id uuid.UUID, from Status, entry HistoryEntry) error
	// Cancel restores the stock held by o and marks it cancelled, guarded the
	// same way as UpdateStatus.
	Cancel(ctx context.Context, o *Order, from Status, entry HistoryEntry, reason *string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, o *Order, lines []StockLine, prefix string) error {
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, l := range lines {
			if err := decrementStock(ctx, tx, l); err != nil {
				return err
			}
		}

		var seq int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO order_counters (year, last_value)
			VALUES ($1, 1)
			ON CONFLICT (year) DO UPDATE SET last_value = order_counters.last_value + 1
			RETURNING last_value
		`, o.CreatedAt.Year()).Scan(&seq)
		if err != nil {
			return fmt.Errorf("allocate order number: %w", err)
		}
		o.OrderNumber = FormatNumber(prefix, o.CreatedAt.Year(), seq)

		addr, err := json.Marshal(o.ShippingAddress)
		if err != nil {
			return fmt.Errorf("encode shipping address: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO orders (
				id, order_number, user_id,
				subtotal, discount, coupon_code, shipping_charges, tax, total,
				shipping_address, payment_method, payment_status,
				notes, status, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		`,
			o.ID, o.OrderNumber, o.UserID,
			o.Subtotal, o.Discount, o.CouponCode, o.Shipping, o.Tax, o.Total,
			addr, o.PaymentMethod, o.PaymentStatus,
			o.Notes, o.Status, o.CreatedAt, o.UpdatedAt,
		)
		if err != nil {
			if db.IsUniqueViolation(err, orderNumberConstraint) {
				return ErrDuplicateOrderNumber
			}
			return fmt.Errorf("insert order: %w", err)
		}

		for _, it := range o.Items {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO order_items (
					order_id, product_id, variant_id, product_name,
					variant_name, unit_price, quantity, line_total
				) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			`,
				o.ID, it.ProductID, nullUUID(it.VariantID), it.ProductName,
				it.Variant, it.UnitPrice, it.Quantity, it.LineTotal,
			)
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}

		for _, h := range o.History {
			if err := insertHistory(ctx, tx, o.ID, h); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		o.OrderNumber = ""
	}
	if errors.Is(err, ErrDuplicateOrderNumber) {
		if syncErr := r.syncCounter(ctx, prefix, o.CreatedAt.Year()); syncErr != nil {
			return fmt.Errorf("sync order counter: %w", syncErr)
		}
	}
	return err
}

// syncCounter moves the year's counter past the highest number already in
// use, so the next allocation after a collision is free. It runs outside the
// rolled back placement transaction and commits on its own.
func (r *repository) syncCounter(ctx context.Context, prefix string, year int) error {
	label := fmt.Sprintf("%s%d", prefix, year)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO order_counters (year, last_value)
		SELECT $1, COALESCE(MAX(SUBSTRING(order_number FROM $3)::BIGINT), 0)
		FROM orders
		WHERE order_number ~ $2
		ON CONFLICT (year) DO UPDATE
		SET last_value = GREATEST(order_counters.last_value, EXCLUDED.last_value)
	`, year, "^"+regexp.QuoteMeta(label)+"[0-9]+$", len(label)+1)
	return err
}

func decrementStock(ctx context.Context, tx *sql.Tx, l StockLine) error {
	var (
		res sql.Result
		err error
	)
	if l.VariantID != nil {
		res, err = tx.ExecContext(ctx, `
			UPDATE product_variants
			SET stock = stock - $1
			WHERE id = $2 AND product_id = $3 AND stock >= $1
		`, l.Quantity, *l.VariantID, l.ProductID)
	} else {
		res, err = tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $1
			WHERE id = $2 AND is_active = TRUE AND stock >= $1
		`, l.Quantity, l.ProductID)
	}
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &StockConflictError{ProductID: l.ProductID, VariantID: l.VariantID}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE products
		SET purchase_count = purchase_count + $1, updated_at = NOW()
		WHERE id = $2
	`, l.Quantity, l.ProductID)
	if err != nil {
		return fmt.Errorf("increment purchase count: %w", err)
	}
	return nil
}

func restoreStock(ctx context.Context, tx *sql.Tx, it Item) error {
	if it.VariantID != nil {
		if _, err := tx.ExecContext(ctx, `
			UPDATE product_variants
			SET stock = stock + $1
			WHERE id = $2
		`, it.Quantity, *it.VariantID); err != nil {
			return fmt.Errorf("restore variant stock: %w", err)
		}

		_, err := tx.ExecContext(ctx, `
			UPDATE products
			SET purchase_count = GREATEST(purchase_count - $1, 0), updated_at = NOW()
			WHERE id = $2
		`, it.Quantity, it.ProductID)
		if err != nil {
			return fmt.Errorf("restore purchase count: %w", err)
		}
		return nil
	}

	_, err := tx.ExecContext(ctx, `
		UPDATE products
		SET stock = stock + $1,
			purchase_count = GREATEST(purchase_count - $1, 0),
			updated_at = NOW()
		WHERE id = $2
	`, it.Quantity, it.ProductID)
	if err != nil {
		return fmt.Errorf("restore product stock: %w", err)
	}
	return nil
}

func insertHistory(ctx context.Context, tx *sql.Tx, orderID uuid.UUID, h HistoryEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO order_status_history (order_id, status, note, changed_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, orderID, h.Status, h.Note, nullUint(h.ChangedBy), h.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert status history: %w", err)
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from Status, entry HistoryEntry) error {
	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		set := "status = $1, updated_at = $2"
		if col := milestoneColumn(entry.Status); col != "" {
			set += fmt.Sprintf(", %s = COALESCE(%s, $2)", col, col)
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE orders SET `+set+` WHERE id = $3 AND status = $4`,
			entry.Status, entry.CreatedAt, id, from,
		)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		if err := expectOneRow(res); err != nil {
			return err
		}

		return insertHistory(ctx, tx, id, entry)
	})
}

func (r *repository) Cancel(ctx context.Context, o *Order, from Status, entry HistoryEntry, reason *string) error {
	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE orders
			SET status = $1,
				cancellation_reason = $2,
				cancelled_at = COALESCE(cancelled_at, $3),
				updated_at = $3
			WHERE id = $4 AND status = $5
		`, StatusCancelled, reason, entry.CreatedAt, o.ID, from)
		if err != nil {
			return fmt.Errorf("cancel order: %w", err)
		}
		if err := expectOneRow(res); err != nil {
			return err
		}

		for _, it := range o.Items {
			if err := restoreStock(ctx, tx, it); err != nil {
				return err
			}
		}

		return insertHistory(ctx, tx, o.ID, entry)
	})
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStatusConflict
	}
	return nil
}

const orderColumns = `id, order_number, user_id,
	subtotal, discount, coupon_code, shipping_charges, tax, total,
	shipping_address, payment_method, payment_status, payment_id, payer_email, paid_at,
	notes, status, cancellation_reason,
	created_at, updated_at, confirmed_at, processing_at, shipped_at, delivered_at, cancelled_at`

func scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var (
		o    Order
		addr []byte
	)
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID,
		&o.Subtotal, &o.Discount, &o.CouponCode, &o.Shipping, &o.Tax, &o.Total,
		&addr, &o.PaymentMethod, &o.PaymentStatus, &o.PaymentID, &o.PayerEmail, &o.PaidAt,
		&o.Notes, &o.Status, &o.CancellationReason,
		&o.CreatedAt, &o.UpdatedAt, &o.ConfirmedAt, &o.ProcessingAt, &o.ShippedAt, &o.DeliveredAt, &o.CancelledAt,
	)
	if err != nil {
		return o, err
	}
	if len(addr) > 0 {
		if err := json.Unmarshal(addr, &o.ShippingAddress); err != nil {
			return o, fmt.Errorf("decode shipping address: %w", err)
		}
	}
	return o, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	items, err := r.itemsFor(ctx, []uuid.UUID{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]

	history, err := r.historyFor(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.History = history

	return &o, nil
}

func (r *repository) List(ctx context.Context, opts ListOptions) ([]Order, int, error) {
	var (
		where []string
		args  []any
	)
	if opts.UserID != nil {
		args = append(args, *opts.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if opts.Status != nil {
		args = append(args, *opts.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders`+whereSQL, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	args = append(args, opts.Limit, (opts.Page-1)*opts.Limit)
	query := fmt.Sprintf(
		`SELECT %s FROM orders%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		orderColumns, whereSQL, len(args)-1, len(args),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []Order{}
	var ids []uuid.UUID
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(ids) == 0 {
		return orders, total, nil
	}

	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	return orders, total, nil
}

func (r *repository) itemsFor(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]Item, error) {
	keys := make([]string, len(orderIDs))
	for i, id := range orderIDs {
		keys[i] = id.String()
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_id, variant_id, product_name,
			variant_name, unit_price, quantity, line_total
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, id
	`, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]Item, len(orderIDs))
	for rows.Next() {
		var (
			orderID uuid.UUID
			variant uuid.NullUUID
			it      Item
		)
		if err := rows.Scan(
			&orderID, &it.ProductID, &variant, &it.ProductName,
			&it.Variant, &it.UnitPrice, &it.Quantity, &it.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if variant.Valid {
			v := variant.UUID
			it.VariantID = &v
		}
		out[orderID] = append(out[orderID], it)
	}
	return out, rows.Err()
}

func (r *repository) historyFor(ctx context.Context, orderID uuid.UUID) ([]HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, note, changed_by, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY created_at, id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query status history: %w", err)
	}
	defer rows.Close()

	history := []HistoryEntry{}
	for rows.Next() {
		var (
			h         HistoryEntry
			changedBy sql.NullInt64
		)
		if err := rows.Scan(&h.Status, &h.Note, &changedBy, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan status history: %w", err)
		}
		if changedBy.Valid {
			u := uint(changedBy.Int64)
			h.ChangedBy = &u
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullUint(v *uint) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
