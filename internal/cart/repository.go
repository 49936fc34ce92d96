package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Repository persists one cart snapshot per user. Totals are stored for
// inspection only; they are recomputed on load.
type Repository interface {
	Load(ctx context.Context, userID uint) (*State, error)
	Save(ctx context.Context, userID uint, st State) error
	Delete(ctx context.Context, userID uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// Load returns nil, nil when the user has no saved cart.
func (r *repository) Load(ctx context.Context, userID uint) (*State, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT state
		FROM cart_snapshots
		WHERE user_id = $1
	`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return &st, nil
}

func (r *repository) Save(ctx context.Context, userID uint, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO cart_snapshots (user_id, state, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET state = EXCLUDED.state, updated_at = NOW()
	`, userID, raw)
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, userID uint) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_snapshots WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
