package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, opts ListOptions) ([]Product, int, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `id, name, slug, description, price, stock, is_active, purchase_count, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Stock,
		&p.Active, &p.PurchaseCount, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}

	variants, err := r.variantsFor(ctx, []uuid.UUID{p.ID})
	if err != nil {
		return nil, err
	}
	p.Variants = variants[p.ID]

	return &p, nil
}

func (r *repository) List(ctx context.Context, opts ListOptions) ([]Product, int, error) {
	var (
		where []string
		args  []any
	)
	if !opts.IncludeInactive {
		where = append(where, "is_active = TRUE")
	}
	if s := strings.TrimSpace(opts.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products`+whereSQL, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	offset := (opts.Page - 1) * opts.Limit
	args = append(args, opts.Limit, offset)
	query := fmt.Sprintf(
		`SELECT %s FROM products%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		productColumns, whereSQL, len(args)-1, len(args),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	var ids []uuid.UUID
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(ids) == 0 {
		return products, total, nil
	}

	variants, err := r.variantsFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range products {
		products[i].Variants = variants[products[i].ID]
	}

	return products, total, nil
}

func (r *repository) variantsFor(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]Variant, error) {
	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = id.String()
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, name, price, stock, is_default
		FROM product_variants
		WHERE product_id = ANY($1::uuid[])
		ORDER BY product_id, is_default DESC, name
	`, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("query variants: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]Variant, len(productIDs))
	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.Price, &v.Stock, &v.IsDefault); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		out[v.ProductID] = append(out[v.ProductID], v)
	}
	return out, rows.Err()
}
