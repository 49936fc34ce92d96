package product

import (
	"context"
	"errors"
	"time"

	"bestea-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, opts ListOptions) (*ListResult, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetByID(ctx context.Context, id string) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "GetProductByID"),
		zap.String("product_id", id),
	)

	pid, err := uuid.Parse(id)
	if err != nil {
		log.Debug("invalid product id")
		return nil, ErrInvalidID
	}

	p, err := s.repo.GetByID(ctx, pid)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, err
		}
		log.Error("failed to load product", zap.Error(err))
		return nil, err
	}

	return p, nil
}

func (s *service) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ListProducts"),
	)

	start := time.Now()

	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	} else if opts.Limit > 100 {
		opts.Limit = 100
	}

	products, total, err := s.repo.List(ctx, opts)
	if err != nil {
		log.Error("failed to list products", zap.Error(err))
		return nil, err
	}

	log.Debug("products listed",
		zap.Int("page", opts.Page),
		zap.Int("limit", opts.Limit),
		zap.Int("returned", len(products)),
		zap.Int("total", total),
		zap.Duration("duration", time.Since(start)),
	)

	return &ListResult{
		Products:   products,
		TotalCount: total,
		Page:       opts.Page,
		Limit:      opts.Limit,
	}, nil
}
