package coupon

import (
	"context"
	"errors"

	"bestea-be/internal/logger"

	"go.uber.org/zap"
)

// Source looks coupons up by their normalized (upper case) code. It returns
// ErrCodeNotFound when no coupon carries the code.
type Source interface {
	FindByCode(ctx context.Context, code string) (*Coupon, error)
}

type Service interface {
	Validate(ctx context.Context, code string, subtotal int64) (*Result, error)
}

type service struct {
	source Source
}

func NewService(source Source) Service {
	return &service{source: source}
}

func (s *service) Validate(ctx context.Context, code string, subtotal int64) (*Result, error) {
	code = normalizeCode(code)

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ValidateCoupon"),
		zap.String("code", code),
		zap.Int64("subtotal", subtotal),
	)

	if code == "" {
		return nil, ErrCodeRequired
	}

	c, err := s.source.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			log.Debug("coupon not found")
			return nil, ErrCodeNotFound
		}
		log.Error("coupon lookup failed", zap.Error(err))
		return nil, err
	}

	if !c.Active {
		log.Debug("coupon inactive")
		return nil, ErrCodeNotFound
	}

	if subtotal < c.MinOrder {
		log.Debug("coupon below minimum order", zap.Int64("min_order", c.MinOrder))
		return nil, newBelowMinimum(c.MinOrder, subtotal)
	}

	res := &Result{Coupon: *c, Discount: c.Discount(subtotal)}
	log.Debug("coupon accepted", zap.Int64("discount", res.Discount))
	return res, nil
}
