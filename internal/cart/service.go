package cart

import (
	"context"
	"errors"
	"sync"

	"bestea-be/internal/logger"
	"bestea-be/internal/pricing"
	"bestea-be/internal/product"
	"bestea-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Catalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error)
}

// Service is the per-user server cart. Each call restores the user's saved
// snapshot into a Store, applies one mutation and persists the result.
type Service interface {
	Get(ctx context.Context) (*State, error)
	AddItem(ctx context.Context, input AddItemInput) (*State, error)
	UpdateQuantity(ctx context.Context, key string, qty int) (*State, error)
	RemoveItem(ctx context.Context, key string) (*State, error)
	Clear(ctx context.Context) error
	ApplyCoupon(ctx context.Context, code string) (*State, error)
	RemoveCoupon(ctx context.Context) (*State, error)
}

type service struct {
	repo    Repository
	catalog Catalog
	coupons CouponValidator
	policy  pricing.Policy

	// one lock per user so concurrent requests do not overwrite each other
	locks sync.Map
}

func NewService(repo Repository, catalog Catalog, coupons CouponValidator, policy pricing.Policy) Service {
	return &service{repo: repo, catalog: catalog, coupons: coupons, policy: policy}
}

func (s *service) Get(ctx context.Context) (*State, error) {
	store, done, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	st := store.State()
	return &st, nil
}

func (s *service) AddItem(ctx context.Context, input AddItemInput) (*State, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddItem"),
		zap.String("product_id", input.ProductID),
	)

	id, err := uuid.Parse(input.ProductID)
	if err != nil {
		return nil, product.ErrInvalidID
	}
	if input.Quantity > pricing.MaxLineQuantity {
		return nil, ErrQuantityTooLarge
	}

	p, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, product.ErrProductNotFound) {
			log.Error("failed to load product", zap.Error(err))
		}
		return nil, err
	}
	if !p.Active {
		return nil, ErrProductUnavailable.WithDetail("product", p.Name)
	}

	store, done, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	if err := store.Add(ctx, p, input.Variant, input.Quantity); err != nil {
		return nil, err
	}

	st := store.State()
	return &st, nil
}

func (s *service) UpdateQuantity(ctx context.Context, key string, qty int) (*State, error) {
	if qty > pricing.MaxLineQuantity {
		return nil, ErrQuantityTooLarge
	}

	store, done, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	if !store.UpdateQuantity(key, qty) {
		return nil, ErrCartItemNotFound.WithDetail("key", key)
	}

	st := store.State()
	return &st, nil
}

func (s *service) RemoveItem(ctx context.Context, key string) (*State, error) {
	store, done, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	if !store.Remove(key) {
		return nil, ErrCartItemNotFound.WithDetail("key", key)
	}

	st := store.State()
	return &st, nil
}

func (s *service) Clear(ctx context.Context) error {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return ErrUserNotAuthenticated
	}

	unlock := s.lock(userID)
	defer unlock()

	if err := s.repo.Delete(ctx, userID); err != nil {
		logger.FromCtx(ctx).Error("failed to clear cart",
			zap.String("layer", "service"),
			zap.String("method", "Clear"),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) ApplyCoupon(ctx context.Context, code string) (*State, error) {
	store, done, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	if err := store.ApplyCoupon(ctx, code); err != nil {
		return nil, err
	}

	st := store.State()
	return &st, nil
}

func (s *service) RemoveCoupon(ctx context.Context) (*State, error) {
	store, done, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	store.RemoveCoupon()

	st := store.State()
	return &st, nil
}

/* ---------- helpers ---------- */

// open locks the caller's cart, restores it and subscribes persistence.
// The returned func must be called to release the lock.
func (s *service) open(ctx context.Context) (*Store, func(), error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, nil, ErrUserNotAuthenticated
	}

	unlock := s.lock(userID)

	saved, err := s.repo.Load(ctx, userID)
	if err != nil {
		// an unreadable snapshot starts the user with an empty cart
		logger.FromCtx(ctx).Warn("failed to load cart snapshot",
			zap.String("layer", "service"),
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
	}

	store := NewStore(s.policy, s.coupons)
	if saved != nil {
		store.Restore(*saved)
	}
	unsubscribe := store.Subscribe(s.persist(ctx, userID))

	return store, func() {
		unsubscribe()
		unlock()
	}, nil
}

func (s *service) persist(ctx context.Context, userID uint) func(State) {
	return func(st State) {
		if err := s.repo.Save(ctx, userID, st); err != nil {
			logger.FromCtx(ctx).Warn("failed to persist cart",
				zap.String("layer", "service"),
				zap.Uint("user_id", userID),
				zap.Error(err),
			)
		}
	}
}

func (s *service) lock(userID uint) func() {
	v, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
