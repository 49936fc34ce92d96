package cart

import (
	"context"
	"sync"

	"bestea-be/internal/coupon"
	"bestea-be/internal/logger"
	"bestea-be/internal/pricing"
	"bestea-be/internal/product"
	"bestea-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CouponValidator interface {
	Validate(ctx context.Context, code string, subtotal int64) (*coupon.Result, error)
}

// Store is the cart state container. Every mutation recomputes totals and
// then hands a snapshot to each subscriber, in subscription order.
type Store struct {
	mu          sync.Mutex
	state       State
	policy      pricing.Policy
	coupons     CouponValidator
	subscribers []func(State)
}

func NewStore(policy pricing.Policy, coupons CouponValidator) *Store {
	return &Store{policy: policy, coupons: coupons, state: State{Items: []Item{}}}
}

// Subscribe registers fn for change events and returns a function that
// removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscribers = append(s.subscribers, fn)
	idx := len(s.subscribers) - 1
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.subscribers[idx] = nil
	}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Restore replaces the state without notifying subscribers. Totals are
// recomputed so a snapshot written under an older policy is repriced.
func (s *Store) Restore(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st.clone()
	if s.state.Items == nil {
		s.state.Items = []Item{}
	}
	s.recompute()
}

// Add merges p into the line with the same product and variant, or appends
// a new line priced from p. Quantity defaults to 1. A line may not grow past
// MaxLineQuantity.
func (s *Store) Add(ctx context.Context, p *product.Product, variant *string, qty int) error {
	if p == nil || p.ID == uuid.Nil {
		logger.FromCtx(ctx).Warn("ignoring add to cart without product id",
			zap.String("layer", "cart"),
			zap.String("method", "Add"),
		)
		return nil
	}

	v, err := p.ResolveVariant(utils.PtrString(variant))
	if err != nil {
		return err
	}
	if qty <= 0 {
		qty = 1
	}

	var variantName *string
	if v != nil {
		variantName = utils.StrPtr(v.Name)
	}
	key := ItemKey(p.ID, variantName)

	if s.quantityOf(key)+qty > pricing.MaxLineQuantity {
		return ErrQuantityTooLarge
	}

	s.mutate(func(st *State) {
		for i := range st.Items {
			if st.Items[i].Key == key {
				st.Items[i].Quantity += qty
				st.Items[i].LineTotal = st.Items[i].UnitPrice * int64(st.Items[i].Quantity)
				return
			}
		}

		price := p.UnitPrice(v)
		st.Items = append(st.Items, Item{
			Key:         key,
			ProductID:   p.ID,
			ProductName: p.Name,
			Variant:     variantName,
			UnitPrice:   price,
			Quantity:    qty,
			Stock:       p.Available(v),
			LineTotal:   price * int64(qty),
		})
	})
	return nil
}

// UpdateQuantity sets a line's quantity; zero or less removes the line and
// anything above MaxLineQuantity is capped. It reports whether the key was
// in the cart.
func (s *Store) UpdateQuantity(key string, qty int) bool {
	if qty <= 0 {
		return s.Remove(key)
	}
	qty = min(qty, pricing.MaxLineQuantity)

	found := false
	s.mutate(func(st *State) {
		for i := range st.Items {
			if st.Items[i].Key == key {
				st.Items[i].Quantity = qty
				st.Items[i].LineTotal = st.Items[i].UnitPrice * int64(qty)
				found = true
				return
			}
		}
	})
	return found
}

func (s *Store) quantityOf(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.state.Items {
		if it.Key == key {
			return it.Quantity
		}
	}
	return 0
}

func (s *Store) Remove(key string) bool {
	found := false
	s.mutate(func(st *State) {
		for i := range st.Items {
			if st.Items[i].Key == key {
				st.Items = append(st.Items[:i], st.Items[i+1:]...)
				found = true
				return
			}
		}
	})
	return found
}

func (s *Store) Clear() {
	s.mutate(func(st *State) {
		st.Items = []Item{}
		st.Coupon = nil
	})
}

// ApplyCoupon validates code against the current subtotal. On rejection the
// cart is left as it was and the rejection is returned.
func (s *Store) ApplyCoupon(ctx context.Context, code string) error {
	subtotal := s.State().Totals.Subtotal

	res, err := s.coupons.Validate(ctx, code, subtotal)
	if err != nil {
		return err
	}

	c := res.Coupon
	s.mutate(func(st *State) { st.Coupon = &c })
	return nil
}

func (s *Store) RemoveCoupon() {
	s.mutate(func(st *State) { st.Coupon = nil })
}

func (s *Store) mutate(fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	s.recompute()
	snapshot := s.state.clone()
	subs := append([]func(State){}, s.subscribers...)
	s.mu.Unlock()

	for _, sub := range subs {
		if sub != nil {
			sub(snapshot)
		}
	}
}

// recompute derives totals from the items. A coupon whose minimum is no
// longer met stays attached but grants nothing until it is met again.
func (s *Store) recompute() {
	if len(s.state.Items) == 0 {
		s.state.Totals = pricing.Totals{}
		return
	}

	var subtotal int64
	for _, it := range s.state.Items {
		subtotal += it.LineTotal
	}

	var discount int64
	if s.state.Coupon != nil {
		discount = s.state.Coupon.Discount(subtotal)
	}

	s.state.Totals = s.policy.Quote(subtotal, discount, "")
}
