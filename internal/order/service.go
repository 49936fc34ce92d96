package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"bestea-be/internal/apperr"
	"bestea-be/internal/coupon"
	"bestea-be/internal/logger"
	"bestea-be/internal/metrics"
	"bestea-be/internal/payment"
	"bestea-be/internal/pricing"
	"bestea-be/internal/product"
	"bestea-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Catalog is the live product lookup used to validate and price lines.
type Catalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error)
}

type CouponValidator interface {
	Validate(ctx context.Context, code string, subtotal int64) (*coupon.Result, error)
}

type PaymentRecorder interface {
	RecordResult(ctx context.Context, orderID uuid.UUID, r payment.Result) error
}

type Service interface {
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*Order, error)
	GetOrder(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context, opts ListOptions) (*ListResult, error)
	ListAllOrders(ctx context.Context, opts ListOptions) (*ListResult, error)
	AdvanceStatus(ctx context.Context, id string, status string, note *string) (*Order, error)
	Cancel(ctx context.Context, id string, reason *string) (*Order, error)
	RecordPayment(ctx context.Context, id string, res payment.Result) (*Order, error)
}

type Config struct {
	Pricing            pricing.Policy
	CancellationWindow time.Duration
	NumberPrefix       string
}

func DefaultConfig() Config {
	return Config{
		Pricing:            pricing.DefaultPolicy(),
		CancellationWindow: 24 * time.Hour,
		NumberPrefix:       "BT",
	}
}

type service struct {
	repo     Repository
	catalog  Catalog
	coupons  CouponValidator
	payments PaymentRecorder
	notifier Notifier
	cfg      Config
	now      func() time.Time
	metrics  *metrics.Registry
}

type Option func(*service)

// WithClock replaces time.Now, used by tests around the cancellation window.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func WithNotifier(n Notifier) Option {
	return func(s *service) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithMetrics(r *metrics.Registry) Option {
	return func(s *service) { s.metrics = r }
}

func NewService(
	repo Repository,
	catalog Catalog,
	coupons CouponValidator,
	payments PaymentRecorder,
	cfg Config,
	opts ...Option,
) Service {
	s := &service{
		repo:     repo,
		catalog:  catalog,
		coupons:  coupons,
		payments: payments,
		notifier: nopNotifier{},
		cfg:      cfg,
		now:      time.Now,
		metrics:  metrics.Default,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type resolvedLine struct {
	product *product.Product
	variant *product.Variant
	qty     int
}

func (l resolvedLine) key() string {
	if l.variant != nil {
		return l.product.ID.String() + "::" + l.variant.ID.String()
	}
	return l.product.ID.String()
}

func (s *service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PlaceOrder"),
	)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	/* ---------- INPUT VALIDATION ---------- */

	if len(in.Items) == 0 {
		log.Debug("empty cart")
		return nil, ErrEmptyCart
	}

	addr := in.ShippingAddress.Normalize()
	if err := addr.Validate(); err != nil {
		return nil, err
	}

	method, err := payment.ParseMethod(in.PaymentMethod)
	if err != nil {
		return nil, err
	}

	for i, li := range in.Items {
		if li.Quantity < 1 {
			return nil, ErrInvalidQuantity.WithDetail("line", i)
		}
		if li.Quantity > pricing.MaxLineQuantity {
			return nil, ErrQuantityTooLarge.WithDetail("line", i)
		}
	}

	/* ---------- PRODUCT VALIDATION (NO MUTATION) ---------- */

	lines, err := s.resolveLines(ctx, in.Items)
	if err != nil {
		log.Info("order rejected", zap.Error(err))
		return nil, err
	}

	var subtotal int64
	for _, l := range lines {
		if l.qty > l.product.Available(l.variant) {
			err := newInsufficientStock(l.product.Name, l.product.Available(l.variant))
			log.Info("order rejected", zap.Error(err))
			return nil, err
		}
		subtotal += l.product.UnitPrice(l.variant) * int64(l.qty)
	}

	var (
		discount   int64
		couponCode *string
	)
	if code := strings.TrimSpace(utils.PtrString(in.CouponCode)); code != "" {
		if s.coupons == nil {
			return nil, coupon.ErrCodeNotFound
		}
		res, err := s.coupons.Validate(ctx, code, subtotal)
		if err != nil {
			return nil, err
		}
		discount = res.Discount
		couponCode = utils.StrPtr(res.Coupon.Code)
	}

	totals := s.cfg.Pricing.Quote(subtotal, discount, string(method))

	/* ---------- BUILD ORDER ---------- */

	now := s.now()
	o := &Order{
		ID:              uuid.New(),
		UserID:          userID,
		Subtotal:        totals.Subtotal,
		Discount:        totals.Discount,
		CouponCode:      couponCode,
		Shipping:        totals.Shipping,
		Tax:             totals.Tax,
		Total:           totals.Total,
		ShippingAddress: addr,
		PaymentMethod:   method,
		PaymentStatus:   payment.StatusPending,
		Notes:           utils.TrimPtr(in.Notes),
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
		History: []HistoryEntry{{
			Status:    StatusPending,
			Note:      utils.StrPtr("Order placed"),
			ChangedBy: &userID,
			CreatedAt: now,
		}},
	}

	stock := make([]StockLine, 0, len(lines))
	for _, l := range lines {
		price := l.product.UnitPrice(l.variant)
		it := Item{
			ProductID:   l.product.ID,
			ProductName: l.product.Name,
			UnitPrice:   price,
			Quantity:    l.qty,
			LineTotal:   price * int64(l.qty),
		}
		sl := StockLine{ProductID: l.product.ID, Quantity: l.qty}
		if l.variant != nil {
			vid := l.variant.ID
			it.VariantID = &vid
			it.Variant = utils.StrPtr(l.variant.Name)
			sl.VariantID = &vid
		}
		o.Items = append(o.Items, it)
		stock = append(stock, sl)
	}

	/* ---------- PERSIST ---------- */

	for attempt := 1; ; attempt++ {
		err = s.repo.Create(ctx, o, stock, s.cfg.NumberPrefix)
		if err == nil {
			break
		}

		if errors.Is(err, ErrDuplicateOrderNumber) && attempt < maxPlaceAttempts {
			s.metrics.Counter("order_number_retries").Inc()
			log.Warn("order number collision, retrying", zap.Int("attempt", attempt))
			continue
		}

		var conflict *StockConflictError
		if errors.As(err, &conflict) {
			s.metrics.Counter("order_stock_conflicts").Inc()
			return nil, s.stockConflict(ctx, conflict)
		}

		log.Error("failed to persist order", zap.String("order_id", o.ID.String()), zap.Error(err))
		return nil, err
	}

	s.metrics.Counter("orders_placed").Inc()
	log.Info("order placed",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.Int64("total", o.Total),
		zap.Int("lines", len(o.Items)),
	)

	s.notify(ctx, Event{Type: EventPlaced, Order: *o, OccurredAt: now})

	return o, nil
}

// resolveLines validates every requested line against the live catalog in
// submission order and merges lines that target the same product and
// variant.
func (s *service) resolveLines(ctx context.Context, items []LineInput) ([]resolvedLine, error) {
	products := map[uuid.UUID]*product.Product{}
	index := map[string]int{}
	var lines []resolvedLine

	for _, li := range items {
		pid, err := uuid.Parse(strings.TrimSpace(li.ProductID))
		if err != nil {
			return nil, productNotFound(li.ProductID)
		}

		p, ok := products[pid]
		if !ok {
			p, err = s.catalog.GetByID(ctx, pid)
			if errors.Is(err, product.ErrProductNotFound) {
				return nil, productNotFound(li.ProductID)
			}
			if err != nil {
				return nil, err
			}
			products[pid] = p
		}

		if !p.Active {
			return nil, newProductUnavailable(p.Name)
		}

		v, err := p.ResolveVariant(utils.PtrString(li.Variant))
		if err != nil {
			return nil, product.ErrVariantNotFound.
				WithDetail("product", p.Name).
				WithDetail("variant", utils.PtrString(li.Variant))
		}

		l := resolvedLine{product: p, variant: v, qty: li.Quantity}
		if i, ok := index[l.key()]; ok {
			lines[i].qty += li.Quantity
			continue
		}
		index[l.key()] = len(lines)
		lines = append(lines, l)
	}

	return lines, nil
}

func productNotFound(id string) error {
	return product.ErrProductNotFound.WithDetail("productId", id)
}

// stockConflict turns a lost decrement race into the same error a caller
// would have seen had the stock been short up front.
func (s *service) stockConflict(ctx context.Context, c *StockConflictError) error {
	p, err := s.catalog.GetByID(ctx, c.ProductID)
	if err != nil {
		return newInsufficientStock(c.ProductID.String(), 0)
	}

	available := p.Stock
	if c.VariantID != nil {
		available = 0
		for _, v := range p.Variants {
			if v.ID == *c.VariantID {
				available = v.Stock
			}
		}
	}
	return newInsufficientStock(p.Name, available)
}

func (s *service) load(ctx context.Context, id string) (*Order, error) {
	oid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, ErrOrderNotFound
	}
	return s.repo.GetByID(ctx, oid)
}

func (s *service) GetOrder(ctx context.Context, id string) (*Order, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if o.UserID != userID && !utils.IsAdmin(ctx) {
		logger.FromCtx(ctx).Warn("order access denied",
			zap.String("method", "GetOrder"),
			zap.String("order_id", id),
		)
		return nil, ErrForbidden
	}

	return o, nil
}

func (s *service) ListOrders(ctx context.Context, opts ListOptions) (*ListResult, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	opts.UserID = &userID
	return s.list(ctx, opts)
}

func (s *service) ListAllOrders(ctx context.Context, opts ListOptions) (*ListResult, error) {
	if !utils.IsAdmin(ctx) {
		return nil, ErrForbidden
	}
	opts.UserID = nil
	return s.list(ctx, opts)
}

func (s *service) list(ctx context.Context, opts ListOptions) (*ListResult, error) {
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 10
	} else if opts.Limit > 100 {
		opts.Limit = 100
	}

	orders, total, err := s.repo.List(ctx, opts)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list orders",
			zap.String("layer", "service"),
			zap.String("method", "ListOrders"),
			zap.Error(err),
		)
		return nil, err
	}

	return &ListResult{
		Orders:     orders,
		Pagination: newPagination(opts.Page, opts.Limit, total),
	}, nil
}

func (s *service) AdvanceStatus(ctx context.Context, id string, raw string, note *string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AdvanceStatus"),
		zap.String("order_id", id),
		zap.String("status", raw),
	)

	actorID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	if !utils.IsAdmin(ctx) {
		log.Warn("non-admin status change rejected")
		return nil, ErrForbidden
	}

	to, err := ParseStatus(raw)
	if err != nil {
		return nil, err
	}

	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if to == StatusCancelled {
		if err := checkCancellable(o.Status); err != nil {
			return nil, err
		}
		return s.cancel(ctx, o, actorID, note)
	}

	if !CanTransition(o.Status, to) {
		log.Info("illegal transition", zap.String("from", string(o.Status)))
		return nil, newInvalidTransition(o.Status, to)
	}

	from := o.Status
	entry := HistoryEntry{
		Status:    to,
		Note:      utils.TrimPtr(note),
		ChangedBy: &actorID,
		CreatedAt: stamp(o, s.now()),
	}

	if err := s.repo.UpdateStatus(ctx, o.ID, from, entry); err != nil {
		if !errors.Is(err, ErrStatusConflict) {
			log.Error("failed to update order status", zap.Error(err))
		}
		return nil, err
	}

	o.Status = to
	o.UpdatedAt = entry.CreatedAt
	o.History = append(o.History, entry)
	setMilestone(o, to, entry.CreatedAt)

	s.metrics.Counter("order_status_updates").Inc()
	log.Info("order status updated", zap.String("from", string(from)))

	s.notify(ctx, Event{Type: EventStatusUpdated, Order: *o, PreviousStatus: from, OccurredAt: entry.CreatedAt})

	return o, nil
}

func (s *service) Cancel(ctx context.Context, id string, reason *string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CancelOrder"),
		zap.String("order_id", id),
	)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if o.UserID != userID {
		log.Warn("cancel by non-owner rejected")
		return nil, ErrForbidden
	}

	if err := checkCancellable(o.Status); err != nil {
		return nil, err
	}

	// The boundary itself is still inside the window.
	if s.now().Sub(o.CreatedAt) > s.cfg.CancellationWindow {
		log.Info("cancellation window expired", zap.Time("created_at", o.CreatedAt))
		return nil, newWindowExpired(s.cfg.CancellationWindow)
	}

	return s.cancel(ctx, o, userID, reason)
}

func checkCancellable(status Status) error {
	switch {
	case status == StatusCancelled:
		return ErrAlreadyCancelled
	case status.Dispatched():
		return ErrAlreadyShipped
	case !status.Cancellable():
		return newInvalidTransition(status, StatusCancelled)
	}
	return nil
}

func (s *service) cancel(ctx context.Context, o *Order, actorID uint, reason *string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "cancel"),
		zap.String("order_id", o.ID.String()),
	)

	reason = utils.TrimPtr(reason)
	from := o.Status
	entry := HistoryEntry{
		Status:    StatusCancelled,
		Note:      reason,
		ChangedBy: &actorID,
		CreatedAt: stamp(o, s.now()),
	}

	if err := s.repo.Cancel(ctx, o, from, entry, reason); err != nil {
		if !errors.Is(err, ErrStatusConflict) {
			log.Error("failed to cancel order", zap.Error(err))
		}
		return nil, err
	}

	o.Status = StatusCancelled
	o.CancellationReason = reason
	o.UpdatedAt = entry.CreatedAt
	o.History = append(o.History, entry)
	setMilestone(o, StatusCancelled, entry.CreatedAt)

	s.metrics.Counter("orders_cancelled").Inc()
	log.Info("order cancelled", zap.String("from", string(from)))

	s.notify(ctx, Event{Type: EventCancelled, Order: *o, PreviousStatus: from, OccurredAt: entry.CreatedAt})

	return o, nil
}

func (s *service) RecordPayment(ctx context.Context, id string, res payment.Result) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "RecordPayment"),
		zap.String("order_id", id),
	)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	if err := res.Validate(); err != nil {
		return nil, err
	}

	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if o.UserID != userID {
		log.Warn("payment by non-owner rejected")
		return nil, ErrForbidden
	}
	if o.Status == StatusCancelled {
		return nil, payment.ErrOrderNotPayable.WithDetail("status", string(o.Status))
	}

	if err := s.payments.RecordResult(ctx, o.ID, res); err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			log.Error("failed to record payment", zap.Error(err))
		}
		return nil, err
	}

	now := s.now()
	o.PaymentStatus = payment.StatusPaid
	o.PaymentID = utils.StrPtr(res.ID)
	o.PayerEmail = utils.TrimPtr(utils.StrPtr(res.EmailAddress))
	if o.PaidAt == nil {
		o.PaidAt = &now
	}
	o.UpdatedAt = now

	s.metrics.Counter("payments_recorded").Inc()
	log.Info("payment recorded", zap.String("payment_id", res.ID))

	return o, nil
}

func (s *service) notify(ctx context.Context, e Event) {
	if err := s.notifier.Notify(ctx, e); err != nil {
		s.metrics.Counter("notification_failures").Inc()
		logger.FromCtx(ctx).Warn("order notification failed",
			zap.String("event", string(e.Type)),
			zap.String("order_id", e.Order.ID.String()),
			zap.Error(err),
		)
	}
}

func setMilestone(o *Order, s Status, at time.Time) {
	set := func(p **time.Time) {
		if *p == nil {
			t := at
			*p = &t
		}
	}
	switch s {
	case StatusConfirmed:
		set(&o.ConfirmedAt)
	case StatusProcessing:
		set(&o.ProcessingAt)
	case StatusShipped:
		set(&o.ShippedAt)
	case StatusDelivered:
		set(&o.DeliveredAt)
	case StatusCancelled:
		set(&o.CancelledAt)
	}
}

// stamp keeps history timestamps strictly increasing even when the clock
// does not move between two updates.
func stamp(o *Order, now time.Time) time.Time {
	if last := o.lastHistoryAt(); !now.After(last) {
		return last.Add(time.Microsecond)
	}
	return now
}
