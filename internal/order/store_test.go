package order

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"bestea-be/internal/payment"
	"bestea-be/internal/product"

	"github.com/google/uuid"
)

// memStore is an in-memory Repository and Catalog sharing one product table,
// so tests can observe stock moving the way the SQL repository moves it.
type memStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]*product.Product
	orders   map[uuid.UUID]*Order
	counters map[int]int64

	duplicateNumbers int
	beforeCreate     func()
	createCalls      int
}

func newMemStore() *memStore {
	return &memStore{
		products: map[uuid.UUID]*product.Product{},
		orders:   map[uuid.UUID]*Order{},
		counters: map[int]int64{},
	}
}

func (m *memStore) addProduct(p product.Product) *product.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for i := range p.Variants {
		if p.Variants[i].ID == uuid.Nil {
			p.Variants[i].ID = uuid.New()
		}
		p.Variants[i].ProductID = p.ID
	}
	cp := copyProduct(&p)
	m.products[p.ID] = cp
	return copyProduct(cp)
}

func (m *memStore) product(id uuid.UUID) *product.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyProduct(m.products[id])
}

func (m *memStore) setStock(id uuid.UUID, stock int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[id].Stock = stock
}

func copyProduct(p *product.Product) *product.Product {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Variants = append([]product.Variant(nil), p.Variants...)
	return &cp
}

func copyOrder(o *Order) *Order {
	cp := *o
	cp.Items = append([]Item(nil), o.Items...)
	cp.History = append([]HistoryEntry(nil), o.History...)
	return &cp
}

func (m *memStore) GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	return copyProduct(p), nil
}

func (m *memStore) variant(p *product.Product, id uuid.UUID) *product.Variant {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i]
		}
	}
	return nil
}

func (m *memStore) Create(ctx context.Context, o *Order, lines []StockLine, prefix string) error {
	if m.beforeCreate != nil {
		m.beforeCreate()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++

	for _, l := range lines {
		p := m.products[l.ProductID]
		if p == nil {
			return &StockConflictError{ProductID: l.ProductID, VariantID: l.VariantID}
		}
		if l.VariantID != nil {
			v := m.variant(p, *l.VariantID)
			if v == nil || v.Stock < l.Quantity {
				return &StockConflictError{ProductID: l.ProductID, VariantID: l.VariantID}
			}
		} else if !p.Active || p.Stock < l.Quantity {
			return &StockConflictError{ProductID: l.ProductID}
		}
	}

	if m.duplicateNumbers > 0 {
		m.duplicateNumbers--
		return ErrDuplicateOrderNumber
	}

	for _, l := range lines {
		p := m.products[l.ProductID]
		if l.VariantID != nil {
			m.variant(p, *l.VariantID).Stock -= l.Quantity
		} else {
			p.Stock -= l.Quantity
		}
		p.PurchaseCount += l.Quantity
	}

	year := o.CreatedAt.Year()
	m.counters[year]++
	o.OrderNumber = FormatNumber(prefix, year, m.counters[year])
	m.orders[o.ID] = copyOrder(o)
	return nil
}

func (m *memStore) getOrder(id uuid.UUID) (*Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (m *memStore) List(ctx context.Context, opts ListOptions) ([]Order, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var all []Order
	for _, o := range m.orders {
		if opts.UserID != nil && o.UserID != *opts.UserID {
			continue
		}
		if opts.Status != nil && o.Status != *opts.Status {
			continue
		}
		all = append(all, *copyOrder(o))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	start := (opts.Page - 1) * opts.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + opts.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (m *memStore) UpdateStatus(ctx context.Context, id uuid.UUID, from Status, entry HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, err := m.getOrder(id)
	if err != nil {
		return err
	}
	if o.Status != from {
		return ErrStatusConflict
	}
	o.Status = entry.Status
	o.UpdatedAt = entry.CreatedAt
	o.History = append(o.History, entry)
	setMilestone(o, entry.Status, entry.CreatedAt)
	return nil
}

func (m *memStore) Cancel(ctx context.Context, in *Order, from Status, entry HistoryEntry, reason *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, err := m.getOrder(in.ID)
	if err != nil {
		return err
	}
	if o.Status != from {
		return ErrStatusConflict
	}

	for _, it := range o.Items {
		p := m.products[it.ProductID]
		if p == nil {
			continue
		}
		if it.VariantID != nil {
			if v := m.variant(p, *it.VariantID); v != nil {
				v.Stock += it.Quantity
			}
		} else {
			p.Stock += it.Quantity
		}
		p.PurchaseCount -= it.Quantity
		if p.PurchaseCount < 0 {
			p.PurchaseCount = 0
		}
	}

	o.Status = StatusCancelled
	o.CancellationReason = reason
	o.UpdatedAt = entry.CreatedAt
	o.History = append(o.History, entry)
	setMilestone(o, StatusCancelled, entry.CreatedAt)
	return nil
}

// memStore.GetByID is the catalog lookup; orderRepo exposes the order side.
func (m *memStore) repoGet(ctx context.Context, id uuid.UUID) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, err := m.getOrder(id)
	if err != nil {
		return nil, err
	}
	return copyOrder(o), nil
}

type orderRepo struct{ *memStore }

func (r orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return r.repoGet(ctx, id)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (n *recordingNotifier) Notify(ctx context.Context, e Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return n.err
}

func (n *recordingNotifier) types() []EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]EventType, len(n.events))
	for i, e := range n.events {
		out[i] = e.Type
	}
	return out
}

type fakePayments struct {
	calls []payment.Result
	err   error
}

func (f *fakePayments) RecordResult(ctx context.Context, orderID uuid.UUID, r payment.Result) error {
	f.calls = append(f.calls, r)
	return f.err
}

var errBoom = errors.New("boom")
