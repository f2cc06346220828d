package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	apperrors "github.com/yashrajoria/E-Commerce-backend/storefront/common/errors"
	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
)

// memoryCartRepo stores deep copies so tests catch callers that mutate a
// cart after saving it.
type memoryCartRepo struct {
	mu      sync.Mutex
	carts   map[string]*models.Cart
	saveErr error
	getErr  error
}

func newMemoryCartRepo() *memoryCartRepo {
	return &memoryCartRepo{carts: map[string]*models.Cart{}}
}

func copyCart(c *models.Cart) *models.Cart {
	out := *c
	out.Items = append([]models.CartItem{}, c.Items...)
	return &out
}

func (r *memoryCartRepo) GetCart(_ context.Context, userID string) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	c, ok := r.carts[userID]
	if !ok {
		return nil, nil
	}
	return copyCart(c), nil
}

func (r *memoryCartRepo) SaveCart(_ context.Context, c *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.carts[c.UserID] = copyCart(c)
	return nil
}

func (r *memoryCartRepo) DeleteCart(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
	return nil
}

func (r *memoryCartRepo) stored(userID string) *models.Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.carts[userID]
}

type memoryIdemStore struct {
	mu   sync.Mutex
	keys map[string]string
}

func newMemoryIdemStore() *memoryIdemStore {
	return &memoryIdemStore{keys: map[string]string{}}
}

func (s *memoryIdemStore) GetIdempotency(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], nil
}

func (s *memoryIdemStore) SetIdempotency(_ context.Context, key, orderID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = orderID
	return nil
}

type stubCatalog struct {
	mu       sync.Mutex
	products map[string]*models.Product
	calls    int
	err      error
}

func newStubCatalog(products ...*models.Product) *stubCatalog {
	c := &stubCatalog{products: map[string]*models.Product{}}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *stubCatalog) GetProduct(_ context.Context, productID string) (*models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	p, ok := c.products[productID]
	if !ok {
		return nil, apperrors.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.CheckoutEvent
	err    error
}

func (p *recordingPublisher) PublishCheckout(_ context.Context, event models.CheckoutEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

type countingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func (m *countingMetrics) RecordCount(_ context.Context, name string, _ map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = map[string]int{}
	}
	m.counts[name]++
	return nil
}

func (m *countingMetrics) get(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[name]
}

func testProduct(id string, mrp, cost int64) *models.Product {
	return &models.Product{
		ID:       id,
		Name:     "Product " + id,
		SellerID: "seller-1",
		Price: models.Price{
			MRP:             decimal.NewFromInt(mrp),
			Cost:            decimal.NewFromInt(cost),
			DiscountPercent: models.DerivedDiscountPercent(decimal.NewFromInt(mrp), decimal.NewFromInt(cost)),
		},
	}
}

var errBoom = errors.New("boom")
