package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yashrajoria/E-Commerce-backend/storefront/cart"
	apperrors "github.com/yashrajoria/E-Commerce-backend/storefront/common/errors"
	"github.com/yashrajoria/E-Commerce-backend/storefront/common/logger"
	"github.com/yashrajoria/E-Commerce-backend/storefront/database"
	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
	awspkg "github.com/yashrajoria/E-Commerce-backend/storefront/pkg/aws"
	"go.uber.org/zap"
)

const ServiceName = "storefront-service"

// CartService defines the cart business logic. Every mutation of one user's
// cart is serialized; different users proceed in parallel.
type CartService interface {
	GetCart(ctx context.Context, userID string) (models.CartView, error)
	GetSummary(ctx context.Context, userID string) (models.Summary, error)
	AddItem(ctx context.Context, userID, productID string) (models.CartView, error)
	RemoveItem(ctx context.Context, userID, productID string) (models.CartView, error)
	ClearCart(ctx context.Context, userID string) (models.CartView, error)
	ReplaceCart(ctx context.Context, userID string, items []models.CartItem) (models.CartView, error)
	Checkout(ctx context.Context, userID, idempotencyKey string) (*models.CheckoutResult, error)
	BuyNow(ctx context.Context, userID, productID, idempotencyKey string) (*models.CheckoutResult, error)
}

type cartServiceImpl struct {
	repo           database.CartRepository
	idem           database.IdempotencyStore
	catalog        ProductCatalog
	publisher      CheckoutPublisher
	metrics        CountRecorder
	idempotencyTTL time.Duration
	logger         *zap.Logger
	locks          *userLocks
	now            func() time.Time
}

// NewCartService creates a new CartService. idem and metrics may be nil.
func NewCartService(
	repo database.CartRepository,
	idem database.IdempotencyStore,
	catalog ProductCatalog,
	publisher CheckoutPublisher,
	metrics CountRecorder,
	idempotencyTTL time.Duration,
	logger *zap.Logger,
) CartService {
	return &cartServiceImpl{
		repo:           repo,
		idem:           idem,
		catalog:        catalog,
		publisher:      publisher,
		metrics:        metrics,
		idempotencyTTL: idempotencyTTL,
		logger:         logger,
		locks:          newUserLocks(),
		now:            time.Now,
	}
}

func (s *cartServiceImpl) GetCart(ctx context.Context, userID string) (models.CartView, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return models.CartView{}, err
	}
	return cart.View(c, userID), nil
}

func (s *cartServiceImpl) GetSummary(ctx context.Context, userID string) (models.Summary, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return models.Summary{}, err
	}
	return cart.Summarize(c), nil
}

func (s *cartServiceImpl) AddItem(ctx context.Context, userID, productID string) (models.CartView, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return models.CartView{}, err
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	c, err := s.load(ctx, userID)
	if err != nil {
		return models.CartView{}, err
	}
	if err := cart.Add(c, product); err != nil {
		if errors.Is(err, cart.ErrLimitExceeded) {
			return models.CartView{}, apperrors.WithMessage(apperrors.ErrValidation, err.Error())
		}
		return models.CartView{}, apperrors.Wrap(apperrors.ErrInvalidProduct, err)
	}
	if err := s.persist(ctx, c); err != nil {
		return models.CartView{}, err
	}

	s.count(ctx, awspkg.MetricCartItemsAdded)
	logger.For(ctx, s.logger).Debug("item added to cart", zap.String("user_id", userID), zap.String("product_id", productID))
	return cart.View(c, userID), nil
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, userID, productID string) (models.CartView, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	c, err := s.load(ctx, userID)
	if err != nil {
		return models.CartView{}, err
	}
	if err := cart.Remove(c, productID); err != nil {
		if errors.Is(err, cart.ErrItemNotInCart) {
			return models.CartView{}, apperrors.Wrap(apperrors.ErrItemNotInCart, err)
		}
		return models.CartView{}, err
	}
	if err := s.persist(ctx, c); err != nil {
		return models.CartView{}, err
	}

	s.count(ctx, awspkg.MetricCartItemsRemoved)
	return cart.View(c, userID), nil
}

func (s *cartServiceImpl) ClearCart(ctx context.Context, userID string) (models.CartView, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	if err := s.repo.DeleteCart(ctx, userID); err != nil {
		return models.CartView{}, apperrors.Wrap(apperrors.ErrDatabaseQuery, err)
	}

	s.count(ctx, awspkg.MetricCartCleared)
	return cart.View(nil, userID), nil
}

// ReplaceCart overwrites the cart with the client's lines. Only product ids
// and quantities are taken from the client; names and prices come from the
// catalog.
func (s *cartServiceImpl) ReplaceCart(ctx context.Context, userID string, items []models.CartItem) (models.CartView, error) {
	requested := make([]models.CartItem, 0, len(items))
	for _, it := range items {
		requested = append(requested, models.CartItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	c, err := cart.Normalize(userID, requested)
	if err != nil {
		return models.CartView{}, apperrors.WithMessage(apperrors.ErrValidation, err.Error())
	}

	for i := range c.Items {
		product, err := s.catalog.GetProduct(ctx, c.Items[i].ProductID)
		if err != nil {
			return models.CartView{}, err
		}
		line := product.ToCartItem()
		line.Quantity = c.Items[i].Quantity
		c.Items[i] = line
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	if err := s.persist(ctx, c); err != nil {
		return models.CartView{}, err
	}
	return cart.View(c, userID), nil
}

// Checkout publishes the whole cart and clears it. The cart is left
// untouched when publishing fails.
func (s *cartServiceImpl) Checkout(ctx context.Context, userID, idempotencyKey string) (*models.CheckoutResult, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	if res, err := s.replay(ctx, userID, idempotencyKey); err != nil || res != nil {
		return res, err
	}

	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(c.Items) == 0 {
		return nil, apperrors.ErrCartEmpty
	}

	event := s.newEvent(models.EventCheckoutRequested, userID, c.Items)
	if err := s.publish(ctx, event); err != nil {
		return nil, err
	}
	s.remember(ctx, userID, idempotencyKey, event.OrderID)

	if err := s.repo.DeleteCart(ctx, userID); err != nil {
		// the event is out, so the checkout itself still succeeds
		logger.For(ctx, s.logger).Error("failed to clear cart after checkout",
			zap.String("user_id", userID), zap.String("order_id", event.OrderID), zap.Error(err))
	}

	return &models.CheckoutResult{
		OrderID: event.OrderID,
		Message: "checkout initiated",
		Summary: event.Summary,
	}, nil
}

// BuyNow checks out a single product. If the product is in the cart its
// whole line is purchased and removed; otherwise one unit is bought and the
// cart is not touched.
func (s *cartServiceImpl) BuyNow(ctx context.Context, userID, productID, idempotencyKey string) (*models.CheckoutResult, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	if res, err := s.replay(ctx, userID, idempotencyKey); err != nil || res != nil {
		return res, err
	}

	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	remaining := cart.Clone(c)
	line, err := cart.Take(remaining, productID)
	inCart := err == nil
	if !inCart {
		product, err := s.catalog.GetProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		line = product.ToCartItem()
	}

	event := s.newEvent(models.EventBuyNowRequested, userID, []models.CartItem{line})
	if err := s.publish(ctx, event); err != nil {
		return nil, err
	}
	s.remember(ctx, userID, idempotencyKey, event.OrderID)

	if inCart {
		if err := s.persist(ctx, remaining); err != nil {
			logger.For(ctx, s.logger).Error("failed to drop purchased line",
				zap.String("user_id", userID), zap.String("order_id", event.OrderID), zap.Error(err))
		}
		c = remaining
	}

	return &models.CheckoutResult{
		OrderID:   event.OrderID,
		Message:   "checkout initiated",
		Summary:   event.Summary,
		Remaining: cart.View(c, userID).Cart,
	}, nil
}

func (s *cartServiceImpl) newEvent(kind, userID string, items []models.CartItem) models.CheckoutEvent {
	lines := &models.Cart{UserID: userID, Items: items}
	return models.CheckoutEvent{
		Event:     kind,
		OrderID:   uuid.NewString(),
		UserID:    userID,
		Items:     items,
		Summary:   cart.Summarize(lines),
		Timestamp: s.now().UTC(),
	}
}

func (s *cartServiceImpl) publish(ctx context.Context, event models.CheckoutEvent) error {
	log := logger.For(ctx, s.logger).With(
		zap.String("user_id", event.UserID),
		zap.String("order_id", event.OrderID),
		zap.String("event", event.Event),
	)
	if err := s.publisher.PublishCheckout(ctx, event); err != nil {
		s.count(ctx, awspkg.MetricCheckoutFailed)
		log.Error("failed to publish checkout event", zap.Error(err))
		return apperrors.Wrap(apperrors.ErrCheckoutFailed, err)
	}
	s.count(ctx, awspkg.MetricCartCheckouts)
	log.Info("checkout event published",
		zap.Int("lines", len(event.Items)),
		zap.Int("total_quantity", event.Summary.TotalQuantity),
		zap.String("total", event.Summary.TotalDiscountedPrice.StringFixed(2)),
	)
	return nil
}

func (s *cartServiceImpl) idemKey(userID, key string) string {
	return userID + ":" + key
}

// replay returns the earlier result for a reused idempotency key, or nil.
func (s *cartServiceImpl) replay(ctx context.Context, userID, key string) (*models.CheckoutResult, error) {
	if key == "" || s.idem == nil {
		return nil, nil
	}
	orderID, err := s.idem.GetIdempotency(ctx, s.idemKey(userID, key))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrServiceUnavailable, err)
	}
	if orderID == "" {
		return nil, nil
	}
	s.count(ctx, awspkg.MetricCheckoutReplayed)
	return &models.CheckoutResult{OrderID: orderID, Replayed: true, Message: "checkout already initiated"}, nil
}

func (s *cartServiceImpl) remember(ctx context.Context, userID, key, orderID string) {
	if key == "" || s.idem == nil {
		return
	}
	if err := s.idem.SetIdempotency(ctx, s.idemKey(userID, key), orderID, s.idempotencyTTL); err != nil {
		logger.For(ctx, s.logger).Warn("failed to record idempotency key",
			zap.String("user_id", userID), zap.String("order_id", orderID), zap.Error(err))
	}
}

func (s *cartServiceImpl) load(ctx context.Context, userID string) (*models.Cart, error) {
	c, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		logger.For(ctx, s.logger).Error("failed to load cart", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, err)
	}
	if c == nil {
		return models.NewCart(userID), nil
	}
	c.UserID = userID
	return c, nil
}

// persist saves the cart, or deletes it once it has no lines left.
func (s *cartServiceImpl) persist(ctx context.Context, c *models.Cart) error {
	var err error
	if len(c.Items) == 0 {
		err = s.repo.DeleteCart(ctx, c.UserID)
	} else {
		err = s.repo.SaveCart(ctx, c)
	}
	if err != nil {
		logger.For(ctx, s.logger).Error("failed to save cart", zap.String("user_id", c.UserID), zap.Error(err))
		return apperrors.Wrap(apperrors.ErrDatabaseQuery, err)
	}
	return nil
}

func (s *cartServiceImpl) count(ctx context.Context, metric string) {
	if s.metrics == nil {
		return
	}
	_ = s.metrics.RecordCount(ctx, metric, map[string]string{"Service": ServiceName})
}

// userLocks hands out one mutex per user and forgets it once nobody holds
// or waits for it.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*userLock)}
}

func (l *userLocks) lock(userID string) func() {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}
