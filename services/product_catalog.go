package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/yashrajoria/E-Commerce-backend/storefront/cart"
	apperrors "github.com/yashrajoria/E-Commerce-backend/storefront/common/errors"
	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
	awspkg "github.com/yashrajoria/E-Commerce-backend/storefront/pkg/aws"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ProductCatalog resolves a product id to a validated price snapshot.
type ProductCatalog interface {
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
}

// catalogProduct is the product service's internal payload.
type catalogProduct struct {
	ID           string       `json:"_id" validate:"required,max=64"`
	ProductName  string       `json:"productName" validate:"required,max=500"`
	ProductImage string       `json:"productImage" validate:"max=2048"`
	Seller       string       `json:"seller" validate:"max=64"`
	Price        catalogPrice `json:"price"`
}

type catalogPrice struct {
	MRP             decimal.Decimal `json:"mrp"`
	Cost            decimal.Decimal `json:"cost"`
	DiscountPercent *int64          `json:"discountPercent,omitempty"`
}

// HTTPProductCatalog calls GET {baseURL}/products/internal/{id}.
type HTTPProductCatalog struct {
	baseURL  string
	client   *http.Client
	validate *validator.Validate
	logger   *zap.Logger
}

func NewHTTPProductCatalog(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPProductCatalog {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPProductCatalog{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		validate: validator.New(),
		logger:   logger,
	}
}

func (p *HTTPProductCatalog) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	endpoint := fmt.Sprintf("%s/products/internal/%s", p.baseURL, url.PathEscape(productID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("product service unreachable", zap.String("product_id", productID), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.ErrBadGateway, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.WithMessage(apperrors.ErrProductNotFound, fmt.Sprintf("Product %s not found", productID))
	case resp.StatusCode != http.StatusOK:
		return nil, apperrors.Wrap(apperrors.ErrBadGateway, fmt.Errorf("product service returned %d", resp.StatusCode))
	}

	var payload catalogProduct
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidProduct, fmt.Errorf("decode product %s: %w", productID, err))
	}
	product, err := p.toProduct(payload)
	if err != nil {
		p.logger.Warn("product payload rejected", zap.String("product_id", productID), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.ErrInvalidProduct, err)
	}
	return product, nil
}

func (p *HTTPProductCatalog) toProduct(payload catalogProduct) (*models.Product, error) {
	if err := p.validate.Struct(payload); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:       payload.ID,
		Name:     payload.ProductName,
		Image:    payload.ProductImage,
		SellerID: payload.Seller,
		Price: models.Price{
			MRP:  payload.Price.MRP,
			Cost: payload.Price.Cost,
			// any upstream discountPercent is ignored
			DiscountPercent: models.DerivedDiscountPercent(payload.Price.MRP, payload.Price.Cost),
		},
	}
	if err := cart.ValidateItem(product.ToCartItem()); err != nil {
		return nil, err
	}
	return product, nil
}

// CountRecorder is the part of the metrics client the services use.
type CountRecorder interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
}

// CachedCatalog is a read-through Redis cache in front of a ProductCatalog.
// Redis failures fall back to the upstream catalog. Concurrent misses for the
// same product share one upstream call.
type CachedCatalog struct {
	group   singleflight.Group
	next    ProductCatalog
	redis   *redis.Client
	ttl     time.Duration
	metrics CountRecorder
	logger  *zap.Logger
}

const (
	productSnapshotPrefix = "product:snapshot:"
	sharedFetchTimeout    = 10 * time.Second
)

func NewCachedCatalog(next ProductCatalog, client *redis.Client, ttl time.Duration, metrics CountRecorder, logger *zap.Logger) *CachedCatalog {
	return &CachedCatalog{next: next, redis: client, ttl: ttl, metrics: metrics, logger: logger}
}

func (c *CachedCatalog) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	key := productSnapshotPrefix + productID

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var product models.Product
		if jsonErr := json.Unmarshal(data, &product); jsonErr == nil {
			c.count(ctx, awspkg.MetricCacheHits)
			return &product, nil
		}
		c.logger.Warn("dropping unreadable product snapshot", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("product cache read failed", zap.String("key", key), zap.Error(err))
	}
	c.count(ctx, awspkg.MetricCacheMisses)

	// the shared fetch outlives any single caller; each caller still honours
	// its own deadline.
	ch := c.group.DoChan(productID, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()

		product, err := c.next.GetProduct(fetchCtx, productID)
		if err != nil {
			return nil, err
		}
		if encoded, err := json.Marshal(product); err == nil {
			if err := c.redis.Set(fetchCtx, key, encoded, c.ttl).Err(); err != nil {
				c.logger.Warn("product cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
		return product, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		product := *res.Val.(*models.Product)
		return &product, nil
	}
}

func (c *CachedCatalog) count(ctx context.Context, metric string) {
	if c.metrics == nil {
		return
	}
	_ = c.metrics.RecordCount(ctx, metric, map[string]string{"Cache": "product"})
}
