package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/yashrajoria/E-Commerce-backend/storefront/common/errors"
	"github.com/yashrajoria/E-Commerce-backend/storefront/middleware"
	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
	"github.com/yashrajoria/E-Commerce-backend/storefront/services"
)

const (
	IdempotencyHeader    = "Idempotency-Key"
	maxIdempotencyKeyLen = 255
	maxProductIDLen      = 64
)

// CartController handles HTTP requests for the caller's cart.
type CartController struct {
	cartService services.CartService
}

func NewCartController(cartService services.CartService) *CartController {
	return &CartController{cartService: cartService}
}

// GetCart handles GET /cart.
func (cc *CartController) GetCart(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	view, err := cc.cartService.GetCart(ctx.Request.Context(), userID)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

// GetSummary handles GET /cart/summary.
func (cc *CartController) GetSummary(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	summary, err := cc.cartService.GetSummary(ctx.Request.Context(), userID)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, summary)
}

// AddItem handles POST /cart/items/:product_id. Each call adds one unit.
func (cc *CartController) AddItem(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	productID, ok := productParam(ctx)
	if !ok {
		return
	}
	view, err := cc.cartService.AddItem(ctx.Request.Context(), userID, productID)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

// RemoveItem handles DELETE /cart/items/:product_id. Each call removes one
// unit.
func (cc *CartController) RemoveItem(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	productID, ok := productParam(ctx)
	if !ok {
		return
	}
	view, err := cc.cartService.RemoveItem(ctx.Request.Context(), userID, productID)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

// ClearCart handles DELETE /cart.
func (cc *CartController) ClearCart(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	view, err := cc.cartService.ClearCart(ctx.Request.Context(), userID)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

// ReplaceCart handles PUT /cart.
func (cc *CartController) ReplaceCart(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	var req models.ReplaceCartRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		_ = ctx.Error(apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid request: "+err.Error()))
		return
	}
	view, err := cc.cartService.ReplaceCart(ctx.Request.Context(), userID, req.Items)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

// Checkout handles POST /cart/checkout.
func (cc *CartController) Checkout(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	key, ok := idempotencyKey(ctx)
	if !ok {
		return
	}
	res, err := cc.cartService.Checkout(ctx.Request.Context(), userID, key)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(checkoutStatus(res), res)
}

// BuyNow handles POST /cart/checkout/:product_id.
func (cc *CartController) BuyNow(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	productID, ok := productParam(ctx)
	if !ok {
		return
	}
	key, ok := idempotencyKey(ctx)
	if !ok {
		return
	}
	res, err := cc.cartService.BuyNow(ctx.Request.Context(), userID, productID, key)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(checkoutStatus(res), res)
}

func checkoutStatus(res *models.CheckoutResult) int {
	if res.Replayed {
		return http.StatusOK
	}
	return http.StatusAccepted
}

func requireUser(ctx *gin.Context) (string, bool) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		_ = ctx.Error(apperrors.ErrUnauthorized)
		return "", false
	}
	return userID, true
}

func productParam(ctx *gin.Context) (string, bool) {
	id := strings.TrimSpace(ctx.Param("product_id"))
	if id == "" || len(id) > maxProductIDLen {
		_ = ctx.Error(apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid product id"))
		return "", false
	}
	return id, true
}

func idempotencyKey(ctx *gin.Context) (string, bool) {
	key := strings.TrimSpace(ctx.GetHeader(IdempotencyHeader))
	if len(key) > maxIdempotencyKeyLen {
		_ = ctx.Error(apperrors.WithMessage(apperrors.ErrInvalidInput, "Idempotency-Key is too long"))
		return "", false
	}
	return key, true
}
