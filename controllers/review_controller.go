package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apperrors "github.com/yashrajoria/E-Commerce-backend/storefront/common/errors"
	"github.com/yashrajoria/E-Commerce-backend/storefront/middleware"
	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
	"github.com/yashrajoria/E-Commerce-backend/storefront/services"
)

// ReviewController handles HTTP requests for product reviews.
type ReviewController struct {
	reviewService services.ReviewService
}

func NewReviewController(reviewService services.ReviewService) *ReviewController {
	return &ReviewController{reviewService: reviewService}
}

// ListReviews handles GET /products/:product_id/reviews.
func (rc *ReviewController) ListReviews(ctx *gin.Context) {
	productID, ok := productParam(ctx)
	if !ok {
		return
	}
	list, err := rc.reviewService.ListReviews(ctx.Request.Context(), productID)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, list)
}

// AddReview handles POST /products/:product_id/reviews.
func (rc *ReviewController) AddReview(ctx *gin.Context) {
	actor, err := middleware.GetIdentity(ctx)
	if err != nil {
		_ = ctx.Error(apperrors.ErrUnauthorized)
		return
	}
	productID, ok := productParam(ctx)
	if !ok {
		return
	}
	var req models.CreateReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		_ = ctx.Error(apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid request: "+err.Error()))
		return
	}

	review, err := rc.reviewService.AddReview(ctx.Request.Context(), productID, actor, req)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"message": "Review submitted", "review": review})
}

// DeleteReview handles DELETE /products/:product_id/reviews/:review_id.
func (rc *ReviewController) DeleteReview(ctx *gin.Context) {
	actor, err := middleware.GetIdentity(ctx)
	if err != nil {
		_ = ctx.Error(apperrors.ErrUnauthorized)
		return
	}
	productID, ok := productParam(ctx)
	if !ok {
		return
	}
	reviewID, err := uuid.Parse(ctx.Param("review_id"))
	if err != nil {
		_ = ctx.Error(apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid review id"))
		return
	}

	if err := rc.reviewService.DeleteReview(ctx.Request.Context(), productID, reviewID, actor); err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}

// DeleteAllReviews handles DELETE /products/:product_id/reviews.
func (rc *ReviewController) DeleteAllReviews(ctx *gin.Context) {
	actor, err := middleware.GetIdentity(ctx)
	if err != nil {
		_ = ctx.Error(apperrors.ErrUnauthorized)
		return
	}
	productID, ok := productParam(ctx)
	if !ok {
		return
	}

	n, err := rc.reviewService.DeleteAllReviews(ctx.Request.Context(), productID, actor)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Reviews deleted", "deleted": n})
}
