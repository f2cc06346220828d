package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/E-Commerce-backend/storefront/controllers"
	"github.com/yashrajoria/E-Commerce-backend/storefront/middleware"
	"github.com/yashrajoria/E-Commerce-backend/storefront/services"
)

// RegisterReviewRoutes sets up product review routes. Listing is public;
// writing needs a caller, and clearing all reviews needs a seller or admin.
func RegisterReviewRoutes(r gin.IRouter, rc *controllers.ReviewController, authMiddleware gin.HandlerFunc) {
	reviews := r.Group("/products/:product_id/reviews")
	reviews.GET("", rc.ListReviews)

	protected := reviews.Group("")
	protected.Use(authMiddleware)
	protected.POST("", rc.AddReview)
	protected.DELETE("/:review_id", rc.DeleteReview)

	moderators := protected.Group("")
	moderators.Use(middleware.RequireRole(services.RoleSeller, services.RoleAdmin))
	moderators.DELETE("", rc.DeleteAllReviews)
}
