package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/E-Commerce-backend/storefront/controllers"
)

// RegisterCartRoutes sets up the cart routes. Every cart route requires an
// authenticated caller.
func RegisterCartRoutes(r gin.IRouter, cc *controllers.CartController, authMiddleware gin.HandlerFunc) {
	api := r.Group("/cart")
	api.Use(authMiddleware)
	{
		api.GET("", cc.GetCart)
		api.GET("/summary", cc.GetSummary)
		api.PUT("", cc.ReplaceCart)
		api.DELETE("", cc.ClearCart)
		api.POST("/items/:product_id", cc.AddItem)
		api.DELETE("/items/:product_id", cc.RemoveItem)
		api.POST("/checkout", cc.Checkout)
		api.POST("/checkout/:product_id", cc.BuyNow)
	}
}
