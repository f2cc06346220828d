package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price is the per-unit price snapshot of a product.
type Price struct {
	MRP             decimal.Decimal `json:"mrp"`
	Cost            decimal.Decimal `json:"cost"`
	DiscountPercent int64           `json:"discount_percent"`
}

// CartItem is one product line in a cart.
type CartItem struct {
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name,omitempty"`
	ProductImage string `json:"product_image,omitempty"`
	SellerID     string `json:"seller_id,omitempty"`
	Price        Price  `json:"price"`
	Quantity     int    `json:"quantity"`
}

type Cart struct {
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCart returns an empty cart owned by userID.
func NewCart(userID string) *Cart {
	return &Cart{
		UserID: userID,
		Items:  []CartItem{},
	}
}

// Summary holds the totals derived from a cart.
type Summary struct {
	ItemCount            int             `json:"item_count"`
	TotalQuantity        int             `json:"total_quantity"`
	TotalOriginalPrice   decimal.Decimal `json:"total_original_price"`
	TotalDiscountedPrice decimal.Decimal `json:"total_discounted_price"`
	TotalDiscount        decimal.Decimal `json:"total_discount"`
}

// CartView is the response shape of every cart read or mutation.
type CartView struct {
	Cart    *Cart   `json:"cart"`
	Summary Summary `json:"summary"`
}

// ReplaceCartRequest is the payload of PUT /cart. At most 100 lines.
type ReplaceCartRequest struct {
	Items []CartItem `json:"items" binding:"max=100"`
}
