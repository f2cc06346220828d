package models

import "github.com/shopspring/decimal"

// Product is the validated catalog snapshot used to build a cart line.
type Product struct {
	ID       string
	Name     string
	Image    string
	SellerID string
	Price    Price
}

// ToCartItem builds a single-unit line item from the product snapshot.
func (p *Product) ToCartItem() CartItem {
	return CartItem{
		ProductID:    p.ID,
		ProductName:  p.Name,
		ProductImage: p.Image,
		SellerID:     p.SellerID,
		Price:        p.Price,
		Quantity:     1,
	}
}

// DerivedDiscountPercent computes the whole-number discount implied by the
// mrp/cost pair. A zero mrp yields zero.
func DerivedDiscountPercent(mrp, cost decimal.Decimal) int64 {
	if !mrp.IsPositive() {
		return 0
	}
	return mrp.Sub(cost).Div(mrp).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
