// Package cart holds the cart rules shared by every storage backend: the
// totals shown to shoppers and the one-unit-at-a-time mutations.
//
// Everything here works on an in-memory snapshot. Persistence, locking and
// product lookups belong to the services package.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
)

// TotalQuantity sums the quantity of every line. A nil cart counts as empty.
func TotalQuantity(c *models.Cart) int {
	if c == nil {
		return 0
	}
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// TotalOriginalPrice sums quantity * mrp over the cart.
func TotalOriginalPrice(c *models.Cart) decimal.Decimal {
	return sumLines(c, func(item models.CartItem) decimal.Decimal { return item.Price.MRP })
}

// TotalDiscountedPrice sums quantity * cost over the cart.
func TotalDiscountedPrice(c *models.Cart) decimal.Decimal {
	return sumLines(c, func(item models.CartItem) decimal.Decimal { return item.Price.Cost })
}

// TotalDiscount is the original total minus the discounted total.
func TotalDiscount(c *models.Cart) decimal.Decimal {
	return TotalOriginalPrice(c).Sub(TotalDiscountedPrice(c))
}

// Summarize derives every total in one call.
func Summarize(c *models.Cart) models.Summary {
	original := TotalOriginalPrice(c)
	discounted := TotalDiscountedPrice(c)

	itemCount := 0
	if c != nil {
		itemCount = len(c.Items)
	}

	return models.Summary{
		ItemCount:            itemCount,
		TotalQuantity:        TotalQuantity(c),
		TotalOriginalPrice:   original,
		TotalDiscountedPrice: discounted,
		TotalDiscount:        original.Sub(discounted),
	}
}

// View pairs a cart with its summary, substituting an empty cart for nil.
func View(c *models.Cart, userID string) models.CartView {
	if c == nil {
		c = models.NewCart(userID)
	}
	return models.CartView{Cart: c, Summary: Summarize(c)}
}

func sumLines(c *models.Cart, unit func(models.CartItem) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	if c == nil {
		return total
	}
	for _, item := range c.Items {
		total = total.Add(unit(item).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
