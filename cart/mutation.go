package cart

import (
	"errors"
	"fmt"

	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
)

const (
	// MaxLineQuantity caps the units of one product in a cart.
	MaxLineQuantity = 999
	// MaxLines caps the distinct products in a cart.
	MaxLines = 100
)

var (
	ErrItemNotInCart = errors.New("item not in cart")
	ErrInvalidItem   = errors.New("invalid cart item")
	ErrLimitExceeded = errors.New("cart limit exceeded")
)

// Add puts one unit of product into the cart. An existing line for the same
// product is incremented; otherwise a new line with quantity 1 is appended.
func Add(c *models.Cart, product *models.Product) error {
	item := product.ToCartItem()
	if err := ValidateItem(item); err != nil {
		return err
	}

	for i := range c.Items {
		if c.Items[i].ProductID == product.ID {
			if c.Items[i].Quantity >= MaxLineQuantity {
				return fmt.Errorf("%w: at most %d units of %s", ErrLimitExceeded, MaxLineQuantity, product.ID)
			}
			c.Items[i].Quantity++
			return nil
		}
	}
	if len(c.Items) >= MaxLines {
		return fmt.Errorf("%w: at most %d products", ErrLimitExceeded, MaxLines)
	}
	c.Items = append(c.Items, item)
	return nil
}

// Remove takes one unit of productID out of the cart, dropping the line when
// its last unit goes.
func Remove(c *models.Cart, productID string) error {
	for i := range c.Items {
		if c.Items[i].ProductID != productID {
			continue
		}
		if c.Items[i].Quantity > 1 {
			c.Items[i].Quantity--
			return nil
		}
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrItemNotInCart, productID)
}

// Clear empties the cart.
func Clear(c *models.Cart) {
	c.Items = []models.CartItem{}
}

// Take removes the whole line for productID and returns it.
func Take(c *models.Cart, productID string) (models.CartItem, error) {
	for i, item := range c.Items {
		if item.ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return item, nil
		}
	}
	return models.CartItem{}, fmt.Errorf("%w: %s", ErrItemNotInCart, productID)
}

// ValidateItem enforces the line invariants at the mutation boundary.
func ValidateItem(item models.CartItem) error {
	switch {
	case item.ProductID == "":
		return fmt.Errorf("%w: product_id is required", ErrInvalidItem)
	case item.Quantity < 1:
		return fmt.Errorf("%w: quantity must be at least 1 for %s", ErrInvalidItem, item.ProductID)
	case item.Quantity > MaxLineQuantity:
		return fmt.Errorf("%w: at most %d units of %s", ErrLimitExceeded, MaxLineQuantity, item.ProductID)
	case item.Price.Cost.IsNegative():
		return fmt.Errorf("%w: negative cost for %s", ErrInvalidItem, item.ProductID)
	case item.Price.MRP.LessThan(item.Price.Cost):
		return fmt.Errorf("%w: mrp below cost for %s", ErrInvalidItem, item.ProductID)
	}
	return nil
}

// Normalize validates a client-supplied list of lines and folds it into a
// well-formed cart: duplicate product ids are merged in first-seen order,
// zero-quantity lines are dropped and discount percentages are re-derived.
// Merged quantities and the line count are held to the cart limits.
func Normalize(userID string, items []models.CartItem) (*models.Cart, error) {
	c := models.NewCart(userID)
	index := make(map[string]int, len(items))

	for _, item := range items {
		if item.Quantity == 0 {
			continue
		}
		if err := ValidateItem(item); err != nil {
			return nil, err
		}
		item.Price.DiscountPercent = models.DerivedDiscountPercent(item.Price.MRP, item.Price.Cost)

		if i, ok := index[item.ProductID]; ok {
			if c.Items[i].Quantity > MaxLineQuantity-item.Quantity {
				return nil, fmt.Errorf("%w: at most %d units of %s", ErrLimitExceeded, MaxLineQuantity, item.ProductID)
			}
			c.Items[i].Quantity += item.Quantity
			continue
		}
		if len(c.Items) >= MaxLines {
			return nil, fmt.Errorf("%w: at most %d products", ErrLimitExceeded, MaxLines)
		}
		index[item.ProductID] = len(c.Items)
		c.Items = append(c.Items, item)
	}
	return c, nil
}

// Clone returns a deep copy of the cart so callers can compare snapshots.
func Clone(c *models.Cart) *models.Cart {
	if c == nil {
		return nil
	}
	out := *c
	out.Items = append([]models.CartItem{}, c.Items...)
	return &out
}
