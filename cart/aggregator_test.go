package cart_test

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/yashrajoria/E-Commerce-backend/storefront/cart"
	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
)

func line(id string, mrp, cost int64, qty int) models.CartItem {
	return models.CartItem{
		ProductID: id,
		Price: models.Price{
			MRP:  decimal.NewFromInt(mrp),
			Cost: decimal.NewFromInt(cost),
		},
		Quantity: qty,
	}
}

func TestTotals_ScenarioTwoLines(t *testing.T) {
	c := &models.Cart{UserID: "u1", Items: []models.CartItem{
		line("A", 100, 80, 2),
		line("B", 50, 50, 1),
	}}

	assert.Equal(t, 3, cart.TotalQuantity(c))
	assert.True(t, decimal.NewFromInt(250).Equal(cart.TotalOriginalPrice(c)))
	assert.True(t, decimal.NewFromInt(210).Equal(cart.TotalDiscountedPrice(c)))
	assert.True(t, decimal.NewFromInt(40).Equal(cart.TotalDiscount(c)))
}

func TestTotals_EmptyAndNilCart(t *testing.T) {
	for name, c := range map[string]*models.Cart{
		"nil":   nil,
		"empty": models.NewCart("u1"),
	} {
		t.Run(name, func(t *testing.T) {
			s := cart.Summarize(c)
			assert.Equal(t, 0, s.TotalQuantity)
			assert.Equal(t, 0, s.ItemCount)
			assert.True(t, s.TotalOriginalPrice.IsZero())
			assert.True(t, s.TotalDiscountedPrice.IsZero())
			assert.True(t, s.TotalDiscount.IsZero())
		})
	}
}

func TestTotals_FractionalPricesStayExact(t *testing.T) {
	c := &models.Cart{Items: []models.CartItem{{
		ProductID: "P",
		Price: models.Price{
			MRP:  decimal.RequireFromString("0.30"),
			Cost: decimal.RequireFromString("0.10"),
		},
		Quantity: 3,
	}}}

	assert.Equal(t, "0.9", cart.TotalOriginalPrice(c).String())
	assert.Equal(t, "0.3", cart.TotalDiscountedPrice(c).String())
	assert.Equal(t, "0.6", cart.TotalDiscount(c).String())
}

func TestSummarize_MatchesIndividualTotals(t *testing.T) {
	c := &models.Cart{Items: []models.CartItem{line("A", 120, 99, 4), line("B", 10, 7, 2)}}

	s := cart.Summarize(c)
	assert.Equal(t, 2, s.ItemCount)
	assert.Equal(t, cart.TotalQuantity(c), s.TotalQuantity)
	assert.True(t, cart.TotalOriginalPrice(c).Equal(s.TotalOriginalPrice))
	assert.True(t, cart.TotalDiscountedPrice(c).Equal(s.TotalDiscountedPrice))
	assert.True(t, cart.TotalDiscount(c).Equal(s.TotalDiscount))
}

func TestView_NilCartBecomesEmpty(t *testing.T) {
	v := cart.View(nil, "u7")
	assert.Equal(t, "u7", v.Cart.UserID)
	assert.NotNil(t, v.Cart.Items)
	assert.Empty(t, v.Cart.Items)
}

func randomCart(r *rand.Rand) *models.Cart {
	c := models.NewCart("u")
	n := r.Intn(6)
	for i := 0; i < n; i++ {
		cost := int64(r.Intn(1000))
		mrp := cost + int64(r.Intn(500))
		c.Items = append(c.Items, line(string(rune('a'+i)), mrp, cost, 1+r.Intn(5)))
	}
	return c
}

func TestProperties_RandomCarts(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		c := randomCart(r)

		assert.True(t, cart.TotalDiscountedPrice(c).LessThanOrEqual(cart.TotalOriginalPrice(c)))
		assert.False(t, cart.TotalDiscount(c).IsNegative())
		assert.Equal(t, len(c.Items) == 0, cart.TotalQuantity(c) == 0)
	}
}
