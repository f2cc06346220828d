package database

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
)

// cartDocument is the storage shape shared by the DynamoDB and MongoDB
// stores. Prices are kept as decimal strings so no precision is lost.
type cartDocument struct {
	UserID    string         `dynamodbav:"user_id" bson:"_id"`
	Items     []itemDocument `dynamodbav:"items" bson:"cart"`
	UpdatedAt string         `dynamodbav:"updated_at" bson:"cart_updated_at"`
	ExpiresAt int64          `dynamodbav:"expires_at,omitempty" bson:"-"`
}

type itemDocument struct {
	ProductID       string `dynamodbav:"product_id" bson:"product_id"`
	ProductName     string `dynamodbav:"product_name,omitempty" bson:"product_name,omitempty"`
	ProductImage    string `dynamodbav:"product_image,omitempty" bson:"product_image,omitempty"`
	SellerID        string `dynamodbav:"seller_id,omitempty" bson:"seller_id,omitempty"`
	MRP             string `dynamodbav:"mrp" bson:"mrp"`
	Cost            string `dynamodbav:"cost" bson:"cost"`
	DiscountPercent int64  `dynamodbav:"discount_percent" bson:"discount_percent"`
	Quantity        int    `dynamodbav:"quantity" bson:"quantity"`
}

func toDocument(cart *models.Cart) cartDocument {
	doc := cartDocument{
		UserID:    cart.UserID,
		Items:     make([]itemDocument, 0, len(cart.Items)),
		UpdatedAt: cart.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	for _, it := range cart.Items {
		doc.Items = append(doc.Items, itemDocument{
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			ProductImage:    it.ProductImage,
			SellerID:        it.SellerID,
			MRP:             it.Price.MRP.String(),
			Cost:            it.Price.Cost.String(),
			DiscountPercent: it.Price.DiscountPercent,
			Quantity:        it.Quantity,
		})
	}
	return doc
}

func fromDocument(doc cartDocument) (*models.Cart, error) {
	cart := models.NewCart(doc.UserID)
	if t, err := time.Parse(time.RFC3339Nano, doc.UpdatedAt); err == nil {
		cart.UpdatedAt = t
	}
	for _, d := range doc.Items {
		mrp, err := decimal.NewFromString(d.MRP)
		if err != nil {
			return nil, fmt.Errorf("item %s: bad mrp %q: %w", d.ProductID, d.MRP, err)
		}
		cost, err := decimal.NewFromString(d.Cost)
		if err != nil {
			return nil, fmt.Errorf("item %s: bad cost %q: %w", d.ProductID, d.Cost, err)
		}
		cart.Items = append(cart.Items, models.CartItem{
			ProductID:    d.ProductID,
			ProductName:  d.ProductName,
			ProductImage: d.ProductImage,
			SellerID:     d.SellerID,
			Price: models.Price{
				MRP:             mrp,
				Cost:            cost,
				DiscountPercent: d.DiscountPercent,
			},
			Quantity: d.Quantity,
		})
	}
	return cart, nil
}
