package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a customer review of a product, stored in Postgres. A reviewer
// has at most one review per product.
type Review struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID  string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_review_product_reviewer" json:"product_id"`
	ReviewerID string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_review_product_reviewer" json:"reviewer_id"`
	Reviewer   string    `gorm:"type:varchar(255)" json:"reviewer_name,omitempty"`
	Rating     int       `gorm:"not null" json:"rating"`
	Comment    string    `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"date"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// CreateReviewRequest is the payload for submitting a review.
type CreateReviewRequest struct {
	Rating       int    `json:"rating"`
	Comment      string `json:"comment" binding:"max=2000"`
	ReviewerName string `json:"reviewer_name" binding:"max=255"`
}

// ReviewList is the response of GET /products/:product_id/reviews.
type ReviewList struct {
	ProductID     string   `json:"product_id"`
	Reviews       []Review `json:"reviews"`
	Count         int      `json:"count"`
	AverageRating float64  `json:"average_rating"`
}
