package services

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/yashrajoria/E-Commerce-backend/storefront/common/auth"
	apperrors "github.com/yashrajoria/E-Commerce-backend/storefront/common/errors"
	"github.com/yashrajoria/E-Commerce-backend/storefront/common/logger"
	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
	awspkg "github.com/yashrajoria/E-Commerce-backend/storefront/pkg/aws"
	"github.com/yashrajoria/E-Commerce-backend/storefront/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	RoleAdmin  = "admin"
	RoleSeller = "seller"

	minRating = 1
	maxRating = 5
)

// ReviewService manages product reviews.
type ReviewService interface {
	ListReviews(ctx context.Context, productID string) (*models.ReviewList, error)
	AddReview(ctx context.Context, productID string, actor auth.Identity, req models.CreateReviewRequest) (*models.Review, error)
	DeleteReview(ctx context.Context, productID string, reviewID uuid.UUID, actor auth.Identity) error
	DeleteAllReviews(ctx context.Context, productID string, actor auth.Identity) (int64, error)
}

type reviewServiceImpl struct {
	repo    repository.ReviewRepository
	catalog ProductCatalog
	metrics CountRecorder
	logger  *zap.Logger
}

func NewReviewService(repo repository.ReviewRepository, catalog ProductCatalog, metrics CountRecorder, logger *zap.Logger) ReviewService {
	return &reviewServiceImpl{repo: repo, catalog: catalog, metrics: metrics, logger: logger}
}

// ListReviews returns reviews newest first with their count and average
// rating rounded to two places.
func (s *reviewServiceImpl) ListReviews(ctx context.Context, productID string) (*models.ReviewList, error) {
	reviews, err := s.repo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, err)
	}
	if reviews == nil {
		reviews = []models.Review{}
	}

	list := &models.ReviewList{ProductID: productID, Reviews: reviews, Count: len(reviews)}
	if len(reviews) > 0 {
		total := 0
		for _, r := range reviews {
			total += r.Rating
		}
		list.AverageRating = math.Round(float64(total)/float64(len(reviews))*100) / 100
	}
	return list, nil
}

func (s *reviewServiceImpl) AddReview(ctx context.Context, productID string, actor auth.Identity, req models.CreateReviewRequest) (*models.Review, error) {
	switch {
	case req.Rating == 0:
		return nil, apperrors.ErrRatingRequired
	case req.Rating < minRating || req.Rating > maxRating:
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "Rating must be between 1 and 5.")
	}

	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsForReviewer(ctx, productID, actor.UserID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, err)
	}
	if exists {
		return nil, apperrors.ErrDuplicateReview
	}

	name := strings.TrimSpace(req.ReviewerName)
	if name == "" {
		name = actor.Email
	}
	review := &models.Review{
		ProductID:  productID,
		ReviewerID: actor.UserID,
		Reviewer:   name,
		Rating:     req.Rating,
		Comment:    strings.TrimSpace(req.Comment),
	}
	if err := s.repo.Create(ctx, review); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateReview
		}
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, err)
	}

	if s.metrics != nil {
		_ = s.metrics.RecordCount(ctx, awspkg.MetricReviewsCreated, map[string]string{"Service": ServiceName})
	}
	logger.For(ctx, s.logger).Info("review created",
		zap.String("product_id", productID), zap.String("reviewer_id", actor.UserID), zap.Int("rating", req.Rating))
	return review, nil
}

// DeleteReview lets the author, an admin or the product's seller remove a
// review.
func (s *reviewServiceImpl) DeleteReview(ctx context.Context, productID string, reviewID uuid.UUID, actor auth.Identity) error {
	review, err := s.repo.FindByID(ctx, reviewID)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && review.ProductID != productID) {
		return apperrors.ErrReviewNotFound
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabaseQuery, err)
	}

	if review.ReviewerID != actor.UserID {
		if err := s.authorizeModerator(ctx, productID, actor); err != nil {
			return err
		}
	}

	if err := s.repo.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrReviewNotFound
		}
		return apperrors.Wrap(apperrors.ErrDatabaseQuery, err)
	}
	logger.For(ctx, s.logger).Info("review deleted",
		zap.String("product_id", productID), zap.String("review_id", reviewID.String()), zap.String("actor", actor.UserID))
	return nil
}

func (s *reviewServiceImpl) DeleteAllReviews(ctx context.Context, productID string, actor auth.Identity) (int64, error) {
	if err := s.authorizeModerator(ctx, productID, actor); err != nil {
		return 0, err
	}
	n, err := s.repo.DeleteByProduct(ctx, productID)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrDatabaseQuery, err)
	}
	logger.For(ctx, s.logger).Info("reviews cleared",
		zap.String("product_id", productID), zap.Int64("deleted", n), zap.String("actor", actor.UserID))
	return n, nil
}

// authorizeModerator allows admins, and sellers for their own products.
func (s *reviewServiceImpl) authorizeModerator(ctx context.Context, productID string, actor auth.Identity) error {
	switch actor.Role {
	case RoleAdmin:
		return nil
	case RoleSeller:
		product, err := s.catalog.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		if product.SellerID == actor.UserID {
			return nil
		}
	}
	return apperrors.WithMessage(apperrors.ErrForbidden, "You are not allowed to delete reviews of this product.")
}
