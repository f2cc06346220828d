package controllers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/yashrajoria/E-Commerce-backend/storefront/common/auth"
	apperrors "github.com/yashrajoria/E-Commerce-backend/storefront/common/errors"
	"github.com/yashrajoria/E-Commerce-backend/storefront/controllers"
	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
	"github.com/yashrajoria/E-Commerce-backend/storefront/routes"
	"github.com/yashrajoria/E-Commerce-backend/storefront/services"
)

type mockReviewService struct {
	listFn      func(ctx context.Context, productID string) (*models.ReviewList, error)
	addFn       func(ctx context.Context, productID string, actor auth.Identity, req models.CreateReviewRequest) (*models.Review, error)
	deleteFn    func(ctx context.Context, productID string, reviewID uuid.UUID, actor auth.Identity) error
	deleteAllFn func(ctx context.Context, productID string, actor auth.Identity) (int64, error)
}

func (m *mockReviewService) ListReviews(ctx context.Context, productID string) (*models.ReviewList, error) {
	return m.listFn(ctx, productID)
}
func (m *mockReviewService) AddReview(ctx context.Context, productID string, actor auth.Identity, req models.CreateReviewRequest) (*models.Review, error) {
	return m.addFn(ctx, productID, actor, req)
}
func (m *mockReviewService) DeleteReview(ctx context.Context, productID string, reviewID uuid.UUID, actor auth.Identity) error {
	return m.deleteFn(ctx, productID, reviewID, actor)
}
func (m *mockReviewService) DeleteAllReviews(ctx context.Context, productID string, actor auth.Identity) (int64, error) {
	return m.deleteAllFn(ctx, productID, actor)
}

func setupReviewRouter(svc services.ReviewService) *gin.Engine {
	r := gin.New()
	r.Use(apperrors.ErrorMiddleware())
	routes.RegisterReviewRoutes(r, controllers.NewReviewController(svc), fakeAuth)
	return r
}

func TestListReviews_Public(t *testing.T) {
	svc := &mockReviewService{
		listFn: func(_ context.Context, productID string) (*models.ReviewList, error) {
			return &models.ReviewList{ProductID: productID, Reviews: []models.Review{}, Count: 0}, nil
		},
	}
	w := doRequest(setupReviewRouter(svc), http.MethodGet, "/products/p1/reviews", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"reviews":[]`)
}

func TestAddReview_Created(t *testing.T) {
	var gotActor auth.Identity
	svc := &mockReviewService{
		addFn: func(_ context.Context, productID string, actor auth.Identity, req models.CreateReviewRequest) (*models.Review, error) {
			gotActor = actor
			return &models.Review{ID: uuid.New(), ProductID: productID, ReviewerID: actor.UserID, Rating: req.Rating}, nil
		},
	}
	w := doRequest(setupReviewRouter(svc), http.MethodPost, "/products/p1/reviews",
		[]byte(`{"rating":4,"comment":"solid"}`), asUser)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "user-1", gotActor.UserID)
	assert.Contains(t, w.Body.String(), "Review submitted")
}

func TestAddReview_Unauthenticated(t *testing.T) {
	w := doRequest(setupReviewRouter(&mockReviewService{}), http.MethodPost, "/products/p1/reviews",
		[]byte(`{"rating":4}`), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAddReview_Duplicate(t *testing.T) {
	svc := &mockReviewService{
		addFn: func(context.Context, string, auth.Identity, models.CreateReviewRequest) (*models.Review, error) {
			return nil, apperrors.ErrDuplicateReview
		},
	}
	w := doRequest(setupReviewRouter(svc), http.MethodPost, "/products/p1/reviews", []byte(`{"rating":5}`), asUser)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteReview_InvalidID(t *testing.T) {
	w := doRequest(setupReviewRouter(&mockReviewService{}), http.MethodDelete, "/products/p1/reviews/not-a-uuid", nil, asUser)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteReview_Forbidden(t *testing.T) {
	svc := &mockReviewService{
		deleteFn: func(context.Context, string, uuid.UUID, auth.Identity) error { return apperrors.ErrForbidden },
	}
	w := doRequest(setupReviewRouter(svc), http.MethodDelete, "/products/p1/reviews/"+uuid.NewString(), nil, asUser)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteAllReviews_RequiresRole(t *testing.T) {
	called := false
	svc := &mockReviewService{
		deleteAllFn: func(context.Context, string, auth.Identity) (int64, error) {
			called = true
			return 3, nil
		},
	}
	r := setupReviewRouter(svc)

	w := doRequest(r, http.MethodDelete, "/products/p1/reviews", nil, asUser)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, called)

	w = doRequest(r, http.MethodDelete, "/products/p1/reviews", nil,
		map[string]string{"X-User-ID": "seller-1", "X-User-Role": services.RoleSeller})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
	assert.Contains(t, w.Body.String(), `"deleted":3`)
}
