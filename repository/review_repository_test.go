package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
	"github.com/yashrajoria/E-Commerce-backend/storefront/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)
	return gormDB, mock
}

var reviewColumns = []string{"id", "product_id", "reviewer_id", "reviewer", "rating", "comment", "created_at", "updated_at"}

func TestCreate_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormReviewRepository(gormDB)

	review := &models.Review{ProductID: "p1", ReviewerID: "u1", Rating: 4, Comment: "solid"}
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "reviews"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), review)
	assert.NoError(t, err)
	assert.Equal(t, id, review.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormReviewRepository(gormDB)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "reviews" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows(reviewColumns))

	r, err := repo.FindByID(context.Background(), id)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.Nil(t, r)
}

func TestFindByProduct_NewestFirst(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormReviewRepository(gormDB)

	now := time.Now()
	rows := sqlmock.NewRows(reviewColumns).
		AddRow(uuid.New(), "p1", "u2", "Bea", 5, "great", now, now).
		AddRow(uuid.New(), "p1", "u1", "Al", 3, "ok", now.Add(-time.Hour), now.Add(-time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "reviews" WHERE product_id = $1 ORDER BY created_at DESC`)).
		WithArgs("p1").
		WillReturnRows(rows)

	reviews, err := repo.FindByProduct(context.Background(), "p1")
	assert.NoError(t, err)
	if assert.Len(t, reviews, 2) {
		assert.Equal(t, "u2", reviews[0].ReviewerID)
		assert.Equal(t, 5, reviews[0].Rating)
	}
}

func TestExistsForReviewer(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormReviewRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "reviews"`)).
		WithArgs("p1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsForReviewer(context.Background(), "p1", "u1")
	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestDelete_NoRows(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormReviewRepository(gormDB)

	id := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "reviews"`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), id)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestDeleteByProduct_ReturnsCount(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormReviewRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "reviews" WHERE product_id = $1`)).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	n, err := repo.DeleteByProduct(context.Background(), "p1")
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
