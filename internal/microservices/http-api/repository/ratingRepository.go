package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"popcornhour/internal/apperr"
	"popcornhour/internal/microservices/http-api/models"
)

// RatingRepository stores one rating per (user, movie).
//
// Precondition for every write: score is within [models.MinScore, models.MaxScore].
// The service layer validates it; the check constraint is the last line.
type RatingRepository interface {
	GetByUserAndMovie(ctx context.Context, userID string, movieID int64) (*models.Rating, error)
	Create(ctx context.Context, rating *models.Rating) error
	UpdateScore(ctx context.Context, userID string, movieID int64, score int) (*models.Rating, error)
	// Upsert reports created=true when a new row was inserted.
	Upsert(ctx context.Context, userID string, movieID int64, score int) (rating *models.Rating, created bool, err error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// GetByUserAndMovie retrieves a user's rating for a specific movie
func (r *ratingRepository) GetByUserAndMovie(ctx context.Context, userID string, movieID int64) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		First(&rating).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &rating, nil
}

// Create inserts a new rating; a second row for the same pair fails with
// *apperr.ConstraintViolationError.
func (r *ratingRepository) Create(ctx context.Context, rating *models.Rating) error {
	if err := r.db.WithContext(ctx).Create(rating).Error; err != nil {
		if isUniqueViolation(err) {
			return constraintViolation(err, "user_id", "movie_id")
		}
		return fmt.Errorf("create rating: %w", err)
	}
	return nil
}

// UpdateScore overwrites the score in place; no history is kept.
func (r *ratingRepository) UpdateScore(ctx context.Context, userID string, movieID int64, score int) (*models.Rating, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Update("score", score)
	if res.Error != nil {
		return nil, fmt.Errorf("update rating: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.ErrNotFound
	}
	return r.GetByUserAndMovie(ctx, userID, movieID)
}

// Upsert updates the existing row for the pair or inserts one. Two callers
// racing on the first insert meet at the unique index: the loser gets the
// constraint violation and is expected to retry with UpdateScore.
func (r *ratingRepository) Upsert(ctx context.Context, userID string, movieID int64, score int) (*models.Rating, bool, error) {
	existing, err := r.UpdateScore(ctx, userID, movieID, score)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, false, err
	}

	rating := &models.Rating{UserID: userID, MovieID: movieID, Score: score}
	if err := r.Create(ctx, rating); err != nil {
		return nil, false, err
	}
	return rating, true, nil
}
