package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"popcornhour/internal/microservices/http-api/models"
)

// CommentRepository is append-only: there is no update or delete path.
//
// Precondition: Content is 5..500 characters, checked by the service layer.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByMovie(ctx context.Context, movieID int64) ([]models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create a new comment and load its author for the response
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(comment).Error; err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	var author models.User
	if err := db.First(&author, "id = ?", comment.UserID).Error; err != nil {
		return fmt.Errorf("load comment author: %w", err)
	}
	comment.User = &author
	return nil
}

// ListByMovie returns a movie's comments newest first with their authors
func (r *commentRepository) ListByMovie(ctx context.Context, movieID int64) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("movie_id = ?", movieID).
		Preload("User").
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}
