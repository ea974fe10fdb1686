package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"popcornhour/internal/apperr"
	"popcornhour/internal/microservices/http-api/dto"
	"popcornhour/internal/microservices/http-api/models"
	"popcornhour/internal/shared"
)

// CommentOnMovie appends a comment. Length is counted in characters after trimming.
func (s *catalogService) CommentOnMovie(ctx context.Context, principal *shared.Principal, movieID int64, text string) (*dto.CommentResponse, error) {
	p, err := RequireAuthenticated(principal)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(text)
	if n := utf8.RuneCountInString(content); n < models.MinCommentLength || n > models.MaxCommentLength {
		return nil, apperr.InvalidField("content",
			fmt.Sprintf("comment must be between %d and %d characters", models.MinCommentLength, models.MaxCommentLength))
	}

	// Check if movie exists
	exists, err := s.movies.Exists(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.ErrNotFound
	}

	comment := &models.Comment{
		UserID:  p.UserID,
		MovieID: movieID,
		Content: content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	resp := toCommentResponse(comment)
	return &resp, nil
}

func toCommentResponse(c *models.Comment) dto.CommentResponse {
	resp := dto.CommentResponse{
		ID:        c.ID,
		MovieID:   c.MovieID,
		UserID:    c.UserID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
	if c.User != nil {
		resp.Username = c.User.Username
	}
	return resp
}
