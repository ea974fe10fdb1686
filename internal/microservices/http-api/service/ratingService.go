package service

import (
	"context"
	"errors"
	"fmt"

	"popcornhour/internal/apperr"
	"popcornhour/internal/microservices/http-api/dto"
	"popcornhour/internal/microservices/http-api/models"
	"popcornhour/internal/shared"
)

// RateMovie creates or overwrites the caller's rating for a movie.
func (s *catalogService) RateMovie(ctx context.Context, principal *shared.Principal, movieID int64, score int) (*dto.RatingResult, error) {
	p, err := RequireAuthenticated(principal)
	if err != nil {
		return nil, err
	}
	if score < models.MinScore || score > models.MaxScore {
		return nil, apperr.InvalidField("score", fmt.Sprintf("score must be between %d and %d", models.MinScore, models.MaxScore))
	}

	// Check if movie exists
	exists, err := s.movies.Exists(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.ErrNotFound
	}

	rating, created, err := s.ratings.Upsert(ctx, p.UserID, movieID, score)
	if errors.Is(err, apperr.ErrConstraintViolation) {
		// a concurrent first rating won the insert; ours becomes an update
		rating, err = s.ratings.UpdateScore(ctx, p.UserID, movieID, score)
		created = false
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrConflict
		}
	}
	if err != nil {
		return nil, err
	}

	return &dto.RatingResult{
		MovieID: movieID,
		Score:   rating.Score,
		Updated: !created,
	}, nil
}
