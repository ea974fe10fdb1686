package service

import (
	"context"

	"popcornhour/internal/microservices/http-api/dto"
)

func (s *catalogService) ListGenres(ctx context.Context) ([]dto.GenreResponse, error) {
	genres, err := s.genres.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.GenreResponse, 0, len(genres))
	for _, g := range genres {
		out = append(out, dto.GenreResponse{ID: g.ID, Name: g.Name})
	}
	return out, nil
}
