package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"popcornhour/internal/apperr"
	"popcornhour/internal/microservices/http-api/dto"
	"popcornhour/internal/microservices/http-api/models"
	"popcornhour/internal/microservices/http-api/repository"
	"popcornhour/internal/shared"
)

const MaxTitleLength = 255

// CatalogService is the application layer over the catalog and engagement stores.
// Each mutation checks the principal before touching storage.
type CatalogService interface {
	ViewCatalog(ctx context.Context) (*dto.CatalogView, error)
	ViewMovieDetail(ctx context.Context, movieID int64, principal *shared.Principal) (*dto.MovieDetail, error)
	RateMovie(ctx context.Context, principal *shared.Principal, movieID int64, score int) (*dto.RatingResult, error)
	CommentOnMovie(ctx context.Context, principal *shared.Principal, movieID int64, text string) (*dto.CommentResponse, error)
	AddMovie(ctx context.Context, principal *shared.Principal, form dto.CreateMovieRequest) (*dto.MovieDetail, error)
	ListGenres(ctx context.Context) ([]dto.GenreResponse, error)
}

type catalogService struct {
	movies   repository.MovieRepository
	genres   repository.GenreRepository
	ratings  repository.RatingRepository
	comments repository.CommentRepository
}

func NewCatalogService(
	movies repository.MovieRepository,
	genres repository.GenreRepository,
	ratings repository.RatingRepository,
	comments repository.CommentRepository,
) CatalogService {
	return &catalogService{
		movies:   movies,
		genres:   genres,
		ratings:  ratings,
		comments: comments,
	}
}

// ViewCatalog lists every movie, newest first.
func (s *catalogService) ViewCatalog(ctx context.Context) (*dto.CatalogView, error) {
	list, err := s.movies.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	view := &dto.CatalogView{Data: make([]dto.MovieSummary, 0, len(list))}
	for i := range list {
		m := &list[i]
		view.Data = append(view.Data, dto.MovieSummary{
			ID:            m.ID,
			Title:         m.Title,
			ReleaseYear:   m.ReleaseYear,
			PosterURL:     m.PosterURL,
			Genres:        m.GenreNames(),
			AverageRating: m.AverageRating(),
			RatingCount:   len(m.Ratings),
		})
	}
	view.Empty = len(view.Data) == 0
	return view, nil
}

// ViewMovieDetail is public; principal may be nil.
func (s *catalogService) ViewMovieDetail(ctx context.Context, movieID int64, principal *shared.Principal) (*dto.MovieDetail, error) {
	m, err := s.movies.GetByID(ctx, movieID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	m.Comments = comments

	detail := toMovieDetail(m)
	if principal != nil && principal.UserID != "" {
		r, err := s.ratings.GetByUserAndMovie(ctx, principal.UserID, movieID)
		switch {
		case err == nil:
			score := r.Score
			detail.UserRating = &score
		case !errors.Is(err, apperr.ErrNotFound):
			return nil, err
		}
	}
	return detail, nil
}

// AddMovie is moderator-only. All form violations are reported together.
func (s *catalogService) AddMovie(ctx context.Context, principal *shared.Principal, form dto.CreateMovieRequest) (*dto.MovieDetail, error) {
	if _, err := RequireRole(principal, shared.RoleModerator); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(form.Title)
	description := strings.TrimSpace(form.Description)
	poster := strings.TrimSpace(form.PosterURL)
	trailer := strings.TrimSpace(form.TrailerURL)
	genres := ParseGenres(form.Genres)

	fields := apperr.FieldErrors{}
	if title == "" {
		fields.Add("title", "title is required")
	} else if utf8.RuneCountInString(title) > MaxTitleLength {
		fields.Add("title", "title is too long")
	}
	if description == "" {
		fields.Add("description", "description is required")
	}
	if form.ReleaseYear < models.EarliestReleaseYear {
		fields.Add("release_year", "release year must be 1888 or later")
	}
	if poster == "" {
		fields.Add("poster_url", "poster is required")
	} else if utf8.RuneCountInString(poster) > models.MaxURLLength {
		fields.Add("poster_url", fmt.Sprintf("poster URL must be at most %d characters", models.MaxURLLength))
	}
	if utf8.RuneCountInString(trailer) > models.MaxURLLength {
		fields.Add("trailer_url", fmt.Sprintf("trailer URL must be at most %d characters", models.MaxURLLength))
	}
	for _, g := range genres {
		if utf8.RuneCountInString(g) > models.MaxGenreNameLength {
			fields.Add("genres", fmt.Sprintf("genre %q is longer than %d characters", g, models.MaxGenreNameLength))
		}
	}
	if err := apperr.Validation(fields); err != nil {
		return nil, err
	}

	var trailerURL *string
	if trailer != "" {
		trailerURL = &trailer
	}

	m, err := s.movies.Create(ctx, repository.MovieInput{
		Title:       title,
		Description: description,
		ReleaseYear: form.ReleaseYear,
		PosterURL:   poster,
		TrailerURL:  trailerURL,
		GenreNames:  genres,
	})
	if err != nil {
		return nil, err
	}
	return toMovieDetail(m), nil
}

// ParseGenres splits a comma-separated list, trims each name, drops empties
// and collapses exact duplicates. Matching is case-sensitive.
func ParseGenres(raw string) []string {
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return repository.DedupeGenreNames(parts)
}

func toMovieDetail(m *models.Movie) *dto.MovieDetail {
	detail := &dto.MovieDetail{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description,
		ReleaseYear:   m.ReleaseYear,
		PosterURL:     m.PosterURL,
		TrailerURL:    m.TrailerURL,
		Genres:        m.GenreNames(),
		AverageRating: m.AverageRating(),
		RatingCount:   len(m.Ratings),
		Comments:      make([]dto.CommentResponse, 0, len(m.Comments)),
		CreatedAt:     m.CreatedAt,
	}
	for i := range m.Comments {
		detail.Comments = append(detail.Comments, toCommentResponse(&m.Comments[i]))
	}
	return detail
}
