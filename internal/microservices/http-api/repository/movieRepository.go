package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"popcornhour/internal/apperr"
	"popcornhour/internal/microservices/http-api/models"
)

// MovieInput is what the catalog store needs to create a movie.
type MovieInput struct {
	Title       string
	Description string
	ReleaseYear int
	PosterURL   string
	TrailerURL  *string
	GenreNames  []string
}

// MovieRepository is the catalog store.
type MovieRepository interface {
	ListAll(ctx context.Context) ([]models.Movie, error)
	GetByID(ctx context.Context, id int64) (*models.Movie, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, in MovieInput) (*models.Movie, error)
}

type movieRepository struct {
	db     *gorm.DB
	genres GenreRepository
}

func NewMovieRepository(db *gorm.DB, genres GenreRepository) MovieRepository {
	return &movieRepository{db: db, genres: genres}
}

// ListAll returns every movie with genres and ratings. Preload issues one
// IN-query per association, so the round trips do not grow with the list.
func (r *movieRepository) ListAll(ctx context.Context) ([]models.Movie, error) {
	var list []models.Movie
	if err := r.db.WithContext(ctx).
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.name asc") }).
		Preload("Ratings").
		Order("created_at desc, id desc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return list, nil
}

func (r *movieRepository) GetByID(ctx context.Context, id int64) (*models.Movie, error) {
	var m models.Movie
	if err := r.db.WithContext(ctx).
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.name asc") }).
		Preload("Ratings").
		First(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *movieRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Movie{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check movie: %w", err)
	}
	return count > 0, nil
}

// Create persists the movie, any new genres and the links in one transaction.
// Duplicate names collapse to one link; nothing is written if any step fails.
func (r *movieRepository) Create(ctx context.Context, in MovieInput) (*models.Movie, error) {
	if in.ReleaseYear < models.EarliestReleaseYear {
		return nil, apperr.InvalidField("release_year",
			fmt.Sprintf("release year must be %d or later", models.EarliestReleaseYear))
	}

	names := DedupeGenreNames(in.GenreNames)
	m := &models.Movie{
		Title:       in.Title,
		Description: in.Description,
		ReleaseYear: in.ReleaseYear,
		PosterURL:   in.PosterURL,
		TrailerURL:  in.TrailerURL,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		genres := make([]models.Genre, 0, len(names))
		for _, name := range names {
			g, err := r.genres.FindOrCreate(ctx, tx, name)
			if err != nil {
				return err
			}
			genres = append(genres, *g)
		}

		if err := tx.Omit("Genres").Create(m).Error; err != nil {
			return fmt.Errorf("create movie: %w", err)
		}
		if len(genres) > 0 {
			if err := tx.Model(m).Association("Genres").Append(&genres); err != nil {
				return fmt.Errorf("link genres: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// DedupeGenreNames keeps the first occurrence of each exact name and drops empties.
func DedupeGenreNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
