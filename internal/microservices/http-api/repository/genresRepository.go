package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"popcornhour/internal/microservices/http-api/models"
)

type GenreRepository interface {
	GetAll(ctx context.Context) ([]models.Genre, error)
	// FindOrCreate runs on tx when non-nil so it can join the caller's transaction.
	FindOrCreate(ctx context.Context, tx *gorm.DB, name string) (*models.Genre, error)
}

type genreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) GetAll(ctx context.Context) ([]models.Genre, error) {
	var list []models.Genre
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("get genres: %w", err)
	}
	return list, nil
}

// FindOrCreate matches name exactly (case-sensitive). The insert uses
// ON CONFLICT DO NOTHING so a concurrent creator of the same genre does not
// abort the surrounding transaction; the row is then read back.
func (r *genreRepository) FindOrCreate(ctx context.Context, tx *gorm.DB, name string) (*models.Genre, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	transaction = transaction.WithContext(ctx)

	var g models.Genre
	err := transaction.Where("name = ?", name).Limit(1).Find(&g).Error
	if err != nil {
		return nil, fmt.Errorf("find genre %q: %w", name, err)
	}
	if g.ID != 0 {
		return &g, nil
	}

	g = models.Genre{Name: name}
	if err := transaction.
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&g).Error; err != nil {
		return nil, fmt.Errorf("create genre %q: %w", name, err)
	}
	if g.ID != 0 {
		return &g, nil
	}

	// lost the race: someone else inserted it between our read and write
	if err := transaction.Where("name = ?", name).First(&g).Error; err != nil {
		return nil, fmt.Errorf("reload genre %q: %w", name, err)
	}
	return &g, nil
}
