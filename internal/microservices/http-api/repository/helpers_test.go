package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"popcornhour/database"
	"popcornhour/internal/config"
	"popcornhour/internal/microservices/http-api/models"
	"popcornhour/internal/pkg/logger"
	"popcornhour/internal/shared"
)

// setupTestDB opens a private in-memory sqlite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{DatabaseDriver: "sqlite", DatabaseURL: "file::memory:"}
	db, err := database.Connect(cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "$2a$10$placeholderplaceholderplaceholderplaceholde",
		Role:     shared.RoleStandard,
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func seedMovie(t *testing.T, db *gorm.DB, title string, genres ...string) *models.Movie {
	t.Helper()
	repo := NewMovieRepository(db, NewGenreRepository(db))
	m, err := repo.Create(context.Background(), MovieInput{
		Title:       title,
		Description: "A movie called " + title,
		ReleaseYear: 1999,
		PosterURL:   "https://img.example.com/" + title + ".jpg",
		GenreNames:  genres,
	})
	require.NoError(t, err)
	return m
}
