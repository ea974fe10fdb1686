package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"popcornhour/database"
	"popcornhour/internal/apperr"
	"popcornhour/internal/config"
	"popcornhour/internal/microservices/http-api/middleware/auth"
	"popcornhour/internal/microservices/http-api/models"
	"popcornhour/internal/microservices/http-api/repository"
	"popcornhour/internal/pkg/logger"
	"popcornhour/internal/shared"
)

type stack struct {
	db      *gorm.DB
	auth    AuthService
	catalog CatalogService
	users   repository.UserRepository
}

// newStack wires the real stores over a private in-memory sqlite database.
func newStack(t *testing.T) *stack {
	t.Helper()
	return newStackOn(t, &config.Config{DatabaseDriver: "sqlite", DatabaseURL: "file::memory:"})
}

func newStackOn(t *testing.T, dbCfg *config.Config) *stack {
	t.Helper()
	db, err := database.Connect(dbCfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	users := repository.NewUserRepository(db)
	genres := repository.NewGenreRepository(db)
	return &stack{
		db:    db,
		users: users,
		auth: NewAuthService(users, repository.NewSessionRepository(db), auth.NewBcryptHasher(bcrypt.MinCost),
			testConfig(), logger.NewNop()),
		catalog: NewCatalogService(
			repository.NewMovieRepository(db, genres),
			genres,
			repository.NewRatingRepository(db),
			repository.NewCommentRepository(db),
		),
	}
}

func (s *stack) promote(t *testing.T, email string) *shared.Principal {
	t.Helper()
	u, err := s.users.UpdateRole(context.Background(), email, shared.RoleModerator)
	require.NoError(t, err)
	return &shared.Principal{UserID: u.ID, Username: u.Username, Role: u.Role}
}

func TestScenario_AliceRatesTwice(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, err := s.auth.Register(ctx, RegisterInput{Username: "alice", Email: "a@x.com", Password: "secret1", ConfirmPassword: "secret1"})
	require.NoError(t, err)

	sess, err := s.auth.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, shared.RoleStandard, sess.Principal.Role)

	principal, err := s.auth.ResolveSession(ctx, sess.Token)
	require.NoError(t, err)

	_, err = s.auth.Register(ctx, RegisterInput{Username: "mod", Email: "mod@x.com", Password: "secret1", ConfirmPassword: "secret1"})
	require.NoError(t, err)
	movie, err := s.catalog.AddMovie(ctx, s.promote(t, "mod@x.com"), validMovieForm())
	require.NoError(t, err)

	first, err := s.catalog.RateMovie(ctx, principal, movie.ID, 4)
	require.NoError(t, err)
	assert.False(t, first.Updated)

	second, err := s.catalog.RateMovie(ctx, principal, movie.ID, 2)
	require.NoError(t, err)
	assert.True(t, second.Updated)

	var ratings []models.Rating
	require.NoError(t, s.db.Where("user_id = ? AND movie_id = ?", principal.UserID, movie.ID).Find(&ratings).Error)
	require.Len(t, ratings, 1)
	assert.Equal(t, 2, ratings[0].Score)

	_, err = s.catalog.CommentOnMovie(ctx, principal, movie.ID, "Worth a second look")
	require.NoError(t, err)

	detail, err := s.catalog.ViewMovieDetail(ctx, movie.ID, principal)
	require.NoError(t, err)
	require.NotNil(t, detail.UserRating)
	assert.Equal(t, 2, *detail.UserRating)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "alice", detail.Comments[0].Username)

	anon, err := s.catalog.ViewMovieDetail(ctx, movie.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, anon.UserRating)
}

func TestScenario_StandardUserCannotAddMovie(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, err := s.auth.Register(ctx, RegisterInput{Username: "bob", Email: "b@x.com", Password: "secret1", ConfirmPassword: "secret1"})
	require.NoError(t, err)
	sess, err := s.auth.Login(ctx, "b@x.com", "secret1")
	require.NoError(t, err)

	_, err = s.catalog.AddMovie(ctx, &sess.Principal, validMovieForm())
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	view, err := s.catalog.ViewCatalog(ctx)
	require.NoError(t, err)
	assert.True(t, view.Empty)
}

func TestScenario_DuplicateGenresCollapse(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, err := s.auth.Register(ctx, RegisterInput{Username: "mod", Email: "mod@x.com", Password: "secret1", ConfirmPassword: "secret1"})
	require.NoError(t, err)

	movie, err := s.catalog.AddMovie(ctx, s.promote(t, "mod@x.com"), validMovieForm())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Drama", "Comedy"}, movie.Genres)

	genres, err := s.catalog.ListGenres(ctx)
	require.NoError(t, err)
	assert.Len(t, genres, 2)
}

func TestScenario_DuplicateRegistrationCreatesNoRow(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, err := s.auth.Register(ctx, RegisterInput{Username: "alice", Email: "a@x.com", Password: "secret1", ConfirmPassword: "secret1"})
	require.NoError(t, err)

	_, err = s.auth.Register(ctx, RegisterInput{Username: "alice", Email: "other@x.com", Password: "secret1", ConfirmPassword: "secret1"})
	assert.ErrorIs(t, err, apperr.ErrConstraintViolation)
	_, err = s.auth.Register(ctx, RegisterInput{Username: "alice2", Email: "a@x.com", Password: "secret1", ConfirmPassword: "secret1"})
	assert.ErrorIs(t, err, apperr.ErrConstraintViolation)

	var count int64
	s.db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestScenario_LogoutEndsSession(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, err := s.auth.Register(ctx, RegisterInput{Username: "alice", Email: "a@x.com", Password: "secret1", ConfirmPassword: "secret1"})
	require.NoError(t, err)
	sess, err := s.auth.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, s.auth.Logout(ctx, sess.Token))
	_, err = s.auth.ResolveSession(ctx, sess.Token)
	assert.ErrorIs(t, err, apperr.ErrAuthenticationRequired)
}
