package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"popcornhour/internal/apperr"
	"popcornhour/internal/microservices/http-api/dto"
	"popcornhour/internal/microservices/http-api/middleware"
	"popcornhour/internal/microservices/http-api/models"
	"popcornhour/internal/microservices/http-api/service"
	"popcornhour/internal/pkg/logger"
	"popcornhour/internal/shared"
)

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAuthService) ResolveSession(ctx context.Context, token string) (*shared.Principal, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Principal), args.Error(1)
}

// MockCatalogService mocks the CatalogService interface
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ViewCatalog(ctx context.Context) (*dto.CatalogView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CatalogView), args.Error(1)
}

func (m *MockCatalogService) ViewMovieDetail(ctx context.Context, movieID int64, principal *shared.Principal) (*dto.MovieDetail, error) {
	args := m.Called(ctx, movieID, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.MovieDetail), args.Error(1)
}

func (m *MockCatalogService) RateMovie(ctx context.Context, principal *shared.Principal, movieID int64, score int) (*dto.RatingResult, error) {
	args := m.Called(ctx, principal, movieID, score)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RatingResult), args.Error(1)
}

func (m *MockCatalogService) CommentOnMovie(ctx context.Context, principal *shared.Principal, movieID int64, text string) (*dto.CommentResponse, error) {
	args := m.Called(ctx, principal, movieID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CommentResponse), args.Error(1)
}

func (m *MockCatalogService) AddMovie(ctx context.Context, principal *shared.Principal, form dto.CreateMovieRequest) (*dto.MovieDetail, error) {
	args := m.Called(ctx, principal, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.MovieDetail), args.Error(1)
}

func (m *MockCatalogService) ListGenres(ctx context.Context) ([]dto.GenreResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.GenreResponse), args.Error(1)
}

var (
	alice     = &shared.Principal{UserID: "u1", Username: "alice", Role: shared.RoleStandard}
	moderator = &shared.Principal{UserID: "u9", Username: "mod", Role: shared.RoleModerator}
)

// setupRouter mounts every route behind the real session middleware.
// Bearer "alice-token" and "mod-token" resolve to the principals above.
func setupRouter(authSvc *MockAuthService, catalog *MockCatalogService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	authSvc.On("ResolveSession", mock.Anything, "alice-token").Return(alice, nil).Maybe()
	authSvc.On("ResolveSession", mock.Anything, "mod-token").Return(moderator, nil).Maybe()
	authSvc.On("ResolveSession", mock.Anything, mock.Anything).Return(nil, apperr.ErrAuthenticationRequired).Maybe()

	log := logger.NewNop()
	r := gin.New()
	r.Use(middleware.SessionMiddleware(authSvc, "session", log))
	Handlers{
		Auth:     NewAuthHandler(authSvc, CookieConfig{Name: "session"}, log),
		Movies:   NewMovieHandler(catalog, log),
		Ratings:  NewRatingHandler(catalog, log),
		Comments: NewCommentHandler(catalog, log),
		Genres:   NewGenreHandler(catalog, log),
	}.Mount(r.Group("/api"))
	return r
}

func doRequest(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
