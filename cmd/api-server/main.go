package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"popcornhour/database"
	"popcornhour/internal/config"
	"popcornhour/internal/microservices/http-api/handler"
	"popcornhour/internal/microservices/http-api/middleware"
	"popcornhour/internal/microservices/http-api/middleware/auth"
	"popcornhour/internal/microservices/http-api/repository"
	"popcornhour/internal/microservices/http-api/service"
	"popcornhour/internal/observability"
	"popcornhour/internal/pkg/logger"
)

func main() {
	// 1. Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logg, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer logg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg, logg)
	if err != nil {
		logg.Warn("tracing disabled", "error", err)
	}

	// 2. Connect to the database
	db, err := database.Connect(cfg, logg)
	if err != nil {
		logg.Fatal("database connection failed", "error", err)
	}
	defer database.Close(db)

	sessions, closeSessions, err := buildSessionStore(ctx, cfg, db)
	if err != nil {
		logg.Fatal("session store init failed", "backend", cfg.SessionBackend, "error", err)
	}
	defer closeSessions()

	// 3. Wire stores, services and handlers
	users := repository.NewUserRepository(db)
	genres := repository.NewGenreRepository(db)
	movies := repository.NewMovieRepository(db, genres)
	ratings := repository.NewRatingRepository(db)
	comments := repository.NewCommentRepository(db)

	authService := service.NewAuthService(users, sessions, auth.NewBcryptHasher(cfg.BcryptCost), cfg, logg.With("service", "auth"))
	catalogService := service.NewCatalogService(movies, genres, ratings, comments)

	handlerLog := logg.With("component", "http")
	handlers := handler.Handlers{
		Auth:     handler.NewAuthHandler(authService, handler.CookieConfig{Name: cfg.SessionCookie, Secure: cfg.IsProduction()}, handlerLog),
		Movies:   handler.NewMovieHandler(catalogService, handlerLog),
		Ratings:  handler.NewRatingHandler(catalogService, handlerLog),
		Comments: handler.NewCommentHandler(catalogService, handlerLog),
		Genres:   handler.NewGenreHandler(catalogService, handlerLog),
	}

	// 4. Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.OtelEnabled {
		r.Use(otelgin.Middleware(observability.ServiceName))
	}
	r.Use(middleware.RequestLogger(handlerLog))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.GET("/check-conn", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "API is alive and database connected"})
	})

	api := r.Group("/api")
	api.Use(middleware.SessionMiddleware(authService, cfg.SessionCookie, handlerLog))
	handlers.Mount(api)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		logg.Info("server running", "addr", srv.Addr, "session_backend", cfg.SessionBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logg.Info("received shutdown signal")
	case err := <-errChan:
		logg.Error("server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("graceful shutdown failed", "error", err)
	}
	if shutdownTracing != nil {
		if err := shutdownTracing(shutdownCtx); err != nil {
			logg.Warn("tracer shutdown failed", "error", err)
		}
	}
	logg.Info("server stopped gracefully")
}

// buildSessionStore picks the session backend named by SESSION_BACKEND.
func buildSessionStore(ctx context.Context, cfg *config.Config, db *gorm.DB) (repository.SessionStore, func(), error) {
	switch cfg.SessionBackend {
	case "redis":
		store, err := repository.NewRedisSessionStore(ctx, cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return repository.NewSessionRepository(db), func() {}, nil
	}
}
