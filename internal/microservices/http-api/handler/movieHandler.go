package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"popcornhour/internal/microservices/http-api/dto"
	"popcornhour/internal/microservices/http-api/middleware"
	"popcornhour/internal/microservices/http-api/service"
	"popcornhour/internal/pkg/logger"
)

type MovieHandler struct {
	catalog service.CatalogService
	log     *logger.Logger
}

func NewMovieHandler(catalog service.CatalogService, log *logger.Logger) *MovieHandler {
	return &MovieHandler{catalog: catalog, log: log}
}

// RegisterRoutes mounts the catalog under rg; the returned group hosts
// the per-movie engagement routes.
func (h *MovieHandler) RegisterRoutes(rg *gin.RouterGroup) *gin.RouterGroup {
	movies := rg.Group("/movies")
	{
		movies.GET("", h.List)
		movies.POST("", h.Create) // moderator only, enforced by the service
		movies.GET("/:movie_id", h.Get)
	}
	return movies
}

// List returns the whole catalog
// GET /api/movies
func (h *MovieHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	view, err := h.catalog.ViewCatalog(ctx)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Get returns one movie with comments and, for a logged-in caller, their rating
// GET /api/movies/:movie_id
func (h *MovieHandler) Get(c *gin.Context) {
	movieID, err := movieIDParam(c)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	detail, err := h.catalog.ViewMovieDetail(ctx, movieID, middleware.PrincipalFrom(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Create adds a movie and its genres
// POST /api/movies
func (h *MovieHandler) Create(c *gin.Context) {
	var req dto.CreateMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, badBody())
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	movie, err := h.catalog.AddMovie(ctx, middleware.PrincipalFrom(c), req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, movie)
}
