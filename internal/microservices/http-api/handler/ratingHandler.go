package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"popcornhour/internal/microservices/http-api/dto"
	"popcornhour/internal/microservices/http-api/middleware"
	"popcornhour/internal/microservices/http-api/service"
	"popcornhour/internal/pkg/logger"
)

type RatingHandler struct {
	catalog service.CatalogService
	log     *logger.Logger
}

func NewRatingHandler(catalog service.CatalogService, log *logger.Logger) *RatingHandler {
	return &RatingHandler{catalog: catalog, log: log}
}

// RegisterRoutes registers rating routes on the movies group
func (h *RatingHandler) RegisterRoutes(movies *gin.RouterGroup) {
	movies.POST("/:movie_id/ratings", h.CreateOrUpdate)
}

// CreateOrUpdate sets the caller's rating for a movie
// POST /api/movies/:movie_id/ratings
func (h *RatingHandler) CreateOrUpdate(c *gin.Context) {
	movieID, err := movieIDParam(c)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	var req dto.RateMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, badBody())
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.catalog.RateMovie(ctx, middleware.PrincipalFrom(c), movieID, req.Score)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
