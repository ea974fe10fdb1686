package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"popcornhour/internal/microservices/http-api/dto"
	"popcornhour/internal/microservices/http-api/middleware"
	"popcornhour/internal/microservices/http-api/service"
	"popcornhour/internal/pkg/logger"
)

type CommentHandler struct {
	catalog service.CatalogService
	log     *logger.Logger
}

func NewCommentHandler(catalog service.CatalogService, log *logger.Logger) *CommentHandler {
	return &CommentHandler{catalog: catalog, log: log}
}

// RegisterRoutes registers comment routes on the movies group
func (h *CommentHandler) RegisterRoutes(movies *gin.RouterGroup) {
	movies.POST("/:movie_id/comments", h.Create)
}

// Create posts a comment on a movie
// POST /api/movies/:movie_id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	movieID, err := movieIDParam(c)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, badBody())
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	comment, err := h.catalog.CommentOnMovie(ctx, middleware.PrincipalFrom(c), movieID, req.Content)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}
