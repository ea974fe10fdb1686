package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"popcornhour/internal/microservices/http-api/service"
	"popcornhour/internal/pkg/logger"
)

type GenreHandler struct {
	catalog service.CatalogService
	log     *logger.Logger
}

func NewGenreHandler(catalog service.CatalogService, log *logger.Logger) *GenreHandler {
	return &GenreHandler{catalog: catalog, log: log}
}

func (h *GenreHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/genres", h.List)
}

// GET /api/genres
func (h *GenreHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.catalog.ListGenres(ctx)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
