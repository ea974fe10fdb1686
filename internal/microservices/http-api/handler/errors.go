package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"popcornhour/internal/apperr"
	"popcornhour/internal/pkg/logger"
)

const (
	requestTimeout = 5 * time.Second
	// catalogPath is where a forbidden caller is sent back to
	catalogPath = "/api/movies"
)

// writeError maps the shared error taxonomy onto a JSON response.
// Unrecognised errors are logged and reported as a bare 500.
func writeError(c *gin.Context, log *logger.Logger, err error) {
	var ve *apperr.ValidationError
	var cv *apperr.ConstraintViolationError

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": apperr.ErrValidation.Error(), "fields": ve.Fields})
	case errors.As(err, &cv):
		c.JSON(http.StatusConflict, gin.H{"error": cv.Error(), "fields": cv.FieldErrors()})
	case errors.Is(err, apperr.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": apperr.ErrInvalidCredentials.Error()})
	case errors.Is(err, apperr.ErrAuthenticationRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": apperr.ErrAuthenticationRequired.Error()})
	case errors.Is(err, apperr.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": apperr.ErrForbidden.Error(), "redirect": catalogPath})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": apperr.ErrNotFound.Error()})
	case errors.Is(err, apperr.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "the request conflicted with a concurrent update, please retry"})
	default:
		log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badBody() error {
	return apperr.InvalidField("form", "invalid request body")
}

func movieIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("movie_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.InvalidField("movie_id", "invalid movie id")
	}
	return id, nil
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}
