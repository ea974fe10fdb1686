package handler

import "github.com/gin-gonic/gin"

// Handlers groups every HTTP handler of the API.
type Handlers struct {
	Auth     *AuthHandler
	Movies   *MovieHandler
	Ratings  *RatingHandler
	Comments *CommentHandler
	Genres   *GenreHandler
}

// Mount registers all routes under api (normally the /api group).
func (hs Handlers) Mount(api *gin.RouterGroup) {
	hs.Auth.RegisterRoutes(api)

	movies := hs.Movies.RegisterRoutes(api)
	hs.Ratings.RegisterRoutes(movies)
	hs.Comments.RegisterRoutes(movies)

	hs.Genres.RegisterRoutes(api)
}
