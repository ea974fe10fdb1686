package dto

import "time"

// MovieSummary is one row of the catalog listing.
type MovieSummary struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	ReleaseYear   int      `json:"release_year"`
	PosterURL     string   `json:"poster_url"`
	Genres        []string `json:"genres"`
	AverageRating *float64 `json:"average_rating"`
	RatingCount   int      `json:"rating_count"`
}

// CatalogView is the catalog page; Empty drives the "no movies yet" state.
type CatalogView struct {
	Data  []MovieSummary `json:"data"`
	Empty bool           `json:"empty"`
}

// MovieDetail is one movie with its comments, newest first.
// UserRating is the caller's own score, nil when anonymous or unrated.
type MovieDetail struct {
	ID            int64             `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	ReleaseYear   int               `json:"release_year"`
	PosterURL     string            `json:"poster_url"`
	TrailerURL    *string           `json:"trailer_url,omitempty"`
	Genres        []string          `json:"genres"`
	AverageRating *float64          `json:"average_rating"`
	RatingCount   int               `json:"rating_count"`
	UserRating    *int              `json:"user_rating"`
	Comments      []CommentResponse `json:"comments"`
	CreatedAt     time.Time         `json:"created_at"`
}

// CreateMovieRequest is the moderator's add-movie form.
// Genres is a comma-separated list, e.g. "Drama, Comedy".
type CreateMovieRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ReleaseYear int    `json:"release_year"`
	PosterURL   string `json:"poster_url"`
	TrailerURL  string `json:"trailer_url"`
	Genres      string `json:"genres"`
}
