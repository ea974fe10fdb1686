package dto

// RateMovieRequest is the rating form; Score is 1..5.
type RateMovieRequest struct {
	Score int `json:"score"`
}

// RatingResult reports the stored score; Updated is false on a first rating.
type RatingResult struct {
	MovieID int64 `json:"movie_id"`
	Score   int   `json:"score"`
	Updated bool  `json:"updated"`
}
