package dto

type GenreResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
