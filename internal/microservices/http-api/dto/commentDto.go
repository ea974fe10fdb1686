package dto

import "time"

// CreateCommentRequest is the comment form; Content is 5..500 characters after trimming.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

type CommentResponse struct {
	ID        int64     `json:"id"`
	MovieID   int64     `json:"movie_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
