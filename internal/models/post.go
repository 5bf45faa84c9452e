package models

import (
	"time"
)

// Post is a publishable text entry. Posts created through the API are
// always published.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   *string   `json:"content"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreatePostRequest struct {
	Title   string  `json:"title"`
	Content *string `json:"content"`
}
