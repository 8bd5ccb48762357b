package articles

import "time"

// Article model.
type Article struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"authorId"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Premium   bool      `json:"premium"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ArticleInput for creating and updating articles.
type ArticleInput struct {
	Title     string
	Body      string
	Premium   bool
	Published bool
}
