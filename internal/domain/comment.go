package domain

// Comment belongs to exactly one post. Timestamps are epoch milliseconds
// maintained by the store.
type Comment struct {
	ID        string `json:"id"`
	Body      string `json:"body"`
	PostID    string `json:"postId"`
	UserID    string `json:"userId"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

type CreateCommentRequest struct {
	Body   string `json:"body" validate:"required"`
	PostID string `json:"postId" validate:"required"`
}

type UpdateCommentRequest struct {
	Body *string `json:"body"`
}
