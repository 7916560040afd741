package domain

// Post is the server copy of a client-editable post record. All timestamps
// are epoch milliseconds; CreatedAt is immutable after insert, UpdatedAt is
// stamped by the store on every mutation. LastEventAt is bumped whenever the
// post or one of its comments changes, independent of edit history.
type Post struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Subtitle    *string `json:"subtitle,omitempty"`
	Body        string  `json:"body"`
	IsPinned    bool    `json:"isPinned"`
	LastEventAt int64   `json:"lastEventAt"`
	CreatedAt   int64   `json:"createdAt"`
	UpdatedAt   int64   `json:"updatedAt"`
	UserID      string  `json:"userId"`
}

type CreatePostRequest struct {
	Title    string  `json:"title" validate:"required,max=200"`
	Subtitle *string `json:"subtitle"`
	Body     string  `json:"body" validate:"required"`
	IsPinned bool    `json:"isPinned"`
}

type UpdatePostRequest struct {
	Title    *string `json:"title"`
	Subtitle *string `json:"subtitle"`
	Body     *string `json:"body"`
	IsPinned *bool   `json:"isPinned"`
}

// PostQuery carries the pagination/search parameters of the post listing
// endpoint. SortBy is checked against a whitelist in the repository.
type PostQuery struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
}

type PostList struct {
	Posts      []*Post `json:"posts"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"totalPages"`
}
