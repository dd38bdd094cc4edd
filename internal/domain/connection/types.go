package connection

// UserRecord is the slice of the profile payload the core cares about.
// Everything beyond profile_picture is passed through untouched.
type UserRecord struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profile_picture"`
	Course         string `json:"course"`
	Year           int    `json:"year"`
}

type Post struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	Author        string `json:"author"`
	LikeCount     int    `json:"like_count"`
	IsLikedByUser bool   `json:"is_liked_by_user"`
	CreatedAt     string `json:"created_at"`
}

// PostQuery narrows the feed listing.
type PostQuery struct {
	Page   int
	Limit  int
	Search string
}

// PostPage is the uniform shape every server response convention is
// normalized into.
type PostPage struct {
	Items []Post
	Total int
}

// LikeResult carries the authoritative server state after a like toggle.
// Optimistic UI callers reconcile against Liked, last response wins.
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

type MarketplaceItem struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Seller      string  `json:"seller"`
	Image       string  `json:"image"`
	IsSold      bool    `json:"is_sold"`
}
