package httptransport

import (
	"strings"
	"sync"
)

type user struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profile_picture"`
	Course         string `json:"course"`
	Year           int    `json:"year"`
}

type post struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Author    string `json:"author"`
	LikeCount int    `json:"like_count"`
	CreatedAt string `json:"created_at"`
}

type marketplaceItem struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Seller      string  `json:"seller"`
	Image       string  `json:"image"`
	IsSold      bool    `json:"is_sold"`
}

// fixtureStore is the devserver's in-memory world. It exists so the client
// can be exercised against realistic mutable state without a database.
type fixtureStore struct {
	mu       sync.Mutex
	users    map[string]user
	posts    []post
	likes    map[string]map[int64]bool
	items    map[int64]*marketplaceItem
	unread   map[string]int
	nextUser int64
}

func newFixtureStore() *fixtureStore {
	s := &fixtureStore{
		users:    make(map[string]user),
		likes:    make(map[string]map[int64]bool),
		items:    make(map[int64]*marketplaceItem),
		unread:   make(map[string]int),
		nextUser: 100,
	}

	s.posts = []post{
		{ID: 1, Title: "Lost student card near the library", Author: "ada", LikeCount: 3, CreatedAt: "2025-09-01T09:15:00Z", Content: "Blue lanyard, reward is a coffee."},
		{ID: 2, Title: "Study group for databases, Thursdays", Author: "grace", LikeCount: 7, CreatedAt: "2025-09-02T18:40:00Z", Content: "Room B204, bring your own laptop."},
		{ID: 3, Title: "Anyone selling a used bike lock?", Author: "linus", LikeCount: 1, CreatedAt: "2025-09-03T08:05:00Z", Content: "Mine gave up this morning."},
		{ID: 42, Title: "Campus fair photos are up", Author: "ada", LikeCount: 11, CreatedAt: "2025-09-04T12:00:00Z", Content: "Link in the comments."},
	}

	s.items[7] = &marketplaceItem{
		ID: 7, Title: "Desk lamp", Description: "Warm white, barely used",
		Price: 12.50, Seller: "grace", Image: "/media/items/lamp.jpg",
	}
	s.items[8] = &marketplaceItem{
		ID: 8, Title: "Calculus textbook", Description: "Notes in the margins",
		Price: 20, Seller: "linus", Image: "/media/items/calc.jpg",
	}

	return s
}

// userFor returns the fixture user for a username, creating one on first
// sight so any login succeeds during development.
func (s *fixtureStore) userFor(username string) user {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[username]; ok {
		return u
	}
	s.nextUser++
	u := user{
		ID:             s.nextUser,
		Username:       username,
		Email:          username + "@campus.edu",
		ProfilePicture: "/media/avatars/" + username + ".png",
		Course:         "Computer Science",
		Year:           2,
	}
	s.users[username] = u
	s.unread[username] = 3
	return u
}

func (s *fixtureStore) listPosts(search string, page, limit int) ([]post, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]post, 0, len(s.posts))
	for _, p := range s.posts {
		if search == "" ||
			strings.Contains(strings.ToLower(p.Title), strings.ToLower(search)) ||
			strings.Contains(strings.ToLower(p.Content), strings.ToLower(search)) {
			matched = append(matched, p)
		}
	}
	total := len(matched)

	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= total {
		return []post{}, total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total
}

// toggleLike flips the like state for a user and returns the new state
// plus the authoritative count. The second return is false when the post
// does not exist.
func (s *fixtureStore) toggleLike(username string, postID int64) (bool, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.posts {
		if s.posts[i].ID == postID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, 0, false
	}

	if s.likes[username] == nil {
		s.likes[username] = make(map[int64]bool)
	}
	liked := !s.likes[username][postID]
	s.likes[username][postID] = liked
	if liked {
		s.posts[idx].LikeCount++
	} else {
		s.posts[idx].LikeCount--
	}
	return liked, s.posts[idx].LikeCount, true
}

func (s *fixtureStore) likedBy(username string, postID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.likes[username][postID]
}

func (s *fixtureStore) item(id int64) (marketplaceItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return marketplaceItem{}, false
	}
	return *item, true
}

func (s *fixtureStore) markSold(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return false
	}
	item.IsSold = true
	return true
}

func (s *fixtureStore) unreadCount(username string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread[username]
}
