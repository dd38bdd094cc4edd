package httptransport

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Options configures the devserver router builder.
type Options struct {
	Logger      *slog.Logger
	LogLevel    string
	JWTSecret   string
	Redis       *redis.Client
	ReportLimit int
}

// Router bundles the gin engine and the route groups behind it.
type Router struct {
	Engine *gin.Engine
}

type server struct {
	log     *slog.Logger
	store   *fixtureStore
	tokens  *tokenIssuer
	limiter *reportLimiter
}

// Build constructs a gin engine pre-configured with recovery, CORS and the
// mock CampusLink API routes.
func Build(opts Options) (*Router, error) {
	if opts.JWTSecret == "" {
		return nil, fmt.Errorf("devserver requires a jwt secret")
	}
	if opts.Redis == nil {
		return nil, fmt.Errorf("devserver requires a redis client")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"X-Request-ID",
		},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	s := &server{
		log:     logger,
		store:   newFixtureStore(),
		tokens:  newTokenIssuer(opts.JWTSecret, 24*time.Hour),
		limiter: newReportLimiter(opts.Redis, opts.ReportLimit),
	}

	engine.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	api := engine.Group("/api")
	api.POST("/auth/login", s.login)
	api.GET("/posts", optionalAuth(s.tokens), s.listPosts)
	api.GET("/marketplace/items/:id", s.marketplaceItem)

	secured := api.Group("")
	secured.Use(authMiddleware(s.tokens))
	secured.GET("/profile", s.profile)
	secured.POST("/posts/:id/like", s.likePost)
	secured.POST("/posts/:id/report", s.reportPost)
	secured.POST("/marketplace/items/:id/sold", s.markItemSold)
	secured.GET("/notifications/unread-count", s.unreadCount)

	return &Router{Engine: engine}, nil
}

func (s *server) login(c *gin.Context) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Username == "" || body.Password == "" {
		RespondError(c, http.StatusBadRequest, "username and password are required")
		return
	}

	// Development backend: any non-empty password signs in.
	u := s.store.userFor(body.Username)
	token, err := s.tokens.issue(u)
	if err != nil {
		s.log.Error("token issue failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "could not issue token")
		return
	}

	RespondSuccess(c, http.StatusOK, gin.H{
		"token":         token,
		"refresh_token": "",
		"user":          u,
	}, "signed in")
}

func (s *server) profile(c *gin.Context) {
	username := c.GetString("username")
	RespondSuccess(c, http.StatusOK, s.store.userFor(username), "")
}

type postView struct {
	post
	IsLikedByUser bool `json:"is_liked_by_user"`
}

// listPosts answers in one of the three response conventions the real
// backend has shipped over time, selected by the shape query parameter so
// client normalization can be exercised against each.
func (s *server) listPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	search := c.Query("search")
	username := c.GetString("username")

	posts, total := s.store.listPosts(search, page, limit)
	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		views = append(views, postView{
			post:          p,
			IsLikedByUser: username != "" && s.store.likedBy(username, p.ID),
		})
	}

	switch c.DefaultQuery("shape", "results") {
	case "posts":
		RespondSuccess(c, http.StatusOK, gin.H{"posts": views, "count": total}, "")
	case "bare":
		c.JSON(http.StatusOK, views)
	default:
		RespondSuccess(c, http.StatusOK, gin.H{"results": views, "count": total}, "")
	}
}

func (s *server) likePost(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	username := c.GetString("username")
	liked, count, ok := s.store.toggleLike(username, postID)
	if !ok {
		RespondError(c, http.StatusNotFound, "post not found")
		return
	}

	RespondSuccess(c, http.StatusOK, gin.H{
		"liked":      liked,
		"like_count": count,
	}, "")
}

func (s *server) reportPost(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	username := c.GetString("username")
	allowed, err := s.limiter.allow(c.Request.Context(), username)
	if err != nil {
		s.log.Error("report rate limit check failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "rate limit check failed")
		return
	}
	if !allowed {
		RespondError(c, http.StatusTooManyRequests, "too many reports, slow down")
		return
	}

	s.log.Info("post reported", "post_id", postID, "by", username)
	RespondSuccess(c, http.StatusOK, nil, "report received")
}

func (s *server) marketplaceItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid item id")
		return
	}

	item, ok := s.store.item(itemID)
	if !ok {
		RespondError(c, http.StatusNotFound, "item not found")
		return
	}
	RespondSuccess(c, http.StatusOK, item, "")
}

func (s *server) markItemSold(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid item id")
		return
	}

	if !s.store.markSold(itemID) {
		RespondError(c, http.StatusNotFound, "item not found")
		return
	}
	RespondSuccess(c, http.StatusOK, nil, "item marked as sold")
}

func (s *server) unreadCount(c *gin.Context) {
	username := c.GetString("username")
	RespondSuccess(c, http.StatusOK, gin.H{
		"count": s.store.unreadCount(username),
	}, "")
}
