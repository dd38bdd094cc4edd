package connection

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"golang.org/x/sync/singleflight"

	"campuslink-client-go/internal/domain/endpoint"
	"campuslink-client-go/internal/domain/eventbus"
	"campuslink-client-go/internal/domain/session"
	"campuslink-client-go/internal/domain/session/model"
	platformerrors "campuslink-client-go/internal/platform/errors"
)

// API is the surface the screens consume: thin typed wrappers over the
// request engine, plus the current-user cache. It holds no domain state
// beyond that cache; optimistic UI updates and their rollbacks live in the
// callers.
type API struct {
	engine   *Engine
	session  *session.Manager
	resolver *endpoint.Resolver
	log      *slog.Logger

	profileMaxAge time.Duration
	profileGroup  singleflight.Group
	profileCache  profileCache
}

// APIOptions tunes the facade.
type APIOptions struct {
	Logger        *slog.Logger
	Bus           evbus.Bus
	ProfileMaxAge time.Duration
}

func NewAPI(engine *Engine, sess *session.Manager, resolver *endpoint.Resolver, opts APIOptions) *API {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxAge := opts.ProfileMaxAge
	if maxAge <= 0 {
		maxAge = 5 * time.Minute
	}
	bus := opts.Bus
	if bus == nil {
		bus = eventbus.Get()
	}

	api := &API{
		engine:        engine,
		session:       sess,
		resolver:      resolver,
		log:           logger,
		profileMaxAge: maxAge,
	}

	// Logout or a rejected token must never leave another user's profile
	// in the cache.
	if err := bus.Subscribe(eventbus.TopicSessionCleared, api.InvalidateProfile); err != nil {
		logger.Warn("profile cache not wired to session events", "error", err)
	}

	return api
}

// IsAuthenticated is a local pre-flight check; it never touches the network.
func (a *API) IsAuthenticated() bool {
	return a.session.IsAuthenticated()
}

// BaseURL returns the currently active backend host.
func (a *API) BaseURL() string {
	return a.resolver.BaseURL()
}

// RefreshBaseURL re-probes the host candidates.
func (a *API) RefreshBaseURL(ctx context.Context) (string, error) {
	return a.resolver.Refresh(ctx)
}

// Login authenticates and stores the returned credential.
func (a *API) Login(ctx context.Context, username, password string) (UserRecord, error) {
	payload, err := a.engine.Do(ctx, http.MethodPost, "/api/auth/login",
		Anonymous(),
		WithBody(map[string]string{"username": username, "password": password}),
	)
	if err != nil {
		return UserRecord{}, err
	}

	var result struct {
		Token        string     `json:"token"`
		AccessToken  string     `json:"access_token"`
		RefreshToken string     `json:"refresh_token"`
		User         UserRecord `json:"user"`
	}
	if err := decodePayload(payload, &result); err != nil {
		return UserRecord{}, platformerrors.Wrap(platformerrors.KindUnknown, "login",
			"decode login response", err)
	}

	token := result.Token
	if token == "" {
		token = result.AccessToken
	}
	if token == "" {
		return UserRecord{}, platformerrors.New(platformerrors.KindUnknown, "login",
			"login response carried no token")
	}

	if err := a.session.Set(ctx, model.Credential{
		AccessToken:  token,
		RefreshToken: result.RefreshToken,
	}); err != nil {
		return UserRecord{}, err
	}

	a.storeProfile(result.User)
	return result.User, nil
}

// Logout clears the credential and the cached profile.
func (a *API) Logout(ctx context.Context) error {
	return a.session.Clear(ctx)
}

// Posts lists the forum feed, normalizing whichever response convention
// the server answers with.
func (a *API) Posts(ctx context.Context, q PostQuery) (PostPage, error) {
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}

	payload, err := a.engine.Do(ctx, http.MethodGet, "/api/posts", WithQuery(values))
	if err != nil {
		return PostPage{}, err
	}
	return normalizePosts(payload)
}

// LikePost toggles the like on a post and returns the authoritative state.
func (a *API) LikePost(ctx context.Context, postID int64) (LikeResult, error) {
	payload, err := a.engine.Do(ctx, http.MethodPost,
		fmt.Sprintf("/api/posts/%d/like", postID))
	if err != nil {
		return LikeResult{}, err
	}

	var result LikeResult
	if err := decodePayload(payload, &result); err != nil {
		return LikeResult{}, platformerrors.Wrap(platformerrors.KindUnknown, "likePost",
			"decode like response", err)
	}
	return result, nil
}

// ReportPost flags a post. Callers special-case unauthorized and the
// rate-limited server kind.
func (a *API) ReportPost(ctx context.Context, postID int64) error {
	_, err := a.engine.Do(ctx, http.MethodPost,
		fmt.Sprintf("/api/posts/%d/report", postID))
	return err
}

// MarketplaceItem fetches one listing.
func (a *API) MarketplaceItem(ctx context.Context, itemID int64) (MarketplaceItem, error) {
	payload, err := a.engine.Do(ctx, http.MethodGet,
		fmt.Sprintf("/api/marketplace/items/%d", itemID))
	if err != nil {
		return MarketplaceItem{}, err
	}

	var item MarketplaceItem
	if err := decodePayload(payload, &item); err != nil {
		return MarketplaceItem{}, platformerrors.Wrap(platformerrors.KindUnknown, "marketplaceItem",
			"decode marketplace item", err)
	}
	return item, nil
}

// MarkItemSold marks a listing as sold. It refuses locally when no
// credential is present, without a network round trip.
func (a *API) MarkItemSold(ctx context.Context, itemID int64) error {
	if !a.IsAuthenticated() {
		return platformerrors.New(platformerrors.KindUnauthorized, "markItemSold",
			"sign in to mark items as sold")
	}
	_, err := a.engine.Do(ctx, http.MethodPost,
		fmt.Sprintf("/api/marketplace/items/%d/sold", itemID))
	return err
}

// UnreadNotificationCount answers the badge poll.
func (a *API) UnreadNotificationCount(ctx context.Context) (int, error) {
	payload, err := a.engine.Do(ctx, http.MethodGet, "/api/notifications/unread-count")
	if err != nil {
		return 0, err
	}

	var result struct {
		Count       int `json:"count"`
		UnreadCount int `json:"unread_count"`
	}
	if err := decodePayload(payload, &result); err != nil {
		return 0, platformerrors.Wrap(platformerrors.KindUnknown, "unreadNotifications",
			"decode unread count", err)
	}
	if result.Count == 0 {
		return result.UnreadCount, nil
	}
	return result.Count, nil
}
