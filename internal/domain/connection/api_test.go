package connection

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformerrors "campuslink-client-go/internal/platform/errors"
)

func TestLikePostHappyPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/posts/42/like", r.URL.Path)
		w.Write([]byte(`{"liked":true,"like_count":12}`))
	}))
	defer server.Close()

	tc := newTestEngine(t, server.URL, EngineOptions{})
	tc.signIn(t, "tok")

	result, err := tc.api.LikePost(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, result.Liked)
	assert.Equal(t, 12, result.LikeCount)
}

func TestMarkItemSoldGuardSkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	tc := newTestEngine(t, server.URL, EngineOptions{})

	err := tc.api.MarkItemSold(context.Background(), 7)
	require.Error(t, err)
	assert.Equal(t, platformerrors.KindUnauthorized, platformerrors.KindOf(err))
	assert.Zero(t, hits.Load(), "guard must answer without a network round trip")

	tc.signIn(t, "tok")
	require.NoError(t, tc.api.MarkItemSold(context.Background(), 7))
	assert.Equal(t, int32(1), hits.Load())
}

func TestCurrentUserCaching(t *testing.T) {
	var fetches atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		w.Write([]byte(`{"data":{"id":9,"username":"ada","email":"ada@campus.edu"}}`))
	}))
	defer server.Close()

	tc := newTestEngine(t, server.URL, EngineOptions{})
	tc.signIn(t, "tok")

	first, err := tc.api.CurrentUser(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "ada", first.Username)

	second, err := tc.api.CurrentUser(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), fetches.Load(), "fresh cache serves without a network call")

	_, err = tc.api.CurrentUser(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, int32(2), fetches.Load(), "force always refetches")
}

func TestCurrentUserClearedOnLogout(t *testing.T) {
	var fetches atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		w.Write([]byte(`{"id":9,"username":"ada"}`))
	}))
	defer server.Close()

	tc := newTestEngine(t, server.URL, EngineOptions{})
	tc.signIn(t, "tok")

	_, err := tc.api.CurrentUser(context.Background(), false)
	require.NoError(t, err)

	require.NoError(t, tc.api.Logout(context.Background()))
	assert.False(t, tc.api.IsAuthenticated())

	tc.signIn(t, "tok-2")
	_, err = tc.api.CurrentUser(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, int32(2), fetches.Load(), "logout must drop the cached profile")
}

func TestCurrentUserUnauthorizedPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	tc := newTestEngine(t, server.URL, EngineOptions{})
	tc.signIn(t, "stale")

	_, err := tc.api.CurrentUser(context.Background(), false)
	require.Error(t, err)
	assert.Equal(t, platformerrors.KindUnauthorized, platformerrors.KindOf(err))
	assert.False(t, tc.api.IsAuthenticated())
}

func TestPostsBuildsQuery(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"data":{"results":[],"count":0}}`))
	}))
	defer server.Close()

	tc := newTestEngine(t, server.URL, EngineOptions{})

	_, err := tc.api.Posts(context.Background(), PostQuery{Page: 2, Limit: 20, Search: "bikes"})
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "page=2")
	assert.Contains(t, gotQuery, "limit=20")
	assert.Contains(t, gotQuery, "search=bikes")
}

func TestUnreadNotificationCountFieldVariants(t *testing.T) {
	payloads := []string{
		`{"count":5}`,
		`{"unread_count":5}`,
		`{"data":{"count":5}}`,
	}
	for _, payload := range payloads {
		payload := payload
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(payload))
		}))

		tc := newTestEngine(t, server.URL, EngineOptions{})
		count, err := tc.api.UnreadNotificationCount(context.Background())
		require.NoError(t, err, "payload %s", payload)
		assert.Equal(t, 5, count, "payload %s", payload)
		server.Close()
	}
}

func TestImageURLResolution(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	tc := newTestEngine(t, server.URL, EngineOptions{})
	base := tc.api.BaseURL()

	tests := []struct {
		in       string
		expected string
	}{
		{"/media/avatars/a.png", base + "/media/avatars/a.png"},
		{"media/avatars/a.png", base + "/media/avatars/a.png"},
		{"https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"data:image/png;base64,iVBOR", "data:image/png;base64,iVBOR"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tc.api.ProfilePictureURL(tt.in), "input %q", tt.in)
	}
}

func TestLoginStoresCredentialAndProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"), "login is anonymous")
		w.Write([]byte(`{"data":{"token":"fresh-token","refresh_token":"r1",
			"user":{"id":3,"username":"grace"}}}`))
	}))
	defer server.Close()

	tc := newTestEngine(t, server.URL, EngineOptions{})

	user, err := tc.api.Login(context.Background(), "grace", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "grace", user.Username)
	assert.True(t, tc.api.IsAuthenticated())
	assert.Equal(t, "fresh-token", tc.session.Token())

	// The login response already carried the profile; no extra fetch needed.
	cached, err := tc.api.CurrentUser(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "grace", cached.Username)
}

func TestConcurrentCurrentUserSingleFetch(t *testing.T) {
	var fetches atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		time.Sleep(100 * time.Millisecond)
		w.Write([]byte(`{"id":1,"username":"ada"}`))
	}))
	defer server.Close()

	tc := newTestEngine(t, server.URL, EngineOptions{})
	tc.signIn(t, "tok")

	const callers = 6
	done := make(chan error, callers)
	for i := 0; i < callers; i++ {
		go func() {
			_, err := tc.api.CurrentUser(context.Background(), false)
			done <- err
		}()
	}
	for i := 0; i < callers; i++ {
		assert.NoError(t, <-done)
	}
	assert.Equal(t, int32(1), fetches.Load(), "concurrent refreshes share one fetch")
}
