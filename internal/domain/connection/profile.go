package connection

import (
	"context"
	"net/http"
	"sync"
	"time"

	platformerrors "campuslink-client-go/internal/platform/errors"
)

type profileCache struct {
	mu        sync.Mutex
	user      UserRecord
	fetchedAt time.Time
}

func (c *profileCache) get(maxAge time.Duration) (UserRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fetchedAt.IsZero() || time.Since(c.fetchedAt) > maxAge {
		return UserRecord{}, false
	}
	return c.user, true
}

func (c *profileCache) put(user UserRecord) {
	c.mu.Lock()
	c.user = user
	c.fetchedAt = time.Now()
	c.mu.Unlock()
}

func (c *profileCache) clear() {
	c.mu.Lock()
	c.user = UserRecord{}
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}

// CurrentUser returns the signed-in user's profile, served from cache when
// fresh enough. Pass force after a profile write so the edit shows up
// immediately. Concurrent refreshes collapse into a single fetch.
func (a *API) CurrentUser(ctx context.Context, force bool) (UserRecord, error) {
	if !force {
		if user, ok := a.profileCache.get(a.profileMaxAge); ok {
			return user, nil
		}
	}

	v, err, _ := a.profileGroup.Do("profile", func() (interface{}, error) {
		return a.fetchProfile(ctx)
	})
	if err != nil {
		if platformerrors.IsKind(err, platformerrors.KindUnauthorized) {
			a.InvalidateProfile()
		}
		return UserRecord{}, err
	}
	return v.(UserRecord), nil
}

func (a *API) fetchProfile(ctx context.Context) (UserRecord, error) {
	payload, err := a.engine.Do(ctx, http.MethodGet, "/api/profile")
	if err != nil {
		return UserRecord{}, err
	}

	var user UserRecord
	if err := decodePayload(payload, &user); err != nil {
		return UserRecord{}, platformerrors.Wrap(platformerrors.KindUnknown, "profile",
			"decode profile response", err)
	}

	a.storeProfile(user)
	return user, nil
}

func (a *API) storeProfile(user UserRecord) {
	if user.ID == 0 && user.Username == "" {
		return
	}
	a.profileCache.put(user)
}

// InvalidateProfile drops the cached profile unconditionally.
func (a *API) InvalidateProfile() {
	a.profileCache.clear()
}
