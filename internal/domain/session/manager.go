package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/golang-jwt/jwt/v5"

	"campuslink-client-go/internal/domain/eventbus"
	"campuslink-client-go/internal/domain/session/model"
	"campuslink-client-go/internal/domain/session/store"
)

// Manager owns the credential lifecycle. It keeps an in-memory copy of the
// stored credential so Token and IsAuthenticated are cheap synchronous
// reads; the backing store is only touched on Set/Clear and at startup.
//
// A storage read failure degrades to "not authenticated": a glitch forces a
// re-login instead of proceeding with a credential we cannot prove we have.
type Manager struct {
	store store.Store
	bus   evbus.Bus
	log   *slog.Logger

	mu   sync.RWMutex
	cred model.Credential
}

func NewManager(s store.Store, logger *slog.Logger) *Manager {
	m := &Manager{
		store: s,
		bus:   eventbus.Get(),
		log:   logger,
	}
	m.reload()
	return m
}

// WithBus overrides the event bus (useful for tests).
func (m *Manager) WithBus(bus evbus.Bus) *Manager {
	if bus != nil {
		m.bus = bus
	}
	return m
}

func (m *Manager) reload() {
	cred, ok, err := m.store.Load(context.Background())
	if err != nil {
		m.log.Warn("credential load failed, treating session as signed out", "error", err)
		return
	}
	if !ok {
		return
	}
	m.mu.Lock()
	m.cred = cred
	m.mu.Unlock()
}

// Token returns the current access token, or "" when signed out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cred.AccessToken
}

// Credential returns a copy of the current credential.
func (m *Manager) Credential() model.Credential {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cred
}

// IsAuthenticated reports whether a non-empty token is present. This is a
// local check only; server-side validity is discovered lazily on the next
// request.
func (m *Manager) IsAuthenticated() bool {
	return m.Token() != ""
}

// Set atomically replaces the stored credential. A missing expiry is
// filled in from the token's exp claim when the token is a JWT.
func (m *Manager) Set(ctx context.Context, cred model.Credential) error {
	if cred.ExpiresAt == nil {
		cred.ExpiresAt = expiryFromToken(cred.AccessToken)
	}

	if err := m.store.Save(ctx, cred); err != nil {
		m.log.Warn("credential persist failed, session will not survive restart", "error", err)
	}

	m.mu.Lock()
	m.cred = cred
	m.mu.Unlock()
	return nil
}

// Clear removes the credential; used on logout.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		m.log.Warn("credential clear failed in store", "error", err)
	}

	m.mu.Lock()
	m.cred = model.Credential{}
	m.mu.Unlock()

	m.bus.Publish(eventbus.TopicSessionCleared)
	return nil
}

// Expire clears the credential after the server rejected it. It fires the
// expired topic in addition to the cleared one so UI layers can route to a
// login screen exactly once.
func (m *Manager) Expire(ctx context.Context) error {
	err := m.Clear(ctx)
	m.bus.Publish(eventbus.TopicSessionExpired)
	return err
}

// expiryFromToken reads the exp claim without verifying the signature; the
// client has no signing key and only needs the timestamp for display and
// cache decisions.
func expiryFromToken(token string) *time.Time {
	if token == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time
	return &t
}
