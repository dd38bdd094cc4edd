package eventbus

import (
	"sync"

	evbus "github.com/asaskevich/EventBus"
)

// Topics published by the connection core. UI layers subscribe to redirect
// to login exactly once instead of polling IsAuthenticated.
const (
	// TopicSessionCleared fires whenever the credential is removed, whether
	// by logout or by the request engine reacting to a 401.
	TopicSessionCleared = "session.cleared"
	// TopicSessionExpired fires only when the server rejected the token.
	TopicSessionExpired = "session.expired"
	// TopicBaseURLChanged fires when a probe switches the active host.
	TopicBaseURLChanged = "endpoint.base_url_changed"
)

var (
	instance evbus.Bus
	once     sync.Once
)

// Get returns the process-wide synchronous bus.
func Get() evbus.Bus {
	once.Do(func() {
		instance = New()
	})
	return instance
}

// New creates a fresh bus, detached from the process-wide instance.
func New() evbus.Bus {
	return evbus.New()
}

// Publish publishes on the process-wide bus.
func Publish(topic string, args ...interface{}) {
	Get().Publish(topic, args...)
}

// Subscribe subscribes on the process-wide bus.
func Subscribe(topic string, fn interface{}) error {
	return Get().Subscribe(topic, fn)
}

// Unsubscribe removes a handler from the process-wide bus.
func Unsubscribe(topic string, fn interface{}) error {
	return Get().Unsubscribe(topic, fn)
}
