package endpoint

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"golang.org/x/sync/singleflight"

	"campuslink-client-go/internal/domain/eventbus"
)

const defaultProbeTimeout = 2 * time.Second

// Options configures the resolver.
type Options struct {
	Platform     Affinity
	ProbePath    string
	ProbeTimeout time.Duration
	Client       *http.Client
	Logger       *slog.Logger
	Bus          evbus.Bus
}

// Resolver hides which of several hosts the backend is actually reachable
// at. BaseURL is a synchronous read of the last-known-good host; Refresh
// probes the candidate list and advances the active pointer.
type Resolver struct {
	candidates []Candidate
	order      []Candidate
	probePath  string
	timeout    time.Duration
	client     *http.Client
	log        *slog.Logger
	bus        evbus.Bus

	group singleflight.Group

	mu     sync.RWMutex
	active string
}

func NewResolver(candidates []Candidate, opts Options) (*Resolver, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("resolver requires at least one host candidate")
	}

	platform := opts.Platform
	if platform == "" {
		platform = AffinityAny
	}
	order := orderFor(candidates, platform)
	if len(order) == 0 {
		// Nothing matches this platform; probe everything rather than nothing.
		order = candidates
	}

	probePath := opts.ProbePath
	if probePath == "" {
		probePath = "/health"
	}
	timeout := opts.ProbeTimeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	bus := opts.Bus
	if bus == nil {
		bus = eventbus.Get()
	}

	return &Resolver{
		candidates: candidates,
		order:      order,
		probePath:  probePath,
		timeout:    timeout,
		client:     client,
		log:        logger,
		bus:        bus,
		active:     order[0].URL,
	}, nil
}

// BaseURL returns the active candidate's URL. It is always defined, even
// before the first probe has completed.
func (r *Resolver) BaseURL() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Refresh probes the candidates in priority order and promotes the first
// reachable one. Concurrent calls collapse into a single probe cycle; every
// caller observes the same resulting URL. When no candidate answers, the
// previously active one is kept so the client keeps trying the
// last-known-good host.
func (r *Resolver) Refresh(ctx context.Context) (string, error) {
	v, err, _ := r.group.Do("probe", func() (interface{}, error) {
		return r.probe(ctx), nil
	})
	if err != nil {
		return r.BaseURL(), err
	}
	return v.(string), nil
}

func (r *Resolver) probe(ctx context.Context) string {
	for _, c := range r.order {
		if r.reachable(ctx, c.URL) {
			r.promote(c.URL)
			return c.URL
		}
		if ctx.Err() != nil {
			break
		}
	}
	r.log.Warn("no host candidate reachable, keeping last known good", "active", r.BaseURL())
	return r.BaseURL()
}

// reachable treats any HTTP response as success: a 404 on the probe path
// still proves the host is there, which is all the resolver cares about.
func (r *Resolver) reachable(ctx context.Context, baseURL string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	url := strings.TrimRight(baseURL, "/") + r.probePath
	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return true
}

func (r *Resolver) promote(url string) {
	r.mu.Lock()
	changed := r.active != url
	r.active = url
	r.mu.Unlock()

	if changed {
		r.log.Info("active base URL changed", "base_url", url)
		r.bus.Publish(eventbus.TopicBaseURLChanged, url)
	}
}
