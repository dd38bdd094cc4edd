package endpoint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuslink-client-go/internal/domain/eventbus"
)

func newResolver(t *testing.T, candidates []Candidate, opts Options) *Resolver {
	t.Helper()
	if opts.Bus == nil {
		opts.Bus = eventbus.New()
	}
	r, err := NewResolver(candidates, opts)
	require.NoError(t, err)
	return r
}

func TestBaseURLDefinedBeforeAnyProbe(t *testing.T) {
	r := newResolver(t, []Candidate{
		{URL: "http://10.0.2.2:8000", Affinity: AffinityAndroid},
		{URL: "http://127.0.0.1:8000", Affinity: AffinityAny},
	}, Options{Platform: AffinityAndroid})

	assert.Equal(t, "http://10.0.2.2:8000", r.BaseURL())
}

func TestBaseURLFallsBackToFirstCandidate(t *testing.T) {
	r := newResolver(t, []Candidate{
		{URL: "http://127.0.0.1:8000", Affinity: AffinityIOS},
		{URL: "http://localhost:8000", Affinity: AffinityWeb},
	}, Options{Platform: AffinityAndroid})

	assert.NotEmpty(t, r.BaseURL())
}

func TestRefreshPromotesFirstReachableCandidate(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	r := newResolver(t, []Candidate{
		{URL: deadURL, Affinity: AffinityAny},
		{URL: healthy.URL, Affinity: AffinityAny},
	}, Options{ProbeTimeout: 500 * time.Millisecond})

	got, err := r.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, healthy.URL, got)
	assert.Equal(t, healthy.URL, r.BaseURL())
}

func TestRefreshPrefersPlatformAffineCandidates(t *testing.T) {
	var androidHits atomic.Int32
	android := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		androidHits.Add(1)
	}))
	defer android.Close()

	anyHost := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer anyHost.Close()

	r := newResolver(t, []Candidate{
		{URL: anyHost.URL, Affinity: AffinityAny},
		{URL: android.URL, Affinity: AffinityAndroid},
	}, Options{Platform: AffinityAndroid})

	got, err := r.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, android.URL, got)
	assert.Equal(t, int32(1), androidHits.Load())
}

func TestRefreshKeepsLastKnownGoodWhenAllDead(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	r := newResolver(t, []Candidate{
		{URL: deadURL, Affinity: AffinityAny},
	}, Options{ProbeTimeout: 300 * time.Millisecond})

	before := r.BaseURL()
	got, err := r.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, got, "failed probe cycle must not lose the active URL")
}

func TestConcurrentRefreshCollapsesToOneProbe(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		time.Sleep(150 * time.Millisecond)
	}))
	defer server.Close()

	r := newResolver(t, []Candidate{
		{URL: server.URL, Affinity: AffinityAny},
	}, Options{ProbeTimeout: time.Second})

	const callers = 8
	results := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			url, err := r.Refresh(context.Background())
			assert.NoError(t, err)
			results[i] = url
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load(), "concurrent refreshes must share one probe cycle")
	for _, url := range results {
		assert.Equal(t, server.URL, url)
	}
}

func TestRefreshPublishesChangeEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	bus := eventbus.New()
	var gotURL string
	require.NoError(t, bus.Subscribe(eventbus.TopicBaseURLChanged, func(url string) {
		gotURL = url
	}))

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	r := newResolver(t, []Candidate{
		{URL: deadURL, Affinity: AffinityAny},
		{URL: server.URL, Affinity: AffinityAny},
	}, Options{Bus: bus, ProbeTimeout: 300 * time.Millisecond})

	_, err := r.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, server.URL, gotURL)
}

func TestParseAffinity(t *testing.T) {
	tests := []struct {
		in       string
		expected Affinity
	}{
		{"web", AffinityWeb},
		{"Android", AffinityAndroid},
		{" ios ", AffinityIOS},
		{"any", AffinityAny},
		{"", AffinityAny},
		{"desktop", AffinityAny},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseAffinity(tt.in), "input %q", tt.in)
	}
}
