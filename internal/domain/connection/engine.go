package connection

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"campuslink-client-go/internal/domain/endpoint"
	"campuslink-client-go/internal/domain/session"
	platformerrors "campuslink-client-go/internal/platform/errors"
)

const (
	defaultReadTimeout     = 10 * time.Second
	defaultMutationTimeout = 5 * time.Second
	defaultRetryBackoff    = 400 * time.Millisecond

	// Server responses are capped; nothing in the API legitimately
	// exceeds this.
	maxResponseBytes = 2 << 20
)

// Engine is the single choke point every HTTP call flows through, so auth
// injection, timeouts, error classification and the retry policy are
// applied exactly once and consistently.
type Engine struct {
	resolver *endpoint.Resolver
	session  *session.Manager
	client   *http.Client
	log      *slog.Logger

	readTimeout     time.Duration
	mutationTimeout time.Duration
	retryBackoff    time.Duration
}

// EngineOptions tunes the engine; zero values fall back to defaults.
type EngineOptions struct {
	Client          *http.Client
	Logger          *slog.Logger
	ReadTimeout     time.Duration
	MutationTimeout time.Duration
	RetryBackoff    time.Duration
}

func NewEngine(resolver *endpoint.Resolver, sess *session.Manager, opts EngineOptions) *Engine {
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		resolver:        resolver,
		session:         sess,
		client:          client,
		log:             logger,
		readTimeout:     opts.ReadTimeout,
		mutationTimeout: opts.MutationTimeout,
		retryBackoff:    opts.RetryBackoff,
	}
	if e.readTimeout <= 0 {
		e.readTimeout = defaultReadTimeout
	}
	if e.mutationTimeout <= 0 {
		e.mutationTimeout = defaultMutationTimeout
	}
	if e.retryBackoff <= 0 {
		e.retryBackoff = defaultRetryBackoff
	}
	return e
}

type requestOptions struct {
	body      any
	query     url.Values
	timeout   time.Duration
	anonymous bool
}

// RequestOption customises a single call.
type RequestOption func(*requestOptions)

// WithBody attaches a JSON body.
func WithBody(v any) RequestOption {
	return func(o *requestOptions) { o.body = v }
}

// WithQuery attaches query parameters.
func WithQuery(values url.Values) RequestOption {
	return func(o *requestOptions) { o.query = values }
}

// WithTimeout overrides the default per-call timeout.
func WithTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) { o.timeout = d }
}

// Anonymous skips the Authorization header; login is the obvious caller.
func Anonymous() RequestOption {
	return func(o *requestOptions) { o.anonymous = true }
}

// Do issues one HTTP call against the active base URL and returns the raw
// response body on 2xx, or a classified error otherwise. Idempotent reads
// that fail at the transport level are retried exactly once; mutations are
// never silently retried so a flaky network cannot double-apply a like or
// a report.
func (e *Engine) Do(ctx context.Context, method, path string, opts ...RequestOption) ([]byte, error) {
	reqOpts := requestOptions{}
	for _, opt := range opts {
		opt(&reqOpts)
	}
	if reqOpts.timeout <= 0 {
		if isIdempotent(method) {
			reqOpts.timeout = e.readTimeout
		} else {
			reqOpts.timeout = e.mutationTimeout
		}
	}

	body, err := e.send(ctx, method, path, reqOpts)
	if err == nil || !isIdempotent(method) || !platformerrors.IsRetryable(err) {
		return body, err
	}

	kind := platformerrors.KindOf(err)
	if kind != platformerrors.KindNetwork && kind != platformerrors.KindTimeout {
		return body, err
	}

	e.log.Debug("retrying idempotent request", "method", method, "path", path, "kind", string(kind))
	select {
	case <-time.After(e.retryBackoff):
	case <-ctx.Done():
		return nil, platformerrors.Wrap(platformerrors.KindTimeout, op(method, path),
			"request cancelled before retry", ctx.Err())
	}
	return e.send(ctx, method, path, reqOpts)
}

func (e *Engine) send(ctx context.Context, method, path string, opts requestOptions) ([]byte, error) {
	callOp := op(method, path)

	absolute := strings.TrimRight(e.resolver.BaseURL(), "/") + path
	if len(opts.query) > 0 {
		absolute += "?" + opts.query.Encode()
	}

	var reader io.Reader
	if opts.body != nil {
		data, err := sonic.Marshal(opts.body)
		if err != nil {
			return nil, platformerrors.Wrap(platformerrors.KindUnknown, callOp, "encode request body", err)
		}
		reader = bytes.NewReader(data)
	}

	callCtx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, method, absolute, reader)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindUnknown, callOp, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if opts.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !opts.anonymous {
		if token := e.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := e.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, platformerrors.Wrap(platformerrors.KindTimeout, callOp,
				"request timed out", err).AsRetryable()
		}
		return nil, platformerrors.Wrap(platformerrors.KindNetwork, callOp,
			"request failed before a response arrived", err).AsRetryable()
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindNetwork, callOp,
			"read response body", err).AsRetryable()
	}

	return e.classify(ctx, callOp, resp.StatusCode, payload)
}

func (e *Engine) classify(ctx context.Context, callOp string, status int, payload []byte) ([]byte, error) {
	switch {
	case status >= 200 && status < 300:
		return payload, nil

	case status == http.StatusUnauthorized:
		// Clear the credential so the caller redirects to login once
		// instead of looping on a token the server already rejected.
		if err := e.session.Expire(ctx); err != nil {
			e.log.Warn("failed to expire session after 401", "error", err)
		}
		return nil, platformerrors.New(platformerrors.KindUnauthorized, callOp,
			"session expired, please sign in again").WithStatus(status)

	case status == http.StatusTooManyRequests:
		return nil, platformerrors.New(platformerrors.KindServer, callOp,
			"you are doing that too often, try again in a moment").
			WithStatus(status).AsRetryable()

	case status >= 500:
		return nil, platformerrors.New(platformerrors.KindServer, callOp,
			"the server ran into a problem").WithStatus(status)

	case status >= 400:
		msg := serverMessage(payload)
		if msg == "" {
			msg = fmt.Sprintf("request rejected with status %d", status)
		}
		return nil, platformerrors.New(platformerrors.KindValidation, callOp, msg).WithStatus(status)

	default:
		return nil, platformerrors.New(platformerrors.KindUnknown, callOp,
			fmt.Sprintf("unexpected status %d", status)).WithStatus(status)
	}
}

func op(method, path string) string {
	return method + " " + path
}

func isIdempotent(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}

// serverMessage pulls the human-readable message out of an error payload,
// trying the field names the backend has used over time.
func serverMessage(payload []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	if err := sonic.Unmarshal(payload, &body); err != nil {
		return ""
	}
	switch {
	case body.Message != "":
		return body.Message
	case body.Error != "":
		return body.Error
	default:
		return body.Detail
	}
}
