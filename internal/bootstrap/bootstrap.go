package bootstrap

import (
	"context"

	"campuslink-client-go/internal/domain/connection"
	"campuslink-client-go/internal/domain/endpoint"
	"campuslink-client-go/internal/domain/session"
	sessionstore "campuslink-client-go/internal/domain/session/store"
	platformconfig "campuslink-client-go/internal/platform/config"
	platformerrors "campuslink-client-go/internal/platform/errors"
	platformlogging "campuslink-client-go/internal/platform/logging"
)

// Client bundles the wired connection core: config, logging, session,
// endpoint resolution and the domain facade the screens talk to.
type Client struct {
	Config   *platformconfig.Config
	Logger   *platformlogging.Logger
	Session  *session.Manager
	Resolver *endpoint.Resolver
	API      *connection.API

	store sessionstore.Store
}

// NewClient loads configuration and wires every layer of the client in
// dependency order.
func NewClient(ctx context.Context) (*Client, error) {
	res, err := platformconfig.NewLoader().Load()
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindConfig, "bootstrap",
			"load configuration", err)
	}
	cfg := res.Config

	logger, err := platformlogging.New(platformlogging.Config{
		Level:    cfg.Log.Level,
		Dir:      cfg.Log.Dir,
		Filename: cfg.Log.File,
	})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindConfig, "bootstrap",
			"initialise logging", err)
	}
	slogger := logger.Slog()

	credStore, err := sessionstore.New(storeConfig(cfg))
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindStorage, "bootstrap",
			"open credential store", err)
	}

	sess := session.NewManager(credStore, slogger)

	resolver, err := endpoint.NewResolver(candidates(cfg), endpoint.Options{
		Platform:     endpoint.ParseAffinity(cfg.Platform),
		ProbePath:    cfg.Endpoint.ProbePath,
		ProbeTimeout: cfg.Endpoint.ProbeTimeout,
		Logger:       slogger,
	})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindConfig, "bootstrap",
			"build endpoint resolver", err)
	}

	engine := connection.NewEngine(resolver, sess, connection.EngineOptions{
		Logger:          slogger,
		ReadTimeout:     cfg.Request.ReadTimeout,
		MutationTimeout: cfg.Request.MutationTimeout,
		RetryBackoff:    cfg.Request.RetryBackoff,
	})

	api := connection.NewAPI(engine, sess, resolver, connection.APIOptions{
		Logger:        slogger,
		ProfileMaxAge: cfg.Profile.MaxAge,
	})

	return &Client{
		Config:   cfg,
		Logger:   logger,
		Session:  sess,
		Resolver: resolver,
		API:      api,
		store:    credStore,
	}, nil
}

// Close releases the credential store and log file.
func (c *Client) Close(ctx context.Context) {
	if c.store != nil {
		_ = c.store.Close(ctx)
	}
	if c.Logger != nil {
		_ = c.Logger.Close()
	}
}

func storeConfig(cfg *platformconfig.Config) sessionstore.Config {
	sc := sessionstore.Config{Driver: cfg.Session.Store.Driver}
	if cfg.Session.Store.File.Dir != "" {
		sc.File = &sessionstore.FileConfig{Dir: cfg.Session.Store.File.Dir}
	}
	if cfg.Session.Store.Redis.Addr != "" {
		sc.Redis = &sessionstore.RedisConfig{
			Addr:     cfg.Session.Store.Redis.Addr,
			Username: cfg.Session.Store.Redis.Username,
			Password: cfg.Session.Store.Redis.Password,
			DB:       cfg.Session.Store.Redis.DB,
			Key:      cfg.Session.Store.Redis.Key,
		}
	}
	return sc
}

func candidates(cfg *platformconfig.Config) []endpoint.Candidate {
	out := make([]endpoint.Candidate, 0, len(cfg.Endpoint.Candidates))
	for _, c := range cfg.Endpoint.Candidates {
		out = append(out, endpoint.Candidate{
			URL:      c.URL,
			Affinity: endpoint.ParseAffinity(c.Affinity),
		})
	}
	return out
}
