package store

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"campuslink-client-go/internal/domain/session/model"
)

type redisStore struct {
	client *redis.Client
	key    string
}

// NewRedis constructs a redis-backed credential store. It serves shared
// development boxes and CI, where a config-dir file is not durable.
func NewRedis(cfg Config) (Store, error) {
	if cfg.Redis == nil {
		return nil, fmt.Errorf("redis configuration missing")
	}
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis address required")
	}

	opts := &redis.Options{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	key := cfg.Redis.Key
	if key == "" {
		key = "session:credential"
	}
	return &redisStore{client: client, key: key}, nil
}

func (s *redisStore) Load(ctx context.Context) (model.Credential, bool, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return model.Credential{}, false, nil
		}
		return model.Credential{}, false, err
	}
	var cred model.Credential
	if err := sonic.Unmarshal(raw, &cred); err != nil {
		return model.Credential{}, false, err
	}
	if cred.Empty() {
		return model.Credential{}, false, nil
	}
	return cred, true, nil
}

func (s *redisStore) Save(ctx context.Context, cred model.Credential) error {
	data, err := sonic.Marshal(cred)
	if err != nil {
		return err
	}
	var expiry time.Duration
	if cred.ExpiresAt != nil {
		expiry = time.Until(*cred.ExpiresAt)
		if expiry <= 0 {
			expiry = time.Second
		}
	}
	return s.client.Set(ctx, s.key, data, expiry).Err()
}

func (s *redisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

func (s *redisStore) Close(context.Context) error {
	return s.client.Close()
}
