package store

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"campuslink-client-go/internal/domain/session/model"
)

func TestRedisStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	s, err := NewRedis(Config{
		Redis: &RedisConfig{Addr: mr.Addr()},
	})
	if err != nil {
		t.Fatalf("NewRedis error: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close(ctx)
	})

	if _, ok, err := s.Load(ctx); err != nil || ok {
		t.Fatalf("empty store should load nothing, got ok=%v err=%v", ok, err)
	}

	exp := time.Now().Add(time.Hour)
	cred := model.Credential{AccessToken: "redis-token", ExpiresAt: &exp}
	if err := s.Save(ctx, cred); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, ok, err := s.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load after Save: ok=%v err=%v", ok, err)
	}
	if got.AccessToken != cred.AccessToken {
		t.Fatalf("unexpected credential: %+v", got)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if _, ok, _ := s.Load(ctx); ok {
		t.Fatal("expected no credential after Clear")
	}
}

func TestRedisStoreExpiredCredentialLapses(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	s, err := NewRedis(Config{Redis: &RedisConfig{Addr: mr.Addr()}})
	if err != nil {
		t.Fatalf("NewRedis error: %v", err)
	}

	exp := time.Now().Add(500 * time.Millisecond)
	if err := s.Save(ctx, model.Credential{AccessToken: "short", ExpiresAt: &exp}); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	mr.FastForward(time.Second)

	if _, ok, _ := s.Load(ctx); ok {
		t.Fatal("credential should have expired via redis TTL")
	}
}
