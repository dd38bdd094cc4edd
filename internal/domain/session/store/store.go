package store

import (
	"context"

	"campuslink-client-go/internal/domain/session/model"
)

// Store persists the single session credential across restarts.
type Store interface {
	// Load returns the stored credential and whether one was present.
	Load(ctx context.Context) (model.Credential, bool, error)
	// Save overwrites the stored credential.
	Save(ctx context.Context, cred model.Credential) error
	// Clear removes the stored credential. Clearing an empty store is not
	// an error.
	Clear(ctx context.Context) error
	Close(ctx context.Context) error
}

// Config describes the high level store selection parameters.
type Config struct {
	Driver string
	File   *FileConfig
	Redis  *RedisConfig
}

// FileConfig locates the on-device credential file.
type FileConfig struct {
	Dir string
}

// RedisConfig captures connection options.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Key      string
}
