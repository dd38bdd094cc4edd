package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"

	"campuslink-client-go/internal/domain/session/model"
)

const credentialFilename = "credential.json"

type fileStore struct {
	path string
	mu   sync.Mutex
}

// NewFile builds a store persisting the credential as a JSON file in the
// user config directory (or the configured directory).
func NewFile(cfg Config) (Store, error) {
	dir := ""
	if cfg.File != nil {
		dir = cfg.File.Dir
	}
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve user config dir: %w", err)
		}
		dir = filepath.Join(base, "campuslink")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create credential dir: %w", err)
	}
	return &fileStore{path: filepath.Join(dir, credentialFilename)}, nil
}

func (s *fileStore) Load(_ context.Context) (model.Credential, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Credential{}, false, nil
		}
		return model.Credential{}, false, fmt.Errorf("read credential file: %w", err)
	}

	var cred model.Credential
	if err := sonic.Unmarshal(data, &cred); err != nil {
		return model.Credential{}, false, fmt.Errorf("decode credential file: %w", err)
	}
	if cred.Empty() {
		return model.Credential{}, false, nil
	}
	return cred, true, nil
}

func (s *fileStore) Save(_ context.Context, cred model.Credential) error {
	data, err := sonic.Marshal(cred)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Write-then-rename keeps the replacement atomic.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace credential file: %w", err)
	}
	return nil
}

func (s *fileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credential file: %w", err)
	}
	return nil
}

func (s *fileStore) Close(_ context.Context) error {
	return nil
}
