package store

import (
	"context"
	"sync"

	"campuslink-client-go/internal/domain/session/model"
)

type memoryStore struct {
	mu      sync.RWMutex
	cred    model.Credential
	present bool
}

// NewMemory builds an in-memory credential store. Nothing survives a
// restart; it exists for tests and throwaway sessions.
func NewMemory() Store {
	return &memoryStore{}
}

func (s *memoryStore) Load(_ context.Context) (model.Credential, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.present {
		return model.Credential{}, false, nil
	}
	return s.cred, true, nil
}

func (s *memoryStore) Save(_ context.Context, cred model.Credential) error {
	s.mu.Lock()
	s.cred = cred
	s.present = true
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.cred = model.Credential{}
	s.present = false
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Close(_ context.Context) error {
	return nil
}
