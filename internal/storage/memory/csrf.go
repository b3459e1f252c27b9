package memory

import (
	"context"
	"sync"
	"time"
)

type csrfEntry struct {
	token     string
	expiresAt time.Time
}

type CSRFStore struct {
	mu      sync.Mutex
	entries map[string]csrfEntry
}

func NewCSRFStore() *CSRFStore {
	return &CSRFStore{
		entries: make(map[string]csrfEntry),
	}
}

func (s *CSRFStore) Put(_ context.Context, sessionID, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[sessionID] = csrfEntry{
		token:     token,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Get возвращает "" для отсутствующего или истекшего токена: для валидации
// это одно и то же.
func (s *CSRFStore) Get(_ context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[sessionID]
	if !ok {
		return "", nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.entries, sessionID)
		return "", nil
	}
	return entry.token, nil
}

// Sweep evicts expired tokens left behind by abandoned sessions.
func (s *CSRFStore) Sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for sessionID, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, sessionID)
		}
	}
}

func (s *CSRFStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
