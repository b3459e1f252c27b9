// Package memory holds single-process implementations of the gatekeeper
// tables. State is not shared between instances; deployments running more
// than one replica should use the redis stores instead.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vastaff/gatekeeper/internal/models"
)

type rateEntry struct {
	count         int
	windowResetAt time.Time
	lastRequestAt time.Time
}

type RateLimitStore struct {
	mu            sync.Mutex
	entries       map[string]*rateEntry
	burstInterval time.Duration
}

func NewRateLimitStore(burstInterval time.Duration) *RateLimitStore {
	return &RateLimitStore{
		entries:       make(map[string]*rateEntry),
		burstInterval: burstInterval,
	}
}

// Allow принимает решение целиком под одним локом: чтение и запись окна
// должны быть одной атомарной операцией.
func (s *RateLimitStore) Allow(_ context.Context, key string, policy models.RatePolicy, now time.Time) (*models.RateDecision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || now.After(entry.windowResetAt) {
		s.entries[key] = &rateEntry{
			count:         1,
			windowResetAt: now.Add(policy.Window),
			lastRequestAt: now,
		}
		return &models.RateDecision{
			Allowed:    true,
			ResetAfter: policy.Window,
		}, nil
	}

	// Burst heuristic runs before the quota check.
	if now.Sub(entry.lastRequestAt) < s.burstInterval {
		return &models.RateDecision{
			Allowed:    false,
			Burst:      true,
			ResetAfter: entry.windowResetAt.Sub(now),
		}, nil
	}

	if entry.count >= policy.Max {
		return &models.RateDecision{
			Allowed:    false,
			ResetAfter: entry.windowResetAt.Sub(now),
		}, nil
	}

	entry.count++
	entry.lastRequestAt = now

	return &models.RateDecision{
		Allowed:    true,
		ResetAfter: entry.windowResetAt.Sub(now),
	}, nil
}

// Sweep drops entries whose window has already ended, bounding table growth
// in a long-running process.
func (s *RateLimitStore) Sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.entries {
		if now.After(entry.windowResetAt) {
			delete(s.entries, key)
		}
	}
}

func (s *RateLimitStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
