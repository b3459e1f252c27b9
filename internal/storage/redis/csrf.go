package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const csrfKeyPrefix = "csrf:"

// CSRFStore держит по одному живому токену на идентификатор сессии.
// TTL обслуживается самим Redis, поэтому истекшие записи не накапливаются.
type CSRFStore struct {
	client *redis.Client
}

func NewCSRFStore(client *redis.Client) *CSRFStore {
	return &CSRFStore{client: client}
}

// Put overwrites any previously issued token for the session.
func (s *CSRFStore) Put(ctx context.Context, sessionID, token string, ttl time.Duration) error {
	return s.client.Set(ctx, csrfKeyPrefix+sessionID, token, ttl).Err()
}

func (s *CSRFStore) Get(ctx context.Context, sessionID string) (string, error) {
	result, err := s.client.Get(ctx, csrfKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return "", nil
	} else if err != nil {
		return "", err
	}
	return result, nil
}
