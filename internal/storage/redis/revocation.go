package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked:"

type RevocationList struct {
	client *redis.Client
}

func NewRevocationList(client *redis.Client) *RevocationList {
	return &RevocationList{client: client}
}

// Revoke помечает сессию отозванной до истечения её токена.
func (s *RevocationList) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	return s.client.Set(ctx, revokedKeyPrefix+sessionID, "revoked", ttl).Err()
}

func (s *RevocationList) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	result, err := s.client.Get(ctx, revokedKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return result == "revoked", nil
}
