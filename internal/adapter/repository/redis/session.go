package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/finbase/corebank/internal/domain"
)

// SessionStore resolves opaque session tokens for the HTTP auth middleware.
// Sessions are written by the external authentication service as
// session:<token> keys holding the owner ID; this store only reads them.
type SessionStore struct {
	client *redis.Client
	prefix string
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: "session:",
	}
}

// Validate resolves a session token to its owner ID. An unknown or expired
// token maps to domain.ErrInvalidToken.
func (s *SessionStore) Validate(ctx context.Context, token string) (int64, error) {
	val, err := s.client.Get(ctx, s.prefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, domain.ErrInvalidToken
		}

		return 0, err
	}

	ownerID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidToken
	}

	return ownerID, nil
}
