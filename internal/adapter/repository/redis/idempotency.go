package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// inflightPlaceholder is the value reserving a key while the first request
// is still being handled. It never leaves this package: callers observing an
// in-flight key get a nil response instead.
const inflightPlaceholder = "processing"

// IdempotencyStore backs the HTTP idempotency middleware with Redis. When
// requests are authenticated the middleware prefixes keys with the owner ID,
// so two clients may reuse the same key without colliding.
type IdempotencyStore struct {
	client *redis.Client
	prefix string
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		prefix: "idempotency:",
	}
}

// CheckAndSet atomically checks if key exists, sets if not. An existing key
// holding a final response yields (true, response, nil); an existing key
// whose first request is still in flight yields (true, nil, nil).
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	fullKey := s.prefix + key

	existing, err := s.client.Get(ctx, fullKey).Bytes()
	if err == nil {
		return true, finalResponse(existing), nil
	}
	if !errors.Is(err, redis.Nil) {
		return false, nil, err
	}

	if response != nil {
		if err := s.client.Set(ctx, fullKey, response, ttl).Err(); err != nil {
			return false, nil, err
		}

		return false, nil, nil
	}

	// Claim the key with a placeholder so a concurrent duplicate request
	// observes it as in flight.
	set, err := s.client.SetNX(ctx, fullKey, inflightPlaceholder, ttl).Result()
	if err != nil {
		return false, nil, err
	}

	if !set {
		existing, err := s.client.Get(ctx, fullKey).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return false, nil, err
		}

		return true, finalResponse(existing), nil
	}

	return false, nil, nil
}

// finalResponse filters out the reservation placeholder so it is never
// replayed as a response body.
func finalResponse(value []byte) []byte {
	if string(value) == inflightPlaceholder {
		return nil
	}

	return value
}

// Update updates an existing idempotency key with the final response.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, response, ttl).Err()
}
