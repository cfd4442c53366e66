package middleware

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/finbase/corebank/internal/infrastructure/logging"
)

// IdempotencyKeyHeader is the request header carrying the client's
// idempotency key.
const IdempotencyKeyHeader = "Idempotency-Key"

// idempotencyTTL is how long a cached response is replayed for.
const idempotencyTTL = 24 * time.Hour

// IdempotencyStore persists responses keyed by idempotency key.
type IdempotencyStore interface {
	// CheckAndSet returns (true, cached, nil) when a final response already
	// exists for the key, (true, nil, nil) when the key is claimed but its
	// first request has not finished, or reserves the key and returns
	// (false, nil, nil).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update replaces the reservation with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// IdempotencyMiddleware replays cached responses for repeated mutating
// requests that carry the same idempotency key.
type IdempotencyMiddleware struct {
	store IdempotencyStore
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store IdempotencyStore) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{store: store}
}

// Wrap applies idempotency handling to next.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		// Scope keys per owner so distinct authenticated clients reusing the
		// same key never see each other's responses.
		if ownerID, ok := r.Context().Value(logging.OwnerIDKey).(int64); ok && ownerID != 0 {
			key = strconv.FormatInt(ownerID, 10) + ":" + key
		}

		exists, cached, err := m.store.CheckAndSet(r.Context(), key, nil, idempotencyTTL)
		if err != nil {
			// The store is the only defence against double execution here;
			// refusing is safer than running the mutation twice.
			http.Error(w, `{"error":"idempotency_unavailable"}`, http.StatusInternalServerError)
			return
		}

		if exists {
			// The key is claimed but the first request has not produced a
			// response yet; there is nothing to replay.
			if len(cached) == 0 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(`{"error":"request_in_flight","message":"a request with this idempotency key is still being processed"}`))

				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Idempotency-Replay", "true")
			_, _ = w.Write(cached)

			return
		}

		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		// Only successful responses are worth replaying; a failed request
		// should be retryable with the same key.
		if rec.status >= 200 && rec.status < 300 {
			_ = m.store.Update(r.Context(), key, rec.body.Bytes(), idempotencyTTL)
		}
	})
}

// responseRecorder captures the response while passing it through.
type responseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
