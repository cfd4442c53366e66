package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/finbase/corebank/internal/infrastructure/metrics"
)

// Metrics records request counts and latency per route.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			path := normalizePath(r.URL.Path)

			m.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
			m.HTTPDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// normalizePath collapses path parameters so metric cardinality stays bounded.
func normalizePath(path string) string {
	parts := strings.Split(path, "/")

	for i, part := range parts {
		if part == "" {
			continue
		}

		if _, err := strconv.ParseInt(part, 10, 64); err == nil {
			parts[i] = ":id"
			continue
		}

		// ULIDs are 26 chars of Crockford base32.
		if len(part) == 26 && strings.ToUpper(part) == part {
			parts[i] = ":id"
		}
	}

	return strings.Join(parts, "/")
}
