package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/finbase/corebank/internal/infrastructure/logging"
	"github.com/finbase/corebank/internal/infrastructure/metrics"
)

var (
	metricsOnce sync.Once
	testMetrics *metrics.Metrics
)

// sharedMetrics returns a process-wide metrics instance; registering the
// collectors twice would panic.
func sharedMetrics() *metrics.Metrics {
	metricsOnce.Do(func() {
		testMetrics = metrics.New()
	})

	return testMetrics
}

func testLogger() *logging.Logger {
	return &logging.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// newRequest builds a request carrying a chi route context with the given id
// parameter.
func newRequest(method, target, id string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)

	rctx := chi.NewRouteContext()
	if id != "" {
		rctx.URLParams.Add("id", id)
	}

	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
