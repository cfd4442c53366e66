package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/finbase/corebank/internal/domain"
	"github.com/finbase/corebank/internal/infrastructure/logging"
)

type fakeValidator struct {
	validateFn func(ctx context.Context, token string) (int64, error)
}

func (f *fakeValidator) Validate(ctx context.Context, token string) (int64, error) {
	return f.validateFn(ctx, token)
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	mw := NewAuthMiddleware(&fakeValidator{
		validateFn: func(ctx context.Context, token string) (int64, error) {
			t.Fatal("validator should not be called without a token")
			return 0, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/1", nil)
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	mw := NewAuthMiddleware(&fakeValidator{
		validateFn: func(ctx context.Context, token string) (int64, error) {
			return 0, domain.ErrInvalidToken
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/1", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	mw := NewAuthMiddleware(&fakeValidator{
		validateFn: func(ctx context.Context, token string) (int64, error) {
			if token != "good-token" {
				t.Errorf("unexpected token: %s", token)
			}

			return 7, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/1", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rr := httptest.NewRecorder()

	var gotOwner int64

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOwner, _ = r.Context().Value(logging.OwnerIDKey).(int64)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	if gotOwner != 7 {
		t.Errorf("expected owner 7 in context, got %d", gotOwner)
	}
}
