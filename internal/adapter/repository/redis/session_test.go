package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finbase/corebank/internal/domain"
)

func TestSessionStore_ValidateKnownToken(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	if err := client.Set(ctx, store.prefix+"tok-1", "42", time.Minute).Err(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	ownerID, err := store.Validate(ctx, "tok-1")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	if ownerID != 42 {
		t.Fatalf("expected owner 42, got %d", ownerID)
	}
}

func TestSessionStore_ValidateUnknownToken(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewSessionStore(client)

	_, err := store.Validate(context.Background(), "missing")
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSessionStore_ValidateGarbageValue(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	if err := client.Set(ctx, store.prefix+"tok-bad", "not-a-number", time.Minute).Err(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	_, err := store.Validate(ctx, "tok-bad")
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
