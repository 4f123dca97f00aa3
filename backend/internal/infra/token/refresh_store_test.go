package token

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newMiniredisStore(t *testing.T) (*RedisRefreshTokenStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisRefreshTokenStore(client, ""), mr
}

func TestRedisRefreshTokenStoreRoundTrip(t *testing.T) {
	store, _ := newMiniredisStore(t)
	ctx := context.Background()

	expiresAt := time.Now().Add(time.Hour)
	if err := store.Save(ctx, 7, "jti-1", expiresAt); err != nil {
		t.Fatalf("save: %v", err)
	}

	exists, err := store.Exists(ctx, 7, "jti-1")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Fatalf("expected token to exist")
	}

	// 不同会员或不同 jti 互不可见。
	if exists, _ := store.Exists(ctx, 8, "jti-1"); exists {
		t.Fatalf("token leaked across members")
	}
	if exists, _ := store.Exists(ctx, 7, "jti-2"); exists {
		t.Fatalf("unknown jti reported as existing")
	}

	if err := store.Delete(ctx, 7, "jti-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if exists, _ := store.Exists(ctx, 7, "jti-1"); exists {
		t.Fatalf("token survived delete")
	}
}

func TestRedisRefreshTokenStoreExpiry(t *testing.T) {
	store, mr := newMiniredisStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, 7, "jti-ttl", time.Now().Add(30*time.Second)); err != nil {
		t.Fatalf("save: %v", err)
	}

	mr.FastForward(time.Minute)

	exists, err := store.Exists(ctx, 7, "jti-ttl")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatalf("expected token to expire")
	}
}

func TestRedisRefreshTokenStoreRejectsEmptyTokenID(t *testing.T) {
	store, _ := newMiniredisStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, 7, "", time.Now().Add(time.Hour)); err == nil {
		t.Fatalf("expected error for empty token id")
	}
	if exists, err := store.Exists(ctx, 7, ""); err != nil || exists {
		t.Fatalf("empty token id should not exist, got %v %v", exists, err)
	}
}
