package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return mr, client, func() {
		client.Close()
		mr.Close()
	}
}

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	_, client, cleanup := setupTestRedis(t)
	defer cleanup()

	limiter := NewRateLimiter(client, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "u-1")
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	allowed, err := limiter.Allow(ctx, "u-1")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if allowed {
		t.Error("request over the limit should be denied")
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	_, client, cleanup := setupTestRedis(t)
	defer cleanup()

	limiter := NewRateLimiter(client, 1, time.Minute)
	ctx := context.Background()

	if allowed, _ := limiter.Allow(ctx, "u-1"); !allowed {
		t.Fatal("first request for u-1 should be allowed")
	}
	if allowed, _ := limiter.Allow(ctx, "u-1"); allowed {
		t.Fatal("second request for u-1 should be denied")
	}
	if allowed, _ := limiter.Allow(ctx, "u-2"); !allowed {
		t.Error("u-2 should not be affected by u-1's limit")
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	mr, client, cleanup := setupTestRedis(t)
	defer cleanup()

	limiter := NewRateLimiter(client, 1, time.Minute)
	ctx := context.Background()

	if allowed, _ := limiter.Allow(ctx, "u-1"); !allowed {
		t.Fatal("first request should be allowed")
	}
	if allowed, _ := limiter.Allow(ctx, "u-1"); allowed {
		t.Fatal("second request should be denied")
	}

	mr.FastForward(61 * time.Second)

	if allowed, _ := limiter.Allow(ctx, "u-1"); !allowed {
		t.Error("request after the window should be allowed again")
	}
}

func TestRateLimiter_Ping(t *testing.T) {
	_, client, cleanup := setupTestRedis(t)
	defer cleanup()

	limiter := NewRateLimiter(client, 1, time.Minute)
	if err := limiter.Ping(context.Background()); err != nil {
		t.Errorf("ping: %v", err)
	}
}
