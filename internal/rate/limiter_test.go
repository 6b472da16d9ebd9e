package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client, cfg), mr
}

func TestLoginThrottle(t *testing.T) {
	l, _ := newTestLimiter(t, Config{
		EnableLoginThrottle:   true,
		MaxLoginAttempts:      3,
		LoginCooldownDuration: time.Minute,
	})
	ctx := context.Background()

	if err := l.CheckLogin(ctx, "a@x.com", ""); err != nil {
		t.Fatalf("CheckLogin before failures: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := l.RecordLoginFailure(ctx, "a@x.com", ""); err != nil {
			t.Fatalf("RecordLoginFailure #%d: %v", i+1, err)
		}
	}
	if err := l.RecordLoginFailure(ctx, "a@x.com", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("4th failure error = %v, want ErrRateLimited", err)
	}
	if err := l.CheckLogin(ctx, "a@x.com", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("CheckLogin over budget error = %v, want ErrRateLimited", err)
	}

	// Other identifiers are unaffected.
	if err := l.CheckLogin(ctx, "b@x.com", ""); err != nil {
		t.Fatalf("CheckLogin other email: %v", err)
	}
}

func TestLoginThrottleResets(t *testing.T) {
	l, _ := newTestLimiter(t, Config{
		EnableLoginThrottle:   true,
		MaxLoginAttempts:      1,
		LoginCooldownDuration: time.Minute,
	})
	ctx := context.Background()

	_ = l.RecordLoginFailure(ctx, "a@x.com", "")
	if err := l.RecordLoginFailure(ctx, "a@x.com", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("error = %v, want ErrRateLimited", err)
	}

	if err := l.ResetLogin(ctx, "a@x.com", ""); err != nil {
		t.Fatalf("ResetLogin: %v", err)
	}
	if err := l.CheckLogin(ctx, "a@x.com", ""); err != nil {
		t.Fatalf("CheckLogin after reset: %v", err)
	}
}

func TestLoginWindowExpires(t *testing.T) {
	l, mr := newTestLimiter(t, Config{
		EnableLoginThrottle:   true,
		MaxLoginAttempts:      1,
		LoginCooldownDuration: time.Minute,
	})
	ctx := context.Background()

	_ = l.RecordLoginFailure(ctx, "a@x.com", "")
	if err := l.RecordLoginFailure(ctx, "a@x.com", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("error = %v, want ErrRateLimited", err)
	}

	mr.FastForward(2 * time.Minute)

	if err := l.CheckLogin(ctx, "a@x.com", ""); err != nil {
		t.Fatalf("CheckLogin after window: %v", err)
	}
}

func TestIPThrottleIsIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, Config{
		EnableIPThrottle:      true,
		MaxLoginAttempts:      2,
		LoginCooldownDuration: time.Minute,
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := l.RecordLoginFailure(ctx, "a@x.com", "10.0.0.1"); err != nil {
			t.Fatalf("RecordLoginFailure #%d: %v", i+1, err)
		}
	}
	if err := l.RecordLoginFailure(ctx, "other@x.com", "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("same IP different email error = %v, want ErrRateLimited", err)
	}
	if err := l.CheckLogin(ctx, "a@x.com", "10.0.0.2"); err != nil {
		t.Fatalf("CheckLogin other IP: %v", err)
	}
}

func TestRefreshThrottle(t *testing.T) {
	l, mr := newTestLimiter(t, Config{
		EnableRefreshThrottle:   true,
		MaxRefreshAttempts:      2,
		RefreshCooldownDuration: time.Minute,
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := l.CheckRefresh(ctx, "user-1"); err != nil {
			t.Fatalf("CheckRefresh #%d: %v", i+1, err)
		}
	}
	if err := l.CheckRefresh(ctx, "user-1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("CheckRefresh over budget error = %v, want ErrRateLimited", err)
	}
	if err := l.CheckRefresh(ctx, "user-2"); err != nil {
		t.Fatalf("CheckRefresh other user: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if err := l.CheckRefresh(ctx, "user-1"); err != nil {
		t.Fatalf("CheckRefresh after window: %v", err)
	}
}

func TestRedisDownSurfacesAsUnavailable(t *testing.T) {
	l, mr := newTestLimiter(t, Config{
		EnableLoginThrottle:   true,
		MaxLoginAttempts:      3,
		LoginCooldownDuration: time.Minute,
	})
	mr.Close()

	err := l.RecordLoginFailure(context.Background(), "a@x.com", "")
	if !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("error = %v, want ErrRedisUnavailable", err)
	}
}
