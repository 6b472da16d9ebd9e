package goSession

import (
	"bytes"
	"errors"
	"time"
)

// Config holds all engine tuning parameters. Configure it once, pass it to
// [Builder.WithConfig], and treat it as immutable afterwards: Build deep-copies
// the secrets so later mutation of the caller's slices has no effect.
type Config struct {
	JWT      JWTConfig
	Password PasswordConfig
	Security SecurityConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig controls token issuance. Two independent signing secrets are
// required — one per token kind — so that compromise of one key does not allow
// forging the other kind.
type JWTConfig struct {
	AccessTTL     time.Duration // default 15m
	RefreshTTL    time.Duration // default 7d
	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds argon2id parameters.
type PasswordConfig struct {
	Memory         uint32 // in KB
	Time           uint32
	Parallelism    uint8
	SaltLength     uint32
	KeyLength      uint32
	MinLength      int  // 0 disables the length check; policy is the host's call
	UpgradeOnLogin bool // transparently rehash on successful sign-in when parameters grew
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig enables the Redis-backed fixed-window throttles. Any enabled
// throttle requires a Redis client on the builder.
type SecurityConfig struct {
	EnableLoginThrottle     bool
	EnableIPThrottle        bool
	EnableRefreshThrottle   bool
	MaxLoginAttempts        int
	LoginCooldownDuration   time.Duration
	MaxRefreshAttempts      int
	RefreshCooldownDuration time.Duration
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the baseline configuration: 15-minute access tokens,
// 7-day refresh tokens, argon2id at 64 MB / t=3 / p=2, throttles off, audit and
// metrics on. Signing secrets are intentionally absent and must be supplied.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Security: SecurityConfig{
			MaxLoginAttempts:        5,
			LoginCooldownDuration:   15 * time.Minute,
			MaxRefreshAttempts:      30,
			RefreshCooldownDuration: time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration for fatal mistakes. A missing, empty, or
// shared signing secret is a configuration error the hosting process must treat
// as fatal, never a silent-accept.
func (c Config) Validate() error {
	if len(c.JWT.AccessSecret) == 0 {
		return errors.New("JWT.AccessSecret is required")
	}
	if len(c.JWT.RefreshSecret) == 0 {
		return errors.New("JWT.RefreshSecret is required")
	}
	if bytes.Equal(c.JWT.AccessSecret, c.JWT.RefreshSecret) {
		return errors.New("JWT.AccessSecret and JWT.RefreshSecret must be independent")
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT.AccessTTL must be positive")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT.RefreshTTL must be positive")
	}
	if c.JWT.RefreshTTL < c.JWT.AccessTTL {
		return errors.New("JWT.RefreshTTL must not be shorter than JWT.AccessTTL")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT.Leeway out of range")
	}

	if c.Password.MinLength < 0 {
		return errors.New("Password.MinLength must not be negative")
	}

	if c.Security.EnableLoginThrottle || c.Security.EnableIPThrottle {
		if c.Security.MaxLoginAttempts <= 0 {
			return errors.New("Security.MaxLoginAttempts must be positive when login throttling is enabled")
		}
		if c.Security.LoginCooldownDuration <= 0 {
			return errors.New("Security.LoginCooldownDuration must be positive when login throttling is enabled")
		}
	}
	if c.Security.EnableRefreshThrottle {
		if c.Security.MaxRefreshAttempts <= 0 {
			return errors.New("Security.MaxRefreshAttempts must be positive when refresh throttling is enabled")
		}
		if c.Security.RefreshCooldownDuration <= 0 {
			return errors.New("Security.RefreshCooldownDuration must be positive when refresh throttling is enabled")
		}
	}

	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.AccessSecret = cloneBytes(cfg.JWT.AccessSecret)
	out.JWT.RefreshSecret = cloneBytes(cfg.JWT.RefreshSecret)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
