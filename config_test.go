package goSession

import (
	"testing"
	"time"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.AccessSecret = []byte("test-access-secret")
	cfg.JWT.RefreshSecret = []byte("test-refresh-secret")
	return cfg
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", nil, false},
		{"missing access secret", func(c *Config) { c.JWT.AccessSecret = nil }, true},
		{"empty access secret", func(c *Config) { c.JWT.AccessSecret = []byte{} }, true},
		{"missing refresh secret", func(c *Config) { c.JWT.RefreshSecret = nil }, true},
		{"shared secrets", func(c *Config) { c.JWT.RefreshSecret = []byte("test-access-secret") }, true},
		{"zero access ttl", func(c *Config) { c.JWT.AccessTTL = 0 }, true},
		{"negative access ttl", func(c *Config) { c.JWT.AccessTTL = -time.Minute }, true},
		{"zero refresh ttl", func(c *Config) { c.JWT.RefreshTTL = 0 }, true},
		{"refresh shorter than access", func(c *Config) { c.JWT.RefreshTTL = time.Minute }, true},
		{"negative leeway", func(c *Config) { c.JWT.Leeway = -time.Second }, true},
		{"excessive leeway", func(c *Config) { c.JWT.Leeway = 5 * time.Minute }, true},
		{"negative min length", func(c *Config) { c.Password.MinLength = -1 }, true},
		{"login throttle without budget", func(c *Config) {
			c.Security.EnableLoginThrottle = true
			c.Security.MaxLoginAttempts = 0
		}, true},
		{"login throttle without cooldown", func(c *Config) {
			c.Security.EnableLoginThrottle = true
			c.Security.LoginCooldownDuration = 0
		}, true},
		{"refresh throttle without budget", func(c *Config) {
			c.Security.EnableRefreshThrottle = true
			c.Security.MaxRefreshAttempts = 0
		}, true},
		{"throttles configured but disabled", func(c *Config) {
			c.Security.MaxLoginAttempts = 0
			c.Security.MaxRefreshAttempts = 0
		}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			if tc.mutate != nil {
				tc.mutate(&cfg)
			}
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCloneConfigCopiesSecrets(t *testing.T) {
	cfg := validConfig()
	clone := cloneConfig(cfg)

	cfg.JWT.AccessSecret[0] = 'X'
	if clone.JWT.AccessSecret[0] == 'X' {
		t.Fatal("clone shares the access secret backing array")
	}

	cfg.JWT.RefreshSecret[0] = 'X'
	if clone.JWT.RefreshSecret[0] == 'X' {
		t.Fatal("clone shares the refresh secret backing array")
	}
}

func TestDefaultConfigHasNoSecrets(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.JWT.AccessSecret) != 0 || len(cfg.JWT.RefreshSecret) != 0 {
		t.Fatal("default config must not ship signing secrets")
	}
	if cfg.Validate() == nil {
		t.Fatal("default config without secrets must not validate")
	}
	if cfg.JWT.AccessTTL != 15*time.Minute {
		t.Fatalf("default access TTL = %v, want 15m", cfg.JWT.AccessTTL)
	}
	if cfg.JWT.RefreshTTL != 7*24*time.Hour {
		t.Fatalf("default refresh TTL = %v, want 168h", cfg.JWT.RefreshTTL)
	}
}
