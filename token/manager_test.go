package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestManager(t *testing.T, mutate func(*Config)) *Manager {
	t.Helper()

	cfg := Config{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
	if mutate != nil {
		mutate(&cfg)
	}

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestNewManagerValidation(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", nil, false},
		{"missing access secret", func(c *Config) { c.AccessSecret = nil }, true},
		{"missing refresh secret", func(c *Config) { c.RefreshSecret = nil }, true},
		{"shared secret", func(c *Config) { c.RefreshSecret = []byte("test-access-secret") }, true},
		{"negative access ttl", func(c *Config) { c.AccessTTL = -time.Minute }, true},
		{"negative refresh ttl", func(c *Config) { c.RefreshTTL = -time.Minute }, true},
		{"negative leeway", func(c *Config) { c.Leeway = -time.Second }, true},
		{"excessive leeway", func(c *Config) { c.Leeway = 3 * time.Minute }, true},
		{"custom issuer and leeway", func(c *Config) { c.Issuer = "svc"; c.Leeway = 30 * time.Second }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{
				AccessSecret:  []byte("test-access-secret"),
				RefreshSecret: []byte("test-refresh-secret"),
			}
			if tc.mutate != nil {
				tc.mutate(&cfg)
			}
			_, err := NewManager(cfg)
			if tc.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewManagerDefaultsTTLs(t *testing.T) {
	m := newTestManager(t, nil)

	if m.AccessTTL() != DefaultAccessTTL {
		t.Fatalf("access TTL = %v, want %v", m.AccessTTL(), DefaultAccessTTL)
	}
	if m.RefreshTTL() != DefaultRefreshTTL {
		t.Fatalf("refresh TTL = %v, want %v", m.RefreshTTL(), DefaultRefreshTTL)
	}
}

func TestAccessRoundTrip(t *testing.T) {
	m := newTestManager(t, nil)

	tok, err := m.SignAccess("user-1")
	if err != nil {
		t.Fatalf("SignAccess: %v", err)
	}

	claims, err := m.ParseAccess(tok)
	if err != nil {
		t.Fatalf("ParseAccess: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("uid = %q, want %q", claims.UserID, "user-1")
	}
}

func TestRefreshRoundTripCarriesRevocationCount(t *testing.T) {
	m := newTestManager(t, nil)

	tok, err := m.SignRefresh("user-1", 42)
	if err != nil {
		t.Fatalf("SignRefresh: %v", err)
	}

	claims, err := m.ParseRefresh(tok)
	if err != nil {
		t.Fatalf("ParseRefresh: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("uid = %q, want %q", claims.UserID, "user-1")
	}
	if claims.RevocationCount != 42 {
		t.Fatalf("rvc = %d, want 42", claims.RevocationCount)
	}
}

func TestSignRejectsEmptyUserID(t *testing.T) {
	m := newTestManager(t, nil)

	if _, err := m.SignAccess(""); err == nil {
		t.Fatal("SignAccess with empty uid: expected error")
	}
	if _, err := m.SignRefresh("", 0); err == nil {
		t.Fatal("SignRefresh with empty uid: expected error")
	}
}

func TestExpiredTokenIsInvalid(t *testing.T) {
	m := newTestManager(t, func(c *Config) {
		c.AccessTTL = 5 * time.Millisecond
		c.RefreshTTL = 5 * time.Millisecond
	})

	access, err := m.SignAccess("user-1")
	if err != nil {
		t.Fatalf("SignAccess: %v", err)
	}
	refresh, err := m.SignRefresh("user-1", 0)
	if err != nil {
		t.Fatalf("SignRefresh: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	if _, err := m.ParseAccess(access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired access parse error = %v, want ErrInvalidToken", err)
	}
	if _, err := m.ParseRefresh(refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired refresh parse error = %v, want ErrInvalidToken", err)
	}
}

func TestTamperedTokenIsInvalid(t *testing.T) {
	m := newTestManager(t, nil)

	tok, err := m.SignAccess("user-1")
	if err != nil {
		t.Fatalf("SignAccess: %v", err)
	}

	// Flip one character in the signature segment.
	i := strings.LastIndex(tok, ".") + 1
	b := []byte(tok)
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}

	if _, err := m.ParseAccess(string(b)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("tampered parse error = %v, want ErrInvalidToken", err)
	}
}

func TestGarbageTokenIsInvalid(t *testing.T) {
	m := newTestManager(t, nil)

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := m.ParseAccess(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("ParseAccess(%q) error = %v, want ErrInvalidToken", tok, err)
		}
		if _, err := m.ParseRefresh(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("ParseRefresh(%q) error = %v, want ErrInvalidToken", tok, err)
		}
	}
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	m := newTestManager(t, nil)

	access, err := m.SignAccess("user-1")
	if err != nil {
		t.Fatalf("SignAccess: %v", err)
	}
	refresh, err := m.SignRefresh("user-1", 0)
	if err != nil {
		t.Fatalf("SignRefresh: %v", err)
	}

	// Each kind is signed with its own secret, so cross-parsing must fail.
	if _, err := m.ParseRefresh(access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access token parsed as refresh: err = %v, want ErrInvalidToken", err)
	}
	if _, err := m.ParseAccess(refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh token parsed as access: err = %v, want ErrInvalidToken", err)
	}
}

func TestIssuerMismatchIsInvalid(t *testing.T) {
	signer := newTestManager(t, func(c *Config) { c.Issuer = "svc-a" })
	verifier := newTestManager(t, func(c *Config) { c.Issuer = "svc-b" })

	tok, err := signer.SignAccess("user-1")
	if err != nil {
		t.Fatalf("SignAccess: %v", err)
	}

	if _, err := verifier.ParseAccess(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("issuer mismatch parse error = %v, want ErrInvalidToken", err)
	}
}

func TestIssuePair(t *testing.T) {
	m := newTestManager(t, nil)

	pair, err := m.IssuePair("user-1", 7)
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	access, err := m.ParseAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccess: %v", err)
	}
	refresh, err := m.ParseRefresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("ParseRefresh: %v", err)
	}

	if access.UserID != "user-1" || refresh.UserID != "user-1" {
		t.Fatalf("uid mismatch: access=%q refresh=%q", access.UserID, refresh.UserID)
	}
	if refresh.RevocationCount != 7 {
		t.Fatalf("rvc = %d, want 7", refresh.RevocationCount)
	}
}
