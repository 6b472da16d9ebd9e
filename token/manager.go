package token

import (
	"bytes"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultAccessTTL bounds the blast radius of a stolen access token.
	DefaultAccessTTL = 15 * time.Minute
	// DefaultRefreshTTL is the sliding-session window.
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// ErrInvalidToken is the uniform verification failure: bad signature, corrupt
// encoding, wrong token kind, or expiry in the past. Callers treat it as a
// terminal "no" for the verification step, never as a fault.
var ErrInvalidToken = errors.New("invalid token")

// Config defines the signing setup for a [Manager].
//
// Config instances are intended to be configured during initialization and then
// treated as immutable.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

// AccessClaims is the payload of an access token. Access tokens carry no
// revocation counter: they are honored by signature and expiry alone.
type AccessClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token. RevocationCount pins the
// token to the counter value it was minted against.
type RefreshClaims struct {
	UserID          string `json:"uid"`
	RevocationCount uint64 `json:"rvc"`
	jwt.RegisteredClaims
}

// Pair is an immutable access+refresh token pair.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Manager signs and verifies both token kinds. Safe for concurrent use.
type Manager struct {
	config Config
}

// NewManager validates the config and returns a [Manager]. Empty or shared
// secrets are rejected: compromise of one signing key must not allow forging
// the other token kind.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if cfg.AccessTTL < 0 || cfg.RefreshTTL < 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if len(cfg.AccessSecret) == 0 {
		return nil, errors.New("access secret required")
	}
	if len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("refresh secret required")
	}
	if bytes.Equal(cfg.AccessSecret, cfg.RefreshSecret) {
		return nil, errors.New("access and refresh secrets must be independent")
	}

	return &Manager{config: cfg}, nil
}

// AccessTTL returns the configured access-token lifetime.
func (m *Manager) AccessTTL() time.Duration {
	return m.config.AccessTTL
}

// RefreshTTL returns the configured refresh-token lifetime.
func (m *Manager) RefreshTTL() time.Duration {
	return m.config.RefreshTTL
}

// SignAccess issues an access token for uid expiring AccessTTL from now.
func (m *Manager) SignAccess(uid string) (string, error) {
	if uid == "" {
		return "", errors.New("empty user id")
	}

	now := time.Now()
	claims := AccessClaims{
		UserID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.config.Issuer,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.AccessSecret)
}

// SignRefresh issues a refresh token for uid bound to revocationCount,
// expiring RefreshTTL from now.
func (m *Manager) SignRefresh(uid string, revocationCount uint64) (string, error) {
	if uid == "" {
		return "", errors.New("empty user id")
	}

	now := time.Now()
	claims := RefreshClaims{
		UserID:          uid,
		RevocationCount: revocationCount,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.RefreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.config.Issuer,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.RefreshSecret)
}

// IssuePair signs both token kinds for uid at revocationCount.
func (m *Manager) IssuePair(uid string, revocationCount uint64) (Pair, error) {
	access, err := m.SignAccess(uid)
	if err != nil {
		return Pair{}, err
	}

	refresh, err := m.SignRefresh(uid, revocationCount)
	if err != nil {
		return Pair{}, err
	}

	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// ParseAccess verifies tokenStr as an access token. Any failure is
// [ErrInvalidToken].
func (m *Manager) ParseAccess(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := m.parse(tokenStr, claims, m.config.AccessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseRefresh verifies tokenStr as a refresh token. Any failure is
// [ErrInvalidToken].
func (m *Manager) ParseRefresh(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := m.parse(tokenStr, claims, m.config.RefreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (m *Manager) parse(tokenStr string, claims jwt.Claims, secret []byte) error {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parsed, err := jwt.NewParser(options...).ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}

	return nil
}
