package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	algorithmID    = "argon2id"
	minMemoryKB    = 8 * 1024
	minSaltLength  = 16
	minKeyLength   = 16
	minParallelism = 1
)

// Config holds argon2id tuning parameters. MinLength bounds the plaintext in
// bytes; zero disables the check (password policy belongs to the host, not to
// the hasher).
type Config struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	MinLength   int
}

// Hasher hashes and verifies passwords. Safe for concurrent use.
type Hasher struct {
	config Config
}

// NewHasher validates cfg against sane argon2id floors and returns a [Hasher].
func NewHasher(cfg Config) (*Hasher, error) {
	switch {
	case cfg.Memory < minMemoryKB:
		return nil, errors.New("password memory must be >= 8192 KB")
	case cfg.Time < 1:
		return nil, errors.New("password time must be >= 1")
	case cfg.Parallelism < minParallelism:
		return nil, errors.New("password parallelism must be >= 1")
	case cfg.SaltLength < minSaltLength:
		return nil, errors.New("password salt length must be >= 16")
	case cfg.KeyLength < minKeyLength:
		return nil, errors.New("password key length must be >= 16")
	case cfg.MinLength < 0:
		return nil, errors.New("password min length must not be negative")
	}

	return &Hasher{config: cfg}, nil
}

// ErrTooShort is returned by [Hasher.Hash] when the plaintext is shorter than
// the configured minimum.
var ErrTooShort = errors.New("password below minimum length")

// Hash derives an argon2id hash from password with a fresh random salt and
// returns it in PHC format:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<salt-b64>$<hash-b64>
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrTooShort
	}
	if h.config.MinLength > 0 && len(password) < h.config.MinLength {
		return "", ErrTooShort
	}

	salt := make([]byte, h.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := argon2.IDKey(
		[]byte(password),
		salt,
		h.config.Time,
		h.config.Memory,
		h.config.Parallelism,
		h.config.KeyLength,
	)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		h.config.Memory,
		h.config.Time,
		h.config.Parallelism,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the hash with the parameters embedded in encodedHash and
// compares in constant time. The bool reports a match; the error reports a
// malformed stored hash, never a mismatch.
func (h *Hasher) Verify(password, encodedHash string) (bool, error) {
	params, salt, key, err := decodePHC(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey(
		[]byte(password),
		salt,
		params.time,
		params.memory,
		params.parallelism,
		uint32(len(key)),
	)

	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

// NeedsRehash reports whether encodedHash was produced with parameters weaker
// than the current config. Used for transparent upgrade on successful sign-in.
func (h *Hasher) NeedsRehash(encodedHash string) (bool, error) {
	params, _, key, err := decodePHC(encodedHash)
	if err != nil {
		return false, err
	}

	if params.memory < h.config.Memory || params.time < h.config.Time {
		return true, nil
	}
	if params.parallelism < h.config.Parallelism {
		return true, nil
	}
	if uint32(len(key)) != h.config.KeyLength {
		return true, nil
	}

	return false, nil
}

type phcParams struct {
	memory      uint32
	time        uint32
	parallelism uint8
}

func decodePHC(encoded string) (phcParams, []byte, []byte, error) {
	var params phcParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return params, nil, nil, errors.New("invalid PHC format")
	}
	if parts[1] != algorithmID {
		return params, nil, nil, errors.New("unsupported algorithm")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return params, nil, nil, errors.New("invalid argon2 version")
	}
	if version != argon2.Version {
		return params, nil, nil, errors.New("unsupported argon2 version")
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memory, &params.time, &params.parallelism); err != nil {
		return params, nil, nil, errors.New("invalid argon2 parameters")
	}
	if params.memory < minMemoryKB || params.time < 1 || params.parallelism < minParallelism {
		return params, nil, nil, errors.New("invalid argon2 parameters")
	}

	salt, err := base64.StdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) < minSaltLength {
		return params, nil, nil, errors.New("invalid salt")
	}

	key, err := base64.StdEncoding.DecodeString(parts[5])
	if err != nil || len(key) < minKeyLength {
		return params, nil, nil, errors.New("invalid hash")
	}

	return params, salt, key, nil
}
