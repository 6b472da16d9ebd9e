// Package token signs and verifies the two JWT kinds used by goSession: access
// tokens carrying only a user id, and refresh tokens carrying a user id plus the
// revocation count they were minted against.
//
// # Design
//
// HS256 with two independent secrets, one per token kind. Claims are
// tamper-evident, not confidential — nothing secret goes in a payload. A token is
// never mutated after signing; rotation always means a brand-new [Pair].
//
// # What this package must NOT do
//
//   - Touch any store. Verification is a pure function of (token, secret, clock).
//   - Leak why verification failed. Bad signature, corrupt encoding, and expiry
//     all surface as the single [ErrInvalidToken].
package token
